package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"legal_connect/pkg/logger"
)

type Repositories struct {
	User      UserRepository
	Message   MessageRepository
	Presence  PresenceRepository
	Audit     AuditRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, rdb *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db, log),
		Message:   NewMessageRepository(db, log),
		Presence:  NewPresenceRepository(rdb, log),
		Audit:     NewAuditRepository(db, log),
		RateLimit: NewRateLimitRepository(rdb, log),
	}
}

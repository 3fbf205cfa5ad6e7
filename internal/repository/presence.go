package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"legal_connect/pkg/logger"
)

const (
	// TTL зеркала: соединение без refresh считается устаревшим
	PresenceTTL = 90 * time.Second

	PresenceKeyPrefix = "presence:user:%s"
)

// PresenceRepository - зеркало онлайн-статуса в Redis.
// Не авторитетно для доставки: решение о Push принимает таблица живых соединений.
type PresenceRepository interface {
	SetOnline(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

type presenceRepository struct {
	rdb *redis.Client
	log logger.Logger
}

func NewPresenceRepository(rdb *redis.Client, log logger.Logger) PresenceRepository {
	return &presenceRepository{rdb: rdb, log: log}
}

func (r *presenceRepository) key(userID uuid.UUID) string {
	return fmt.Sprintf(PresenceKeyPrefix, userID.String())
}

func (r *presenceRepository) SetOnline(ctx context.Context, userID uuid.UUID) error {
	if err := r.rdb.Set(ctx, r.key(userID), "1", PresenceTTL).Err(); err != nil {
		r.log.Error("Failed to set presence key", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (r *presenceRepository) Refresh(ctx context.Context, userID uuid.UUID) error {
	if err := r.rdb.Expire(ctx, r.key(userID), PresenceTTL).Err(); err != nil {
		r.log.Error("Failed to refresh presence key", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (r *presenceRepository) SetOffline(ctx context.Context, userID uuid.UUID) error {
	if err := r.rdb.Del(ctx, r.key(userID)).Err(); err != nil {
		r.log.Error("Failed to delete presence key", "error", err, "user_id", userID)
		return err
	}
	return nil
}

func (r *presenceRepository) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	count, err := r.rdb.Exists(ctx, r.key(userID)).Result()
	if err != nil {
		r.log.Error("Failed to check presence key", "error", err, "user_id", userID)
		return false, err
	}
	return count > 0, nil
}

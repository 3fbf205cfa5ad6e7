package service

import (
	"legal_connect/internal/config"
	"legal_connect/internal/repository"
	"legal_connect/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Message      MessageService
	Conversation ConversationService
	Presence     PresenceRegistry
	Stats        StatsService
	RateLimit    RateLimitService
	Audit        AuditService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)

	return &Services{
		Auth:         NewAuthService(repos.User, audit, cfg.JWT, log),
		User:         NewUserService(repos.User, log),
		Message:      NewMessageService(repos.Message, audit, cfg.Database, log),
		Conversation: NewConversationService(repos.Message, repos.User, ComplementaryRoles, log),
		Presence:     NewPresenceRegistry(repos.User, repos.Presence, log),
		Stats:        NewStatsService(repos.Message, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
	}
}

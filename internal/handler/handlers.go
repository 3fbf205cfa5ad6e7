package handler

import (
	"legal_connect/internal/config"
	"legal_connect/internal/service"
	"legal_connect/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Message      *MessageHandler
	Conversation *ConversationHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(cfg),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, log),
		Message:      NewMessageHandler(services.Message, services.Presence, log),
		Conversation: NewConversationHandler(services.Conversation, services.Stats, log),
		WebSocket:    NewWebSocketHandler(services.Auth, services.Presence, log),
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"event_time"`
	ActorUserID *uuid.UUID             `json:"actor_user_id,omitempty"`
	ActorRole   string                 `json:"actor_role"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	ActorRoleSystem = "system"
)

const (
	EventTypeUserRegistered = "USER_REGISTERED"
	EventTypeUserLogin      = "USER_LOGIN"
	EventTypeUserLogout     = "USER_LOGOUT"
	EventTypeMessagesRead   = "MESSAGES_READ"
)

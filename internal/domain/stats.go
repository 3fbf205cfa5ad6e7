package domain

import (
	"github.com/google/uuid"
)

// UnreadStats - счетчики непрочитанных сообщений получателя
type UnreadStats struct {
	Total    int64            `json:"total"`
	BySender map[string]int64 `json:"by_sender"`
}

type SenderUnread struct {
	SenderID uuid.UUID
	Count    int64
}

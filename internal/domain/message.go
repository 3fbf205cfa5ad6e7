package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message неизменяемо после создания, кроме флага IsRead (false -> true)
type Message struct {
	ID         int64     `json:"id"`
	SenderID   uuid.UUID `json:"sender"`
	ReceiverID uuid.UUID `json:"receiver"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"timestamp"`
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

func IsValidMessageType(t string) bool {
	return t == MessageTypeText || t == MessageTypeImage
}

// Conversation - производное представление, не хранится в БД.
// LastMessage - сообщение с максимальным ID среди всех сообщений пары.
type Conversation struct {
	Partner         UserSummary `json:"partner"`
	LastMessage     *Message    `json:"last_message"`
	LastMessageTime time.Time   `json:"last_message_time"`
}

// MessageEvent - payload события new-message для realtime-канала
type MessageEvent struct {
	Event     string    `json:"event"`
	Sender    uuid.UUID `json:"sender"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

const EventNewMessage = "new-message"

func NewMessageEvent(m *Message) *MessageEvent {
	return &MessageEvent{
		Event:     EventNewMessage,
		Sender:    m.SenderID,
		Content:   m.Content,
		Type:      m.Type,
		Timestamp: m.CreatedAt,
	}
}

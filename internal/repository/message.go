package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"legal_connect/internal/domain"
	apperrors "legal_connect/pkg/errors"
	"legal_connect/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	History(ctx context.Context, userA, userB uuid.UUID) ([]*domain.Message, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
	MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, readerID uuid.UUID) (int64, error)
	CountUnreadBySender(ctx context.Context, readerID uuid.UUID) ([]*domain.SenderUnread, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	// id BIGSERIAL задает монотонный порядок вставки, created_at - серверное время
	query := `
		INSERT INTO messages (sender_id, receiver_id, content, message_type, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.SenderID, message.ReceiverID, message.Content, message.Type,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Код 23503 = foreign_key_violation: отправителя или получателя нет
			if pgErr.Code == "23503" {
				r.log.Warn("Message references unknown user", "constraint", pgErr.ConstraintName)
				return fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, pgErr.ConstraintName)
			}
		}
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	message.IsRead = false
	return nil
}

func (r *messageRepository) History(ctx context.Context, userA, userB uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, message_type, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		r.log.Error("Failed to get message history", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	// Сортировка по id DESC: источник для однопроходной агрегации бесед
	query := `
		SELECT id, sender_id, receiver_id, content, message_type, is_read, created_at
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list user messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MarkRead - атомарный батч: один UPDATE, либо весь, либо ничего
func (r *messageRepository) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE
	`

	tag, err := r.db.Exec(ctx, query, senderID, readerID)
	if err != nil {
		r.log.Error("Failed to mark messages as read", "error", err)
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) CountUnread(ctx context.Context, readerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`

	var count int64
	if err := r.db.QueryRow(ctx, query, readerID).Scan(&count); err != nil {
		r.log.Error("Failed to count unread messages", "error", err)
		return 0, err
	}

	return count, nil
}

func (r *messageRepository) CountUnreadBySender(ctx context.Context, readerID uuid.UUID) ([]*domain.SenderUnread, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND is_read = FALSE
		GROUP BY sender_id
	`

	rows, err := r.db.Query(ctx, query, readerID)
	if err != nil {
		r.log.Error("Failed to count unread by sender", "error", err)
		return nil, err
	}
	defer rows.Close()

	var counts []*domain.SenderUnread
	for rows.Next() {
		entry := &domain.SenderUnread{}
		if err := rows.Scan(&entry.SenderID, &entry.Count); err != nil {
			r.log.Error("Failed to scan unread count", "error", err)
			return nil, err
		}
		counts = append(counts, entry)
	}

	return counts, rows.Err()
}

func scanMessages(rows pgx.Rows) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID, &message.SenderID, &message.ReceiverID,
			&message.Content, &message.Type, &message.IsRead, &message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

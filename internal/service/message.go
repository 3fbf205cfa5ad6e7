package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"legal_connect/internal/config"
	"legal_connect/internal/domain"
	"legal_connect/internal/repository"
	apperrors "legal_connect/pkg/errors"
	"legal_connect/pkg/logger"
)

const (
	// Ограниченный retry записи: после maxSendAttempts отдаем StorageUnavailable
	maxSendAttempts = 3
	sendRetryDelay  = 100 * time.Millisecond
)

type MessageService interface {
	Send(ctx context.Context, senderID, receiverID uuid.UUID, content, messageType string) (*domain.Message, error)
	History(ctx context.Context, userA, userB uuid.UUID) ([]*domain.Message, error)
	MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	audit       AuditService
	dbCfg       config.DatabaseConfig
	log         logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, audit AuditService, dbCfg config.DatabaseConfig, log logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		audit:       audit,
		dbCfg:       dbCfg,
		log:         log,
	}
}

// Send валидирует и сохраняет сообщение. Доставка (Push) - отдельный шаг
// на стороне вызывающего, чтобы ошибки хранилища и транспорта были независимы.
func (s *messageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content, messageType string) (*domain.Message, error) {
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	if !domain.IsValidMessageType(messageType) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidMessageType, messageType)
	}

	message := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Type:       messageType,
	}

	// Запись не должна зависеть от того, дождался ли отправитель ответа
	persistCtx := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(persistCtx, s.dbCfg.QueryTimeout)
		lastErr = s.messageRepo.Create(attemptCtx, message)
		cancel()

		if lastErr == nil {
			return message, nil
		}

		// Нарушение FK повтором не лечится: получателя не существует
		if errors.Is(lastErr, apperrors.ErrUserNotFound) {
			return nil, lastErr
		}

		s.log.Warn("Message persist attempt failed", "attempt", attempt, "error", lastErr)
		if attempt < maxSendAttempts {
			time.Sleep(time.Duration(attempt) * sendRetryDelay)
		}
	}

	return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, lastErr)
}

func (s *messageService) History(ctx context.Context, userA, userB uuid.UUID) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dbCfg.QueryTimeout)
	defer cancel()

	return s.messageRepo.History(ctx, userA, userB)
}

// MarkRead помечает прочитанным весь накопившийся backlog от sender одним
// атомарным батчем. Повторный вызов без новых сообщений обновляет 0 строк.
func (s *messageService) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) (int64, error) {
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dbCfg.QueryTimeout)
	defer cancel()

	count, err := s.messageRepo.MarkRead(updateCtx, readerID, senderID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	if count > 0 {
		err := s.audit.LogEvent(ctx, &readerID, domain.ActorRoleSystem, domain.EventTypeMessagesRead, map[string]interface{}{
			"sender_id": senderID.String(),
			"count":     count,
		})
		if err != nil {
			s.log.Warn("Failed to audit read receipt", "error", err)
		}
	}

	return count, nil
}

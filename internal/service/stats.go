package service

import (
	"context"

	"github.com/google/uuid"
	"legal_connect/internal/domain"
	"legal_connect/internal/repository"
	"legal_connect/pkg/logger"
)

type StatsService interface {
	UnreadStats(ctx context.Context, readerID uuid.UUID) (*domain.UnreadStats, error)
}

type statsService struct {
	messageRepo repository.MessageRepository
	log         logger.Logger
}

func NewStatsService(messageRepo repository.MessageRepository, log logger.Logger) StatsService {
	return &statsService{messageRepo: messageRepo, log: log}
}

func (s *statsService) UnreadStats(ctx context.Context, readerID uuid.UUID) (*domain.UnreadStats, error) {
	total, err := s.messageRepo.CountUnread(ctx, readerID)
	if err != nil {
		return nil, err
	}

	bySender, err := s.messageRepo.CountUnreadBySender(ctx, readerID)
	if err != nil {
		return nil, err
	}

	stats := &domain.UnreadStats{
		Total:    total,
		BySender: make(map[string]int64, len(bySender)),
	}
	for _, entry := range bySender {
		stats.BySender[entry.SenderID.String()] = entry.Count
	}

	return stats, nil
}

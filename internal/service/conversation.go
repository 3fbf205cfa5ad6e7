package service

import (
	"context"

	"github.com/google/uuid"
	"legal_connect/internal/domain"
	"legal_connect/internal/repository"
	"legal_connect/pkg/logger"
)

// PartnerFilter - политика видимости собеседников, не часть механизма агрегации
type PartnerFilter func(viewer, partner *domain.User) bool

// ComplementaryRoles: enduser видит только professional и наоборот
func ComplementaryRoles(viewer, partner *domain.User) bool {
	switch viewer.Role {
	case domain.RoleEnduser:
		return partner.Role == domain.RoleProfessional
	case domain.RoleProfessional:
		return partner.Role == domain.RoleEnduser
	default:
		return true
	}
}

// AllPartners отключает ролевой фильтр
func AllPartners(viewer, partner *domain.User) bool {
	return true
}

type ConversationService interface {
	RecentConversations(ctx context.Context, viewerID uuid.UUID) ([]*domain.Conversation, error)
}

type conversationService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	filter      PartnerFilter
	log         logger.Logger
}

func NewConversationService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, filter PartnerFilter, log logger.Logger) ConversationService {
	if filter == nil {
		filter = AllPartners
	}
	return &conversationService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		filter:      filter,
		log:         log,
	}
}

// RecentConversations строит список бесед одним проходом по сообщениям,
// отсортированным по убыванию id: первое встреченное сообщение для партнера
// и есть самое свежее, остальные отбрасываются.
func (s *conversationService) RecentConversations(ctx context.Context, viewerID uuid.UUID) ([]*domain.Conversation, error) {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	lastByPartner := make(map[uuid.UUID]*domain.Message, 16)
	order := make([]uuid.UUID, 0, 16)

	for _, message := range messages {
		partnerID := message.SenderID
		if partnerID == viewerID {
			partnerID = message.ReceiverID
		}

		if _, seen := lastByPartner[partnerID]; seen {
			continue
		}
		lastByPartner[partnerID] = message
		order = append(order, partnerID)
	}

	if len(order) == 0 {
		return []*domain.Conversation{}, nil
	}

	partners, err := s.userRepo.ListByIDs(ctx, order)
	if err != nil {
		return nil, err
	}

	partnerByID := make(map[uuid.UUID]*domain.User, len(partners))
	for _, partner := range partners {
		partnerByID[partner.ID] = partner
	}

	conversations := make([]*domain.Conversation, 0, len(order))
	for _, partnerID := range order {
		partner, ok := partnerByID[partnerID]
		if !ok {
			// Ссылочная целостность нарушена - пропускаем, не падаем
			s.log.Debug("Dropping conversation with unresolvable partner", "partner_id", partnerID)
			continue
		}
		if !s.filter(viewer, partner) {
			continue
		}

		last := lastByPartner[partnerID]
		conversations = append(conversations, &domain.Conversation{
			Partner:         partner.Summary(),
			LastMessage:     last,
			LastMessageTime: last.CreatedAt,
		})
	}

	return conversations, nil
}

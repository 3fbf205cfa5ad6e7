package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"legal_connect/internal/domain"
	"legal_connect/internal/service"
	apperrors "legal_connect/pkg/errors"
	"legal_connect/pkg/logger"
)

type MessageHandler struct {
	messageService service.MessageService
	presence       service.PresenceRegistry
	log            logger.Logger
}

func NewMessageHandler(messageService service.MessageService, presence service.PresenceRegistry, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		presence:       presence,
		log:            log,
	}
}

type SendMessageRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Type     string `json:"type"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiverID, err := uuid.Parse(req.Receiver)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver ID"})
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), userID.(uuid.UUID), receiverID, req.Content, req.Type)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	// Доставка отдельным шагом после записи: отсутствие соединения - не ошибка
	h.presence.Push(receiverID, domain.NewMessageEvent(message))

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

func (h *MessageHandler) History(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	receiverID, err := uuid.Parse(c.Param("receiver"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver ID"})
		return
	}

	messages, err := h.messageService.History(c.Request.Context(), userID.(uuid.UUID), receiverID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	if messages == nil {
		messages = []*domain.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	senderID, err := uuid.Parse(c.Param("sender"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender ID"})
		return
	}

	updated, err := h.messageService.MarkRead(c.Request.Context(), userID.(uuid.UUID), senderID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

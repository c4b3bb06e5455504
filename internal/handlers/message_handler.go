package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"teamfinder/internal/models"
	"teamfinder/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, _ := currentUserID(c)
	conversations, err := h.messageService.ListConversations(userID)
	if err != nil {
		log.Printf("[messages][conversations][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Message store unavailable, try again"})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// OpenConversation returns the history with a partner and marks their
// messages as read. The response reflects the read flags as of the fetch.
func (h *MessageHandler) OpenConversation(c *gin.Context) {
	userID, _ := currentUserID(c)
	partnerID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	messages, err := h.messageService.OpenConversation(userID, partnerID)
	if err != nil {
		log.Printf("[messages][open][err] userID=%d partnerID=%d: %v", userID, partnerID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Message store unavailable, try again"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	To      int    `json:"to"`
	Content string `json:"content"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == 0 || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient and content are required"})
		return
	}

	msg, err := h.messageService.Send(userID, req.To, req.Content)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMessageInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be 1-" + strconv.Itoa(models.MaxMessageLength) + " characters"})
		return
	case errors.Is(err, services.ErrRecipientMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	default:
		log.Printf("[messages][send][err] userID=%d to=%d: %v", userID, req.To, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Message store unavailable, try again"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, _ := currentUserID(c)
	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		log.Printf("[messages][unread][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Message store unavailable, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

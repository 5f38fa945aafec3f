package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"socialnet/internal/app/dto"
	messagingsvc "socialnet/internal/app/services/messaging"
	domainmessaging "socialnet/internal/domain/messaging"
	domainuser "socialnet/internal/domain/user"
)

// MessageHTTP exposes direct-messaging endpoints.
type MessageHTTP interface {
	Send(c *gin.Context)
	History(c *gin.Context)
	Inbox(c *gin.Context)
	MarkRead(c *gin.Context)
	Delete(c *gin.Context)
}

type MessageHandler struct {
	Service *messagingsvc.Service
	Logger  *slog.Logger
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

// Send posts a new message from the authenticated user.
func (h MessageHandler) Send(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	message, err := h.Service.Send(c.Request.Context(), messagingsvc.SendParams{
		SenderID:    p.UserID(),
		RecipientID: domainuser.ID(strings.TrimSpace(req.RecipientID)),
		Content:     req.Content,
	})
	if err != nil {
		h.respondMessagingError(c, err, "send message", "sender_id", p.ID)
		return
	}
	c.JSON(http.StatusCreated, dto.MapMessage(message))
}

// History returns the conversation between the caller and another user,
// oldest first.
func (h MessageHandler) History(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	other := strings.TrimSpace(c.Param("user_id"))
	if other == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	page := parsePositiveIntStrict(c.Query("page"), 1)
	pageSize := parsePositiveIntStrict(c.Query("page_size"), 0)

	messages, err := h.Service.History(c.Request.Context(), p.UserID(), domainuser.ID(other), page, pageSize)
	if err != nil {
		h.respondMessagingError(c, err, "list messages", "user_id", p.ID, "other_id", other)
		return
	}
	c.JSON(http.StatusOK, dto.MapMessages(messages, page))
}

// Inbox returns one aggregated row per conversation counterpart, most recent
// first.
func (h MessageHandler) Inbox(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	page := parsePositiveIntStrict(c.Query("page"), 1)
	pageSize := parsePositiveIntStrict(c.Query("page_size"), 0)

	rows, err := h.Service.Inbox(c.Request.Context(), p.UserID(), page, pageSize)
	if err != nil {
		h.respondMessagingError(c, err, "list conversations", "user_id", p.ID)
		return
	}
	c.JSON(http.StatusOK, dto.MapConversations(rows, page))
}

// MarkRead marks the caller's unread messages from the counterpart as read.
func (h MessageHandler) MarkRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	counterpart := strings.TrimSpace(c.Param("user_id"))
	if counterpart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	result, err := h.Service.MarkRead(c.Request.Context(), p.UserID(), domainuser.ID(counterpart))
	if err != nil {
		h.respondMessagingError(c, err, "mark read", "user_id", p.ID, "counterpart_id", counterpart)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": result.Changed, "updated": result.Updated})
}

// Delete removes a message the caller sent.
func (h MessageHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "messaging unavailable"})
		return
	}
	messageID := strings.TrimSpace(c.Param("id"))
	if messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message id is required"})
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.UserID(), messageID); err != nil {
		h.respondMessagingError(c, err, "delete message", "user_id", p.ID, "message_id", messageID)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h MessageHandler) respondMessagingError(c *gin.Context, err error, action string, attrs ...any) {
	switch {
	case errors.Is(err, domainmessaging.ErrMessageNotFound),
		errors.Is(err, domainmessaging.ErrConversationNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainmessaging.ErrNotSender):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender may delete a message"})
	case errors.Is(err, domainmessaging.ErrSelfConversation),
		errors.Is(err, domainmessaging.ErrContentRequired),
		errors.Is(err, domainmessaging.ErrRecipientRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("messaging call failed", append([]any{"action", action, "error", err}, attrs...)...)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePositiveIntStrict(raw string, def int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return def
	}
	return value
}

var _ MessageHTTP = (*MessageHandler)(nil)

package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"socialnet/internal/app/dto"
	notificationsvc "socialnet/internal/app/services/notification"
)

// NotificationHTTP exposes in-app notification endpoints.
type NotificationHTTP interface {
	List(c *gin.Context)
	MarkAllRead(c *gin.Context)
	UnreadCount(c *gin.Context)
}

type NotificationHandler struct {
	Service *notificationsvc.Service
	Logger  *slog.Logger
}

// List returns the caller's notifications, newest first.
func (h NotificationHandler) List(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications unavailable"})
		return
	}
	page := parsePositiveIntStrict(c.Query("page"), 1)
	pageSize := parsePositiveIntStrict(c.Query("page_size"), 0)
	notifications, err := h.Service.List(c.Request.Context(), p.UserID(), page, pageSize)
	if err != nil {
		h.logError("list notifications failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.MapNotifications(notifications, page))
}

// MarkAllRead flips every unread notification of the caller to read.
func (h NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications unavailable"})
		return
	}
	updated, err := h.Service.MarkAllRead(c.Request.Context(), p.UserID())
	if err != nil {
		h.logError("mark notifications read failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// UnreadCount returns the caller's unread notification count, for badges.
func (h NotificationHandler) UnreadCount(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications unavailable"})
		return
	}
	count, err := h.Service.CountUnread(c.Request.Context(), p.UserID())
	if err != nil {
		h.logError("count unread notifications failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h NotificationHandler) logError(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
}

var _ NotificationHTTP = (*NotificationHandler)(nil)

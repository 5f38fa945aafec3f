package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"socialnet/internal/app/dto"
	socialsvc "socialnet/internal/app/services/social"
	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
)

// SocialHTTP exposes follow-graph endpoints.
type SocialHTTP interface {
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
	Followers(c *gin.Context)
	Following(c *gin.Context)
	Suggestions(c *gin.Context)
}

type SocialHandler struct {
	Service *socialsvc.Service
	Logger  *slog.Logger
}

// Follow makes the caller follow the target user.
func (h SocialHandler) Follow(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "social graph unavailable"})
		return
	}
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	if err := h.Service.Follow(c.Request.Context(), p.UserID(), domainuser.ID(target)); err != nil {
		h.respondSocialError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unfollow removes the caller's follow edge to the target user.
func (h SocialHandler) Unfollow(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "social graph unavailable"})
		return
	}
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	if err := h.Service.Unfollow(c.Request.Context(), p.UserID(), domainuser.ID(target)); err != nil {
		h.respondSocialError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Followers lists the users following the target.
func (h SocialHandler) Followers(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "social graph unavailable"})
		return
	}
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	users, err := h.Service.Followers(c.Request.Context(), domainuser.ID(target))
	if err != nil {
		h.respondSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapUserSummaries(users)})
}

// Following lists the users the target follows.
func (h SocialHandler) Following(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "social graph unavailable"})
		return
	}
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	users, err := h.Service.Following(c.Request.Context(), domainuser.ID(target))
	if err != nil {
		h.respondSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapUserSummaries(users)})
}

// Suggestions proposes recently registered users the caller does not follow.
func (h SocialHandler) Suggestions(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "social graph unavailable"})
		return
	}
	limit := parsePositiveIntStrict(c.Query("limit"), 10)
	users, err := h.Service.Suggestions(c.Request.Context(), p.UserID(), limit)
	if err != nil {
		h.respondSocialError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapUserSummaries(users)})
}

func (h SocialHandler) respondSocialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domainsocial.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainsocial.ErrAlreadyFollowing),
		errors.Is(err, domainsocial.ErrNotFollowing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("social operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ SocialHTTP = (*SocialHandler)(nil)

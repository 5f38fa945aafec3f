package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"socialnet/internal/app/dto"
	profilesvc "socialnet/internal/app/services/profile"
	domainuser "socialnet/internal/domain/user"
)

// UserHTTP exposes profile endpoints.
type UserHTTP interface {
	Me(c *gin.Context)
	UpdateMe(c *gin.Context)
	SetPushToken(c *gin.Context)
	Get(c *gin.Context)
	Search(c *gin.Context)
}

type UserHandler struct {
	Service *profilesvc.Service
	Logger  *slog.Logger
}

type updateProfileRequest struct {
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
	Handle   string `json:"handle"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// Me returns the caller's own profile.
func (h UserHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	user, err := h.Service.Get(c.Request.Context(), p.UserID())
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// UpdateMe edits the caller's bio, photo and handle.
func (h UserHandler) UpdateMe(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	user, err := h.Service.Update(c.Request.Context(), p.UserID(), profilesvc.UpdateParams{
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
		Handle:   req.Handle,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// SetPushToken stores the caller's device token for push delivery. An empty
// token clears it.
func (h UserHandler) SetPushToken(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.Service.SetPushToken(c.Request.Context(), p.UserID(), strings.TrimSpace(req.Token)); err != nil {
		h.respondUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get returns another user's public profile snippet.
func (h UserHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	user, err := h.Service.Get(c.Request.Context(), domainuser.ID(id))
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserSummary(user))
}

// Search finds users by handle prefix.
func (h UserHandler) Search(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	prefix := strings.TrimSpace(c.Query("q"))
	if prefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	limit := parsePositiveIntStrict(c.Query("limit"), 20)
	users, err := h.Service.Search(c.Request.Context(), prefix, limit)
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapUserSummaries(users)})
}

func (h UserHandler) respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domainuser.ErrHandleInvalid),
		errors.Is(err, domainuser.ErrHandleRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainuser.ErrHandleAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("profile operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ UserHTTP = (*UserHandler)(nil)

package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	profilesvc "socialnet/internal/app/services/profile"
	domainuser "socialnet/internal/domain/user"
)

type AdminHTTP interface {
	BlockUser(c *gin.Context)
	UnblockUser(c *gin.Context)
}

type AdminHandler struct {
	Profiles *profilesvc.Service
	Logger   *slog.Logger
}

// BlockUser locks an account out. Existing sessions are terminated.
func (h AdminHandler) BlockUser(c *gin.Context) {
	h.setBlocked(c, true)
}

// UnblockUser restores access for a blocked account.
func (h AdminHandler) UnblockUser(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h AdminHandler) setBlocked(c *gin.Context, blocked bool) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	if h.Profiles == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles unavailable"})
		return
	}
	target := strings.TrimSpace(c.Param("id"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	if err := h.Profiles.SetBlocked(c.Request.Context(), domainuser.ID(target), blocked); err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("block state change failed", "user_id", target, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": blocked})
}

var _ AdminHTTP = (*AdminHandler)(nil)

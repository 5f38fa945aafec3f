package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"socialnet/internal/app/dto"
	contentsvc "socialnet/internal/app/services/content"
	domaincontent "socialnet/internal/domain/content"
	domainuser "socialnet/internal/domain/user"
)

// PostHTTP exposes post, comment and like endpoints.
type PostHTTP interface {
	Create(c *gin.Context)
	Feed(c *gin.Context)
	UserPosts(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	AddComment(c *gin.Context)
	DeleteComment(c *gin.Context)
	ToggleLike(c *gin.Context)
}

type PostHandler struct {
	Service *contentsvc.Service
	Logger  *slog.Logger
}

type createPostRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

// Create publishes a new post by the caller.
func (h PostHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	post, err := h.Service.CreatePost(c.Request.Context(), contentsvc.CreatePostParams{
		AuthorID: p.UserID(),
		Text:     req.Text,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Post{
		ID:           post.ID,
		AuthorID:     string(post.AuthorID),
		AuthorHandle: p.Handle,
		Text:         post.Text,
		ImageURL:     post.ImageURL,
		CreatedAt:    post.CreatedAt,
	})
}

// Feed returns the caller's timeline: own posts plus posts by followed users.
func (h PostHandler) Feed(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	page := parsePositiveIntStrict(c.Query("page"), 1)
	pageSize := parsePositiveIntStrict(c.Query("page_size"), 0)
	views, err := h.Service.Feed(c.Request.Context(), viewerFrom(p), page, pageSize)
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPostViews(views, page))
}

// UserPosts returns one user's posts when visible to the caller.
func (h PostHandler) UserPosts(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	owner := strings.TrimSpace(c.Param("id"))
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}
	page := parsePositiveIntStrict(c.Query("page"), 1)
	pageSize := parsePositiveIntStrict(c.Query("page_size"), 0)
	views, err := h.Service.UserPosts(c.Request.Context(), viewerFrom(p), domainuser.ID(owner), page, pageSize)
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPostViews(views, page))
}

// Get loads a single post with its comments.
func (h PostHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	postID := strings.TrimSpace(c.Param("id"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id is required"})
		return
	}
	view, comments, err := h.Service.GetPost(c.Request.Context(), viewerFrom(p), postID)
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PostDetail{
		Post:     dto.MapPostView(*view),
		Comments: dto.MapComments(comments),
	})
}

// Delete removes a post. Author or admin only.
func (h PostHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	postID := strings.TrimSpace(c.Param("id"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id is required"})
		return
	}
	if err := h.Service.DeletePost(c.Request.Context(), viewerFrom(p), postID); err != nil {
		h.respondContentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddComment comments on a visible post.
func (h PostHandler) AddComment(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	postID := strings.TrimSpace(c.Param("id"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id is required"})
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	comment, err := h.Service.AddComment(c.Request.Context(), viewerFrom(p), contentsvc.AddCommentParams{
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapComment(comment))
}

// DeleteComment removes a comment. Comment author, post owner or admin only.
func (h PostHandler) DeleteComment(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	postID := strings.TrimSpace(c.Param("id"))
	commentID := strings.TrimSpace(c.Param("comment_id"))
	if postID == "" || commentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id and comment id are required"})
		return
	}
	if err := h.Service.DeleteComment(c.Request.Context(), viewerFrom(p), postID, commentID); err != nil {
		h.respondContentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike likes a post or removes the caller's existing like.
func (h PostHandler) ToggleLike(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content unavailable"})
		return
	}
	postID := strings.TrimSpace(c.Param("id"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id is required"})
		return
	}
	liked, count, err := h.Service.ToggleLike(c.Request.Context(), viewerFrom(p), postID)
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

func (h PostHandler) respondContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaincontent.ErrPostNotFound),
		errors.Is(err, domaincontent.ErrCommentNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domaincontent.ErrNotVisible),
		errors.Is(err, domaincontent.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domaincontent.ErrTextRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("content operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func viewerFrom(p principal) contentsvc.Viewer {
	return contentsvc.Viewer{ID: p.UserID(), Admin: p.IsAdmin()}
}

var _ PostHTTP = (*PostHandler)(nil)

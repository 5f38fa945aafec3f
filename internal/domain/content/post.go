package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialnet/internal/domain/user"
)

var (
	ErrIDRequired      = errors.New("content: id is required")
	ErrAuthorRequired  = errors.New("content: author is required")
	ErrTextRequired    = errors.New("content: text is required")
	ErrPostNotFound    = errors.New("content: post not found")
	ErrCommentNotFound = errors.New("content: comment not found")
	ErrNotVisible      = errors.New("content: post not visible to viewer")
	ErrNotAllowed      = errors.New("content: operation not allowed")
)

type Post struct {
	ID        string
	AuthorID  user.ID
	Text      string
	ImageURL  string
	CreatedAt time.Time
}

type CreatePostParams struct {
	ID        string
	AuthorID  user.ID
	Text      string
	ImageURL  string
	CreatedAt time.Time
}

func NewPost(params CreatePostParams) (*Post, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	author := user.ID(strings.TrimSpace(string(params.AuthorID)))
	if author == "" {
		return nil, ErrAuthorRequired
	}
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, ErrTextRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Post{
		ID:        id,
		AuthorID:  author,
		Text:      text,
		ImageURL:  strings.TrimSpace(params.ImageURL),
		CreatedAt: now.UTC(),
	}, nil
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id string) (*Post, error)
	// ByAuthors returns posts by any of the given authors, newest first.
	ByAuthors(ctx context.Context, authors []user.ID, offset, limit int) ([]Post, error)
	Delete(ctx context.Context, id string) error
}

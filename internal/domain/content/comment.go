package content

import (
	"context"
	"strings"
	"time"

	"socialnet/internal/domain/user"
)

type Comment struct {
	ID        string
	PostID    string
	AuthorID  user.ID
	Text      string
	CreatedAt time.Time
}

type CreateCommentParams struct {
	ID        string
	PostID    string
	AuthorID  user.ID
	Text      string
	CreatedAt time.Time
}

func NewComment(params CreateCommentParams) (*Comment, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	postID := strings.TrimSpace(params.PostID)
	if postID == "" {
		return nil, ErrPostNotFound
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
	return &Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  author,
		Text:      text,
		CreatedAt: now.UTC(),
	}, nil
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) error
	ByID(ctx context.Context, id string) (*Comment, error)
	// ByPost returns comments for a post ordered oldest first.
	ByPost(ctx context.Context, postID string) ([]Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) error
}

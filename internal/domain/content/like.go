package content

import (
	"context"
	"time"

	"socialnet/internal/domain/user"
)

// Like is unique per (post, user); liking twice toggles the first one off.
type Like struct {
	PostID    string
	UserID    user.ID
	CreatedAt time.Time
}

type LikeRepository interface {
	Insert(ctx context.Context, like *Like) error
	Exists(ctx context.Context, postID string, userID user.ID) (bool, error)
	Delete(ctx context.Context, postID string, userID user.ID) error
	CountByPost(ctx context.Context, postID string) (int64, error)
	DeleteByPost(ctx context.Context, postID string) error
}

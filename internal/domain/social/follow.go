package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialnet/internal/domain/user"
)

var (
	ErrFollowerRequired  = errors.New("social: follower is required")
	ErrFolloweeRequired  = errors.New("social: followee is required")
	ErrSelfFollow        = errors.New("social: cannot follow yourself")
	ErrAlreadyFollowing  = errors.New("social: already following")
	ErrNotFollowing      = errors.New("social: not following")
)

// Follow is a directed edge in the social graph: FollowerID follows FolloweeID.
type Follow struct {
	FollowerID user.ID
	FolloweeID user.ID
	CreatedAt  time.Time
}

func NewFollow(follower, followee user.ID, now time.Time) (*Follow, error) {
	followerID := user.ID(strings.TrimSpace(string(follower)))
	if followerID == "" {
		return nil, ErrFollowerRequired
	}
	followeeID := user.ID(strings.TrimSpace(string(followee)))
	if followeeID == "" {
		return nil, ErrFolloweeRequired
	}
	if followerID == followeeID {
		return nil, ErrSelfFollow
	}
	if now.IsZero() {
		now = time.Now()
	}
	return &Follow{FollowerID: followerID, FolloweeID: followeeID, CreatedAt: now.UTC()}, nil
}

type Repository interface {
	// Insert adds an edge, returning ErrAlreadyFollowing on duplicates.
	Insert(ctx context.Context, follow *Follow) error
	// Delete removes an edge, returning ErrNotFollowing when absent.
	Delete(ctx context.Context, follower, followee user.ID) error
	IsFollowing(ctx context.Context, follower, followee user.ID) (bool, error)
	// Followers lists users following the given user.
	Followers(ctx context.Context, followee user.ID) ([]user.ID, error)
	// Following lists users the given user follows.
	Following(ctx context.Context, follower user.ID) ([]user.ID, error)
}

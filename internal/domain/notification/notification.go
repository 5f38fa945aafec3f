package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialnet/internal/domain/user"
)

var (
	ErrIDRequired        = errors.New("notification: id is required")
	ErrRecipientRequired = errors.New("notification: recipient is required")
	ErrActorRequired     = errors.New("notification: actor is required")
	ErrKindInvalid       = errors.New("notification: invalid kind")
)

type Kind string

const (
	KindFollow  Kind = "follow"
	KindLike    Kind = "like"
	KindComment Kind = "comment"
)

type Notification struct {
	ID          string
	RecipientID user.ID
	ActorID     user.ID
	Kind        Kind
	PostID      string
	Text        string
	Read        bool
	CreatedAt   time.Time
}

type CreateParams struct {
	ID          string
	RecipientID user.ID
	ActorID     user.ID
	Kind        Kind
	PostID      string
	Text        string
	CreatedAt   time.Time
}

func New(params CreateParams) (*Notification, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	recipient := user.ID(strings.TrimSpace(string(params.RecipientID)))
	if recipient == "" {
		return nil, ErrRecipientRequired
	}
	actor := user.ID(strings.TrimSpace(string(params.ActorID)))
	if actor == "" {
		return nil, ErrActorRequired
	}
	switch params.Kind {
	case KindFollow, KindLike, KindComment:
	default:
		return nil, ErrKindInvalid
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Notification{
		ID:          id,
		RecipientID: recipient,
		ActorID:     actor,
		Kind:        params.Kind,
		PostID:      strings.TrimSpace(params.PostID),
		Text:        strings.TrimSpace(params.Text),
		CreatedAt:   now.UTC(),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	// ByRecipient returns notifications newest first.
	ByRecipient(ctx context.Context, recipient user.ID, offset, limit int) ([]Notification, error)
	MarkAllRead(ctx context.Context, recipient user.ID) (int64, error)
	CountUnread(ctx context.Context, recipient user.ID) (int64, error)
}

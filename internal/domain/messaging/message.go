package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialnet/internal/domain/user"
)

var (
	ErrIDRequired           = errors.New("messaging: id is required")
	ErrSenderRequired       = errors.New("messaging: sender is required")
	ErrRecipientRequired    = errors.New("messaging: recipient is required")
	ErrContentRequired      = errors.New("messaging: content is required")
	ErrSelfConversation     = errors.New("messaging: cannot message yourself")
	ErrMessageNotFound      = errors.New("messaging: message not found")
	ErrConversationNotFound = errors.New("messaging: conversation not found")
	ErrNotSender            = errors.New("messaging: only the sender may delete a message")
)

// conversationKeySeparator never appears in user ids (uuids).
const conversationKeySeparator = ":"

// ConversationKey returns the identifier shared by all messages exchanged
// between the two users, regardless of direction: the lexicographically
// smaller id first, joined with a fixed separator.
func ConversationKey(a, b user.ID) string {
	first, second := string(a), string(b)
	if second < first {
		first, second = second, first
	}
	return first + conversationKeySeparator + second
}

type Message struct {
	ID              string
	SenderID        user.ID
	RecipientID     user.ID
	Content         string
	ConversationKey string
	Read            bool
	CreatedAt       time.Time
}

// Counterpart returns the other participant relative to the viewer.
func (m *Message) Counterpart(viewer user.ID) user.ID {
	if m.SenderID == viewer {
		return m.RecipientID
	}
	return m.SenderID
}

type CreateParams struct {
	ID          string
	SenderID    user.ID
	RecipientID user.ID
	Content     string
	CreatedAt   time.Time
}

func NewMessage(params CreateParams) (*Message, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	sender := user.ID(strings.TrimSpace(string(params.SenderID)))
	if sender == "" {
		return nil, ErrSenderRequired
	}
	recipient := user.ID(strings.TrimSpace(string(params.RecipientID)))
	if recipient == "" {
		return nil, ErrRecipientRequired
	}
	if sender == recipient {
		return nil, ErrSelfConversation
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Message{
		ID:              id,
		SenderID:        sender,
		RecipientID:     recipient,
		Content:         content,
		ConversationKey: ConversationKey(sender, recipient),
		Read:            false,
		CreatedAt:       now.UTC(),
	}, nil
}

// Summary is one grouped inbox row: the most recent message exchanged with a
// single counterpart, before the counterpart profile has been resolved.
type Summary struct {
	CounterpartID user.ID
	LastMessage   string
	LastSenderID  user.ID
	LastRead      bool
	LastCreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, message *Message) error
	ByID(ctx context.Context, id string) (*Message, error)
	// History returns messages for a conversation key ordered by creation
	// time ascending, offset/limit applied after ordering.
	History(ctx context.Context, key string, offset, limit int) ([]Message, error)
	// Latest returns the most recent message for a conversation key, or
	// ErrConversationNotFound when no message exists.
	Latest(ctx context.Context, key string) (*Message, error)
	// MarkReadUpTo flips read on every unread senderID->recipientID message
	// in the conversation created at or before the boundary, in one
	// conditional batch write. Returns the number of messages updated.
	MarkReadUpTo(ctx context.Context, key string, senderID, recipientID user.ID, until time.Time) (int64, error)
	// Summaries returns one row per distinct counterpart of the viewer,
	// ordered by last-message recency descending. Profile resolution and
	// pagination happen in the caller.
	Summaries(ctx context.Context, viewer user.ID) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/domain/user"
)

func TestConversationKey(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, ConversationKey("alice", "bob"), ConversationKey("bob", "alice"))
	})

	t.Run("smaller id first", func(t *testing.T) {
		assert.Equal(t, "alice:bob", ConversationKey("bob", "alice"))
		assert.Equal(t, "alice:bob", ConversationKey("alice", "bob"))
	})

	t.Run("distinct pairs get distinct keys", func(t *testing.T) {
		assert.NotEqual(t, ConversationKey("alice", "bob"), ConversationKey("alice", "carol"))
	})
}

func TestNewMessage(t *testing.T) {
	base := CreateParams{
		ID:          "m1",
		SenderID:    "alice",
		RecipientID: "bob",
		Content:     "hey",
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("valid message starts unread", func(t *testing.T) {
		m, err := NewMessage(base)
		require.NoError(t, err)
		assert.False(t, m.Read)
		assert.Equal(t, "alice:bob", m.ConversationKey)
		assert.Equal(t, "hey", m.Content)
	})

	t.Run("self conversation rejected", func(t *testing.T) {
		params := base
		params.RecipientID = params.SenderID
		_, err := NewMessage(params)
		assert.ErrorIs(t, err, ErrSelfConversation)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		params := base
		params.Content = "   "
		_, err := NewMessage(params)
		assert.ErrorIs(t, err, ErrContentRequired)
	})

	t.Run("missing recipient rejected", func(t *testing.T) {
		params := base
		params.RecipientID = ""
		_, err := NewMessage(params)
		assert.ErrorIs(t, err, ErrRecipientRequired)
	})
}

func TestMessageCounterpart(t *testing.T) {
	m := Message{SenderID: "alice", RecipientID: "bob"}
	assert.Equal(t, user.ID("bob"), m.Counterpart("alice"))
	assert.Equal(t, user.ID("alice"), m.Counterpart("bob"))
}

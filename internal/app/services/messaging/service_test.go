package messaging

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainmessaging "socialnet/internal/domain/messaging"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.MessageRepository, *memory.UserRepository) {
	t.Helper()
	messages := memory.NewMessageRepository()
	users := memory.NewUserRepository()
	svc := &Service{
		Messages: messages,
		Users:    users,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, messages, users
}

func seedUser(t *testing.T, users *memory.UserRepository, id, handle string) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        handle + "@example.com",
		Handle:       handle,
		PasswordHash: "irrelevant",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))
}

func seedMessage(t *testing.T, messages *memory.MessageRepository, id string, sender, recipient domainuser.ID, content string, at time.Time) *domainmessaging.Message {
	t.Helper()
	m, err := domainmessaging.NewMessage(domainmessaging.CreateParams{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   at,
	})
	require.NoError(t, err)
	require.NoError(t, messages.Insert(context.Background(), m))
	return m
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()

	t.Run("persists an unread message", func(t *testing.T) {
		svc, _, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")

		message, err := svc.Send(ctx, SendParams{SenderID: "alice", RecipientID: "bob", Content: "hi bob"})
		require.NoError(t, err)
		assert.False(t, message.Read)
		assert.Equal(t, "alice:bob", message.ConversationKey)

		history, err := svc.History(ctx, "bob", "alice", 1, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "hi bob", history[0].Content)
	})

	t.Run("unknown recipient rejected", func(t *testing.T) {
		svc, _, users := newService(t)
		seedUser(t, users, "alice", "alice")

		_, err := svc.Send(ctx, SendParams{SenderID: "alice", RecipientID: "ghost", Content: "anyone there"})
		assert.ErrorIs(t, err, domainuser.ErrNotFound)
	})

	t.Run("sending to self rejected", func(t *testing.T) {
		svc, _, users := newService(t)
		seedUser(t, users, "alice", "alice")

		_, err := svc.Send(ctx, SendParams{SenderID: "alice", RecipientID: "alice", Content: "note to self"})
		assert.ErrorIs(t, err, domainmessaging.ErrSelfConversation)
	})
}

func TestServiceHistory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("oldest first regardless of direction", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m2", "bob", "alice", "second", base.Add(time.Minute))
		seedMessage(t, messages, "m1", "alice", "bob", "first", base)
		seedMessage(t, messages, "m3", "alice", "bob", "third", base.Add(2*time.Minute))

		history, err := svc.History(ctx, "alice", "bob", 1, 0)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "first", history[0].Content)
		assert.Equal(t, "second", history[1].Content)
		assert.Equal(t, "third", history[2].Content)
	})

	t.Run("pagination windows the ordered result", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		for i := 0; i < 5; i++ {
			seedMessage(t, messages, string(rune('a'+i)), "alice", "bob", string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		}

		page2, err := svc.History(ctx, "alice", "bob", 2, 2)
		require.NoError(t, err)
		require.Len(t, page2, 2)
		assert.Equal(t, "c", page2[0].Content)
		assert.Equal(t, "d", page2[1].Content)

		page3, err := svc.History(ctx, "alice", "bob", 3, 2)
		require.NoError(t, err)
		require.Len(t, page3, 1)
		assert.Equal(t, "e", page3[0].Content)
	})

	t.Run("other party required", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.History(ctx, "alice", "", 1, 0)
		assert.ErrorIs(t, err, domainmessaging.ErrRecipientRequired)
	})

	t.Run("excludes other conversations", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedUser(t, users, "carol", "carol")
		seedMessage(t, messages, "m1", "alice", "bob", "for bob", base)
		seedMessage(t, messages, "m2", "alice", "carol", "for carol", base.Add(time.Minute))

		history, err := svc.History(ctx, "alice", "bob", 1, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "for bob", history[0].Content)
	})
}

func TestServiceMarkRead(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("marks inbound messages in one batch", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "bob", "alice", "one", base)
		seedMessage(t, messages, "m2", "bob", "alice", "two", base.Add(time.Minute))
		seedMessage(t, messages, "m3", "bob", "alice", "three", base.Add(2*time.Minute))

		result, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.EqualValues(t, 3, result.Updated)

		history, err := svc.History(ctx, "alice", "bob", 1, 0)
		require.NoError(t, err)
		for _, m := range history {
			assert.True(t, m.Read, "message %s should be read", m.ID)
		}
	})

	t.Run("no-op when latest message was sent by caller", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "bob", "alice", "question", base)
		seedMessage(t, messages, "m2", "alice", "bob", "answer", base.Add(time.Minute))

		result, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Zero(t, result.Updated)

		// The older inbound message stays unread.
		m1, err := messages.ByID(ctx, "m1")
		require.NoError(t, err)
		assert.False(t, m1.Read)
	})

	t.Run("leaves the opposite direction untouched", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "alice", "bob", "outbound", base)
		seedMessage(t, messages, "m2", "bob", "alice", "inbound", base.Add(time.Minute))

		result, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.EqualValues(t, 1, result.Updated)

		outbound, err := messages.ByID(ctx, "m1")
		require.NoError(t, err)
		assert.False(t, outbound.Read, "bob has not read alice's message")
	})

	t.Run("repeated call changes nothing", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "bob", "alice", "hello", base)

		first, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, first.Changed)

		second, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, second.Changed)
		assert.Zero(t, second.Updated)
	})

	t.Run("empty conversation", func(t *testing.T) {
		svc, _, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")

		_, err := svc.MarkRead(ctx, "alice", "bob")
		assert.ErrorIs(t, err, domainmessaging.ErrConversationNotFound)
	})
}

func TestServiceInbox(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("one row per counterpart, most recent first", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedUser(t, users, "carol", "carol")
		seedMessage(t, messages, "m1", "alice", "bob", "old to bob", base)
		seedMessage(t, messages, "m2", "bob", "alice", "latest with bob", base.Add(3*time.Minute))
		seedMessage(t, messages, "m3", "carol", "alice", "from carol", base.Add(time.Minute))

		rows, err := svc.Inbox(ctx, "alice", 1, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, domainuser.ID("bob"), rows[0].Counterpart.ID)
		assert.Equal(t, "latest with bob", rows[0].LastMessage)
		assert.Equal(t, domainuser.ID("bob"), rows[0].LastSenderID)
		assert.False(t, rows[0].LastRead)
		assert.Equal(t, domainuser.ID("carol"), rows[1].Counterpart.ID)
		assert.Equal(t, "bob", rows[0].Counterpart.Handle)
	})

	t.Run("read flag reflects the latest message", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "bob", "alice", "ping", base)

		_, err := svc.MarkRead(ctx, "alice", "bob")
		require.NoError(t, err)

		rows, err := svc.Inbox(ctx, "alice", 1, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].LastRead)
	})

	t.Run("drops rows with missing counterpart profile", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "bob", "alice", "from bob", base)
		// No profile stored for this sender.
		seedMessage(t, messages, "m2", "deleted-user", "alice", "orphaned", base.Add(time.Minute))

		rows, err := svc.Inbox(ctx, "alice", 1, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domainuser.ID("bob"), rows[0].Counterpart.ID)
	})

	t.Run("paginates after dropping unresolved counterparts", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "viewer", "viewer")
		counterparts := []string{"u1", "u2", "u3", "u4", "u5"}
		for i, id := range counterparts {
			seedUser(t, users, id, id+"handle")
			seedMessage(t, messages, "m"+id, domainuser.ID(id), "viewer", "hi", base.Add(time.Duration(i)*time.Minute))
		}

		page1, err := svc.Inbox(ctx, "viewer", 1, 2)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		assert.Equal(t, domainuser.ID("u5"), page1[0].Counterpart.ID)
		assert.Equal(t, domainuser.ID("u4"), page1[1].Counterpart.ID)

		page2, err := svc.Inbox(ctx, "viewer", 2, 2)
		require.NoError(t, err)
		require.Len(t, page2, 2)
		assert.Equal(t, domainuser.ID("u3"), page2[0].Counterpart.ID)
		assert.Equal(t, domainuser.ID("u2"), page2[1].Counterpart.ID)

		page3, err := svc.Inbox(ctx, "viewer", 3, 2)
		require.NoError(t, err)
		require.Len(t, page3, 1)

		empty, err := svc.Inbox(ctx, "viewer", 4, 2)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("empty inbox", func(t *testing.T) {
		svc, _, users := newService(t)
		seedUser(t, users, "alice", "alice")

		rows, err := svc.Inbox(ctx, "alice", 1, 0)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sender deletes own message", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "alice", "bob", "oops", base)

		require.NoError(t, svc.Delete(ctx, "alice", "m1"))

		history, err := svc.History(ctx, "alice", "bob", 1, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("recipient cannot delete", func(t *testing.T) {
		svc, messages, users := newService(t)
		seedUser(t, users, "alice", "alice")
		seedUser(t, users, "bob", "bob")
		seedMessage(t, messages, "m1", "alice", "bob", "keep", base)

		err := svc.Delete(ctx, "bob", "m1")
		assert.ErrorIs(t, err, domainmessaging.ErrNotSender)

		_, err = messages.ByID(ctx, "m1")
		assert.NoError(t, err)
	})

	t.Run("unknown message", func(t *testing.T) {
		svc, _, _ := newService(t)
		err := svc.Delete(ctx, "alice", "nope")
		assert.ErrorIs(t, err, domainmessaging.ErrMessageNotFound)
	})
}

// Exercises a full exchange the way two clients would drive it.
func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newService(t)
	seedUser(t, users, "alice", "alice")
	seedUser(t, users, "bob", "bob")

	_, err := svc.Send(ctx, SendParams{SenderID: "alice", RecipientID: "bob", Content: "hi bob"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, SendParams{SenderID: "alice", RecipientID: "bob", Content: "are you there?"})
	require.NoError(t, err)

	// Bob sees one unread conversation from alice.
	inbox, err := svc.Inbox(ctx, "bob", 1, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domainuser.ID("alice"), inbox[0].Counterpart.ID)
	assert.Equal(t, "are you there?", inbox[0].LastMessage)
	assert.False(t, inbox[0].LastRead)

	// Bob opens the thread and marks it read.
	result, err := svc.MarkRead(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.EqualValues(t, 2, result.Updated)

	// Bob replies; alice's inbox now shows bob's unread reply on top.
	reply, err := svc.Send(ctx, SendParams{SenderID: "bob", RecipientID: "alice", Content: "here now"})
	require.NoError(t, err)

	aliceInbox, err := svc.Inbox(ctx, "alice", 1, 0)
	require.NoError(t, err)
	require.Len(t, aliceInbox, 1)
	assert.Equal(t, "here now", aliceInbox[0].LastMessage)
	assert.Equal(t, domainuser.ID("bob"), aliceInbox[0].LastSenderID)
	assert.False(t, aliceInbox[0].LastRead)

	// Bob retracts the reply; the thread falls back to the earlier exchange.
	require.NoError(t, svc.Delete(ctx, "bob", reply.ID))
	aliceInbox, err = svc.Inbox(ctx, "alice", 1, 0)
	require.NoError(t, err)
	require.Len(t, aliceInbox, 1)
	assert.Equal(t, "are you there?", aliceInbox[0].LastMessage)
}

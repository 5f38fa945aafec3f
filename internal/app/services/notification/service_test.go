package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainnotification "socialnet/internal/domain/notification"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/storage/memory"
)

type pushRecorder struct {
	sent []string
	err  error
}

func (p *pushRecorder) Send(_ context.Context, token, _, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, token)
	return nil
}

type eventRecorder struct {
	topics   []string
	keys     []string
	payloads [][]byte
}

func (e *eventRecorder) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	e.topics = append(e.topics, topic)
	e.keys = append(e.keys, key)
	e.payloads = append(e.payloads, payload)
	return nil
}

type testDeps struct {
	svc      *Service
	users    *memory.UserRepository
	push     *pushRecorder
	producer *eventRecorder
}

func newDeps(t *testing.T) testDeps {
	t.Helper()
	d := testDeps{
		users:    memory.NewUserRepository(),
		push:     &pushRecorder{},
		producer: &eventRecorder{},
	}
	d.svc = &Service{
		Notifications: memory.NewNotificationRepository(),
		Users:         d.users,
		Push:          d.push,
		Producer:      d.producer,
		TopicPrefix:   "dev.",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return d
}

func (d testDeps) addUser(t *testing.T, id, pushToken string) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Handle:       id,
		PasswordHash: "irrelevant",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	u.SetPushToken(pushToken, time.Now())
	require.NoError(t, d.users.Save(context.Background(), u))
}

func TestNotifyFollow(t *testing.T) {
	ctx := context.Background()

	t.Run("stores, pushes and publishes", func(t *testing.T) {
		d := newDeps(t)
		d.addUser(t, "actor", "")
		d.addUser(t, "recipient", "device-token")

		require.NoError(t, d.svc.NotifyFollow(ctx, "recipient", "actor"))

		list, err := d.svc.List(ctx, "recipient", 1, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domainnotification.KindFollow, list[0].Kind)
		assert.Equal(t, "@actor started following you", list[0].Text)
		assert.False(t, list[0].Read)

		assert.Equal(t, []string{"device-token"}, d.push.sent)
		require.Len(t, d.producer.topics, 1)
		assert.Equal(t, "dev.notification.created", d.producer.topics[0])
		assert.Equal(t, "recipient", d.producer.keys[0])

		var event map[string]any
		require.NoError(t, json.Unmarshal(d.producer.payloads[0], &event))
		assert.Equal(t, "follow", event["kind"])
		assert.Equal(t, "recipient", event["recipient_id"])
	})

	t.Run("self notification skipped", func(t *testing.T) {
		d := newDeps(t)
		d.addUser(t, "actor", "token")

		require.NoError(t, d.svc.NotifyFollow(ctx, "actor", "actor"))

		list, err := d.svc.List(ctx, "actor", 1, 0)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, d.push.sent)
	})

	t.Run("push failure does not fail dispatch", func(t *testing.T) {
		d := newDeps(t)
		d.push.err = errors.New("gateway down")
		d.addUser(t, "actor", "")
		d.addUser(t, "recipient", "token")

		require.NoError(t, d.svc.NotifyFollow(ctx, "recipient", "actor"))
		list, err := d.svc.List(ctx, "recipient", 1, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("no push without a device token", func(t *testing.T) {
		d := newDeps(t)
		d.addUser(t, "actor", "")
		d.addUser(t, "recipient", "")

		require.NoError(t, d.svc.NotifyFollow(ctx, "recipient", "actor"))
		assert.Empty(t, d.push.sent)
	})
}

func TestNotifyComment(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t)
	d.addUser(t, "actor", "")
	d.addUser(t, "recipient", "")

	require.NoError(t, d.svc.NotifyComment(ctx, "recipient", "actor", "post-1", "great point"))

	list, err := d.svc.List(ctx, "recipient", 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domainnotification.KindComment, list[0].Kind)
	assert.Equal(t, "post-1", list[0].PostID)
	assert.Equal(t, "@actor: great point", list[0].Text)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t)
	d.addUser(t, "actor", "")
	d.addUser(t, "recipient", "")

	require.NoError(t, d.svc.NotifyFollow(ctx, "recipient", "actor"))
	require.NoError(t, d.svc.NotifyLike(ctx, "recipient", "actor", "post-1"))

	unread, err := d.svc.CountUnread(ctx, "recipient")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	updated, err := d.svc.MarkAllRead(ctx, "recipient")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	unread, err = d.svc.CountUnread(ctx, "recipient")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

package social

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/storage/memory"
)

type followRecorder struct {
	calls []domainuser.ID
}

func (r *followRecorder) NotifyFollow(_ context.Context, recipient, _ domainuser.ID) error {
	r.calls = append(r.calls, recipient)
	return nil
}

func newSocialService(t *testing.T) (*Service, *memory.UserRepository, *followRecorder) {
	t.Helper()
	users := memory.NewUserRepository()
	recorder := &followRecorder{}
	svc := &Service{
		Follows:  memory.NewFollowRepository(),
		Users:    users,
		Notifier: recorder,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, users, recorder
}

func addUser(t *testing.T, users *memory.UserRepository, id string, createdAt time.Time) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Handle:       id,
		PasswordHash: "irrelevant",
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))
}

func TestFollow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates edge and notifies followee", func(t *testing.T) {
		svc, users, recorder := newSocialService(t)
		addUser(t, users, "alice", now)
		addUser(t, users, "bob", now)

		require.NoError(t, svc.Follow(ctx, "alice", "bob"))
		following, err := svc.IsFollowing(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, following)
		assert.Equal(t, []domainuser.ID{"bob"}, recorder.calls)

		// Directed: bob does not follow alice.
		reverse, err := svc.IsFollowing(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.False(t, reverse)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		svc, users, _ := newSocialService(t)
		addUser(t, users, "alice", now)
		err := svc.Follow(ctx, "alice", "alice")
		assert.ErrorIs(t, err, domainsocial.ErrSelfFollow)
	})

	t.Run("duplicate follow rejected", func(t *testing.T) {
		svc, users, _ := newSocialService(t)
		addUser(t, users, "alice", now)
		addUser(t, users, "bob", now)
		require.NoError(t, svc.Follow(ctx, "alice", "bob"))
		err := svc.Follow(ctx, "alice", "bob")
		assert.ErrorIs(t, err, domainsocial.ErrAlreadyFollowing)
	})

	t.Run("unknown followee rejected", func(t *testing.T) {
		svc, users, _ := newSocialService(t)
		addUser(t, users, "alice", now)
		err := svc.Follow(ctx, "alice", "ghost")
		assert.ErrorIs(t, err, domainuser.ErrNotFound)
	})
}

func TestUnfollow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	svc, users, _ := newSocialService(t)
	addUser(t, users, "alice", now)
	addUser(t, users, "bob", now)
	require.NoError(t, svc.Follow(ctx, "alice", "bob"))
	require.NoError(t, svc.Unfollow(ctx, "alice", "bob"))

	following, err := svc.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, following)

	err = svc.Unfollow(ctx, "alice", "bob")
	assert.ErrorIs(t, err, domainsocial.ErrNotFollowing)
}

func TestFollowerListings(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	svc, users, _ := newSocialService(t)
	addUser(t, users, "alice", now)
	addUser(t, users, "bob", now)
	addUser(t, users, "carol", now)
	require.NoError(t, svc.Follow(ctx, "alice", "carol"))
	require.NoError(t, svc.Follow(ctx, "bob", "carol"))
	require.NoError(t, svc.Follow(ctx, "carol", "alice"))

	followers, err := svc.Followers(ctx, "carol")
	require.NoError(t, err)
	ids := make([]domainuser.ID, 0, len(followers))
	for _, u := range followers {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []domainuser.ID{"alice", "bob"}, ids)

	following, err := svc.Following(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, domainuser.ID("alice"), following[0].ID)
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	svc, users, _ := newSocialService(t)
	addUser(t, users, "viewer", base)
	addUser(t, users, "followed", base.Add(time.Hour))
	addUser(t, users, "fresh", base.Add(2*time.Hour))
	require.NoError(t, svc.Follow(ctx, "viewer", "followed"))

	suggestions, err := svc.Suggestions(ctx, "viewer", 10)
	require.NoError(t, err)
	ids := make([]domainuser.ID, 0, len(suggestions))
	for _, u := range suggestions {
		ids = append(ids, u.ID)
	}
	assert.Contains(t, ids, domainuser.ID("fresh"))
	assert.NotContains(t, ids, domainuser.ID("viewer"))
	assert.NotContains(t, ids, domainuser.ID("followed"))
}

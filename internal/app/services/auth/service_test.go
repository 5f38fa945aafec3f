package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "socialnet/internal/domain/auth"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/security"
	"socialnet/internal/infra/storage/memory"
)

func newAuthService(t *testing.T) (*Service, *memory.UserRepository, *memory.SessionStore) {
	t.Helper()
	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	svc := &Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return svc, users, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and session", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		result, err := svc.Register(ctx, RegisterParams{
			Email:    "Alice@Example.com",
			Handle:   "alice",
			Password: "correct horse",
			Bio:      "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", result.User.Email)
		assert.Equal(t, domainuser.RoleUser, result.User.Role)
		assert.NotEmpty(t, result.Token)

		resolved, err := svc.ResolveToken(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, resolved.User.ID)
	})

	t.Run("short password rejected", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "short"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "other", Password: "longenough"})
		assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	})

	t.Run("duplicate handle rejected", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, RegisterParams{Email: "x@y.z", Handle: "Alice", Password: "longenough"})
		assert.ErrorIs(t, err, domainuser.ErrHandleAlreadyUsed)
	})

	t.Run("invalid handle rejected", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "no spaces!", Password: "longenough"})
		assert.ErrorIs(t, err, domainuser.ErrHandleInvalid)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a fresh token", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)

		login, err := svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "longenough"})
		require.NoError(t, err)
		assert.NotEmpty(t, login.Token)
		assert.NotEqual(t, registered.Token, login.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "not it"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Login(ctx, LoginParams{Email: "nobody@b.c", Password: "longenough"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blocked user cannot log in", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)

		blocked := registered.User
		blocked.SetBlocked(true, time.Now())
		require.NoError(t, users.Save(ctx, blocked))

		_, err = svc.Login(ctx, LoginParams{Email: "a@b.c", Password: "longenough"})
		assert.ErrorIs(t, err, ErrUserBlocked)
	})
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked user loses existing sessions", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)

		blocked := registered.User
		blocked.SetBlocked(true, time.Now())
		require.NoError(t, users.Save(ctx, blocked))

		_, err = svc.ResolveToken(ctx, registered.Token)
		assert.ErrorIs(t, err, ErrUserBlocked)

		// The session is gone even after an unblock.
		blocked.SetBlocked(false, time.Now())
		require.NoError(t, users.Save(ctx, blocked))
		_, err = svc.ResolveToken(ctx, registered.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		registered, err := svc.Register(ctx, RegisterParams{Email: "a@b.c", Handle: "alice", Password: "longenough"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, registered.Token))
		_, err = svc.ResolveToken(ctx, registered.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("empty token", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.ResolveToken(ctx, "  ")
		assert.ErrorIs(t, err, domainauth.ErrTokenRequired)
	})
}

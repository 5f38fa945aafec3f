package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainauth "socialnet/internal/domain/auth"
	domainuser "socialnet/internal/domain/user"
)

// Service covers profile reads and edits, push-token refresh and the admin
// block switch.
type Service struct {
	Users    domainuser.Repository
	Sessions domainauth.SessionStore
	Logger   *slog.Logger
}

func (s *Service) Get(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	if s.Users == nil {
		return nil, errors.New("profile: user repository required")
	}
	return s.Users.ByID(ctx, id)
}

type UpdateParams struct {
	Bio      string
	PhotoURL string
	Handle   string
}

// Update edits the caller's own profile. An empty handle keeps the current one.
func (s *Service) Update(ctx context.Context, caller domainuser.ID, params UpdateParams) (*domainuser.User, error) {
	user, err := s.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user.UpdateProfile(params.Bio, params.PhotoURL, now)
	if params.Handle != "" && params.Handle != user.Handle {
		if err := user.Rename(params.Handle, now); err != nil {
			return nil, err
		}
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("profile updated", "user_id", user.ID)
	}
	return user, nil
}

// SetPushToken refreshes the caller's device token; empty clears it.
func (s *Service) SetPushToken(ctx context.Context, caller domainuser.ID, token string) error {
	user, err := s.Get(ctx, caller)
	if err != nil {
		return err
	}
	user.SetPushToken(token, time.Now())
	return s.Users.Save(ctx, user)
}

func (s *Service) Search(ctx context.Context, prefix string, limit int) ([]*domainuser.User, error) {
	if s.Users == nil {
		return nil, errors.New("profile: user repository required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.Users.SearchByHandle(ctx, prefix, limit)
}

// SetBlocked toggles the admin block. Blocking also terminates the user's
// sessions so the change takes effect immediately.
func (s *Service) SetBlocked(ctx context.Context, target domainuser.ID, blocked bool) error {
	user, err := s.Get(ctx, target)
	if err != nil {
		return err
	}
	user.SetBlocked(blocked, time.Now())
	if err := s.Users.Save(ctx, user); err != nil {
		return err
	}
	if blocked && s.Sessions != nil {
		if err := s.Sessions.DeleteByUser(ctx, user.ID); err != nil && s.Logger != nil {
			s.Logger.Warn("failed to clear sessions for blocked user", "user_id", user.ID, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("user block state changed", "user_id", user.ID, "blocked", blocked)
	}
	return nil
}

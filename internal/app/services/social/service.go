package social

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
)

// Notifier is the slice of the notification dispatcher the social graph needs.
type Notifier interface {
	NotifyFollow(ctx context.Context, recipient, actor domainuser.ID) error
}

// Service maintains the directed follow graph.
type Service struct {
	Follows  domainsocial.Repository
	Users    domainuser.Repository
	Notifier Notifier
	Logger   *slog.Logger
}

func (s *Service) Follow(ctx context.Context, follower, followee domainuser.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if _, err := s.Users.ByID(ctx, followee); err != nil {
		return err
	}
	follow, err := domainsocial.NewFollow(follower, followee, time.Now())
	if err != nil {
		return err
	}
	if err := s.Follows.Insert(ctx, follow); err != nil {
		return err
	}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyFollow(ctx, followee, follower); err != nil && s.Logger != nil {
			s.Logger.Warn("follow notification failed", "follower_id", follower, "followee_id", followee, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("follow created", "follower_id", follower, "followee_id", followee)
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, follower, followee domainuser.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if err := s.Follows.Delete(ctx, follower, followee); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("follow removed", "follower_id", follower, "followee_id", followee)
	}
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, follower, followee domainuser.ID) (bool, error) {
	if err := s.ensureDependencies(); err != nil {
		return false, err
	}
	return s.Follows.IsFollowing(ctx, follower, followee)
}

func (s *Service) Followers(ctx context.Context, userID domainuser.ID) ([]*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	ids, err := s.Follows.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

func (s *Service) Following(ctx context.Context, userID domainuser.ID) ([]*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	ids, err := s.Follows.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

// Suggestions returns recently registered users the caller does not follow
// yet, excluding the caller.
func (s *Service) Suggestions(ctx context.Context, caller domainuser.ID, limit int) ([]*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	following, err := s.Follows.Following(ctx, caller)
	if err != nil {
		return nil, err
	}
	followed := make(map[domainuser.ID]struct{}, len(following))
	for _, id := range following {
		followed[id] = struct{}{}
	}
	// Over-fetch so filtering self and already-followed users still fills
	// the requested count.
	candidates, err := s.Users.Recent(ctx, limit+len(followed)+1)
	if err != nil {
		return nil, err
	}
	suggestions := make([]*domainuser.User, 0, limit)
	for _, candidate := range candidates {
		if candidate.ID == caller || candidate.Blocked {
			continue
		}
		if _, ok := followed[candidate.ID]; ok {
			continue
		}
		suggestions = append(suggestions, candidate)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

func (s *Service) resolve(ctx context.Context, ids []domainuser.ID) ([]*domainuser.User, error) {
	users := make([]*domainuser.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.Users.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Follows == nil:
		return errors.New("social: follow repository required")
	case s.Users == nil:
		return errors.New("social: user repository required")
	default:
		return nil
	}
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
)

// FollowRepository keeps the follow graph in memory.
type FollowRepository struct {
	mu    sync.RWMutex
	edges map[edgeKey]time.Time
}

type edgeKey struct {
	follower domainuser.ID
	followee domainuser.ID
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[edgeKey]time.Time)}
}

func (r *FollowRepository) Insert(ctx context.Context, follow *domainsocial.Follow) error {
	if follow == nil {
		return domainsocial.ErrFollowerRequired
	}
	key := edgeKey{follower: follow.FollowerID, followee: follow.FolloweeID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.edges[key]; ok {
		return domainsocial.ErrAlreadyFollowing
	}
	r.edges[key] = follow.CreatedAt
	return nil
}

func (r *FollowRepository) Delete(ctx context.Context, follower, followee domainuser.ID) error {
	key := edgeKey{follower: follower, followee: followee}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.edges[key]; !ok {
		return domainsocial.ErrNotFollowing
	}
	delete(r.edges, key)
	return nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, follower, followee domainuser.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.edges[edgeKey{follower: follower, followee: followee}]
	return ok, nil
}

func (r *FollowRepository) Followers(ctx context.Context, followee domainuser.ID) ([]domainuser.ID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []domainuser.ID
	for key := range r.edges {
		if key.followee == followee {
			ids = append(ids, key.follower)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r *FollowRepository) Following(ctx context.Context, follower domainuser.ID) ([]domainuser.ID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []domainuser.ID
	for key := range r.edges {
		if key.follower == follower {
			ids = append(ids, key.followee)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func sortIDs(ids []domainuser.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

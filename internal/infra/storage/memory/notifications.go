package memory

import (
	"context"
	"sort"
	"sync"

	domainnotification "socialnet/internal/domain/notification"
	domainuser "socialnet/internal/domain/user"
)

// NotificationRepository keeps in-app notifications in memory.
type NotificationRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainnotification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byID: make(map[string]*domainnotification.Notification)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domainnotification.Notification) error {
	if n == nil || n.ID == "" {
		return domainnotification.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyNotification := *n
	r.byID[n.ID] = &copyNotification
	return nil
}

func (r *NotificationRepository) ByRecipient(ctx context.Context, recipient domainuser.ID, offset, limit int) ([]domainnotification.Notification, error) {
	r.mu.RLock()
	var notifications []domainnotification.Notification
	for _, n := range r.byID {
		if n.RecipientID == recipient {
			notifications = append(notifications, *n)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(notifications) {
			return nil, nil
		}
		notifications = notifications[offset:]
	}
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient domainuser.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var modified int64
	for _, n := range r.byID {
		if n.RecipientID == recipient && !n.Read {
			n.Read = true
			modified++
		}
	}
	return modified, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient domainuser.ID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.byID {
		if n.RecipientID == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

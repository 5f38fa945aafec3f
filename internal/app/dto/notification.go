package dto

import (
	"time"

	domainnotification "socialnet/internal/domain/notification"
)

type Notification struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Kind      string    `json:"kind"`
	PostID    string    `json:"post_id,omitempty"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationList struct {
	Items []Notification `json:"items"`
	Page  int            `json:"page"`
}

func MapNotifications(notifications []domainnotification.Notification, page int) NotificationList {
	list := NotificationList{Items: make([]Notification, 0, len(notifications)), Page: page}
	for _, n := range notifications {
		list.Items = append(list.Items, Notification{
			ID:        n.ID,
			ActorID:   string(n.ActorID),
			Kind:      string(n.Kind),
			PostID:    n.PostID,
			Text:      n.Text,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return list
}

package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainnotification "socialnet/internal/domain/notification"
	domainuser "socialnet/internal/domain/user"
)

// PushSender delivers a push to a single device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

// EventProducer publishes notification events to the broker.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

const eventTopic = "notification.created"

// Service persists in-app notifications and fans them out best-effort to the
// push gateway and the event broker. Fan-out failures are logged, never
// returned; the stored notification is the source of truth.
type Service struct {
	Notifications domainnotification.Repository
	Users         domainuser.Repository
	Push          PushSender
	Producer      EventProducer
	TopicPrefix   string
	Logger        *slog.Logger
}

func (s *Service) NotifyFollow(ctx context.Context, recipient, actor domainuser.ID) error {
	return s.dispatch(ctx, domainnotification.CreateParams{
		RecipientID: recipient,
		ActorID:     actor,
		Kind:        domainnotification.KindFollow,
	})
}

func (s *Service) NotifyLike(ctx context.Context, recipient, actor domainuser.ID, postID string) error {
	return s.dispatch(ctx, domainnotification.CreateParams{
		RecipientID: recipient,
		ActorID:     actor,
		Kind:        domainnotification.KindLike,
		PostID:      postID,
	})
}

func (s *Service) NotifyComment(ctx context.Context, recipient, actor domainuser.ID, postID, excerpt string) error {
	return s.dispatch(ctx, domainnotification.CreateParams{
		RecipientID: recipient,
		ActorID:     actor,
		Kind:        domainnotification.KindComment,
		PostID:      postID,
		Text:        excerpt,
	})
}

func (s *Service) dispatch(ctx context.Context, params domainnotification.CreateParams) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if params.RecipientID == params.ActorID {
		return nil
	}
	actor, err := s.Users.ByID(ctx, params.ActorID)
	if err != nil {
		return err
	}
	params.ID = uuid.NewString()
	params.CreatedAt = time.Now()
	if params.Text == "" {
		params.Text = defaultText(params.Kind, actor.Handle)
	} else {
		params.Text = fmt.Sprintf("@%s: %s", actor.Handle, params.Text)
	}
	n, err := domainnotification.New(params)
	if err != nil {
		return err
	}
	if err := s.Notifications.Insert(ctx, n); err != nil {
		return err
	}

	s.sendPush(ctx, n)
	s.publishEvent(ctx, n)
	return nil
}

func (s *Service) List(ctx context.Context, recipient domainuser.ID, page, pageSize int) ([]domainnotification.Notification, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.Notifications.ByRecipient(ctx, recipient, (page-1)*pageSize, pageSize)
}

func (s *Service) MarkAllRead(ctx context.Context, recipient domainuser.ID) (int64, error) {
	if err := s.ensureDependencies(); err != nil {
		return 0, err
	}
	return s.Notifications.MarkAllRead(ctx, recipient)
}

func (s *Service) CountUnread(ctx context.Context, recipient domainuser.ID) (int64, error) {
	if err := s.ensureDependencies(); err != nil {
		return 0, err
	}
	return s.Notifications.CountUnread(ctx, recipient)
}

func (s *Service) sendPush(ctx context.Context, n *domainnotification.Notification) {
	if s.Push == nil {
		return
	}
	recipient, err := s.Users.ByID(ctx, n.RecipientID)
	if err != nil || recipient.PushToken == "" {
		return
	}
	if err := s.Push.Send(ctx, recipient.PushToken, pushTitle(n.Kind), n.Text); err != nil && s.Logger != nil {
		s.Logger.Warn("push delivery failed", "notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, n *domainnotification.Notification) {
	if s.Producer == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"id":           n.ID,
		"recipient_id": n.RecipientID,
		"actor_id":     n.ActorID,
		"kind":         n.Kind,
		"post_id":      n.PostID,
		"created_at":   n.CreatedAt,
	})
	if err != nil {
		return
	}
	topic := s.TopicPrefix + eventTopic
	err = s.Producer.Publish(ctx, topic, string(n.RecipientID), payload, map[string]string{
		"content-type": "application/json",
	})
	if err != nil && s.Logger != nil {
		s.Logger.Warn("notification event publish failed", "notification_id", n.ID, "topic", topic, "error", err)
	}
}

func defaultText(kind domainnotification.Kind, actorHandle string) string {
	switch kind {
	case domainnotification.KindFollow:
		return fmt.Sprintf("@%s started following you", actorHandle)
	case domainnotification.KindLike:
		return fmt.Sprintf("@%s liked your post", actorHandle)
	case domainnotification.KindComment:
		return fmt.Sprintf("@%s commented on your post", actorHandle)
	default:
		return ""
	}
}

func pushTitle(kind domainnotification.Kind) string {
	switch kind {
	case domainnotification.KindFollow:
		return "New follower"
	case domainnotification.KindLike:
		return "New like"
	case domainnotification.KindComment:
		return "New comment"
	default:
		return "Notification"
	}
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Notifications == nil:
		return errors.New("notification: repository required")
	case s.Users == nil:
		return errors.New("notification: user repository required")
	default:
		return nil
	}
}

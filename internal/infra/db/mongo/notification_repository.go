package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnotification "socialnet/internal/domain/notification"
	domainuser "socialnet/internal/domain/user"
)

type NotificationRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewNotificationRepository(client *Client) *NotificationRepository {
	return &NotificationRepository{client: client, col: client.DB.Collection("notifications")}
}

func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domainnotification.Notification) error {
	doc := notificationDocument{
		ID:          n.ID,
		RecipientID: string(n.RecipientID),
		ActorID:     string(n.ActorID),
		Kind:        string(n.Kind),
		PostID:      n.PostID,
		Text:        n.Text,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.UnixMilli(),
	}
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		return err
	})
}

func (r *NotificationRepository) ByRecipient(ctx context.Context, recipient domainuser.ID, offset, limit int) ([]domainnotification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	var docs []notificationDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, bson.M{"recipient_id": string(recipient)}, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	notifications := make([]domainnotification.Notification, 0, len(docs))
	for _, doc := range docs {
		notifications = append(notifications, doc.toNotification())
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient domainuser.ID) (int64, error) {
	var modified int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		res, err := r.col.UpdateMany(ctx,
			bson.M{"recipient_id": string(recipient), "read": false},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			return err
		}
		modified = res.ModifiedCount
		return nil
	})
	return modified, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient domainuser.ID) (int64, error) {
	var count int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		n, err := r.col.CountDocuments(ctx, bson.M{"recipient_id": string(recipient), "read": false})
		count = n
		return err
	})
	return count, err
}

type notificationDocument struct {
	ID          string `bson:"_id"`
	RecipientID string `bson:"recipient_id"`
	ActorID     string `bson:"actor_id"`
	Kind        string `bson:"kind"`
	PostID      string `bson:"post_id,omitempty"`
	Text        string `bson:"text"`
	Read        bool   `bson:"read"`
	CreatedAt   int64  `bson:"created_at"`
}

func (d notificationDocument) toNotification() domainnotification.Notification {
	return domainnotification.Notification{
		ID:          d.ID,
		RecipientID: domainuser.ID(d.RecipientID),
		ActorID:     domainuser.ID(d.ActorID),
		Kind:        domainnotification.Kind(d.Kind),
		PostID:      d.PostID,
		Text:        d.Text,
		Read:        d.Read,
		CreatedAt:   timestampToTime(d.CreatedAt),
	}
}

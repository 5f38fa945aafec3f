package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainmessaging "socialnet/internal/domain/messaging"
	domainuser "socialnet/internal/domain/user"
)

type MessageRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{client: client, col: client.DB.Collection("messages")}
}

// EnsureIndexes creates the conversation and participant indexes the
// history and inbox queries rely on.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_key", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MessageRepository) Insert(ctx context.Context, message *domainmessaging.Message) error {
	doc := newMessageDocument(message)
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		return err
	})
}

func (r *MessageRepository) ByID(ctx context.Context, id string) (*domainmessaging.Message, error) {
	var doc messageDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmessaging.ErrMessageNotFound
		}
		return nil, err
	}
	return doc.toMessage(), nil
}

func (r *MessageRepository) History(ctx context.Context, key string, offset, limit int) ([]domainmessaging.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	var docs []messageDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, bson.M{"conversation_key": key}, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	messages := make([]domainmessaging.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, *doc.toMessage())
	}
	return messages, nil
}

func (r *MessageRepository) Latest(ctx context.Context, key string) (*domainmessaging.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc messageDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{"conversation_key": key}, opts).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainmessaging.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toMessage(), nil
}

// MarkReadUpTo is a single conditional batch update: only unread messages in
// the given direction created at or before the boundary are flipped, so a
// message arriving concurrently with a newer timestamp stays unread.
func (r *MessageRepository) MarkReadUpTo(ctx context.Context, key string, senderID, recipientID domainuser.ID, until time.Time) (int64, error) {
	filter := bson.M{
		"conversation_key": key,
		"sender_id":        string(senderID),
		"recipient_id":     string(recipientID),
		"read":             false,
		"created_at":       bson.M{"$lte": until.UnixMilli()},
	}
	var modified int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
		if err != nil {
			return err
		}
		modified = res.ModifiedCount
		return nil
	})
	return modified, err
}

// Summaries groups the viewer's messages by counterpart. Sorting by
// created_at descending before $group makes $first pick the most recent
// message of each conversation; the trailing sort restores global recency
// order across groups.
func (r *MessageRepository) Summaries(ctx context.Context, viewer domainuser.ID) ([]domainmessaging.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender_id": string(viewer)},
			bson.M{"recipient_id": string(viewer)},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", string(viewer)}},
				"$recipient_id",
				"$sender_id",
			}},
			"last_message":    bson.M{"$first": "$content"},
			"last_sender_id":  bson.M{"$first": "$sender_id"},
			"last_read":       bson.M{"$first": "$read"},
			"last_created_at": bson.M{"$first": "$created_at"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_created_at", Value: -1}}}},
	}
	var docs []summaryDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	summaries := make([]domainmessaging.Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, domainmessaging.Summary{
			CounterpartID: domainuser.ID(doc.CounterpartID),
			LastMessage:   doc.LastMessage,
			LastSenderID:  domainuser.ID(doc.LastSenderID),
			LastRead:      doc.LastRead,
			LastCreatedAt: timestampToTime(doc.LastCreatedAt),
		})
	}
	return summaries, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	var deleted int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domainmessaging.ErrMessageNotFound
	}
	return nil
}

type messageDocument struct {
	ID              string `bson:"_id"`
	SenderID        string `bson:"sender_id"`
	RecipientID     string `bson:"recipient_id"`
	Content         string `bson:"content"`
	ConversationKey string `bson:"conversation_key"`
	Read            bool   `bson:"read"`
	CreatedAt       int64  `bson:"created_at"`
}

func newMessageDocument(m *domainmessaging.Message) messageDocument {
	return messageDocument{
		ID:              m.ID,
		SenderID:        string(m.SenderID),
		RecipientID:     string(m.RecipientID),
		Content:         m.Content,
		ConversationKey: m.ConversationKey,
		Read:            m.Read,
		CreatedAt:       m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toMessage() *domainmessaging.Message {
	return &domainmessaging.Message{
		ID:              d.ID,
		SenderID:        domainuser.ID(d.SenderID),
		RecipientID:     domainuser.ID(d.RecipientID),
		Content:         d.Content,
		ConversationKey: d.ConversationKey,
		Read:            d.Read,
		CreatedAt:       timestampToTime(d.CreatedAt),
	}
}

type summaryDocument struct {
	CounterpartID string `bson:"_id"`
	LastMessage   string `bson:"last_message"`
	LastSenderID  string `bson:"last_sender_id"`
	LastRead      bool   `bson:"last_read"`
	LastCreatedAt int64  `bson:"last_created_at"`
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

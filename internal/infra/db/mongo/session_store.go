package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainauth "socialnet/internal/domain/auth"
	domainuser "socialnet/internal/domain/user"
)

type SessionStore struct {
	client *Client
	col    *mongo.Collection
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client, col: client.DB.Collection("sessions")}
}

func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	doc := sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt.UnixMilli(),
		ExpiresAt: session.ExpiresAt.UnixMilli(),
	}
	return s.client.retry(ctx, func(ctx context.Context) error {
		_, err := s.col.InsertOne(ctx, doc)
		return err
	})
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	err := s.client.retry(ctx, func(ctx context.Context) error {
		return s.col.FindOne(ctx, bson.M{"_id": string(token)}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	session := doc.toSession()
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	return s.client.retry(ctx, func(ctx context.Context) error {
		_, err := s.col.DeleteOne(ctx, bson.M{"_id": string(token)})
		return err
	})
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	return s.client.retry(ctx, func(ctx context.Context) error {
		_, err := s.col.DeleteMany(ctx, bson.M{"user_id": string(userID)})
		return err
	})
}

type sessionDocument struct {
	Token     string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Role      string `bson:"role"`
	CreatedAt int64  `bson:"created_at"`
	ExpiresAt int64  `bson:"expires_at"`
}

func (d sessionDocument) toSession() *domainauth.Session {
	return &domainauth.Session{
		Token:     domainauth.Token(d.Token),
		UserID:    domainuser.ID(d.UserID),
		Role:      domainuser.Role(d.Role),
		CreatedAt: timestampToTime(d.CreatedAt),
		ExpiresAt: timestampToTime(d.ExpiresAt),
	}
}

package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "socialnet/internal/domain/user"
)

type UserRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client, col: client.DB.Collection("users")}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "handle", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)})
}

func (r *UserRepository) ByHandle(ctx context.Context, handle string) (*domainuser.User, error) {
	normalized, err := domainuser.NormalizeHandle(handle)
	if err != nil {
		return nil, domainuser.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"handle": normalized})
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || u.ID == "" {
		return domainuser.ErrIDRequired
	}
	if existing, err := r.ByEmail(ctx, u.Email); err == nil && existing.ID != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if existing, err := r.ByHandle(ctx, u.Handle); err == nil && existing.ID != u.ID {
		return domainuser.ErrHandleAlreadyUsed
	}
	doc := newUserDocument(u)
	opts := options.Replace().SetUpsert(true)
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
		if mongo.IsDuplicateKeyError(err) {
			// unique index raced the pre-check
			return domainuser.ErrEmailAlreadyUsed
		}
		return err
	})
}

func (r *UserRepository) SearchByHandle(ctx context.Context, prefix string, limit int) ([]*domainuser.User, error) {
	pattern := "^" + regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(prefix)))
	opts := options.Find().SetSort(bson.D{{Key: "handle", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"handle": bson.M{"$regex": pattern}}, opts)
}

func (r *UserRepository) Recent(ctx context.Context, limit int) ([]*domainuser.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainuser.User, error) {
	var docs []userDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	users := make([]*domainuser.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toUser())
	}
	return users, nil
}

type userDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	Handle       string `bson:"handle"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	Bio          string `bson:"bio,omitempty"`
	PhotoURL     string `bson:"photo_url,omitempty"`
	PushToken    string `bson:"push_token,omitempty"`
	Blocked      bool   `bson:"blocked,omitempty"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		Handle:       u.Handle,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Bio:          u.Bio,
		PhotoURL:     u.PhotoURL,
		PushToken:    u.PushToken,
		Blocked:      u.Blocked,
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toUser() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Handle:       d.Handle,
		PasswordHash: d.PasswordHash,
		Role:         domainuser.Role(d.Role),
		Bio:          d.Bio,
		PhotoURL:     d.PhotoURL,
		PushToken:    d.PushToken,
		Blocked:      d.Blocked,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

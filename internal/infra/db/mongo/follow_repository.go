package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
)

type FollowRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewFollowRepository(client *Client) *FollowRepository {
	return &FollowRepository{client: client, col: client.DB.Collection("follows")}
}

func (r *FollowRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "followee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "followee_id", Value: 1}}},
	})
	return err
}

func (r *FollowRepository) Insert(ctx context.Context, follow *domainsocial.Follow) error {
	doc := followDocument{
		FollowerID: string(follow.FollowerID),
		FolloweeID: string(follow.FolloweeID),
		CreatedAt:  follow.CreatedAt.UnixMilli(),
	}
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return domainsocial.ErrAlreadyFollowing
		}
		return err
	})
}

func (r *FollowRepository) Delete(ctx context.Context, follower, followee domainuser.ID) error {
	var deleted int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		res, err := r.col.DeleteOne(ctx, bson.M{
			"follower_id": string(follower),
			"followee_id": string(followee),
		})
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
		return domainsocial.ErrNotFollowing
	}
	return nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, follower, followee domainuser.ID) (bool, error) {
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{
			"follower_id": string(follower),
			"followee_id": string(followee),
		}).Err()
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *FollowRepository) Followers(ctx context.Context, followee domainuser.ID) ([]domainuser.ID, error) {
	docs, err := r.find(ctx, bson.M{"followee_id": string(followee)})
	if err != nil {
		return nil, err
	}
	ids := make([]domainuser.ID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, domainuser.ID(doc.FollowerID))
	}
	return ids, nil
}

func (r *FollowRepository) Following(ctx context.Context, follower domainuser.ID) ([]domainuser.ID, error) {
	docs, err := r.find(ctx, bson.M{"follower_id": string(follower)})
	if err != nil {
		return nil, err
	}
	ids := make([]domainuser.ID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, domainuser.ID(doc.FolloweeID))
	}
	return ids, nil
}

func (r *FollowRepository) find(ctx context.Context, filter bson.M) ([]followDocument, error) {
	var docs []followDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, filter)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

type followDocument struct {
	FollowerID string `bson:"follower_id"`
	FolloweeID string `bson:"followee_id"`
	CreatedAt  int64  `bson:"created_at"`
}

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincontent "socialnet/internal/domain/content"
	domainuser "socialnet/internal/domain/user"
)

type PostRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewPostRepository(client *Client) *PostRepository {
	return &PostRepository{client: client, col: client.DB.Collection("posts")}
}

func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *PostRepository) Insert(ctx context.Context, post *domaincontent.Post) error {
	doc := postDocument{
		ID:        post.ID,
		AuthorID:  string(post.AuthorID),
		Text:      post.Text,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt.UnixMilli(),
	}
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		return err
	})
}

func (r *PostRepository) ByID(ctx context.Context, id string) (*domaincontent.Post, error) {
	var doc postDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincontent.ErrPostNotFound
		}
		return nil, err
	}
	return doc.toPost(), nil
}

func (r *PostRepository) ByAuthors(ctx context.Context, authors []domainuser.ID, offset, limit int) ([]domaincontent.Post, error) {
	if len(authors) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, string(author))
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	var docs []postDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, bson.M{"author_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	posts := make([]domaincontent.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, *doc.toPost())
	}
	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
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
		return domaincontent.ErrPostNotFound
	}
	return nil
}

type postDocument struct {
	ID        string `bson:"_id"`
	AuthorID  string `bson:"author_id"`
	Text      string `bson:"text"`
	ImageURL  string `bson:"image_url,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func (d postDocument) toPost() *domaincontent.Post {
	return &domaincontent.Post{
		ID:        d.ID,
		AuthorID:  domainuser.ID(d.AuthorID),
		Text:      d.Text,
		ImageURL:  d.ImageURL,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

type CommentRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewCommentRepository(client *Client) *CommentRepository {
	return &CommentRepository{client: client, col: client.DB.Collection("comments")}
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

func (r *CommentRepository) Insert(ctx context.Context, comment *domaincontent.Comment) error {
	doc := commentDocument{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  string(comment.AuthorID),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.UnixMilli(),
	}
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		return err
	})
}

func (r *CommentRepository) ByID(ctx context.Context, id string) (*domaincontent.Comment, error) {
	var doc commentDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincontent.ErrCommentNotFound
		}
		return nil, err
	}
	return doc.toComment(), nil
}

func (r *CommentRepository) ByPost(ctx context.Context, postID string) ([]domaincontent.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var docs []commentDocument
	err := r.client.retry(ctx, func(ctx context.Context) error {
		cursor, err := r.col.Find(ctx, bson.M{"post_id": postID}, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	comments := make([]domaincontent.Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, *doc.toComment())
	}
	return comments, nil
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		n, err := r.col.CountDocuments(ctx, bson.M{"post_id": postID})
		count = n
		return err
	})
	return count, err
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
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
		return domaincontent.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.DeleteMany(ctx, bson.M{"post_id": postID})
		return err
	})
}

type commentDocument struct {
	ID        string `bson:"_id"`
	PostID    string `bson:"post_id"`
	AuthorID  string `bson:"author_id"`
	Text      string `bson:"text"`
	CreatedAt int64  `bson:"created_at"`
}

func (d commentDocument) toComment() *domaincontent.Comment {
	return &domaincontent.Comment{
		ID:        d.ID,
		PostID:    d.PostID,
		AuthorID:  domainuser.ID(d.AuthorID),
		Text:      d.Text,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

type LikeRepository struct {
	client *Client
	col    *mongo.Collection
}

func NewLikeRepository(client *Client) *LikeRepository {
	return &LikeRepository{client: client, col: client.DB.Collection("likes")}
}

func (r *LikeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "post_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *LikeRepository) Insert(ctx context.Context, like *domaincontent.Like) error {
	doc := likeDocument{
		PostID:    like.PostID,
		UserID:    string(like.UserID),
		CreatedAt: like.CreatedAt.UnixMilli(),
	}
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	})
}

func (r *LikeRepository) Exists(ctx context.Context, postID string, userID domainuser.ID) (bool, error) {
	err := r.client.retry(ctx, func(ctx context.Context) error {
		return r.col.FindOne(ctx, bson.M{"post_id": postID, "user_id": string(userID)}).Err()
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *LikeRepository) Delete(ctx context.Context, postID string, userID domainuser.ID) error {
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": string(userID)})
		return err
	})
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.client.retry(ctx, func(ctx context.Context) error {
		n, err := r.col.CountDocuments(ctx, bson.M{"post_id": postID})
		count = n
		return err
	})
	return count, err
}

func (r *LikeRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.client.retry(ctx, func(ctx context.Context) error {
		_, err := r.col.DeleteMany(ctx, bson.M{"post_id": postID})
		return err
	})
}

type likeDocument struct {
	PostID    string `bson:"post_id"`
	UserID    string `bson:"user_id"`
	CreatedAt int64  `bson:"created_at"`
}

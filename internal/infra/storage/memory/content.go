package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domaincontent "socialnet/internal/domain/content"
	domainuser "socialnet/internal/domain/user"
)

// PostRepository keeps posts in memory.
type PostRepository struct {
	mu   sync.RWMutex
	byID map[string]*domaincontent.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{byID: make(map[string]*domaincontent.Post)}
}

func (r *PostRepository) Insert(ctx context.Context, post *domaincontent.Post) error {
	if post == nil || post.ID == "" {
		return domaincontent.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyPost := *post
	r.byID[post.ID] = &copyPost
	return nil
}

func (r *PostRepository) ByID(ctx context.Context, id string) (*domaincontent.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byID[id]; ok {
		copyPost := *p
		return &copyPost, nil
	}
	return nil, domaincontent.ErrPostNotFound
}

func (r *PostRepository) ByAuthors(ctx context.Context, authors []domainuser.ID, offset, limit int) ([]domaincontent.Post, error) {
	include := make(map[domainuser.ID]struct{}, len(authors))
	for _, author := range authors {
		include[author] = struct{}{}
	}
	r.mu.RLock()
	var posts []domaincontent.Post
	for _, p := range r.byID {
		if _, ok := include[p.AuthorID]; ok {
			posts = append(posts, *p)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(posts) {
			return nil, nil
		}
		posts = posts[offset:]
	}
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domaincontent.ErrPostNotFound
	}
	delete(r.byID, id)
	return nil
}

// CommentRepository keeps comments in memory.
type CommentRepository struct {
	mu   sync.RWMutex
	byID map[string]*domaincontent.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{byID: make(map[string]*domaincontent.Comment)}
}

func (r *CommentRepository) Insert(ctx context.Context, comment *domaincontent.Comment) error {
	if comment == nil || comment.ID == "" {
		return domaincontent.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyComment := *comment
	r.byID[comment.ID] = &copyComment
	return nil
}

func (r *CommentRepository) ByID(ctx context.Context, id string) (*domaincontent.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[id]; ok {
		copyComment := *c
		return &copyComment, nil
	}
	return nil, domaincontent.ErrCommentNotFound
}

func (r *CommentRepository) ByPost(ctx context.Context, postID string) ([]domaincontent.Comment, error) {
	r.mu.RLock()
	var comments []domaincontent.Comment
	for _, c := range r.byID {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.byID {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domaincontent.ErrCommentNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.PostID == postID {
			delete(r.byID, id)
		}
	}
	return nil
}

// LikeRepository keeps likes in memory.
type LikeRepository struct {
	mu    sync.RWMutex
	likes map[likeKey]time.Time
}

type likeKey struct {
	postID string
	userID domainuser.ID
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{likes: make(map[likeKey]time.Time)}
}

func (r *LikeRepository) Insert(ctx context.Context, like *domaincontent.Like) error {
	if like == nil {
		return domaincontent.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.likes[likeKey{postID: like.PostID, userID: like.UserID}] = like.CreatedAt
	return nil
}

func (r *LikeRepository) Exists(ctx context.Context, postID string, userID domainuser.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.likes[likeKey{postID: postID, userID: userID}]
	return ok, nil
}

func (r *LikeRepository) Delete(ctx context.Context, postID string, userID domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, likeKey{postID: postID, userID: userID})
	return nil
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for key := range r.likes {
		if key.postID == postID {
			count++
		}
	}
	return count, nil
}

func (r *LikeRepository) DeleteByPost(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.likes {
		if key.postID == postID {
			delete(r.likes, key)
		}
	}
	return nil
}

package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domaincontent "socialnet/internal/domain/content"
	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier is the slice of the notification dispatcher the content service needs.
type Notifier interface {
	NotifyLike(ctx context.Context, recipient, actor domainuser.ID, postID string) error
	NotifyComment(ctx context.Context, recipient, actor domainuser.ID, postID, excerpt string) error
}

// Viewer carries the authenticated caller's identity and admin bit into
// visibility checks.
type Viewer struct {
	ID    domainuser.ID
	Admin bool
}

// Service implements posts, comments and likes with follow-gated visibility:
// a post is readable only by its author, an admin, or a follower of the
// author.
type Service struct {
	Posts    domaincontent.PostRepository
	Comments domaincontent.CommentRepository
	Likes    domaincontent.LikeRepository
	Follows  domainsocial.Repository
	Users    domainuser.Repository
	Notifier Notifier
	Logger   *slog.Logger
}

type CreatePostParams struct {
	AuthorID domainuser.ID
	Text     string
	ImageURL string
}

func (s *Service) CreatePost(ctx context.Context, params CreatePostParams) (*domaincontent.Post, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	post, err := domaincontent.NewPost(domaincontent.CreatePostParams{
		ID:        uuid.NewString(),
		AuthorID:  params.AuthorID,
		Text:      params.Text,
		ImageURL:  params.ImageURL,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Posts.Insert(ctx, post); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("post created", "post_id", post.ID, "author_id", post.AuthorID)
	}
	return post, nil
}

// PostView is a post enriched with author and engagement data for display.
type PostView struct {
	Post          domaincontent.Post
	AuthorHandle  string
	AuthorPhoto   string
	LikeCount     int64
	CommentCount  int64
	LikedByViewer bool
}

// Feed returns posts by the viewer and everyone the viewer follows, newest
// first.
func (s *Service) Feed(ctx context.Context, viewer Viewer, page, pageSize int) ([]PostView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	following, err := s.Follows.Following(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	authors := append(following, viewer.ID)
	offset, limit := pageWindow(page, pageSize)
	posts, err := s.Posts.ByAuthors(ctx, authors, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, viewer, posts)
}

// UserPosts returns one user's posts, subject to the visibility rule.
func (s *Service) UserPosts(ctx context.Context, viewer Viewer, owner domainuser.ID, page, pageSize int) ([]PostView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if _, err := s.Users.ByID(ctx, owner); err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, viewer, owner)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domaincontent.ErrNotVisible
	}
	offset, limit := pageWindow(page, pageSize)
	posts, err := s.Posts.ByAuthors(ctx, []domainuser.ID{owner}, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, viewer, posts)
}

// GetPost loads a single post with its comments.
func (s *Service) GetPost(ctx context.Context, viewer Viewer, postID string) (*PostView, []domaincontent.Comment, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, nil, err
	}
	post, err := s.Posts.ByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	visible, err := s.canView(ctx, viewer, post.AuthorID)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		return nil, nil, domaincontent.ErrNotVisible
	}
	views, err := s.buildViews(ctx, viewer, []domaincontent.Post{*post})
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.Comments.ByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return &views[0], comments, nil
}

// DeletePost removes a post and cascades its comments and likes. Only the
// author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, viewer Viewer, postID string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	post, err := s.Posts.ByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != viewer.ID && !viewer.Admin {
		return domaincontent.ErrNotAllowed
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	if err := s.Comments.DeleteByPost(ctx, postID); err != nil && s.Logger != nil {
		s.Logger.Warn("comment cascade failed", "post_id", postID, "error", err)
	}
	if err := s.Likes.DeleteByPost(ctx, postID); err != nil && s.Logger != nil {
		s.Logger.Warn("like cascade failed", "post_id", postID, "error", err)
	}
	if s.Logger != nil {
		s.Logger.Info("post deleted", "post_id", postID, "by", viewer.ID)
	}
	return nil
}

type AddCommentParams struct {
	PostID string
	Text   string
}

func (s *Service) AddComment(ctx context.Context, viewer Viewer, params AddCommentParams) (*domaincontent.Comment, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	post, err := s.Posts.ByID(ctx, params.PostID)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, viewer, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domaincontent.ErrNotVisible
	}
	comment, err := domaincontent.NewComment(domaincontent.CreateCommentParams{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		AuthorID:  viewer.ID,
		Text:      params.Text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Comments.Insert(ctx, comment); err != nil {
		return nil, err
	}
	if s.Notifier != nil && post.AuthorID != viewer.ID {
		if err := s.Notifier.NotifyComment(ctx, post.AuthorID, viewer.ID, post.ID, excerpt(comment.Text)); err != nil && s.Logger != nil {
			s.Logger.Warn("comment notification failed", "post_id", post.ID, "error", err)
		}
	}
	return comment, nil
}

// DeleteComment allows the comment author, the post owner or an admin to
// remove a comment.
func (s *Service) DeleteComment(ctx context.Context, viewer Viewer, postID, commentID string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	comment, err := s.Comments.ByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return domaincontent.ErrCommentNotFound
	}
	if comment.AuthorID != viewer.ID && !viewer.Admin {
		post, err := s.Posts.ByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != viewer.ID {
			return domaincontent.ErrNotAllowed
		}
	}
	return s.Comments.Delete(ctx, commentID)
}

// ToggleLike likes a visible post, or removes the caller's existing like.
// Returns the resulting liked state and total count.
func (s *Service) ToggleLike(ctx context.Context, viewer Viewer, postID string) (bool, int64, error) {
	if err := s.ensureDependencies(); err != nil {
		return false, 0, err
	}
	post, err := s.Posts.ByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	visible, err := s.canView(ctx, viewer, post.AuthorID)
	if err != nil {
		return false, 0, err
	}
	if !visible {
		return false, 0, domaincontent.ErrNotVisible
	}
	liked, err := s.Likes.Exists(ctx, postID, viewer.ID)
	if err != nil {
		return false, 0, err
	}
	if liked {
		if err := s.Likes.Delete(ctx, postID, viewer.ID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.Likes.Insert(ctx, &domaincontent.Like{PostID: postID, UserID: viewer.ID, CreatedAt: time.Now().UTC()}); err != nil {
			return false, 0, err
		}
		if s.Notifier != nil && post.AuthorID != viewer.ID {
			if err := s.Notifier.NotifyLike(ctx, post.AuthorID, viewer.ID, post.ID); err != nil && s.Logger != nil {
				s.Logger.Warn("like notification failed", "post_id", post.ID, "error", err)
			}
		}
	}
	count, err := s.Likes.CountByPost(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	return !liked, count, nil
}

func (s *Service) canView(ctx context.Context, viewer Viewer, owner domainuser.ID) (bool, error) {
	if viewer.ID == owner || viewer.Admin {
		return true, nil
	}
	return s.Follows.IsFollowing(ctx, viewer.ID, owner)
}

func (s *Service) buildViews(ctx context.Context, viewer Viewer, posts []domaincontent.Post) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		view := PostView{Post: post}
		if author, err := s.Users.ByID(ctx, post.AuthorID); err == nil {
			view.AuthorHandle = author.Handle
			view.AuthorPhoto = author.PhotoURL
		}
		likeCount, err := s.Likes.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		view.LikeCount = likeCount
		commentCount, err := s.Comments.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		view.CommentCount = commentCount
		liked, err := s.Likes.Exists(ctx, post.ID, viewer.ID)
		if err != nil {
			return nil, err
		}
		view.LikedByViewer = liked
		views = append(views, view)
	}
	return views, nil
}

func excerpt(text string) string {
	const max = 80
	if len(text) <= max {
		return text
	}
	return text[:max]
}

func pageWindow(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Posts == nil:
		return errors.New("content: post repository required")
	case s.Comments == nil:
		return errors.New("content: comment repository required")
	case s.Likes == nil:
		return errors.New("content: like repository required")
	case s.Follows == nil:
		return errors.New("content: follow repository required")
	case s.Users == nil:
		return errors.New("content: user repository required")
	default:
		return nil
	}
}

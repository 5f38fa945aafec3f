package content

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincontent "socialnet/internal/domain/content"
	domainsocial "socialnet/internal/domain/social"
	domainuser "socialnet/internal/domain/user"
	"socialnet/internal/infra/storage/memory"
)

type notifierRecorder struct {
	likes    []string
	comments []string
}

func (r *notifierRecorder) NotifyLike(_ context.Context, _, _ domainuser.ID, postID string) error {
	r.likes = append(r.likes, postID)
	return nil
}

func (r *notifierRecorder) NotifyComment(_ context.Context, _, _ domainuser.ID, postID, _ string) error {
	r.comments = append(r.comments, postID)
	return nil
}

type fixture struct {
	svc      *Service
	follows  *memory.FollowRepository
	users    *memory.UserRepository
	notifier *notifierRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		follows:  memory.NewFollowRepository(),
		users:    memory.NewUserRepository(),
		notifier: &notifierRecorder{},
	}
	f.svc = &Service{
		Posts:    memory.NewPostRepository(),
		Comments: memory.NewCommentRepository(),
		Likes:    memory.NewLikeRepository(),
		Follows:  f.follows,
		Users:    f.users,
		Notifier: f.notifier,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return f
}

func (f fixture) addUser(t *testing.T, id string) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Handle:       id,
		PasswordHash: "irrelevant",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
}

func (f fixture) follow(t *testing.T, follower, followee string) {
	t.Helper()
	edge, err := domainsocial.NewFollow(domainuser.ID(follower), domainuser.ID(followee), time.Now())
	require.NoError(t, err)
	require.NoError(t, f.follows.Insert(context.Background(), edge))
}

func TestVisibility(t *testing.T) {
	ctx := context.Background()

	t.Run("follower sees posts, stranger does not", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.addUser(t, "stranger")
		f.follow(t, "fan", "author")

		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "hello"})
		require.NoError(t, err)

		views, err := f.svc.UserPosts(ctx, Viewer{ID: "fan"}, "author", 1, 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, post.ID, views[0].Post.ID)
		assert.Equal(t, "author", views[0].AuthorHandle)

		_, err = f.svc.UserPosts(ctx, Viewer{ID: "stranger"}, "author", 1, 0)
		assert.ErrorIs(t, err, domaincontent.ErrNotVisible)
	})

	t.Run("author and admin always see", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "admin")
		_, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "mine"})
		require.NoError(t, err)

		own, err := f.svc.UserPosts(ctx, Viewer{ID: "author"}, "author", 1, 0)
		require.NoError(t, err)
		assert.Len(t, own, 1)

		adminView, err := f.svc.UserPosts(ctx, Viewer{ID: "admin", Admin: true}, "author", 1, 0)
		require.NoError(t, err)
		assert.Len(t, adminView, 1)
	})

	t.Run("single post respects the same gate", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "stranger")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "gated"})
		require.NoError(t, err)

		_, _, err = f.svc.GetPost(ctx, Viewer{ID: "stranger"}, post.ID)
		assert.ErrorIs(t, err, domaincontent.ErrNotVisible)
	})
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "reader")
	f.addUser(t, "followed")
	f.addUser(t, "ignored")
	f.follow(t, "reader", "followed")

	_, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "followed", Text: "in feed"})
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "ignored", Text: "not in feed"})
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "reader", Text: "own post"})
	require.NoError(t, err)

	views, err := f.svc.Feed(ctx, Viewer{ID: "reader"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.NotEqual(t, domainuser.ID("ignored"), view.Post.AuthorID)
	}
}

func TestComments(t *testing.T) {
	ctx := context.Background()

	t.Run("comment notifies the post owner", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.follow(t, "fan", "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "discuss"})
		require.NoError(t, err)

		comment, err := f.svc.AddComment(ctx, Viewer{ID: "fan"}, AddCommentParams{PostID: post.ID, Text: "nice"})
		require.NoError(t, err)
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, []string{post.ID}, f.notifier.comments)
	})

	t.Run("own comment does not notify", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "solo"})
		require.NoError(t, err)

		_, err = f.svc.AddComment(ctx, Viewer{ID: "author"}, AddCommentParams{PostID: post.ID, Text: "me again"})
		require.NoError(t, err)
		assert.Empty(t, f.notifier.comments)
	})

	t.Run("post owner may delete a stranger's comment", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.follow(t, "fan", "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "moderated"})
		require.NoError(t, err)
		comment, err := f.svc.AddComment(ctx, Viewer{ID: "fan"}, AddCommentParams{PostID: post.ID, Text: "spam"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteComment(ctx, Viewer{ID: "author"}, post.ID, comment.ID))
	})

	t.Run("unrelated user may not delete", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.addUser(t, "other")
		f.follow(t, "fan", "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "p"})
		require.NoError(t, err)
		comment, err := f.svc.AddComment(ctx, Viewer{ID: "fan"}, AddCommentParams{PostID: post.ID, Text: "c"})
		require.NoError(t, err)

		err = f.svc.DeleteComment(ctx, Viewer{ID: "other"}, post.ID, comment.ID)
		assert.ErrorIs(t, err, domaincontent.ErrNotAllowed)
	})
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "author")
	f.addUser(t, "fan")
	f.follow(t, "fan", "author")
	post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "likeable"})
	require.NoError(t, err)

	liked, count, err := f.svc.ToggleLike(ctx, Viewer{ID: "fan"}, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, []string{post.ID}, f.notifier.likes)

	liked, count, err = f.svc.ToggleLike(ctx, Viewer{ID: "fan"}, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)
	// Unliking is silent.
	assert.Len(t, f.notifier.likes, 1)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades comments and likes", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.follow(t, "fan", "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "temp"})
		require.NoError(t, err)
		_, err = f.svc.AddComment(ctx, Viewer{ID: "fan"}, AddCommentParams{PostID: post.ID, Text: "c"})
		require.NoError(t, err)
		_, _, err = f.svc.ToggleLike(ctx, Viewer{ID: "fan"}, post.ID)
		require.NoError(t, err)

		require.NoError(t, f.svc.DeletePost(ctx, Viewer{ID: "author"}, post.ID))

		_, _, err = f.svc.GetPost(ctx, Viewer{ID: "author"}, post.ID)
		assert.ErrorIs(t, err, domaincontent.ErrPostNotFound)
		comments, err := f.svc.Comments.ByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
		likeCount, err := f.svc.Likes.CountByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Zero(t, likeCount)
	})

	t.Run("non-author non-admin rejected", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		f.addUser(t, "fan")
		f.follow(t, "fan", "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "keep"})
		require.NoError(t, err)

		err = f.svc.DeletePost(ctx, Viewer{ID: "fan"}, post.ID)
		assert.ErrorIs(t, err, domaincontent.ErrNotAllowed)
	})

	t.Run("admin may delete", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, "author")
		post, err := f.svc.CreatePost(ctx, CreatePostParams{AuthorID: "author", Text: "flagged"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeletePost(ctx, Viewer{ID: "moderator", Admin: true}, post.ID))
	})
}

package dto

import (
	"time"

	appcontent "socialnet/internal/app/services/content"
	domaincontent "socialnet/internal/domain/content"
)

type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	AuthorHandle  string    `json:"author_handle,omitempty"`
	AuthorPhoto   string    `json:"author_photo_url,omitempty"`
	Text          string    `json:"text"`
	ImageURL      string    `json:"image_url,omitempty"`
	LikeCount     int64     `json:"like_count"`
	CommentCount  int64     `json:"comment_count"`
	LikedByViewer bool      `json:"liked_by_viewer"`
	CreatedAt     time.Time `json:"created_at"`
}

type PostList struct {
	Items []Post `json:"items"`
	Page  int    `json:"page"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDetail struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}

func MapPostView(view appcontent.PostView) Post {
	return Post{
		ID:            view.Post.ID,
		AuthorID:      string(view.Post.AuthorID),
		AuthorHandle:  view.AuthorHandle,
		AuthorPhoto:   view.AuthorPhoto,
		Text:          view.Post.Text,
		ImageURL:      view.Post.ImageURL,
		LikeCount:     view.LikeCount,
		CommentCount:  view.CommentCount,
		LikedByViewer: view.LikedByViewer,
		CreatedAt:     view.Post.CreatedAt,
	}
}

func MapPostViews(views []appcontent.PostView, page int) PostList {
	list := PostList{Items: make([]Post, 0, len(views)), Page: page}
	for _, view := range views {
		list.Items = append(list.Items, MapPostView(view))
	}
	return list
}

func MapComment(c *domaincontent.Comment) Comment {
	if c == nil {
		return Comment{}
	}
	return Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  string(c.AuthorID),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func MapComments(comments []domaincontent.Comment) []Comment {
	mapped := make([]Comment, 0, len(comments))
	for i := range comments {
		mapped = append(mapped, MapComment(&comments[i]))
	}
	return mapped
}

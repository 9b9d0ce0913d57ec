package models

import (
	"time"
)

// Comment represents a reader comment on a post
type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Author    AuthorRef `json:"author" db:"-"`
}

// CommentInput is the body of a comment submission
type CommentInput struct {
	Content string `json:"content"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500

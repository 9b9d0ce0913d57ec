package models

import (
	"time"
)

// PostStatus is the publication state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// ValidStatuses defines allowed post statuses
var ValidStatuses = map[PostStatus]bool{
	PostStatusDraft:     true,
	PostStatusPublished: true,
}

// Post represents a blog post as stored
type Post struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Excerpt       string     `json:"excerpt" db:"excerpt"`
	Content       string     `json:"content" db:"content"`
	FeaturedImage string     `json:"featured_image,omitempty" db:"featured_image"`
	Status        PostStatus `json:"status" db:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty" db:"published_at"`
	CategoryID    *string    `json:"category_id,omitempty" db:"category_id"`
	AuthorID      string     `json:"author_id" db:"author_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// CategoryRef is the category name/slug denormalized onto a post
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// AuthorRef is the author profile denormalized onto a post or comment
type AuthorRef struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// PostSummary is one card in the public post grid
type PostSummary struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Excerpt       string       `json:"excerpt"`
	FeaturedImage string       `json:"featured_image,omitempty"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
	CategoryID    *string      `json:"category_id,omitempty"`
	Category      *CategoryRef `json:"category,omitempty"`
	Author        AuthorRef    `json:"author"`
}

// PostDetail is a full post joined with its category and author.
// ContentHTML is only filled for the public detail view.
type PostDetail struct {
	Post
	Category    *CategoryRef `json:"category,omitempty"`
	Author      AuthorRef    `json:"author"`
	ContentHTML string       `json:"content_html,omitempty"`
}

// PostInput is the admin create/update payload. Timestamps and references
// arrive as strings and are checked by the validation package.
type PostInput struct {
	Title         string `json:"title" yaml:"title"`
	Slug          string `json:"slug" yaml:"slug"`
	Excerpt       string `json:"excerpt" yaml:"excerpt"`
	Content       string `json:"content" yaml:"content"`
	FeaturedImage string `json:"featured_image,omitempty" yaml:"featured_image"`
	Status        string `json:"status" yaml:"status"`
	PublishedAt   string `json:"published_at,omitempty" yaml:"published_at"`
	CategoryID    string `json:"category_id,omitempty" yaml:"-"`
}

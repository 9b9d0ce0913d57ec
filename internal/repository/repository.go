package repository

import (
	"context"

	"github.com/Albion-ops/bytewave-hub/internal/database"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// Public listing
	CountPublished(ctx context.Context, filter listing.Filter) (int, error)
	ListPublished(ctx context.Context, filter listing.Filter, r listing.Range) ([]models.PostSummary, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.PostDetail, error)
	ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]models.PostSummary, error)

	// Back-office
	ListAll(ctx context.Context) ([]*models.PostDetail, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Post) error) error
	BatchInsert(ctx context.Context, posts []*models.Post) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Upsert(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Category) error) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Comment) error) error
}

// ProfileRepository defines the interface for user profiles and their role
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	CreateIfMissing(ctx context.Context, profile *models.Profile) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListWithRoles(ctx context.Context) ([]models.UserWithRole, error)
	Count(ctx context.Context) (int, error)
	GetRole(ctx context.Context, userID string) (*models.UserRole, error)
	SetRole(ctx context.Context, userID string, role models.Role) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post     PostRepository
	Category CategoryRepository
	Comment  CommentRepository
	Profile  ProfileRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Post:     NewPostRepo(db),
		Category: NewCategoryRepo(db),
		Comment:  NewCommentRepo(db),
		Profile:  NewProfileRepo(db),
	}
}

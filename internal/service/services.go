package service

import (
	"context"
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/rs/zerolog"
)

// Actor is an authenticated caller together with its effective role
type Actor struct {
	UserID string
	Role   models.Role
}

// ListingService defines the public blog listing
type ListingService interface {
	ListPosts(ctx context.Context, state listing.State) (*listing.Page, error)
}

// PostService defines post reads and back-office post management
type PostService interface {
	GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error)
	Related(ctx context.Context, slug string) ([]models.PostSummary, error)
	ListAll(ctx context.Context) ([]*models.PostDetail, error)
	Create(ctx context.Context, actor Actor, input *models.PostInput) (*models.Post, error)
	Update(ctx context.Context, actor Actor, id string, input *models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

// CategoryService defines category reference data operations
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// CommentService defines the comment submission flow
type CommentService interface {
	List(ctx context.Context, slug string) ([]models.Comment, error)
	Submit(ctx context.Context, identity *auth.Identity, slug, content string) ([]models.Comment, error)
}

// RoleService defines role assignment and the admin user listing
type RoleService interface {
	RoleOf(ctx context.Context, userID string) (models.Role, error)
	ListUsers(ctx context.Context) ([]models.UserWithRole, error)
	AssignRole(ctx context.Context, userID, role string) error
}

// StatsService defines the admin dashboard counters
type StatsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	Stream(ctx context.Context, w http.ResponseWriter, resource, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Listing  ListingService
	Post     PostService
	Category CategoryService
	Comment  CommentService
	Role     RoleService
	Stats    StatsService
	Export   ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Listing:  newListingService(repos.Post, repos.Category, cfg.Listing.PageSize, log),
		Post:     newPostService(repos.Post, repos.Category, cfg.Listing.RelatedLimit, log),
		Category: newCategoryService(repos.Category, log),
		Comment:  newCommentService(repos.Post, repos.Comment, repos.Profile, log),
		Role:     newRoleService(repos.Profile, cfg.Cache.UsersTTL, log),
		Stats:    newStatsService(repos, log),
		Export:   newExportService(repos, log),
	}
}

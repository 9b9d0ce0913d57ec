package mocks

import (
	"context"
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/service"
)

// MockListingService is a mock implementation of ListingService
type MockListingService struct {
	ListPostsFunc func(ctx context.Context, state listing.State) (*listing.Page, error)
	LastState     listing.State
}

func NewMockListingService() *MockListingService {
	return &MockListingService{}
}

func (m *MockListingService) ListPosts(ctx context.Context, state listing.State) (*listing.Page, error) {
	m.LastState = state
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx, state)
	}
	return &listing.Page{
		Posts:      []models.PostSummary{},
		Pagination: listing.NewMeta(state, 9, 0),
		Query:      state,
	}, nil
}

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	GetBySlugFunc func(ctx context.Context, slug string) (*models.PostDetail, error)
	RelatedFunc   func(ctx context.Context, slug string) ([]models.PostSummary, error)
	ListAllFunc   func(ctx context.Context) ([]*models.PostDetail, error)
	CreateFunc    func(ctx context.Context, actor service.Actor, input *models.PostInput) (*models.Post, error)
	UpdateFunc    func(ctx context.Context, actor service.Actor, id string, input *models.PostInput) (*models.Post, error)
	DeleteFunc    func(ctx context.Context, actor service.Actor, id string) error
}

func NewMockPostService() *MockPostService {
	return &MockPostService{}
}

func (m *MockPostService) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, service.ErrNotFound
}

func (m *MockPostService) Related(ctx context.Context, slug string) ([]models.PostSummary, error) {
	if m.RelatedFunc != nil {
		return m.RelatedFunc(ctx, slug)
	}
	return []models.PostSummary{}, nil
}

func (m *MockPostService) ListAll(ctx context.Context) ([]*models.PostDetail, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.PostDetail{}, nil
}

func (m *MockPostService) Create(ctx context.Context, actor service.Actor, input *models.PostInput) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, input)
	}
	return &models.Post{ID: "post-1", Title: input.Title, Slug: input.Slug, AuthorID: actor.UserID}, nil
}

func (m *MockPostService) Update(ctx context.Context, actor service.Actor, id string, input *models.PostInput) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, id, input)
	}
	return &models.Post{ID: id, Title: input.Title, Slug: input.Slug}, nil
}

func (m *MockPostService) Delete(ctx context.Context, actor service.Actor, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}

// MockCategoryService is a mock implementation of CategoryService
type MockCategoryService struct {
	Categories []models.Category
	CreateFunc func(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func NewMockCategoryService() *MockCategoryService {
	return &MockCategoryService{}
}

func (m *MockCategoryService) List(ctx context.Context) ([]models.Category, error) {
	if m.Categories == nil {
		return []models.Category{}, nil
	}
	return m.Categories, nil
}

func (m *MockCategoryService) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return &models.Category{ID: "category-1", Name: input.Name, Slug: input.Slug}, nil
}

func (m *MockCategoryService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	ListFunc   func(ctx context.Context, slug string) ([]models.Comment, error)
	SubmitFunc func(ctx context.Context, identity *auth.Identity, slug, content string) ([]models.Comment, error)
}

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{}
}

func (m *MockCommentService) List(ctx context.Context, slug string) ([]models.Comment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, slug)
	}
	return []models.Comment{}, nil
}

func (m *MockCommentService) Submit(ctx context.Context, identity *auth.Identity, slug, content string) ([]models.Comment, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, identity, slug, content)
	}
	if identity == nil {
		return nil, service.ErrAuthRequired
	}
	return []models.Comment{{ID: "comment-1", AuthorID: identity.UserID, Content: content}}, nil
}

// MockRoleService is a mock implementation of RoleService
type MockRoleService struct {
	Roles          map[string]models.Role
	Users          []models.UserWithRole
	AssignRoleFunc func(ctx context.Context, userID, role string) error
}

func NewMockRoleService() *MockRoleService {
	return &MockRoleService{
		Roles: make(map[string]models.Role),
	}
}

func (m *MockRoleService) RoleOf(ctx context.Context, userID string) (models.Role, error) {
	if role, ok := m.Roles[userID]; ok {
		return role, nil
	}
	return models.DefaultRole, nil
}

func (m *MockRoleService) ListUsers(ctx context.Context) ([]models.UserWithRole, error) {
	if m.Users == nil {
		return []models.UserWithRole{}, nil
	}
	return m.Users, nil
}

func (m *MockRoleService) AssignRole(ctx context.Context, userID, role string) error {
	if m.AssignRoleFunc != nil {
		return m.AssignRoleFunc(ctx, userID, role)
	}
	m.Roles[userID] = models.Role(role)
	return nil
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	Stats models.DashboardStats
	Err   error
}

func NewMockStatsService() *MockStatsService {
	return &MockStatsService{}
}

func (m *MockStatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	stats := m.Stats
	return &stats, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamFunc func(ctx context.Context, w http.ResponseWriter, resource, format string) error
	Counts     map[string]int
}

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			service.ResourcePosts:      100,
			service.ResourceComments:   500,
			service.ResourceCategories: 5,
		},
	}
}

func (m *MockExportService) Stream(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, w, resource, format)
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Write([]byte(`{"id":"1"}` + "\n"))
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

var (
	_ service.ListingService  = (*MockListingService)(nil)
	_ service.PostService     = (*MockPostService)(nil)
	_ service.CategoryService = (*MockCategoryService)(nil)
	_ service.CommentService  = (*MockCommentService)(nil)
	_ service.RoleService     = (*MockRoleService)(nil)
	_ service.StatsService    = (*MockStatsService)(nil)
	_ service.ExportService   = (*MockExportService)(nil)
)

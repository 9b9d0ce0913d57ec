package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
)

// MockPostRepository is a mock implementation of PostRepository. Listing
// filters are evaluated in memory with listing.Filter.Match.
type MockPostRepository struct {
	mu sync.Mutex

	Posts      map[string]*models.Post
	Categories map[string]models.CategoryRef // by category ID
	Authors    map[string]models.AuthorRef   // by profile ID

	InsertError error
	CountError  error
	ListError   error

	ListPublishedFunc func(ctx context.Context, filter listing.Filter, r listing.Range) ([]models.PostSummary, error)

	CountCalls       int
	ListCalls        int
	ListRanges       []listing.Range
	BatchInsertCalls int
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts:      make(map[string]*models.Post),
		Categories: make(map[string]models.CategoryRef),
		Authors:    make(map[string]models.AuthorRef),
	}
}

// Add stores posts directly, bypassing error injection
func (m *MockPostRepository) Add(posts ...*models.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range posts {
		m.Posts[p.ID] = p
	}
}

func (m *MockPostRepository) matching(filter listing.Filter) []*models.Post {
	var out []*models.Post
	for _, p := range m.Posts {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return publishedAt(out[i]) > publishedAt(out[j])
	})
	return out
}

func publishedAt(p *models.Post) int64 {
	if p.PublishedAt == nil {
		return 0
	}
	return p.PublishedAt.UnixNano()
}

func (m *MockPostRepository) summary(p *models.Post) models.PostSummary {
	s := models.PostSummary{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		PublishedAt:   p.PublishedAt,
		CategoryID:    p.CategoryID,
		Author:        models.AuthorRef{Username: m.Authors[p.AuthorID].Username},
	}
	if p.CategoryID != nil {
		if ref, ok := m.Categories[*p.CategoryID]; ok {
			s.Category = &ref
		}
	}
	return s
}

func (m *MockPostRepository) detail(p *models.Post) *models.PostDetail {
	d := &models.PostDetail{Post: *p, Author: m.Authors[p.AuthorID]}
	if p.CategoryID != nil {
		if ref, ok := m.Categories[*p.CategoryID]; ok {
			d.Category = &ref
		}
	}
	return d
}

func (m *MockPostRepository) CountPublished(ctx context.Context, filter listing.Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountCalls++
	if m.CountError != nil {
		return 0, m.CountError
	}
	return len(m.matching(filter)), nil
}

func (m *MockPostRepository) ListPublished(ctx context.Context, filter listing.Filter, r listing.Range) ([]models.PostSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	m.ListRanges = append(m.ListRanges, r)
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, filter, r)
	}
	if m.ListError != nil {
		return nil, m.ListError
	}

	posts := m.matching(filter)
	out := make([]models.PostSummary, 0, r.Limit())
	for i := max(r.From, 0); i <= r.To && i < len(posts); i++ {
		out = append(out, m.summary(posts[i]))
	}
	return out, nil
}

func (m *MockPostRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Posts {
		if p.Slug == slug && p.Status == models.PostStatusPublished {
			return m.detail(p), nil
		}
	}
	return nil, nil
}

func (m *MockPostRepository) ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]models.PostSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PostSummary{}
	for _, p := range m.matching(listing.Filter{CategoryID: categoryID}) {
		if p.ID == excludeID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, m.summary(p))
	}
	return out, nil
}

func (m *MockPostRepository) ListAll(ctx context.Context) ([]*models.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.PostDetail, 0, len(m.Posts))
	for _, p := range m.Posts {
		out = append(out, m.detail(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, p := range m.Posts {
		if p.Slug == post.Slug {
			return repository.ErrDuplicate
		}
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Posts[post.ID]; !ok {
		return repository.ErrNotFound
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Posts, id)
	return nil
}

func (m *MockPostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts), nil
}

func (m *MockPostRepository) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	m.mu.Lock()
	posts := make([]*models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		posts = append(posts, p)
	}
	m.mu.Unlock()

	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
	for _, p := range posts {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockPostRepository) BatchInsert(ctx context.Context, posts []*models.Post) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchInsertCalls++
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, p := range posts {
		m.Posts[p.ID] = p
	}
	return len(posts), nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories  map[string]*models.Category
	InsertError error
	GetError    error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[string]*models.Category),
	}
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Categories[id], nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, c := range m.Categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, c := range m.Categories {
		if c.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	m.Categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) Upsert(ctx context.Context, category *models.Category) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, c := range m.Categories {
		if c.Slug == category.Slug {
			c.Name = category.Name
			category.ID = c.ID
			category.CreatedAt = c.CreatedAt
			return nil
		}
	}
	m.Categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.Categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Categories), nil
}

func (m *MockCategoryRepository) StreamAll(ctx context.Context, callback func(*models.Category) error) error {
	for _, c := range m.Categories {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    []*models.Comment
	Authors     map[string]models.AuthorRef
	InsertError error
	CreateCalls int
	ListCalls   int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Authors: make(map[string]models.AuthorRef),
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Comments = append(m.Comments, comment)
	return nil
}

// ListByPost returns comments newest first; among equal timestamps the
// later insert comes first.
func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	m.ListCalls++
	out := []models.Comment{}
	for i := len(m.Comments) - 1; i >= 0; i-- {
		c := m.Comments[i]
		if c.PostID != postID {
			continue
		}
		copied := *c
		copied.Author = m.Authors[c.AuthorID]
		out = append(out, copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	for _, c := range m.Comments {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockProfileRepository is a mock implementation of ProfileRepository.
// RoleRecords is a flat table so tests can count records per user.
type MockProfileRepository struct {
	Profiles     map[string]*models.Profile
	RoleRecords  []models.UserRole
	SetRoleError error
	ListError    error

	SetRoleCalls         int
	ListWithRolesCalls   int
	CreateIfMissingCalls int
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		Profiles: make(map[string]*models.Profile),
	}
}

// RoleRecordsFor returns every role record held by userID
func (m *MockProfileRepository) RoleRecordsFor(userID string) []models.UserRole {
	var out []models.UserRole
	for _, r := range m.RoleRecords {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	m.Profiles[profile.ID] = profile
	return nil
}

// CreateIfMissing keeps an existing profile and enforces unique usernames
func (m *MockProfileRepository) CreateIfMissing(ctx context.Context, profile *models.Profile) (bool, error) {
	m.CreateIfMissingCalls++
	if _, exists := m.Profiles[profile.ID]; exists {
		return false, nil
	}
	for _, p := range m.Profiles {
		if p.Username == profile.Username {
			return false, repository.ErrDuplicate
		}
	}
	m.Profiles[profile.ID] = profile
	return true, nil
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return m.Profiles[id], nil
}

func (m *MockProfileRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Profiles[id]
	return exists, nil
}

func (m *MockProfileRepository) ListWithRoles(ctx context.Context) ([]models.UserWithRole, error) {
	m.ListWithRolesCalls++
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]models.UserWithRole, 0, len(m.Profiles))
	for _, p := range m.Profiles {
		role := models.DefaultRole
		if records := m.RoleRecordsFor(p.ID); len(records) > 0 {
			role = records[0].Role
		}
		out = append(out, models.UserWithRole{Profile: *p, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockProfileRepository) Count(ctx context.Context) (int, error) {
	return len(m.Profiles), nil
}

func (m *MockProfileRepository) GetRole(ctx context.Context, userID string) (*models.UserRole, error) {
	if records := m.RoleRecordsFor(userID); len(records) > 0 {
		return &records[0], nil
	}
	return nil, nil
}

// SetRole mirrors the upsert keyed on user_id
func (m *MockProfileRepository) SetRole(ctx context.Context, userID string, role models.Role) error {
	m.SetRoleCalls++
	if m.SetRoleError != nil {
		return m.SetRoleError
	}
	if _, ok := m.Profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	for i := range m.RoleRecords {
		if m.RoleRecords[i].UserID == userID {
			m.RoleRecords[i].Role = role
			return nil
		}
	}
	m.RoleRecords = append(m.RoleRecords, models.UserRole{UserID: userID, Role: role})
	return nil
}

var (
	_ repository.PostRepository     = (*MockPostRepository)(nil)
	_ repository.CategoryRepository = (*MockCategoryRepository)(nil)
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.ProfileRepository  = (*MockProfileRepository)(nil)
)

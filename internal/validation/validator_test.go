package validation

import (
	"strings"
	"testing"

	"github.com/Albion-ops/bytewave-hub/internal/models"
)

func TestValidatePost(t *testing.T) {
	validator := NewValidator()

	valid := func() *models.PostInput {
		return &models.PostInput{
			Title:       "Choosing a CCTV retention policy",
			Slug:        "cctv-retention-policy",
			Excerpt:     "How long footage should be kept.",
			Content:     "## Retention\n\nThirty days is common.",
			Status:      "published",
			PublishedAt: "2024-03-01T09:00:00Z",
			CategoryID:  "550e8400-e29b-41d4-a716-446655440000",
		}
	}

	tests := []struct {
		name       string
		mutate     func(p *models.PostInput)
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid published post",
			mutate:     func(p *models.PostInput) {},
			wantErrors: 0,
		},
		{
			name:       "published without timestamp is accepted",
			mutate:     func(p *models.PostInput) { p.PublishedAt = "" },
			wantErrors: 0,
		},
		{
			name:       "valid draft",
			mutate:     func(p *models.PostInput) { p.Status = "draft"; p.PublishedAt = "" },
			wantErrors: 0,
		},
		{
			name:       "missing title",
			mutate:     func(p *models.PostInput) { p.Title = "   " },
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "title too long",
			mutate:     func(p *models.PostInput) { p.Title = strings.Repeat("a", MaxTitleLength+1) },
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "slug not kebab-case",
			mutate:     func(p *models.PostInput) { p.Slug = "Hello_World" },
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
		{
			name:       "missing content",
			mutate:     func(p *models.PostInput) { p.Content = "" },
			wantErrors: 1,
			wantFields: []string{"content"},
		},
		{
			name:       "invalid status",
			mutate:     func(p *models.PostInput) { p.Status = "archived" },
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:       "draft with published_at",
			mutate:     func(p *models.PostInput) { p.Status = "draft" },
			wantErrors: 1,
			wantFields: []string{"published_at"},
		},
		{
			name:       "bad timestamp",
			mutate:     func(p *models.PostInput) { p.PublishedAt = "01/03/2024" },
			wantErrors: 1,
			wantFields: []string{"published_at"},
		},
		{
			name:       "bad category id",
			mutate:     func(p *models.PostInput) { p.CategoryID = "news" },
			wantErrors: 1,
			wantFields: []string{"category_id"},
		},
		{
			name:       "relative image url",
			mutate:     func(p *models.PostInput) { p.FeaturedImage = "/img/a.png" },
			wantErrors: 1,
			wantFields: []string{"featured_image"},
		},
		{
			name: "multiple errors",
			mutate: func(p *models.PostInput) {
				p.Title = ""
				p.Slug = ""
				p.Status = ""
			},
			wantErrors: 3,
			wantFields: []string{"title", "slug", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := valid()
			tt.mutate(post)
			errors := validator.ValidatePost(post)

			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %+v", tt.wantErrors, len(errors), errors)
			}

			for _, field := range tt.wantFields {
				found := false
				for _, e := range errors {
					if e.Field == field {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field %q", field)
				}
			}
		})
	}
}

func TestValidatePost_DuplicateSlugInBatch(t *testing.T) {
	validator := NewValidator()
	post := &models.PostInput{Title: "A", Slug: "same-slug", Content: "x", Status: "draft"}

	if errors := validator.ValidatePost(post); len(errors) != 0 {
		t.Fatalf("First post should be valid, got %+v", errors)
	}
	validator.AddPostSlug(post.Slug)

	errors := validator.ValidatePost(post)
	if len(errors) != 1 || errors[0].Message != "duplicate slug" {
		t.Errorf("Expected duplicate slug error, got %+v", errors)
	}
}

func TestValidateCategory(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		category   models.CategoryInput
		wantErrors int
	}{
		{"valid", models.CategoryInput{Name: "Security", Slug: "security"}, 0},
		{"missing name", models.CategoryInput{Slug: "security"}, 1},
		{"bad slug", models.CategoryInput{Name: "Security", Slug: "Security!"}, 1},
		{"reserved slug", models.CategoryInput{Name: "All", Slug: "all"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateCategory(&tt.category)
			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %+v", tt.wantErrors, len(errors), errors)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		profile    models.Profile
		wantErrors int
	}{
		{"valid", models.Profile{ID: "550e8400-e29b-41d4-a716-446655440000", Username: "jane.doe"}, 0},
		{"bad id", models.Profile{ID: "42", Username: "jane"}, 1},
		{"short username", models.Profile{ID: "550e8400-e29b-41d4-a716-446655440000", Username: "jd"}, 1},
		{"empty", models.Profile{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateProfile(&tt.profile)
			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %+v", tt.wantErrors, len(errors), errors)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		content    string
		wantErrors int
	}{
		{"valid comment", "Great write-up, thanks!", 0},
		{"empty", "", 1},
		{"exactly at limit", strings.Repeat("word ", models.MaxCommentWords), 0},
		{"exceeds word limit", strings.Repeat("word ", models.MaxCommentWords+1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateComment(strings.TrimSpace(tt.content))
			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %+v", tt.wantErrors, len(errors), errors)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	validator := NewValidator()

	for _, role := range []string{"admin", "author", "reader"} {
		if errors := validator.ValidateRole(role); len(errors) != 0 {
			t.Errorf("Role %q should be valid, got %+v", role, errors)
		}
	}
	for _, role := range []string{"", "superadmin", "Admin"} {
		if errors := validator.ValidateRole(role); len(errors) != 1 {
			t.Errorf("Role %q should be rejected", role)
		}
	}
}

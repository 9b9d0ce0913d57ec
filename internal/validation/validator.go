package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/google/uuid"
)

var (
	slugRegex     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)
)

// Field limits
const (
	MaxTitleLength   = 200
	MaxExcerptLength = 500
	MaxNameLength    = 64
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks user input. It remembers the slugs it has accepted so a
// batch (such as a seed file) can be checked for duplicates before any
// row reaches the database.
type Validator struct {
	postSlugCache     map[string]bool
	categorySlugCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		postSlugCache:     make(map[string]bool),
		categorySlugCache: make(map[string]bool),
	}
}

// AddPostSlug adds a post slug to the uniqueness cache
func (v *Validator) AddPostSlug(slug string) {
	v.postSlugCache[slug] = true
}

// AddCategorySlug adds a category slug to the uniqueness cache
func (v *Validator) AddCategorySlug(slug string) {
	v.categorySlugCache[slug] = true
}

// ValidatePost validates a post create/update payload
func (v *Validator) ValidatePost(post *models.PostInput) []ValidationError {
	var errors []ValidationError

	title := strings.TrimSpace(post.Title)
	if title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if len([]rune(title)) > MaxTitleLength {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title exceeds %d characters", MaxTitleLength)})
	}

	errors = append(errors, v.validateSlug(post.Slug, v.postSlugCache)...)

	if strings.TrimSpace(post.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}
	if len([]rune(post.Excerpt)) > MaxExcerptLength {
		errors = append(errors, ValidationError{Field: "excerpt", Message: fmt.Sprintf("excerpt exceeds %d characters", MaxExcerptLength)})
	}

	if post.FeaturedImage != "" && !isValidURL(post.FeaturedImage) {
		errors = append(errors, ValidationError{Field: "featured_image", Message: "featured_image must be an absolute http(s) URL", Value: post.FeaturedImage})
	}

	// Validate status
	status := models.PostStatus(post.Status)
	if post.Status == "" {
		errors = append(errors, ValidationError{Field: "status", Message: "status is required"})
	} else if !models.ValidStatuses[status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: draft, published",
			Value:   post.Status,
		})
	}

	// Validate draft must not have published_at
	if status == models.PostStatusDraft && post.PublishedAt != "" {
		errors = append(errors, ValidationError{Field: "published_at", Message: "draft posts must not have published_at"})
	}

	if post.PublishedAt != "" {
		if _, err := time.Parse(time.RFC3339, post.PublishedAt); err != nil {
			errors = append(errors, ValidationError{Field: "published_at", Message: "invalid ISO 8601 date format", Value: post.PublishedAt})
		}
	}

	if post.CategoryID != "" && !isValidUUID(post.CategoryID) {
		errors = append(errors, ValidationError{Field: "category_id", Message: "invalid UUID format", Value: post.CategoryID})
	}

	return errors
}

// ValidateCategory validates a category payload
func (v *Validator) ValidateCategory(category *models.CategoryInput) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(category.Name)
	if name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	} else if len([]rune(name)) > MaxNameLength {
		errors = append(errors, ValidationError{Field: "name", Message: fmt.Sprintf("name exceeds %d characters", MaxNameLength)})
	}

	errors = append(errors, v.validateSlug(category.Slug, v.categorySlugCache)...)

	// The slug "all" is the listing's no-filter sentinel.
	if category.Slug == "all" {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug is reserved", Value: category.Slug})
	}

	return errors
}

// ValidateProfile validates a profile record
func (v *Validator) ValidateProfile(profile *models.Profile) []ValidationError {
	var errors []ValidationError

	if profile.ID == "" {
		errors = append(errors, ValidationError{Field: "id", Message: "id is required"})
	} else if !isValidUUID(profile.ID) {
		errors = append(errors, ValidationError{Field: "id", Message: "invalid UUID format", Value: profile.ID})
	}

	if profile.Username == "" {
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	} else if !usernameRegex.MatchString(profile.Username) {
		errors = append(errors, ValidationError{Field: "username", Message: "username must be 3-32 letters, digits, '.', '_' or '-'", Value: profile.Username})
	}

	return errors
}

// ValidateComment validates a comment body. content must already be trimmed.
func (v *Validator) ValidateComment(content string) []ValidationError {
	if content == "" {
		return []ValidationError{{Field: "content", Message: "content is required"}}
	}

	// Check word count (max 500 words)
	if wordCount := len(strings.Fields(content)); wordCount > models.MaxCommentWords {
		return []ValidationError{{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
		}}
	}
	return nil
}

// ValidateRole validates a role name
func (v *Validator) ValidateRole(role string) []ValidationError {
	if role == "" {
		return []ValidationError{{Field: "role", Message: "role is required"}}
	}
	if !models.ValidRoles[models.Role(role)] {
		return []ValidationError{{
			Field:   "role",
			Message: "invalid role, must be one of: admin, author, reader",
			Value:   role,
		}}
	}
	return nil
}

func (v *Validator) validateSlug(slug string, seen map[string]bool) []ValidationError {
	switch {
	case slug == "":
		return []ValidationError{{Field: "slug", Message: "slug is required"}}
	case !slugRegex.MatchString(slug):
		return []ValidationError{{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: slug}}
	case seen[slug]:
		// Check for duplicate slug in current batch
		return []ValidationError{{Field: "slug", Message: "duplicate slug", Value: slug}}
	}
	return nil
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	return isValidUUID(s)
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

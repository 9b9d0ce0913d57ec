// Package seed loads a YAML site file (categories, profiles and posts)
// into the store. Rows are validated first; invalid rows are reported and
// skipped, posts whose slug already exists are left untouched.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
)

// DefaultBatchSize is the number of posts sent per COPY batch
const DefaultBatchSize = 500

// Site is the seed file document
type Site struct {
	Categories []models.CategoryInput `yaml:"categories"`
	Profiles   []Profile              `yaml:"profiles"`
	Posts      []Post                 `yaml:"posts"`
}

// Profile is a user to create, optionally with a role
type Profile struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
}

// Post references its category by slug and its author by username
type Post struct {
	models.PostInput `yaml:",inline"`
	Category         string `yaml:"category"`
	Author           string `yaml:"author"`
}

// RowError is a rejected seed row
type RowError struct {
	Section string                       `json:"section"`
	Index   int                          `json:"index"`
	Errors  []validation.ValidationError `json:"errors"`
}

// Result summarizes a seed run
type Result struct {
	Categories int        `json:"categories"`
	Profiles   int        `json:"profiles"`
	Posts      int        `json:"posts"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Errors     []RowError `json:"errors,omitempty"`
}

// Decode parses a site file. Unknown keys are rejected.
func Decode(r io.Reader) (*Site, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var site Site
	if err := decoder.Decode(&site); err != nil {
		if errors.Is(err, io.EOF) {
			return &site, nil
		}
		return nil, fmt.Errorf("failed to parse site file: %w", err)
	}
	return &site, nil
}

// Seeder writes a site into the repositories
type Seeder struct {
	repos     *repository.Repositories
	batchSize int
	now       func() time.Time
	log       zerolog.Logger
}

// NewSeeder creates a Seeder. batchSize <= 0 selects DefaultBatchSize.
func NewSeeder(repos *repository.Repositories, batchSize int, log zerolog.Logger) *Seeder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Seeder{
		repos:     repos,
		batchSize: batchSize,
		now:       time.Now,
		log:       log.With().Str("component", "seed").Logger(),
	}
}

// Run seeds categories, then profiles, then posts. Store failures abort
// the run; validation failures only skip the row.
func (s *Seeder) Run(ctx context.Context, site *Site) (*Result, error) {
	start := time.Now()
	result := &Result{}
	validator := validation.NewValidator()

	categories, err := s.seedCategories(ctx, site.Categories, validator, result)
	if err != nil {
		return result, err
	}
	authors, err := s.seedProfiles(ctx, site.Profiles, validator, result)
	if err != nil {
		return result, err
	}
	if err := s.seedPosts(ctx, site.Posts, categories, authors, validator, result); err != nil {
		return result, err
	}

	s.log.Info().
		Int("categories", result.Categories).
		Int("profiles", result.Profiles).
		Int("posts", result.Posts).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Dur("duration", time.Since(start)).
		Msg("Seed completed")
	return result, nil
}

// seedCategories upserts categories and returns slug -> ID for every
// category in the store, seeded or pre-existing.
func (s *Seeder) seedCategories(ctx context.Context, entries []models.CategoryInput, validator *validation.Validator, result *Result) (map[string]string, error) {
	for i := range entries {
		entry := entries[i]
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Slug = strings.TrimSpace(entry.Slug)

		if errs := validator.ValidateCategory(&entry); len(errs) > 0 {
			result.reject("categories", i, errs)
			continue
		}
		validator.AddCategorySlug(entry.Slug)

		category := &models.Category{
			ID:        uuid.New().String(),
			Name:      entry.Name,
			Slug:      entry.Slug,
			CreatedAt: s.now().UTC(),
		}
		if err := s.repos.Category.Upsert(ctx, category); err != nil {
			return nil, fmt.Errorf("failed to upsert category %q: %w", entry.Slug, err)
		}
		result.Categories++
	}

	existing, err := s.repos.Category.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	bySlug := make(map[string]string, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}
	return bySlug, nil
}

// seedProfiles upserts profiles and their roles and returns username -> ID
func (s *Seeder) seedProfiles(ctx context.Context, entries []Profile, validator *validation.Validator, result *Result) (map[string]string, error) {
	byUsername := make(map[string]string, len(entries))
	for i, entry := range entries {
		profile := &models.Profile{
			ID:        strings.TrimSpace(entry.ID),
			Username:  strings.TrimSpace(entry.Username),
			FullName:  strings.TrimSpace(entry.FullName),
			CreatedAt: s.now().UTC(),
		}

		errs := validator.ValidateProfile(profile)
		if entry.Role != "" {
			errs = append(errs, validator.ValidateRole(entry.Role)...)
		}
		if _, dup := byUsername[profile.Username]; dup {
			errs = append(errs, validation.ValidationError{Field: "username", Message: "duplicate username", Value: profile.Username})
		}
		if len(errs) > 0 {
			result.reject("profiles", i, errs)
			continue
		}

		if err := s.repos.Profile.Upsert(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to upsert profile %q: %w", profile.Username, err)
		}
		if entry.Role != "" {
			if err := s.repos.Profile.SetRole(ctx, profile.ID, models.Role(entry.Role)); err != nil {
				return nil, fmt.Errorf("failed to set role of %q: %w", profile.Username, err)
			}
		}
		byUsername[profile.Username] = profile.ID
		result.Profiles++
	}
	return byUsername, nil
}

func (s *Seeder) seedPosts(ctx context.Context, entries []Post, categories, authors map[string]string, validator *validation.Validator, result *Result) error {
	batch := make([]*models.Post, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := s.repos.Post.BatchInsert(ctx, batch)
		if err != nil {
			s.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch insert failed")
			return fmt.Errorf("failed to insert posts: %w", err)
		}
		result.Posts += inserted
		s.log.Debug().Int("inserted", inserted).Int("total", result.Posts).Msg("Batch processed")
		batch = batch[:0]
		return nil
	}

	for i, entry := range entries {
		input := entry.PostInput
		input.Slug = strings.TrimSpace(input.Slug)

		var errs []validation.ValidationError
		if entry.Category != "" {
			id, ok := categories[entry.Category]
			if !ok {
				errs = append(errs, validation.ValidationError{Field: "category", Message: "unknown category", Value: entry.Category})
			}
			input.CategoryID = id
		}
		authorID, ok := authors[entry.Author]
		if !ok {
			errs = append(errs, validation.ValidationError{Field: "author", Message: "unknown author", Value: entry.Author})
		}
		errs = append(errs, validator.ValidatePost(&input)...)
		if len(errs) > 0 {
			result.reject("posts", i, errs)
			continue
		}
		validator.AddPostSlug(input.Slug)

		exists, err := s.repos.Post.SlugExists(ctx, input.Slug, "")
		if err != nil {
			return fmt.Errorf("failed to check slug %q: %w", input.Slug, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		batch = append(batch, s.newPost(&input, authorID))
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// newPost builds a post from validated input. A published post without a
// timestamp is stamped with the current time.
func (s *Seeder) newPost(input *models.PostInput, authorID string) *models.Post {
	now := s.now().UTC()
	post := &models.Post{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(input.Title),
		Slug:          input.Slug,
		Excerpt:       strings.TrimSpace(input.Excerpt),
		Content:       input.Content,
		FeaturedImage: strings.TrimSpace(input.FeaturedImage),
		Status:        models.PostStatus(input.Status),
		AuthorID:      authorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.CategoryID != "" {
		categoryID := input.CategoryID
		post.CategoryID = &categoryID
	}
	if post.Status == models.PostStatusPublished {
		publishedAt := now
		if input.PublishedAt != "" {
			// Format was checked by ValidatePost.
			parsed, _ := time.Parse(time.RFC3339, input.PublishedAt)
			publishedAt = parsed.UTC()
		}
		post.PublishedAt = &publishedAt
	}
	return post
}

func (r *Result) reject(section string, index int, errs []validation.ValidationError) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Section: section, Index: index, Errors: errs})
}

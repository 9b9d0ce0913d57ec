package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	log        zerolog.Logger
}

// newCategoryService creates a new CategoryService
func newCategoryService(categories repository.CategoryRepository, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: categories,
		log:        log.With().Str("service", "category").Logger(),
	}
}

// List returns all categories ordered by name
func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, loadFailed("list categories", err)
	}
	return categories, nil
}

// Create validates and stores a new category
func (s *categoryService) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	if errs := validation.NewValidator().ValidateCategory(input); len(errs) > 0 {
		return nil, invalid(errs)
	}

	category := &models.Category{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Slug:      input.Slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, category.Slug)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.log.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
	return category, nil
}

// Delete removes a category; its posts become uncategorized
func (s *categoryService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.log.Info().Str("category_id", id).Msg("Category deleted")
	return nil
}

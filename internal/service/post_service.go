package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/render"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// postService is the concrete implementation of PostService
type postService struct {
	posts        repository.PostRepository
	categories   repository.CategoryRepository
	relatedLimit int
	now          func() time.Time
	log          zerolog.Logger
}

// newPostService creates a new PostService
func newPostService(posts repository.PostRepository, categories repository.CategoryRepository, relatedLimit int, log zerolog.Logger) *postService {
	return &postService{
		posts:        posts,
		categories:   categories,
		relatedLimit: relatedLimit,
		now:          time.Now,
		log:          log.With().Str("service", "post").Logger(),
	}
}

// GetBySlug returns a published post with its body rendered to HTML
func (s *postService) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, loadFailed("get post", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %q", ErrNotFound, slug)
	}

	html, err := render.Markdown(post.Content)
	if err != nil {
		return nil, err
	}
	post.ContentHTML = html
	return post, nil
}

// Related returns other published posts of the same category
func (s *postService) Related(ctx context.Context, slug string) ([]models.PostSummary, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, loadFailed("get post", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %q", ErrNotFound, slug)
	}
	if post.CategoryID == nil {
		return []models.PostSummary{}, nil
	}

	related, err := s.posts.ListRelated(ctx, *post.CategoryID, post.ID, s.relatedLimit)
	if err != nil {
		return nil, loadFailed("list related posts", err)
	}
	return related, nil
}

// ListAll returns every post for the back-office
func (s *postService) ListAll(ctx context.Context) ([]*models.PostDetail, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, loadFailed("list posts", err)
	}
	return posts, nil
}

// Create validates input and stores a new post owned by the actor
func (s *postService) Create(ctx context.Context, actor Actor, input *models.PostInput) (*models.Post, error) {
	if err := s.check(ctx, "", input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  actor.UserID,
		CreatedAt: now,
	}
	s.apply(post, input, now)

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, post.Slug)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.Info().
		Str("post_id", post.ID).
		Str("slug", post.Slug).
		Str("status", string(post.Status)).
		Msg("Post created")
	return post, nil
}

// Update replaces the editable fields of a post. Authors may only edit
// their own posts.
func (s *postService) Update(ctx context.Context, actor Actor, id string, input *models.PostInput) (*models.Post, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, id, input); err != nil {
		return nil, err
	}

	s.apply(post, input, s.now().UTC())

	if err := s.posts.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, post.Slug)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.log.Info().Str("post_id", post.ID).Str("status", string(post.Status)).Msg("Post updated")
	return post, nil
}

// Delete removes a post. Authors may only delete their own posts.
func (s *postService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.log.Info().Str("post_id", id).Msg("Post deleted")
	return nil
}

func (s *postService) owned(ctx context.Context, actor Actor, id string) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, loadFailed("get post", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	if actor.Role != models.RoleAdmin && post.AuthorID != actor.UserID {
		return nil, fmt.Errorf("%w: post belongs to another author", ErrForbidden)
	}
	return post, nil
}

// check runs field validation, then the uniqueness and reference checks
// that need the store.
func (s *postService) check(ctx context.Context, id string, input *models.PostInput) error {
	input.Slug = strings.TrimSpace(input.Slug)
	if errs := validation.NewValidator().ValidatePost(input); len(errs) > 0 {
		return invalid(errs)
	}

	exists, err := s.posts.SlugExists(ctx, input.Slug, id)
	if err != nil {
		return loadFailed("check slug", err)
	}
	if exists {
		return fmt.Errorf("%w: slug %q already exists", ErrConflict, input.Slug)
	}

	if input.CategoryID != "" {
		category, err := s.categories.GetByID(ctx, input.CategoryID)
		if err != nil {
			return loadFailed("get category", err)
		}
		if category == nil {
			return invalidField("category_id", "referenced category does not exist", input.CategoryID)
		}
	}
	return nil
}

// apply copies validated input onto post. Publishing without a timestamp
// keeps an earlier publication time or stamps now.
func (s *postService) apply(post *models.Post, input *models.PostInput, now time.Time) {
	post.Title = strings.TrimSpace(input.Title)
	post.Slug = input.Slug
	post.Excerpt = strings.TrimSpace(input.Excerpt)
	post.Content = input.Content
	post.FeaturedImage = strings.TrimSpace(input.FeaturedImage)
	post.Status = models.PostStatus(input.Status)
	post.UpdatedAt = now

	post.CategoryID = nil
	if input.CategoryID != "" {
		categoryID := input.CategoryID
		post.CategoryID = &categoryID
	}

	switch {
	case post.Status == models.PostStatusDraft:
		post.PublishedAt = nil
	case input.PublishedAt != "":
		// Format was checked by ValidatePost.
		publishedAt, _ := time.Parse(time.RFC3339, input.PublishedAt)
		publishedAt = publishedAt.UTC()
		post.PublishedAt = &publishedAt
	case post.PublishedAt == nil:
		post.PublishedAt = &now
	}
}

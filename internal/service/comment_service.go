package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/auth"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	profiles  repository.ProfileRepository
	validator *validation.Validator
	log       zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(posts repository.PostRepository, comments repository.CommentRepository, profiles repository.ProfileRepository, log zerolog.Logger) *commentService {
	return &commentService{
		posts:     posts,
		comments:  comments,
		profiles:  profiles,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// List returns the comments of a published post, newest first
func (s *commentService) List(ctx context.Context, slug string) ([]models.Comment, error) {
	post, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, post.ID)
}

// Submit adds a comment from identity to the post and returns the
// refetched comment list. Identity and body are checked before any store
// call.
func (s *commentService) Submit(ctx context.Context, identity *auth.Identity, slug, content string) ([]models.Comment, error) {
	if identity == nil || identity.UserID == "" {
		return nil, ErrAuthRequired
	}

	content = strings.TrimSpace(content)
	if errs := s.validator.ValidateComment(content); len(errs) > 0 {
		return nil, invalid(errs)
	}

	post, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.ensureProfile(ctx, identity); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    post.ID,
		AuthorID:  identity.UserID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post or author profile no longer exists", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.log.Info().
		Str("comment_id", comment.ID).
		Str("post_id", post.ID).
		Str("author_id", identity.UserID).
		Msg("Comment created")

	return s.list(ctx, post.ID)
}

// ensureProfile provisions the profile of a first-time commenter from the
// token claims. A missing or taken username falls back to one derived from
// the user ID.
func (s *commentService) ensureProfile(ctx context.Context, identity *auth.Identity) error {
	fallback := fallbackUsername(identity.UserID)
	profile := &models.Profile{
		ID:        identity.UserID,
		Username:  identity.Username,
		FullName:  identity.FullName,
		CreatedAt: time.Now().UTC(),
	}
	if len(s.validator.ValidateProfile(profile)) > 0 {
		profile.Username = fallback
	}

	created, err := s.profiles.CreateIfMissing(ctx, profile)
	if errors.Is(err, repository.ErrDuplicate) && profile.Username != fallback {
		profile.Username = fallback
		created, err = s.profiles.CreateIfMissing(ctx, profile)
	}
	if err != nil {
		return loadFailed("provision profile", err)
	}

	if created {
		s.log.Info().
			Str("user_id", profile.ID).
			Str("username", profile.Username).
			Msg("Profile provisioned")
	}
	return nil
}

// fallbackUsername is "reader-" and the first 12 hex digits of the user ID.
func fallbackUsername(userID string) string {
	hex := strings.ReplaceAll(userID, "-", "")
	if len(hex) > 12 {
		hex = hex[:12]
	}
	return "reader-" + hex
}

func (s *commentService) publishedPost(ctx context.Context, slug string) (*models.PostDetail, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, loadFailed("get post", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %q", ErrNotFound, slug)
	}
	return post, nil
}

func (s *commentService) list(ctx context.Context, postID string) ([]models.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, loadFailed("list comments", err)
	}
	return comments, nil
}

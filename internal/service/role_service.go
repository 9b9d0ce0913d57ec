package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
	"github.com/rs/zerolog"
)

// roleService is the concrete implementation of RoleService. The admin
// user listing is cached for ttl and dropped on every role change.
type roleService struct {
	profiles  repository.ProfileRepository
	validator *validation.Validator
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger

	mu         sync.Mutex
	users      []models.UserWithRole
	loadedAt   time.Time
	generation uint64
}

// newRoleService creates a new RoleService
func newRoleService(profiles repository.ProfileRepository, ttl time.Duration, log zerolog.Logger) *roleService {
	return &roleService{
		profiles:  profiles,
		validator: validation.NewValidator(),
		ttl:       ttl,
		now:       time.Now,
		log:       log.With().Str("service", "role").Logger(),
	}
}

// RoleOf returns the effective role of a user
func (s *roleService) RoleOf(ctx context.Context, userID string) (models.Role, error) {
	role, err := s.profiles.GetRole(ctx, userID)
	if err != nil {
		return "", loadFailed("get role", err)
	}
	if role == nil {
		return models.DefaultRole, nil
	}
	return role.Role, nil
}

// ListUsers returns all users with their effective role
func (s *roleService) ListUsers(ctx context.Context) ([]models.UserWithRole, error) {
	s.mu.Lock()
	if s.users != nil && s.now().Sub(s.loadedAt) < s.ttl {
		users := append([]models.UserWithRole(nil), s.users...)
		s.mu.Unlock()
		return users, nil
	}
	generation := s.generation
	s.mu.Unlock()

	users, err := s.profiles.ListWithRoles(ctx)
	if err != nil {
		return nil, loadFailed("list users", err)
	}

	s.mu.Lock()
	// A role change during the load makes this result stale.
	if generation == s.generation {
		s.users = users
		s.loadedAt = s.now()
	}
	s.mu.Unlock()

	return append([]models.UserWithRole(nil), users...), nil
}

// AssignRole sets the single role of a user, replacing any previous one
func (s *roleService) AssignRole(ctx context.Context, userID, role string) error {
	if !validation.IsValidUUID(userID) {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if errs := s.validator.ValidateRole(role); len(errs) > 0 {
		return invalid(errs)
	}

	exists, err := s.profiles.Exists(ctx, userID)
	if err != nil {
		return loadFailed("check user", err)
	}
	if !exists {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	if err := s.profiles.SetRole(ctx, userID, models.Role(role)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.invalidate()
	s.log.Info().Str("user_id", userID).Str("role", role).Msg("Role assigned")
	return nil
}

func (s *roleService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.generation++
}

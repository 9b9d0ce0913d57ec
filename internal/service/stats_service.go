package service

import (
	"context"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/rs/zerolog"
)

// statsService is the concrete implementation of StatsService
type statsService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newStatsService creates a new StatsService
func newStatsService(repos *repository.Repositories, log zerolog.Logger) *statsService {
	return &statsService{
		repos: repos,
		log:   log.With().Str("service", "stats").Logger(),
	}
}

// Dashboard returns exact row counts of the main tables
func (s *statsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	counters := []struct {
		name  string
		count func(context.Context) (int, error)
		dest  *int
	}{
		{"posts", s.repos.Post.Count, &stats.Posts},
		{"categories", s.repos.Category.Count, &stats.Categories},
		{"users", s.repos.Profile.Count, &stats.Users},
		{"comments", s.repos.Comment.Count, &stats.Comments},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, loadFailed("count "+c.name, err)
		}
		*c.dest = n
	}
	return &stats, nil
}

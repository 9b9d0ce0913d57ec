package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/rs/zerolog"
)

// Export resources and formats
const (
	ResourcePosts      = "posts"
	ResourceComments   = "comments"
	ResourceCategories = "categories"

	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// flushEvery is how many NDJSON records are written between flushes
const flushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// Stream writes every row of resource to w in the requested format
func (s *exportService) Stream(ctx context.Context, w http.ResponseWriter, resource, format string) error {
	if format != FormatNDJSON && format != FormatJSON {
		return invalidField("format", "unsupported format, must be one of: ndjson, json", format)
	}

	s.log.Info().Str("resource", resource).Str("format", format).Msg("Starting export")

	var (
		count int
		err   error
	)
	switch resource {
	case ResourcePosts:
		count, err = streamRecords(w, resource, format, func(emit func(*models.Post) error) error {
			return s.repos.Post.StreamAll(ctx, emit)
		})
	case ResourceComments:
		count, err = streamRecords(w, resource, format, func(emit func(*models.Comment) error) error {
			return s.repos.Comment.StreamAll(ctx, emit)
		})
	case ResourceCategories:
		count, err = streamRecords(w, resource, format, func(emit func(*models.Category) error) error {
			return s.repos.Category.StreamAll(ctx, emit)
		})
	default:
		return invalidField("resource", "unknown resource, must be one of: posts, comments, categories", resource)
	}

	if err != nil {
		s.log.Error().Err(err).Str("resource", resource).Int("count", count).Msg("Export aborted")
		return err
	}
	s.log.Info().Str("resource", resource).Int("count", count).Msg("Export completed")
	return nil
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case ResourcePosts:
		return s.repos.Post.Count(ctx)
	case ResourceComments:
		return s.repos.Comment.Count(ctx)
	case ResourceCategories:
		return s.repos.Category.Count(ctx)
	default:
		return 0, invalidField("resource", "unknown resource", resource)
	}
}

// streamRecords writes records as NDJSON lines or as one JSON array.
// Headers are set before the first byte; errors after that point can only
// truncate the body.
func streamRecords[T any](w http.ResponseWriter, resource, format string, stream func(emit func(T) error) error) (int, error) {
	flusher, _ := w.(http.Flusher)
	count := 0

	if format == FormatNDJSON {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ndjson", resource))

		err := stream(func(record T) error {
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return err
			}
			count++

			// Flush periodically for streaming
			if count%flushEvery == 0 && flusher != nil {
				flusher.Flush()
			}
			return nil
		})
		return count, err
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", resource))

	if _, err := w.Write([]byte("[")); err != nil {
		return 0, err
	}
	err := stream(func(record T) error {
		if count > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})
	w.Write([]byte("]"))
	return count, err
}

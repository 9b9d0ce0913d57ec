package service

import (
	"context"

	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/rs/zerolog"
)

// listingService is the concrete implementation of ListingService
type listingService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	pageSize   int
	log        zerolog.Logger
}

// newListingService creates a new ListingService
func newListingService(posts repository.PostRepository, categories repository.CategoryRepository, pageSize int, log zerolog.Logger) *listingService {
	return &listingService{
		posts:      posts,
		categories: categories,
		pageSize:   pageSize,
		log:        log.With().Str("service", "listing").Logger(),
	}
}

// ListPosts resolves the filter, counts the matching posts and clamps the
// requested page to [1, totalPages] before the data window is computed.
// With no matching posts the data statement is not issued.
func (s *listingService) ListPosts(ctx context.Context, state listing.State) (*listing.Page, error) {
	filter := listing.Filter{Search: state.Search}
	if state.FiltersCategory() {
		category, err := s.categories.GetBySlug(ctx, state.Category)
		if err != nil {
			return nil, loadFailed("resolve category", err)
		}
		// Unknown slugs leave the category unfiltered.
		if category != nil {
			filter.CategoryID = category.ID
		}
	}

	total, err := s.posts.CountPublished(ctx, filter)
	if err != nil {
		return nil, loadFailed("count posts", err)
	}

	totalPages := listing.TotalPages(total, s.pageSize)
	if page := listing.ClampPage(state.Page, totalPages); page != state.Page {
		s.log.Debug().
			Int("requested", state.Page).
			Int("page", page).
			Int("total_pages", totalPages).
			Msg("Clamped listing page")
		state.Page = page
	}

	posts := []models.PostSummary{}
	if totalPages > 0 {
		posts, err = s.posts.ListPublished(ctx, filter, listing.PageRange(state.Page, s.pageSize))
		if err != nil {
			return nil, loadFailed("list posts", err)
		}
		if posts == nil {
			posts = []models.PostSummary{}
		}
	}

	return &listing.Page{
		Posts:      posts,
		Pagination: listing.NewMeta(state, s.pageSize, total),
		Query:      state,
	}, nil
}

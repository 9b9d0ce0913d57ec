package benchmark

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/mocks"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/Albion-ops/bytewave-hub/internal/render"
	"github.com/Albion-ops/bytewave-hub/internal/repository"
	"github.com/Albion-ops/bytewave-hub/internal/service"
	"github.com/Albion-ops/bytewave-hub/internal/validation"
)

func seededServices(n int) *service.Services {
	posts := mocks.NewMockPostRepository()
	base := time.Now()
	for i := 0; i < n; i++ {
		publishedAt := base.Add(-time.Duration(i) * time.Minute)
		posts.Add(&models.Post{
			ID:          fmt.Sprintf("post-%06d", i),
			Title:       fmt.Sprintf("Post %d about cameras", i),
			Slug:        fmt.Sprintf("post-%06d", i),
			Content:     "Choosing the right lens for a small office.",
			Status:      models.PostStatusPublished,
			PublishedAt: &publishedAt,
			CreatedAt:   publishedAt,
		})
	}

	repos := &repository.Repositories{
		Post:     posts,
		Category: mocks.NewMockCategoryRepository(),
		Comment:  mocks.NewMockCommentRepository(),
		Profile:  mocks.NewMockProfileRepository(),
	}
	cfg := &config.Config{
		Listing: config.ListingConfig{PageSize: 9, RelatedLimit: 3},
		Cache:   config.CacheConfig{UsersTTL: time.Minute},
	}
	return service.NewServices(repos, cfg, zerolog.Nop())
}

// BenchmarkListPosts benchmarks one listing request (count + window) over 1000 posts
func BenchmarkListPosts(b *testing.B) {
	services := seededServices(1000)
	state := listing.State{Search: "cameras", Category: listing.AllCategories, Page: 5}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Listing.ListPosts(context.Background(), state); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStreamPosts benchmarks NDJSON export performance
func BenchmarkStreamPosts(b *testing.B) {
	services := seededServices(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := services.Export.Stream(context.Background(), w, service.ResourcePosts, service.FormatNDJSON); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkStatements benchmarks building the count and data statements
func BenchmarkStatements(b *testing.B) {
	filter := listing.Filter{Search: "100% _real_", CategoryID: "6f1c1c2e-8c1e-4d7a-9b1a-3f2d6c1b0a01"}
	window := listing.PageRange(42, 9)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = listing.CountStatement(filter)
		_ = listing.SelectStatement(filter, window)
	}
}

// BenchmarkNewMeta benchmarks pagination metadata with strip links
func BenchmarkNewMeta(b *testing.B) {
	state := listing.State{Search: "go", Category: "engineering", Page: 50}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = listing.NewMeta(state, 9, 1000)
	}
}

// BenchmarkValidation benchmarks validation performance
func BenchmarkValidation(b *testing.B) {
	validator := validation.NewValidator()
	input := &models.PostInput{
		Title:       "Choosing a camera",
		Slug:        "choosing-a-camera",
		Content:     "Body",
		Status:      "published",
		PublishedAt: "2024-03-01T09:00:00Z",
		CategoryID:  "6f1c1c2e-8c1e-4d7a-9b1a-3f2d6c1b0a01",
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		validator.ValidatePost(input)
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "validations/sec")
}

// BenchmarkMarkdown benchmarks rendering a post body
func BenchmarkMarkdown(b *testing.B) {
	source := "# Title\n\nSome *emphasis* and a [link](https://example.com).\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := render.Markdown(source); err != nil {
			b.Fatal(err)
		}
	}
}

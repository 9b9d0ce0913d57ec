package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/Albion-ops/bytewave-hub/internal/models"
)

// Page is one rendered window of the listing.
type Page struct {
	Posts      []models.PostSummary `json:"data"`
	Pagination Meta                 `json:"pagination"`
	Query      State                `json:"query"`
}

// Fetcher loads the listing page for a state.
type Fetcher interface {
	FetchPosts(ctx context.Context, state State) (*Page, error)
}

// ErrSuperseded is returned for a response that arrived after a newer
// request was issued. The response is discarded.
var ErrSuperseded = errors.New("listing request superseded")

// Controller holds the displayed listing and its query state. Every state
// change issues a fetch tagged with a new generation; only the response of
// the latest generation is applied. A failed fetch leaves the displayed page
// untouched.
type Controller struct {
	fetcher Fetcher

	mu         sync.Mutex
	state      State // displayed
	requested  State // latest issued
	generation uint64
	page       *Page
}

// NewController creates a controller positioned on initial. Nothing is
// fetched until Refresh or a state change.
func NewController(fetcher Fetcher, initial State) *Controller {
	if initial.Page < 1 {
		initial.Page = 1
	}
	if initial.Category == "" {
		initial.Category = AllCategories
	}
	return &Controller{fetcher: fetcher, state: initial, requested: initial}
}

// State returns the query state of the displayed page.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Page returns the displayed page, or nil before the first successful fetch.
func (c *Controller) Page() *Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Refresh re-fetches the current state.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.apply(ctx, func(s State) State { return s })
}

// SetSearch changes the search text, resets to page 1 and fetches.
func (c *Controller) SetSearch(ctx context.Context, search string) error {
	return c.apply(ctx, func(s State) State { return s.WithSearch(search) })
}

// SetCategory changes the category filter, resets to page 1 and fetches.
func (c *Controller) SetCategory(ctx context.Context, slug string) error {
	return c.apply(ctx, func(s State) State { return s.WithCategory(slug) })
}

// GoToPage fetches page n. A page outside [1, totalPages] of the displayed
// listing is ignored: GoToPage reports false and nothing is fetched. While a
// search or category change is in flight the page count is unknown and every
// page is ignored.
func (c *Controller) GoToPage(ctx context.Context, n int) (bool, error) {
	c.mu.Lock()
	if c.requested.Search != c.state.Search || c.requested.Category != c.state.Category {
		c.mu.Unlock()
		return false, nil
	}
	pager := Pager{Current: c.requested.Page}
	if c.page != nil {
		pager.TotalPages = c.page.Pagination.TotalPages
	}
	ok := pager.GoTo(n)
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.apply(ctx, func(s State) State { return s.WithPage(n) })
}

func (c *Controller) apply(ctx context.Context, change func(State) State) error {
	c.mu.Lock()
	c.requested = change(c.requested)
	c.generation++
	generation := c.generation
	state := c.requested
	c.mu.Unlock()

	page, err := c.fetcher.FetchPosts(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return ErrSuperseded
	}
	if err != nil {
		c.requested = c.state
		return err
	}
	state.Page = page.Pagination.Page
	c.state, c.requested = state, state
	c.page = page
	return nil
}

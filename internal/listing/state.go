// Package listing implements the public blog listing: the query state carried
// in URL parameters, the count/data statement builder, pagination arithmetic
// with the windowed page strip, and a client-side controller that keeps only
// the newest response.
package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// AllCategories is the category filter sentinel meaning "no category predicate".
const AllCategories = "all"

// Query parameter names of the listing state.
const (
	ParamSearch   = "q"
	ParamCategory = "category"
	ParamPage     = "page"
)

// State is the {search, category, page} triple driving the listing. It is
// rebuilt from the request location every time and never persisted.
type State struct {
	Search   string `json:"q"`
	Category string `json:"category"`
	Page     int    `json:"page"`
}

// NewState returns the state of an unfiltered first page.
func NewState() State {
	return State{Category: AllCategories, Page: 1}
}

// ParseState reads the listing state from URL query parameters. Missing or
// malformed values fall back to the defaults.
func ParseState(values url.Values) State {
	state := NewState()
	state.Search = strings.TrimSpace(values.Get(ParamSearch))
	if category := strings.TrimSpace(values.Get(ParamCategory)); category != "" {
		state.Category = category
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		state.Page = page
	}
	return state
}

// Values writes the state back as query parameters. Defaults are omitted so
// the first unfiltered page has an empty query string.
func (s State) Values() url.Values {
	values := url.Values{}
	if s.Search != "" {
		values.Set(ParamSearch, s.Search)
	}
	if s.Category != "" && s.Category != AllCategories {
		values.Set(ParamCategory, s.Category)
	}
	if s.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return values
}

// Encode returns the state as an encoded query string without a leading "?".
func (s State) Encode() string {
	return s.Values().Encode()
}

// WithSearch changes the search text and resets to the first page.
func (s State) WithSearch(search string) State {
	s.Search = strings.TrimSpace(search)
	s.Page = 1
	return s
}

// WithCategory changes the category filter and resets to the first page.
// An empty slug selects all categories.
func (s State) WithCategory(slug string) State {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = AllCategories
	}
	s.Category = slug
	s.Page = 1
	return s
}

// WithPage returns the state positioned on page n. It does not check bounds;
// see Pager.GoTo for navigation rules.
func (s State) WithPage(n int) State {
	s.Page = n
	return s
}

// FiltersCategory reports whether the state restricts the listing to one category.
func (s State) FiltersCategory() bool {
	return s.Category != "" && s.Category != AllCategories
}

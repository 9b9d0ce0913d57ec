package listing

import (
	"net/url"
	"testing"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  State
	}{
		{"empty", "", State{Category: AllCategories, Page: 1}},
		{"all params", "q=rust&category=devops&page=3", State{Search: "rust", Category: "devops", Page: 3}},
		{"trimmed search", "q=%20%20kubernetes%20", State{Search: "kubernetes", Category: AllCategories, Page: 1}},
		{"bad page", "page=abc", State{Category: AllCategories, Page: 1}},
		{"negative page", "page=-2", State{Category: AllCategories, Page: 1}},
		{"explicit all", "category=all", State{Category: AllCategories, Page: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery failed: %v", err)
			}
			if got := ParseState(values); got != tt.want {
				t.Errorf("ParseState(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestState_Encode(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"defaults", NewState(), ""},
		{"first page omitted", State{Search: "go", Category: AllCategories, Page: 1}, "q=go"},
		{"all fields", State{Search: "go", Category: "news", Page: 2}, "category=news&page=2&q=go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_RoundTrip(t *testing.T) {
	state := State{Search: "a&b c", Category: "web-dev", Page: 4}
	if got := ParseState(state.Values()); got != state {
		t.Errorf("Round trip changed state: %+v -> %+v", state, got)
	}
}

func TestState_FilterChangesResetPage(t *testing.T) {
	state := State{Search: "go", Category: "news", Page: 5}

	if s := state.WithSearch("rust"); s.Page != 1 || s.Search != "rust" {
		t.Errorf("WithSearch should reset page: %+v", s)
	}
	if s := state.WithSearch("go"); s.Page != 1 {
		t.Errorf("WithSearch with the same text should still reset page: %+v", s)
	}
	if s := state.WithCategory("devops"); s.Page != 1 || s.Category != "devops" {
		t.Errorf("WithCategory should reset page: %+v", s)
	}
	if s := state.WithCategory(""); s.Category != AllCategories || s.Page != 1 {
		t.Errorf("Empty category should select all: %+v", s)
	}
	if _, ok := state.WithSearch("rust").Values()[ParamPage]; ok {
		t.Error("Page parameter should be cleared after a search change")
	}
	if state.Page != 5 {
		t.Error("State methods must not mutate the receiver")
	}
}

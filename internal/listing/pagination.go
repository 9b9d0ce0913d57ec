package listing

import "math"

// Range is a 0-based inclusive row window.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Limit is the number of rows in the window.
func (r Range) Limit() int {
	return r.To - r.From + 1
}

// Offset is the SQL OFFSET of the window.
func (r Range) Offset() int {
	return r.From
}

// PageRange maps a 1-based page number to its row window. Pages too large
// to address saturate at the last representable window.
func PageRange(page, pageSize int) Range {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if last := (math.MaxInt-pageSize)/pageSize + 1; page > last {
		page = last
	}
	from := (page - 1) * pageSize
	return Range{From: from, To: from + pageSize - 1}
}

// TotalPages is ceil(total / pageSize); zero rows means zero pages.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage forces page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Pager tracks the current page against a known page count.
type Pager struct {
	Current    int
	TotalPages int
}

// GoTo moves to page n. Pages outside [1, TotalPages] are ignored and
// GoTo reports false without changing the pager.
func (p *Pager) GoTo(n int) bool {
	if n < 1 || n > p.TotalPages {
		return false
	}
	p.Current = n
	return true
}

// StripItem is one element of the page-number control: either a page link
// or an ellipsis marker standing for a run of hidden pages.
type StripItem struct {
	Page     int    `json:"page,omitempty"`
	Ellipsis bool   `json:"ellipsis,omitempty"`
	Current  bool   `json:"current,omitempty"`
	Href     string `json:"href,omitempty"`
}

// Strip lays out the page-number control. Page 1, the last page, the current
// page and its two neighbours are shown. Each hidden run collapses into one
// ellipsis, emitted at the page two steps away from current, and only when
// the run does not touch the first or last page directly.
func Strip(current, totalPages int) []StripItem {
	if totalPages < 1 {
		return nil
	}
	items := make([]StripItem, 0, 7)
	for page := 1; page <= totalPages; page++ {
		switch {
		case page == 1 || page == totalPages || (page >= current-1 && page <= current+1):
			items = append(items, StripItem{Page: page, Current: page == current})
		case page == current-2 && current > 3:
			items = append(items, StripItem{Ellipsis: true})
		case page == current+2 && current < totalPages-2:
			items = append(items, StripItem{Ellipsis: true})
		}
	}
	return items
}

// Meta is the pagination block of a listing response.
type Meta struct {
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Range      Range       `json:"range"`
	Items      []StripItem `json:"items"`
}

// NewMeta derives pagination metadata for state, whose Page must already be
// clamped. Page links keep the state's filters.
func NewMeta(state State, pageSize, total int) Meta {
	totalPages := TotalPages(total, pageSize)
	items := Strip(state.Page, totalPages)
	for i := range items {
		if !items[i].Ellipsis {
			items[i].Href = "?" + state.WithPage(items[i].Page).Encode()
		}
	}
	return Meta{
		Page:       state.Page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Range:      PageRange(state.Page, pageSize),
		Items:      items,
	}
}

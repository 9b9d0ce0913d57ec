package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Albion-ops/bytewave-hub/internal/listing"
)

type view struct {
	out     io.Writer
	plain   bool
	title   lipgloss.Style
	meta    lipgloss.Style
	current lipgloss.Style
	page    lipgloss.Style
	gap     lipgloss.Style
	status  lipgloss.Style
}

func newView(out io.Writer, plain bool) *view {
	v := &view{
		out:     out,
		plain:   plain,
		title:   lipgloss.NewStyle(),
		meta:    lipgloss.NewStyle(),
		current: lipgloss.NewStyle(),
		page:    lipgloss.NewStyle(),
		gap:     lipgloss.NewStyle(),
		status:  lipgloss.NewStyle(),
	}
	if plain {
		return v
	}
	v.title = v.title.Bold(true)
	v.meta = v.meta.Foreground(lipgloss.Color("8"))
	v.current = v.current.Bold(true).Reverse(true)
	v.page = v.page.Foreground(lipgloss.Color("12"))
	v.gap = v.gap.Faint(true)
	v.status = v.status.Foreground(lipgloss.Color("11"))
	return v
}

func (v *view) clear() {
	if !v.plain {
		fmt.Fprint(v.out, "\033[H\033[2J")
	}
}

func (v *view) render(page *listing.Page, status string) {
	if page == nil {
		return
	}

	fmt.Fprintln(v.out, v.meta.Render(describeQuery(page)))
	fmt.Fprintln(v.out)

	if len(page.Posts) == 0 {
		fmt.Fprintln(v.out, "No posts found.")
	}
	for _, post := range page.Posts {
		line := v.title.Render(post.Title)
		var details []string
		if post.Category != nil {
			details = append(details, post.Category.Name)
		}
		if post.Author.Username != "" {
			details = append(details, "by "+post.Author.Username)
		}
		if post.PublishedAt != nil {
			details = append(details, post.PublishedAt.Format("2006-01-02"))
		}
		if len(details) > 0 {
			line += "  " + v.meta.Render(strings.Join(details, " · "))
		}
		fmt.Fprintln(v.out, line)
		if post.Excerpt != "" {
			fmt.Fprintln(v.out, "  "+post.Excerpt)
		}
	}

	if strip := v.strip(page.Pagination.Items); strip != "" {
		fmt.Fprintln(v.out)
		fmt.Fprintln(v.out, strip)
	}
	if status != "" {
		fmt.Fprintln(v.out)
		fmt.Fprintln(v.out, v.status.Render(status))
	}
}

// strip renders the page-number control, bracketing the current page.
func (v *view) strip(items []listing.StripItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch {
		case item.Ellipsis:
			parts = append(parts, v.gap.Render("…"))
		case item.Current:
			parts = append(parts, v.current.Render("["+strconv.Itoa(item.Page)+"]"))
		default:
			parts = append(parts, v.page.Render(strconv.Itoa(item.Page)))
		}
	}
	return strings.Join(parts, " ")
}

func describeQuery(page *listing.Page) string {
	m := page.Pagination
	desc := fmt.Sprintf("%d posts", m.Total)
	if m.TotalPages > 0 {
		desc += fmt.Sprintf(", page %d of %d", m.Page, m.TotalPages)
	}
	if page.Query.Search != "" {
		desc += fmt.Sprintf(", matching %q", page.Query.Search)
	}
	if page.Query.FiltersCategory() {
		desc += ", in " + page.Query.Category
	}
	return desc
}

package listing

import (
	"fmt"
	"strings"

	"github.com/Albion-ops/bytewave-hub/internal/models"
)

// Filter holds the resolved predicates of a listing query. CategoryID is the
// identifier of a known category; empty means no category predicate.
type Filter struct {
	Search     string
	CategoryID string
}

// Statement is a parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// summaryColumns lists, in scan order, the columns a data statement returns:
// id, title, slug, excerpt, featured_image, published_at, category_id,
// category name, category slug, author username.
const summaryColumns = `p.id, p.title, p.slug, p.excerpt, COALESCE(p.featured_image, ''),
	p.published_at, p.category_id, c.name, c.slug, COALESCE(a.username, '')`

const summaryJoins = `
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN profiles a ON a.id = p.author_id`

// CountStatement builds the count-only query for filter.
func CountStatement(filter Filter) Statement {
	where, args := filter.where()
	return Statement{
		SQL:  "SELECT COUNT(*) FROM posts p WHERE " + where,
		Args: args,
	}
}

// SelectStatement builds the data query for filter restricted to window r.
// Its WHERE clause is the one CountStatement produces for the same filter.
func SelectStatement(filter Filter, r Range) Statement {
	where, args := filter.where()
	n := len(args)
	query := fmt.Sprintf(`SELECT %s
	FROM posts p%s
	WHERE %s
	ORDER BY p.published_at DESC
	LIMIT $%d OFFSET $%d`, summaryColumns, summaryJoins, where, n+1, n+2)
	return Statement{
		SQL:  query,
		Args: append(args, r.Limit(), r.Offset()),
	}
}

func (f Filter) where() (string, []any) {
	clauses := []string{fmt.Sprintf("p.status = '%s'", models.PostStatusPublished)}
	var args []any

	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+EscapeLike(search)+"%")
		clauses = append(clauses, fmt.Sprintf(`(p.title ILIKE $%[1]d ESCAPE '\' OR p.content ILIKE $%[1]d ESCAPE '\')`, len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		clauses = append(clauses, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE metacharacters in s so it matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Match evaluates the filter against a post in memory, with the same
// semantics as the SQL predicates.
func (f Filter) Match(p *models.Post) bool {
	if p.Status != models.PostStatusPublished {
		return false
	}
	if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Content), search)
}

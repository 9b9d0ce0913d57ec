package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Albion-ops/bytewave-hub/internal/database"
	"github.com/Albion-ops/bytewave-hub/internal/listing"
	"github.com/Albion-ops/bytewave-hub/internal/models"
	"github.com/lib/pq"
)

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, COALESCE(p.featured_image, ''),
	p.status, p.published_at, p.category_id, p.author_id, p.created_at, p.updated_at`

const postDetailQuery = `
	SELECT ` + postColumns + `,
		c.name, c.slug, COALESCE(a.username, ''), COALESCE(a.full_name, '')
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN profiles a ON a.id = p.author_id`

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// CountPublished counts published posts matching the listing filter
func (r *postRepo) CountPublished(ctx context.Context, filter listing.Filter) (int, error) {
	stmt := listing.CountStatement(filter)

	var count int
	err := r.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&count)
	return count, err
}

// ListPublished fetches one window of published posts matching the listing filter
func (r *postRepo) ListPublished(ctx context.Context, filter listing.Filter, window listing.Range) ([]models.PostSummary, error) {
	stmt := listing.SelectStatement(filter, window)

	rows, err := r.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.PostSummary, 0, window.Limit())
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, summary)
	}
	return posts, rows.Err()
}

// GetPublishedBySlug retrieves a published post with its category and author
func (r *postRepo) GetPublishedBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	query := postDetailQuery + ` WHERE p.slug = $1 AND p.status = $2`

	detail, err := scanDetail(r.db.QueryRowContext(ctx, query, slug, models.PostStatusPublished))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListRelated returns up to limit other published posts of the same category
func (r *postRepo) ListRelated(ctx context.Context, categoryID, excludeID string, limit int) ([]models.PostSummary, error) {
	if categoryID == "" || limit <= 0 {
		return []models.PostSummary{}, nil
	}

	// One extra row covers the excluded post itself.
	candidates, err := r.ListPublished(ctx, listing.Filter{CategoryID: categoryID}, listing.PageRange(1, limit+1))
	if err != nil {
		return nil, err
	}

	related := make([]models.PostSummary, 0, limit)
	for _, post := range candidates {
		if post.ID == excludeID {
			continue
		}
		if len(related) == limit {
			break
		}
		related = append(related, post)
	}
	return related, nil
}

// ListAll returns every post regardless of status, newest first
func (r *postRepo) ListAll(ctx context.Context) ([]*models.PostDetail, error) {
	rows, err := r.db.QueryContext(ctx, postDetailQuery+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.PostDetail{}
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, detail)
	}
	return posts, rows.Err()
}

// GetByID retrieves a post by ID in any status
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, slug, excerpt, content, featured_image, status,
			published_at, category_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Content, nullString(post.FeaturedImage),
		post.Status, post.PublishedAt, post.CategoryID, post.AuthorID, post.CreatedAt, post.UpdatedAt,
	)
	return translateError(err)
}

// Update overwrites the editable fields of a post
func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, content = $4, featured_image = $5,
			status = $6, published_at = $7, category_id = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content, nullString(post.FeaturedImage),
		post.Status, post.PublishedAt, post.CategoryID, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(result)
}

// Delete removes a post and, by cascade, its comments
func (r *postRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// SlugExists checks if another post already uses slug. excludeID may be
// empty when creating.
func (r *postRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)", slug).Scan(&exists)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)", slug, excludeID).Scan(&exists)
	}
	return exists, err
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// StreamAll streams all posts for export (memory efficient)
func (r *postRepo) StreamAll(ctx context.Context, callback func(*models.Post) error) error {
	query := `SELECT ` + postColumns + ` FROM posts p ORDER BY p.created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return err
		}
		if err := callback(post); err != nil {
			return err
		}
	}
	return rows.Err()
}

// BatchInsert inserts multiple posts using PostgreSQL COPY
func (r *postRepo) BatchInsert(ctx context.Context, posts []*models.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("posts",
		"id", "title", "slug", "excerpt", "content", "featured_image", "status",
		"published_at", "category_id", "author_id", "created_at", "updated_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for _, post := range posts {
		_, err := stmt.ExecContext(ctx,
			post.ID, post.Title, post.Slug, post.Excerpt, post.Content, nullString(post.FeaturedImage),
			string(post.Status), post.PublishedAt, post.CategoryID, post.AuthorID, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to buffer post %s: %w", post.Slug, err)
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(posts), nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var publishedAt sql.NullTime
	var categoryID sql.NullString

	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.FeaturedImage,
		&post.Status, &publishedAt, &categoryID, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.PublishedAt = timePtr(publishedAt)
	post.CategoryID = stringPtr(categoryID)
	return &post, nil
}

func scanDetail(row rowScanner) (*models.PostDetail, error) {
	var detail models.PostDetail
	var publishedAt sql.NullTime
	var categoryID, categoryName, categorySlug sql.NullString

	err := row.Scan(
		&detail.ID, &detail.Title, &detail.Slug, &detail.Excerpt, &detail.Content, &detail.FeaturedImage,
		&detail.Status, &publishedAt, &categoryID, &detail.AuthorID, &detail.CreatedAt, &detail.UpdatedAt,
		&categoryName, &categorySlug, &detail.Author.Username, &detail.Author.FullName,
	)
	if err != nil {
		return nil, err
	}

	detail.PublishedAt = timePtr(publishedAt)
	detail.CategoryID = stringPtr(categoryID)
	if categoryName.Valid {
		detail.Category = &models.CategoryRef{Name: categoryName.String, Slug: categorySlug.String}
	}
	return &detail, nil
}

// scanSummary reads one row of a listing data statement
func scanSummary(row rowScanner) (models.PostSummary, error) {
	var summary models.PostSummary
	var publishedAt sql.NullTime
	var categoryID, categoryName, categorySlug sql.NullString

	err := row.Scan(
		&summary.ID, &summary.Title, &summary.Slug, &summary.Excerpt, &summary.FeaturedImage,
		&publishedAt, &categoryID, &categoryName, &categorySlug, &summary.Author.Username,
	)
	if err != nil {
		return summary, err
	}

	summary.PublishedAt = timePtr(publishedAt)
	summary.CategoryID = stringPtr(categoryID)
	if categoryName.Valid {
		summary.Category = &models.CategoryRef{Name: categoryName.String, Slug: categorySlug.String}
	}
	return summary, nil
}

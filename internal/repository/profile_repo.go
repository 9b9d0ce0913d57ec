package repository

import (
	"context"
	"database/sql"

	"github.com/Albion-ops/bytewave-hub/internal/database"
	"github.com/Albion-ops/bytewave-hub/internal/models"
)

// profileRepo is the concrete implementation of ProfileRepository
type profileRepo struct {
	db *database.DB
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db *database.DB) ProfileRepository {
	return &profileRepo{db: db}
}

// Upsert inserts a profile or refreshes its names
func (r *profileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, username, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Username, nullString(profile.FullName), profile.CreatedAt,
	)
	return translateError(err)
}

// CreateIfMissing inserts profile unless its ID is already taken. It
// reports whether a row was created. A taken username is ErrDuplicate.
func (r *profileRepo) CreateIfMissing(ctx context.Context, profile *models.Profile) (bool, error) {
	query := `
		INSERT INTO profiles (id, username, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Username, nullString(profile.FullName), profile.CreatedAt,
	)
	if err != nil {
		return false, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// GetByID retrieves a profile by ID
func (r *profileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, username, COALESCE(full_name, ''), created_at FROM profiles WHERE id = $1`

	var p models.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Username, &p.FullName, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists checks if a profile with the given ID exists
func (r *profileRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// ListWithRoles lists all profiles with their role, newest first. Users
// without a role record are reported with the default role.
func (r *profileRepo) ListWithRoles(ctx context.Context) ([]models.UserWithRole, error) {
	query := `
		SELECT p.id, p.username, COALESCE(p.full_name, ''), p.created_at, COALESCE(r.role, $1)
		FROM profiles p
		LEFT JOIN user_roles r ON r.user_id = p.id
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, models.DefaultRole)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserWithRole{}
	for rows.Next() {
		var u models.UserWithRole
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.CreatedAt, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the total number of profiles
func (r *profileRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	return count, err
}

// GetRole retrieves the role record of a user, nil when none exists
func (r *profileRepo) GetRole(ctx context.Context, userID string) (*models.UserRole, error) {
	query := `SELECT user_id, role, created_at FROM user_roles WHERE user_id = $1`

	var role models.UserRole
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&role.UserID, &role.Role, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SetRole replaces the role of a user in one statement. user_roles is keyed
// on user_id, so the user holds exactly one role record afterwards.
func (r *profileRepo) SetRole(ctx context.Context, userID string, role models.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.ExecContext(ctx, query, userID, role)
	return translateError(err)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Albion-ops/bytewave-hub/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Direction selects how Migrate moves the schema.
type Direction string

const (
	// Up applies every pending migration.
	Up Direction = "up"
	// Down rolls back the most recent migration.
	Down Direction = "down"
)

// ParseDirection validates a direction given on the command line.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	}
	return "", fmt.Errorf("unknown migrate direction %q", s)
}

// DB wraps the blog's PostgreSQL pool
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens the pool described by cfg and pings it within cfg.ConnectTimeout.
func New(ctx context.Context, cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s on %s: %w", cfg.Name, cfg.Host, err)
	}

	db := &DB{DB: pool, log: log.With().Str("component", "database").Logger()}
	db.log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")
	return db, nil
}

// Migrate moves the schema in direction using the SQL files under
// migrationsPath. Nothing to do is not an error.
func (db *DB) Migrate(migrationsPath string, direction Direction) error {
	m, err := db.migrator(migrationsPath)
	if err != nil {
		return err
	}

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %s: %w", direction, err)
	}

	version, dirty, err := versionOf(m)
	if err != nil {
		return err
	}
	db.log.Info().
		Str("direction", string(direction)).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")
	return nil
}

// RunMigrations applies every pending migration
func (db *DB) RunMigrations(migrationsPath string) error {
	return db.Migrate(migrationsPath, Up)
}

// MigrationVersion reports the applied schema version. An empty schema is
// version 0.
func (db *DB) MigrationVersion(migrationsPath string) (version uint, dirty bool, err error) {
	m, err := db.migrator(migrationsPath)
	if err != nil {
		return 0, false, err
	}
	return versionOf(m)
}

func versionOf(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func (db *DB) migrator(migrationsPath string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations from %s: %w", migrationsPath, err)
	}
	return m, nil
}

// HealthCheck pings the pool
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Stats returns pool statistics for the metrics endpoint
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// Package db implements the store repositories on PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

var _ store.Store = (*DB)(nil)

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func newMigrator(connString string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations runs all embedded SQL migrations.
func RunMigrations(connString string) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// RollbackMigrations reverts the given number of migrations.
func RollbackMigrations(connString string, steps int) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}

	return nil
}

// MigrationVersion returns the current schema version.
func MigrationVersion(connString string) (uint, bool, error) {
	m, err := newMigrator(connString)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Ping checks the database connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// Stats returns aggregate counts for metrics.
func (d *DB) Stats(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM lists),
			(SELECT COUNT(*) FROM list_items),
			(SELECT COUNT(*) FROM list_items WHERE is_adjudicated),
			(SELECT COUNT(*) FROM list_shares WHERE user_id IS NULL),
			(SELECT COUNT(*) FROM list_shares WHERE user_id IS NOT NULL)
	`

	var s models.Stats
	err := d.Pool.QueryRow(ctx, query).Scan(
		&s.Users, &s.Lists, &s.Items, &s.ClaimedItems, &s.PendingShares, &s.BoundShares,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

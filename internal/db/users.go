package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

const userColumns = `id, email, password_hash, provider, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Provider, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a credential record.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, provider)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Provider).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrEmailExists
	}
	return err
}

// GetUserByID returns a user by id.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail returns a user by normalized email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// UpdateUser writes email, password hash and provider.
func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, provider = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.Provider).Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return store.ErrEmailExists
	}
	return err
}

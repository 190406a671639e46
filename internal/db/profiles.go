package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// GetProfile returns a profile by user id.
func (d *DB) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, email, display_name, avatar_url, created_at, updated_at
		FROM profiles WHERE id = $1
	`
	var p models.Profile
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a profile for an existing user.
func (d *DB) CreateProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query, profile.ID, profile.Email, profile.DisplayName, profile.AvatarURL).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicateProfile
	}
	if isForeignKeyViolation(err) {
		return store.ErrUserNotFound
	}
	return err
}

// UpdateProfile writes the mutable profile fields.
func (d *DB) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET email = $2, display_name = $3, avatar_url = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query, profile.ID, profile.Email, profile.DisplayName, profile.AvatarURL).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrProfileNotFound
	}
	return err
}

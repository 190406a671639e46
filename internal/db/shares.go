package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

const shareColumns = `id, list_id, email, user_id, shared_by, created_at`

func scanShare(row pgx.Row) (*models.ListShare, error) {
	var s models.ListShare
	err := row.Scan(&s.ID, &s.ListID, &s.Email, &s.UserID, &s.SharedBy, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertShares inserts one row per email in a single transaction, skipping
// (list_id, email) pairs that already exist.
func (d *DB) InsertShares(ctx context.Context, listID uuid.UUID, emails []string, sharedBy *uuid.UUID) ([]models.ListShare, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO list_shares (list_id, email, shared_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_id, email) DO NOTHING
		RETURNING ` + shareColumns

	created := []models.ListShare{}
	for _, email := range emails {
		share, err := scanShare(tx.QueryRow(ctx, query, listID, email, sharedBy))
		if errors.Is(err, store.ErrShareNotFound) {
			// conflict: row already existed
			continue
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrListNotFound
		}
		if err != nil {
			return nil, err
		}
		created = append(created, *share)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ListShares returns the shares of a list, newest first.
func (d *DB) ListShares(ctx context.Context, listID uuid.UUID) ([]models.ListShare, error) {
	query := `SELECT ` + shareColumns + ` FROM list_shares WHERE list_id = $1 ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []models.ListShare{}
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *s)
	}
	return shares, rows.Err()
}

// GetShareForUser finds a share of the list bound to userID, or a pending
// share addressed to email. A share bound to someone else never matches.
func (d *DB) GetShareForUser(ctx context.Context, listID, userID uuid.UUID, email string) (*models.ListShare, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM list_shares
		WHERE list_id = $1 AND (user_id = $2 OR ($3 <> '' AND email = $3 AND user_id IS NULL))
		ORDER BY (user_id = $2) DESC NULLS LAST
		LIMIT 1
	`
	return scanShare(d.Pool.QueryRow(ctx, query, listID, userID, email))
}

// ClaimPendingShares binds pending shares for email to userID. The
// user_id IS NULL predicate keeps the binding one-way.
func (d *DB) ClaimPendingShares(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	result, err := d.Pool.Exec(ctx,
		`UPDATE list_shares SET user_id = $2 WHERE email = $1 AND user_id IS NULL`,
		email, userID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// EnsureBoundShare creates a share bound to userID if (listID, email) is new.
func (d *DB) EnsureBoundShare(ctx context.Context, listID uuid.UUID, email string, userID uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO list_shares (list_id, email, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_id, email) DO NOTHING
	`, listID, email, userID)
	if isForeignKeyViolation(err) {
		return store.ErrListNotFound
	}
	return err
}

// DeleteShare removes the share for (listID, email).
func (d *DB) DeleteShare(ctx context.Context, listID uuid.UUID, email string) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM list_shares WHERE list_id = $1 AND email = $2`, listID, email)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return store.ErrShareNotFound
	}
	return nil
}

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

// CreateList inserts a list.
func (d *DB) CreateList(ctx context.Context, list *models.List) error {
	query := `
		INSERT INTO lists (owner_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query, list.OwnerID, list.Name, list.Description).
		Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)
}

// GetList returns a list by id.
func (d *DB) GetList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM lists WHERE id = $1
	`
	var l models.List
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListListsByOwner returns the owner's lists, newest first.
func (d *DB) ListListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at
		FROM lists WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// ListListsSharedWith returns lists shared with the user, newest first,
// with the inviter's display name.
func (d *DB) ListListsSharedWith(ctx context.Context, userID uuid.UUID, email string) ([]models.SharedList, error) {
	query := `
		SELECT id, owner_id, name, description, created_at, updated_at, shared_by, shared_by_name
		FROM (
			SELECT DISTINCT ON (l.id)
			       l.id, l.owner_id, l.name, l.description, l.created_at, l.updated_at,
			       s.shared_by,
			       COALESCE(NULLIF(p.display_name, ''), p.email, '') AS shared_by_name
			FROM list_shares s
			JOIN lists l ON l.id = s.list_id
			LEFT JOIN profiles p ON p.id = s.shared_by
			WHERE (s.user_id = $1 OR (s.user_id IS NULL AND $2 <> '' AND s.email = $2))
			  AND l.owner_id <> $1
			ORDER BY l.id, s.created_at
		) shared
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, userID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []models.SharedList{}
	for rows.Next() {
		var l models.SharedList
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt,
			&l.SharedBy, &l.SharedByName,
		); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// UpdateList writes name and description.
func (d *DB) UpdateList(ctx context.Context, list *models.List) error {
	query := `
		UPDATE lists SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query, list.ID, list.Name, list.Description).Scan(&list.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrListNotFound
	}
	return err
}

// DeleteListIfUnclaimed locks the list row, checks for claimed items and
// deletes the list in one transaction. Claims take a share lock on the same
// row, so a claim cannot land between the check and the delete.
func (d *DB) DeleteListIfUnclaimed(ctx context.Context, id uuid.UUID) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM lists WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrListNotFound
	}
	if err != nil {
		return err
	}

	var claimed bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM list_items WHERE list_id = $1 AND is_adjudicated)`, id,
	).Scan(&claimed)
	if err != nil {
		return err
	}
	if claimed {
		return store.ErrListHasClaimedItems
	}

	// items and shares go with the list (ON DELETE CASCADE)
	if _, err := tx.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

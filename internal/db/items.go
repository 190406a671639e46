package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

const itemColumns = `id, list_id, name, description, image_urls, urls, importance, estimated_cost,
	is_adjudicated, adjudicated_by, adjudicated_at, created_at, updated_at`

func scanItem(row pgx.Row) (*models.ListItem, error) {
	var it models.ListItem
	err := row.Scan(
		&it.ID, &it.ListID, &it.Name, &it.Description, &it.ImageURLs, &it.URLs,
		&it.Importance, &it.EstimatedCost,
		&it.IsAdjudicated, &it.AdjudicatedBy, &it.AdjudicatedAt,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if it.ImageURLs == nil {
		it.ImageURLs = []string{}
	}
	if it.URLs == nil {
		it.URLs = []string{}
	}
	return &it, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateItem inserts an unclaimed item.
func (d *DB) CreateItem(ctx context.Context, item *models.ListItem) error {
	query := `
		INSERT INTO list_items (list_id, name, description, image_urls, urls, importance, estimated_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + itemColumns
	created, err := scanItem(d.Pool.QueryRow(ctx, query,
		item.ListID, item.Name, item.Description, nonNil(item.ImageURLs), nonNil(item.URLs),
		item.Importance, item.EstimatedCost,
	))
	if isForeignKeyViolation(err) {
		return store.ErrListNotFound
	}
	if err != nil {
		return err
	}
	*item = *created
	return nil
}

// GetItem returns an item of a list.
func (d *DB) GetItem(ctx context.Context, listID, itemID uuid.UUID) (*models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE id = $1 AND list_id = $2`
	return scanItem(d.Pool.QueryRow(ctx, query, itemID, listID))
}

// ListItems returns the items of a list, oldest first.
func (d *DB) ListItems(ctx context.Context, listID uuid.UUID) ([]models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE list_id = $1 ORDER BY created_at, id`
	rows, err := d.Pool.Query(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ListItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItem writes item metadata, leaving claim columns untouched.
func (d *DB) UpdateItem(ctx context.Context, item *models.ListItem) error {
	query := `
		UPDATE list_items
		SET name = $3, description = $4, image_urls = $5, urls = $6,
		    importance = $7, estimated_cost = $8, updated_at = now()
		WHERE id = $1 AND list_id = $2
		RETURNING ` + itemColumns
	updated, err := scanItem(d.Pool.QueryRow(ctx, query,
		item.ID, item.ListID, item.Name, item.Description, nonNil(item.ImageURLs), nonNil(item.URLs),
		item.Importance, item.EstimatedCost,
	))
	if err != nil {
		return err
	}
	*item = *updated
	return nil
}

// DeleteItemIfUnclaimed deletes an item unless it is claimed. The item row
// lock makes the check and the delete atomic with respect to claims.
func (d *DB) DeleteItemIfUnclaimed(ctx context.Context, listID, itemID uuid.UUID) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockItem(ctx, tx, listID, itemID)
	if err != nil {
		return err
	}
	if current.IsAdjudicated {
		return store.ErrItemClaimed
	}

	if _, err := tx.Exec(ctx, `DELETE FROM list_items WHERE id = $1`, itemID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockItem takes a share lock on the parent list (blocking a concurrent list
// delete) and a row lock on the item.
func lockItem(ctx context.Context, tx pgx.Tx, listID, itemID uuid.UUID) (*models.ListItem, error) {
	var locked uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM lists WHERE id = $1 FOR SHARE`, listID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM list_items WHERE id = $1 AND list_id = $2 FOR UPDATE`
	return scanItem(tx.QueryRow(ctx, query, itemID, listID))
}

// ClaimItem marks an item claimed by userID unless another user holds it.
func (d *DB) ClaimItem(ctx context.Context, listID, itemID, userID uuid.UUID, at time.Time) (*models.ListItem, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockItem(ctx, tx, listID, itemID)
	if err != nil {
		return nil, err
	}
	if current.IsAdjudicated {
		if current.IsClaimedBy(userID) {
			return current, nil
		}
		return nil, store.ErrItemClaimed
	}

	query := `
		UPDATE list_items
		SET is_adjudicated = true, adjudicated_by = $2, adjudicated_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns
	claimed, err := scanItem(tx.QueryRow(ctx, query, itemID, userID, at.UTC()))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return claimed, nil
}

// UnclaimItem releases a claim held by userID.
func (d *DB) UnclaimItem(ctx context.Context, listID, itemID, userID uuid.UUID) (*models.ListItem, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockItem(ctx, tx, listID, itemID)
	if err != nil {
		return nil, err
	}
	if !current.IsAdjudicated {
		return current, nil
	}
	if !current.IsClaimedBy(userID) {
		return nil, store.ErrNotClaimant
	}

	query := `
		UPDATE list_items
		SET is_adjudicated = false, adjudicated_by = NULL, adjudicated_at = NULL, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns
	released, err := scanItem(tx.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return released, nil
}

// ImageURLsInUse reports which of the URLs appear in any item's image list.
func (d *DB) ImageURLsInUse(ctx context.Context, urls []string) (map[string]bool, error) {
	inUse := make(map[string]bool)
	if len(urls) == 0 {
		return inUse, nil
	}

	query := `
		SELECT DISTINCT u
		FROM list_items, unnest(image_urls) AS u
		WHERE image_urls && $1 AND u = ANY($1)
	`
	rows, err := d.Pool.Query(ctx, query, urls)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		inUse[u] = true
	}
	return inUse, rows.Err()
}

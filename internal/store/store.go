// Package store defines the typed repositories the services depend on.
// Adapters live in internal/db (Postgres) and internal/store/memstore.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

// UserRepository persists credential records.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// ProfileRepository persists public profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// CreateProfile returns ErrDuplicateProfile if a profile already exists for the id.
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

// ListRepository persists lists.
type ListRepository interface {
	CreateList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, id uuid.UUID) (*models.List, error)
	ListListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error)
	// ListListsSharedWith returns lists shared with the user id or, for
	// pending shares, with the email.
	ListListsSharedWith(ctx context.Context, userID uuid.UUID, email string) ([]models.SharedList, error)
	UpdateList(ctx context.Context, list *models.List) error
	// DeleteListIfUnclaimed deletes the list with its items and shares in one
	// atomic step. Returns ErrListHasClaimedItems without deleting anything
	// if any item is adjudicated.
	DeleteListIfUnclaimed(ctx context.Context, id uuid.UUID) error
}

// ItemRepository persists list items and their claim state.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.ListItem) error
	GetItem(ctx context.Context, listID, itemID uuid.UUID) (*models.ListItem, error)
	ListItems(ctx context.Context, listID uuid.UUID) ([]models.ListItem, error)
	// UpdateItem writes metadata only; claim columns are untouched.
	UpdateItem(ctx context.Context, item *models.ListItem) error
	// DeleteItemIfUnclaimed returns ErrItemClaimed if the item is adjudicated.
	DeleteItemIfUnclaimed(ctx context.Context, listID, itemID uuid.UUID) error
	// ClaimItem marks the item claimed by userID unless someone else holds it,
	// in which case ErrItemClaimed is returned. Re-claiming is a no-op.
	ClaimItem(ctx context.Context, listID, itemID, userID uuid.UUID, at time.Time) (*models.ListItem, error)
	// UnclaimItem releases a claim held by userID. Returns ErrNotClaimant if
	// another user holds it; releasing an available item is a no-op.
	UnclaimItem(ctx context.Context, listID, itemID, userID uuid.UUID) (*models.ListItem, error)
	// ImageURLsInUse reports which of the given image URLs are referenced by any item.
	ImageURLsInUse(ctx context.Context, urls []string) (map[string]bool, error)
}

// ShareRepository persists list invitations.
type ShareRepository interface {
	// InsertShares inserts one row per email, skipping (list_id, email) pairs
	// that already exist. Returns the rows actually created.
	InsertShares(ctx context.Context, listID uuid.UUID, emails []string, sharedBy *uuid.UUID) ([]models.ListShare, error)
	ListShares(ctx context.Context, listID uuid.UUID) ([]models.ListShare, error)
	// GetShareForUser returns the share bound to userID, or a still pending
	// share addressed to email.
	GetShareForUser(ctx context.Context, listID, userID uuid.UUID, email string) (*models.ListShare, error)
	// ClaimPendingShares binds every pending share for email to userID and
	// returns the number of rows bound. Bound rows are never touched.
	ClaimPendingShares(ctx context.Context, email string, userID uuid.UUID) (int64, error)
	// EnsureBoundShare creates a share for (listID, email) already bound to
	// userID if none exists.
	EnsureBoundShare(ctx context.Context, listID uuid.UUID, email string, userID uuid.UUID) error
	DeleteShare(ctx context.Context, listID uuid.UUID, email string) error
}

// StatsReader exposes aggregate counts for metrics.
type StatsReader interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// Store bundles every repository plus lifecycle.
type Store interface {
	UserRepository
	ProfileRepository
	ListRepository
	ItemRepository
	ShareRepository
	StatsReader
	Ping(ctx context.Context) error
	Close()
}

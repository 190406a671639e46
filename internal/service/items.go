package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/metrics"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/validation"
)

// ItemInput carries item metadata. On update, nil fields are left alone.
type ItemInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	ImageURLs     []string `json:"image_urls"`
	URLs          []string `json:"urls"`
	Importance    *int     `json:"importance"`
	EstimatedCost *float64 `json:"estimated_cost"`
}

func (in ItemInput) validate() error {
	if in.Name != nil {
		if valid, msg := validation.ValidateName(*in.Name); !valid {
			return invalid(msg)
		}
	}
	if in.Description != nil && len(*in.Description) > validation.MaxDescriptionLength {
		return invalid("description is too long")
	}
	if in.Importance != nil && !validation.ValidateImportance(*in.Importance) {
		return invalid("importance must be between 1 and 5")
	}
	if in.EstimatedCost != nil && !validation.ValidateCost(*in.EstimatedCost) {
		return invalid("estimated cost must not be negative")
	}
	if valid, msg := validation.ValidateURLs(in.URLs); !valid {
		return invalid(msg)
	}
	if valid, msg := validation.ValidateURLs(in.ImageURLs); !valid {
		return invalid(msg)
	}
	return nil
}

func (in ItemInput) apply(item *models.ListItem) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.ImageURLs != nil {
		item.ImageURLs = in.ImageURLs
	}
	if in.URLs != nil {
		item.URLs = in.URLs
	}
	if in.Importance != nil {
		item.Importance = *in.Importance
	}
	if in.EstimatedCost != nil {
		item.EstimatedCost = *in.EstimatedCost
	}
}

// ItemService manages list items and the claim state machine.
//
// An item is either available or claimed by one user. Anyone with access to
// the list may claim an available item; only the claimant may release it.
// The owner sees whether an item is claimed, never by whom.
type ItemService struct {
	store store.Store
	now   func() time.Time
}

// visible hides the claimant from the owner.
func visible(role authz.Role, item models.ListItem) models.ListItem {
	if authz.SeesClaims(role) {
		return item
	}
	return item.Redacted()
}

// ListItems returns the items of a list the actor can see.
func (s *ItemService) ListItems(ctx context.Context, actor *models.User, listID uuid.UUID) ([]models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(role); err != nil {
		return nil, forbidden(err)
	}

	items, err := s.store.ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = visible(role, items[i])
	}
	return items, nil
}

// GetItem returns one item of a list the actor can see.
func (s *ItemService) GetItem(ctx context.Context, actor *models.User, listID, itemID uuid.UUID) (*models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(role); err != nil {
		return nil, forbidden(err)
	}

	item, err := s.store.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, fromStore(err)
	}
	out := visible(role, *item)
	return &out, nil
}

// CreateItem adds an item to a list. Owner only.
func (s *ItemService) CreateItem(ctx context.Context, actor *models.User, listID uuid.UUID, in ItemInput) (*models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanEditList(role); err != nil {
		return nil, forbidden(err)
	}
	if in.Name == nil {
		return nil, invalid("name is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &models.ListItem{
		ListID:     listID,
		Importance: models.DefaultImportance,
		ImageURLs:  []string{},
		URLs:       []string{},
	}
	in.apply(item)

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fromStore(err)
	}
	out := visible(role, *item)
	return &out, nil
}

// UpdateItem changes item metadata. Owner only; claim state is untouched.
func (s *ItemService) UpdateItem(ctx context.Context, actor *models.User, listID, itemID uuid.UUID, in ItemInput) (*models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanEditList(role); err != nil {
		return nil, forbidden(err)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, fromStore(err)
	}
	in.apply(item)
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, fromStore(err)
	}
	out := visible(role, *item)
	return &out, nil
}

// DeleteItem removes an unclaimed item. Owner only.
func (s *ItemService) DeleteItem(ctx context.Context, actor *models.User, listID, itemID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return err
	}
	if err := authz.CanEditList(role); err != nil {
		return forbidden(err)
	}

	err = s.store.DeleteItemIfUnclaimed(ctx, listID, itemID)
	if errors.Is(err, store.ErrItemClaimed) {
		return notAllowed("item is claimed and cannot be deleted")
	}
	return fromStore(err)
}

// SetAdjudicated claims (true) or releases (false) an item for the actor.
func (s *ItemService) SetAdjudicated(ctx context.Context, actor *models.User, listID, itemID uuid.UUID, adjudicated bool) (*models.ListItem, error) {
	if adjudicated {
		return s.claim(ctx, actor, listID, itemID)
	}
	return s.release(ctx, actor, listID, itemID)
}

func (s *ItemService) claim(ctx context.Context, actor *models.User, listID, itemID uuid.UUID) (*models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanClaim(role); err != nil {
		metrics.RecordClaim("claim", "forbidden")
		return nil, forbidden(err)
	}

	item, err := s.store.ClaimItem(ctx, listID, itemID, actor.ID, s.now())
	if err != nil {
		metrics.RecordClaim("claim", "rejected")
		return nil, fromStore(err)
	}

	metrics.RecordClaim("claim", "ok")
	out := visible(role, *item)
	return &out, nil
}

func (s *ItemService) release(ctx context.Context, actor *models.User, listID, itemID uuid.UUID) (*models.ListItem, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(role); err != nil {
		metrics.RecordClaim("release", "forbidden")
		return nil, forbidden(err)
	}

	current, err := s.store.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := authz.CanUnclaim(current, actor.ID); err != nil {
		metrics.RecordClaim("release", "forbidden")
		return nil, forbidden(err)
	}

	item, err := s.store.UnclaimItem(ctx, listID, itemID, actor.ID)
	if err != nil {
		metrics.RecordClaim("release", "rejected")
		return nil, fromStore(err)
	}

	metrics.RecordClaim("release", "ok")
	out := visible(role, *item)
	return &out, nil
}

package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

func cloneItem(it *models.ListItem) *models.ListItem {
	cp := *it
	cp.ImageURLs = copyStrings(it.ImageURLs)
	cp.URLs = copyStrings(it.URLs)
	if it.AdjudicatedBy != nil {
		by := *it.AdjudicatedBy
		cp.AdjudicatedBy = &by
	}
	if it.AdjudicatedAt != nil {
		at := *it.AdjudicatedAt
		cp.AdjudicatedAt = &at
	}
	return &cp
}

// item must be called with the mutex held.
func (s *Store) item(listID, itemID uuid.UUID) (*models.ListItem, error) {
	it, ok := s.items[itemID]
	if !ok || it.ListID != listID {
		return nil, store.ErrItemNotFound
	}
	return it, nil
}

// CreateItem inserts an unclaimed item into an existing list.
func (s *Store) CreateItem(ctx context.Context, item *models.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[item.ListID]; !ok {
		return store.ErrListNotFound
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := s.stamp()
	item.CreatedAt, item.UpdatedAt = now, now
	item.IsAdjudicated, item.AdjudicatedBy, item.AdjudicatedAt = false, nil, nil
	item.ImageURLs = copyStrings(item.ImageURLs)
	item.URLs = copyStrings(item.URLs)
	s.items[item.ID] = cloneItem(item)
	return nil
}

// GetItem returns an item of a list.
func (s *Store) GetItem(ctx context.Context, listID, itemID uuid.UUID) (*models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.item(listID, itemID)
	if err != nil {
		return nil, err
	}
	return cloneItem(it), nil
}

// ListItems returns the items of a list, oldest first.
func (s *Store) ListItems(ctx context.Context, listID uuid.UUID) ([]models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []models.ListItem{}
	for _, it := range s.items {
		if it.ListID == listID {
			items = append(items, *cloneItem(it))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// UpdateItem writes item metadata, leaving claim state untouched.
func (s *Store) UpdateItem(ctx context.Context, item *models.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.item(item.ListID, item.ID)
	if err != nil {
		return err
	}
	existing.Name = item.Name
	existing.Description = item.Description
	existing.ImageURLs = copyStrings(item.ImageURLs)
	existing.URLs = copyStrings(item.URLs)
	existing.Importance = item.Importance
	existing.EstimatedCost = item.EstimatedCost
	existing.UpdatedAt = s.stamp()

	*item = *cloneItem(existing)
	return nil
}

// DeleteItemIfUnclaimed removes an item unless it is claimed.
func (s *Store) DeleteItemIfUnclaimed(ctx context.Context, listID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.item(listID, itemID)
	if err != nil {
		return err
	}
	if it.IsAdjudicated {
		return store.ErrItemClaimed
	}
	delete(s.items, itemID)
	return nil
}

// ClaimItem marks an item claimed by userID.
func (s *Store) ClaimItem(ctx context.Context, listID, itemID, userID uuid.UUID, at time.Time) (*models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.item(listID, itemID)
	if err != nil {
		return nil, err
	}
	if it.IsAdjudicated {
		if it.IsClaimedBy(userID) {
			return cloneItem(it), nil
		}
		return nil, store.ErrItemClaimed
	}
	by := userID
	claimedAt := at.UTC()
	it.IsAdjudicated = true
	it.AdjudicatedBy = &by
	it.AdjudicatedAt = &claimedAt
	it.UpdatedAt = s.stamp()
	return cloneItem(it), nil
}

// UnclaimItem releases a claim held by userID.
func (s *Store) UnclaimItem(ctx context.Context, listID, itemID, userID uuid.UUID) (*models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.item(listID, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsAdjudicated {
		return cloneItem(it), nil
	}
	if !it.IsClaimedBy(userID) {
		return nil, store.ErrNotClaimant
	}
	it.IsAdjudicated = false
	it.AdjudicatedBy = nil
	it.AdjudicatedAt = nil
	it.UpdatedAt = s.stamp()
	return cloneItem(it), nil
}

// ImageURLsInUse reports which URLs appear in any item's image list.
func (s *Store) ImageURLsInUse(ctx context.Context, urls []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(urls))
	for _, u := range urls {
		want[u] = true
	}
	inUse := make(map[string]bool)
	for _, it := range s.items {
		for _, u := range it.ImageURLs {
			if want[u] {
				inUse[u] = true
			}
		}
	}
	return inUse, nil
}

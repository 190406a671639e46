package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// CreateList inserts a list.
func (s *Store) CreateList(ctx context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	now := s.stamp()
	list.CreatedAt, list.UpdatedAt = now, now
	cp := *list
	s.lists[list.ID] = &cp
	return nil
}

// GetList returns a list by id.
func (s *Store) GetList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, store.ErrListNotFound
	}
	cp := *l
	return &cp, nil
}

// ListListsByOwner returns the owner's lists, newest first.
func (s *Store) ListListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists := []models.List{}
	for _, l := range s.lists {
		if l.OwnerID == ownerID {
			lists = append(lists, *l)
		}
	}
	sortByCreated(lists, func(l *models.List) time.Time { return l.CreatedAt })
	return lists, nil
}

// ListListsSharedWith returns lists the user holds a share for, newest first.
func (s *Store) ListListsSharedWith(ctx context.Context, userID uuid.UUID, email string) ([]models.SharedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]bool)
	lists := []models.SharedList{}
	for _, sh := range s.shares {
		bound := sh.UserID != nil && *sh.UserID == userID
		pending := sh.UserID == nil && email != "" && sh.Email == email
		if !bound && !pending {
			continue
		}
		l, ok := s.lists[sh.ListID]
		if !ok || seen[l.ID] || l.OwnerID == userID {
			continue
		}
		seen[l.ID] = true

		shared := models.SharedList{List: *l, SharedBy: sh.SharedBy}
		if sh.SharedBy != nil {
			if p, ok := s.profiles[*sh.SharedBy]; ok {
				shared.SharedByName = p.Name()
			}
		}
		lists = append(lists, shared)
	}
	sortByCreated(lists, func(l *models.SharedList) time.Time { return l.CreatedAt })
	return lists, nil
}

// UpdateList writes name and description.
func (s *Store) UpdateList(ctx context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.lists[list.ID]
	if !ok {
		return store.ErrListNotFound
	}
	existing.Name = list.Name
	existing.Description = list.Description
	existing.UpdatedAt = s.stamp()
	list.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteListIfUnclaimed removes the list, its items and shares unless any item is claimed.
func (s *Store) DeleteListIfUnclaimed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return store.ErrListNotFound
	}
	for _, it := range s.items {
		if it.ListID == id && it.IsAdjudicated {
			return store.ErrListHasClaimedItems
		}
	}
	for itemID, it := range s.items {
		if it.ListID == id {
			delete(s.items, itemID)
		}
	}
	for shareID, sh := range s.shares {
		if sh.ListID == id {
			delete(s.shares, shareID)
		}
	}
	delete(s.lists, id)
	return nil
}

package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// shareByEmail must be called with the mutex held.
func (s *Store) shareByEmail(listID uuid.UUID, email string) *models.ListShare {
	for _, sh := range s.shares {
		if sh.ListID == listID && sh.Email == email {
			return sh
		}
	}
	return nil
}

// InsertShares inserts shares, skipping existing (list, email) pairs.
func (s *Store) InsertShares(ctx context.Context, listID uuid.UUID, emails []string, sharedBy *uuid.UUID) ([]models.ListShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[listID]; !ok {
		return nil, store.ErrListNotFound
	}

	created := []models.ListShare{}
	for _, email := range emails {
		if s.shareByEmail(listID, email) != nil {
			continue
		}
		sh := &models.ListShare{
			ID:        uuid.New(),
			ListID:    listID,
			Email:     email,
			CreatedAt: s.stamp(),
		}
		if sharedBy != nil {
			by := *sharedBy
			sh.SharedBy = &by
		}
		s.shares[sh.ID] = sh
		created = append(created, *sh)
	}
	return created, nil
}

// ListShares returns the shares of a list, newest first.
func (s *Store) ListShares(ctx context.Context, listID uuid.UUID) ([]models.ListShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares := []models.ListShare{}
	for _, sh := range s.shares {
		if sh.ListID == listID {
			shares = append(shares, *sh)
		}
	}
	sortByCreated(shares, func(sh *models.ListShare) time.Time { return sh.CreatedAt })
	return shares, nil
}

// GetShareForUser finds a share bound to userID, or a pending share
// addressed to email. Bound shares win.
func (s *Store) GetShareForUser(ctx context.Context, listID, userID uuid.UUID, email string) (*models.ListShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending *models.ListShare
	for _, sh := range s.shares {
		if sh.ListID != listID {
			continue
		}
		if sh.UserID != nil && *sh.UserID == userID {
			cp := *sh
			return &cp, nil
		}
		if pending == nil && sh.UserID == nil && email != "" && sh.Email == email {
			pending = sh
		}
	}
	if pending == nil {
		return nil, store.ErrShareNotFound
	}
	cp := *pending
	return &cp, nil
}

// ClaimPendingShares binds pending shares for email to userID.
func (s *Store) ClaimPendingShares(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, sh := range s.shares {
		if sh.Email == email && sh.UserID == nil {
			id := userID
			sh.UserID = &id
			n++
		}
	}
	return n, nil
}

// EnsureBoundShare creates a share bound to userID if the pair is new.
func (s *Store) EnsureBoundShare(ctx context.Context, listID uuid.UUID, email string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[listID]; !ok {
		return store.ErrListNotFound
	}
	if s.shareByEmail(listID, email) != nil {
		return nil
	}
	id := userID
	sh := &models.ListShare{
		ID:        uuid.New(),
		ListID:    listID,
		Email:     email,
		UserID:    &id,
		CreatedAt: s.stamp(),
	}
	s.shares[sh.ID] = sh
	return nil
}

// DeleteShare removes the share for (listID, email).
func (s *Store) DeleteShare(ctx context.Context, listID uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.shareByEmail(listID, email)
	if sh == nil {
		return store.ErrShareNotFound
	}
	delete(s.shares, sh.ID)
	return nil
}

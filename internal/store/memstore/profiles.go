package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// GetProfile returns a profile by user id.
func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// CreateProfile inserts a profile keyed by user id.
func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.ID]; ok {
		return store.ErrDuplicateProfile
	}
	now := s.stamp()
	profile.CreatedAt, profile.UpdatedAt = now, now
	cp := *profile
	s.profiles[profile.ID] = &cp
	return nil
}

// UpdateProfile writes the mutable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.ID]
	if !ok {
		return store.ErrProfileNotFound
	}
	existing.Email = profile.Email
	existing.DisplayName = profile.DisplayName
	existing.AvatarURL = profile.AvatarURL
	existing.UpdatedAt = s.stamp()
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = existing.UpdatedAt
	return nil
}

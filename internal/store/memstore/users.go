package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// CreateUser inserts a user, rejecting duplicate emails.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.stamp()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// GetUserByID returns a user by id.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail returns a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// UpdateUser writes email, password hash and provider.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	existing.Email = user.Email
	existing.PasswordHash = user.PasswordHash
	existing.Provider = user.Provider
	existing.UpdatedAt = s.stamp()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ListShare is an invitation of an email address to a list.
// UserID stays nil until an account with that email claims it.
type ListShare struct {
	ID        uuid.UUID  `json:"id"`
	ListID    uuid.UUID  `json:"list_id"`
	Email     string     `json:"email"`
	UserID    *uuid.UUID `json:"user_id"`
	SharedBy  *uuid.UUID `json:"shared_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsPending returns true if no account has claimed the share yet.
func (s *ListShare) IsPending() bool {
	return s.UserID == nil
}

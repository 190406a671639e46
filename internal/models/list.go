package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a named collection of items owned by one user.
type List struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwner returns true if the given user owns the list.
func (l *List) IsOwner(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// SharedList is a list seen from a collaborator, with the inviter's display name.
type SharedList struct {
	List
	SharedBy     *uuid.UUID `json:"shared_by"`
	SharedByName string     `json:"shared_by_name,omitempty"`
}

// Package authz holds the authorization guards evaluated before every
// mutation. Guards are pure: callers resolve the list and the caller's share
// first and pass the result in.
package authz

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

var (
	ErrNotOwner       = errors.New("only the list owner can do this")
	ErrNoAccess       = errors.New("you do not have access to this list")
	ErrNotClaimant    = errors.New("only the user who claimed the item can release it")
	ErrForeignObject  = errors.New("object belongs to another user")
	ErrAnonymousShare = errors.New("sign in to share this list")
	ErrNotProfileUser = errors.New("you can only change your own profile")
)

// Role is the relation of a user to a list.
type Role int

const (
	RoleNone Role = iota
	RoleCollaborator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleCollaborator:
		return "collaborator"
	default:
		return "none"
	}
}

// RoleFor derives the role of userID on list. share is the caller's share row,
// nil if there is none.
func RoleFor(list *models.List, userID uuid.UUID, share *models.ListShare) Role {
	switch {
	case list.IsOwner(userID):
		return RoleOwner
	case share != nil:
		return RoleCollaborator
	default:
		return RoleNone
	}
}

// CanView allows owners and collaborators to read a list and its items.
func CanView(role Role) error {
	if role == RoleNone {
		return ErrNoAccess
	}
	return nil
}

// CanEditList allows only the owner to change a list, its items or its shares.
func CanEditList(role Role) error {
	if role != RoleOwner {
		return ErrNotOwner
	}
	return nil
}

// CanShare allows anyone with access to invite others.
func CanShare(role Role) error {
	return CanView(role)
}

// CanClaim allows anyone with access to claim an item. Owners are not
// excluded.
func CanClaim(role Role) error {
	return CanView(role)
}

// CanUnclaim allows releasing a claim only to the user holding it.
func CanUnclaim(item *models.ListItem, userID uuid.UUID) error {
	if item.IsAdjudicated && !item.IsClaimedBy(userID) {
		return ErrNotClaimant
	}
	return nil
}

// SeesClaims reports whether the role may see who claimed an item. The owner
// never does.
func SeesClaims(role Role) bool {
	return role != RoleOwner
}

// CanDeleteObject allows deleting only objects under the user's own prefix.
func CanDeleteObject(userID uuid.UUID, key string) error {
	if !strings.HasPrefix(key, userID.String()+"/") {
		return ErrForeignObject
	}
	return nil
}

// CanEditProfile allows users to change only their own profile.
func CanEditProfile(userID, profileID uuid.UUID) error {
	if userID != profileID {
		return ErrNotProfileUser
	}
	return nil
}

package store

import "errors"

// Repository error sentinels shared by every adapter.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	// Profile errors
	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateProfile = errors.New("profile already exists")

	// List errors
	ErrListNotFound        = errors.New("list not found")
	ErrListHasClaimedItems = errors.New("list has claimed items")

	// Item errors
	ErrItemNotFound = errors.New("item not found")
	ErrItemClaimed  = errors.New("item is claimed")
	ErrNotClaimant  = errors.New("item is claimed by another user")

	// Share errors
	ErrShareNotFound = errors.New("share not found")
)

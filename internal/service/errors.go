package service

import (
	"errors"
	"fmt"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// Error kinds. Every error returned by a service wraps exactly one of them.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotAllowed   = errors.New("not allowed")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Error is a classified failure with a message safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func unauthorized(msg string) error { return newError(ErrUnauthorized, msg, nil) }
func invalid(msg string) error      { return newError(ErrValidation, msg, nil) }
func notAllowed(msg string) error   { return newError(ErrNotAllowed, msg, nil) }
func notFound(msg string) error     { return newError(ErrNotFound, msg, nil) }
func conflict(msg string) error     { return newError(ErrConflict, msg, nil) }

func forbidden(cause error) error {
	return newError(ErrForbidden, cause.Error(), cause)
}

func upstream(msg string, cause error) error {
	return newError(ErrUpstream, msg, cause)
}

// Message returns the client-facing message of err. Upstream failures carry
// the provider's error along.
func Message(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return "internal server error"
	}
	if se.Kind == ErrUpstream && se.Err != nil {
		return se.Message + ": " + se.Err.Error()
	}
	return se.Message
}

// fromStore classifies repository sentinels. Unknown errors pass through and
// surface as internal errors.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrListNotFound):
		return notFound("list not found")
	case errors.Is(err, store.ErrItemNotFound):
		return notFound("item not found")
	case errors.Is(err, store.ErrProfileNotFound):
		return notFound("profile not found")
	case errors.Is(err, store.ErrUserNotFound):
		return notFound("user not found")
	case errors.Is(err, store.ErrShareNotFound):
		return notFound("share not found")
	case errors.Is(err, store.ErrEmailExists):
		return conflict("email already registered")
	case errors.Is(err, store.ErrDuplicateProfile):
		return conflict("profile already exists")
	case errors.Is(err, store.ErrItemClaimed):
		return notAllowed("item already claimed")
	case errors.Is(err, store.ErrListHasClaimedItems):
		return notAllowed("list has claimed items and cannot be deleted")
	case errors.Is(err, store.ErrNotClaimant):
		return forbidden(authz.ErrNotClaimant)
	}
	return err
}

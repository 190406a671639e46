// Package service implements the list sharing domain: lists, items and their
// claim state, invitations, profiles and authentication. Every operation runs
// its authorization guard before touching storage.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/email"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

// Mailer sends the application's emails.
type Mailer interface {
	SendShareInvitation(ctx context.Context, recipients []string, senderName, senderEmail, listName, listID string) error
	SendListFile(ctx context.Context, recipient, subject, htmlContent string, attachment email.Attachment) error
}

// Services bundles every domain service over one store.
type Services struct {
	Auth     *AuthService
	Lists    *ListService
	Items    *ItemService
	Shares   *ShareService
	Profiles *ProfileService
	Storage  *StorageService
}

// Deps are the collaborators the services are built on.
type Deps struct {
	Store    store.Store
	Tokens   TokenIssuer
	Denylist Denylist
	Mailer   Mailer
	Objects  ObjectStore
}

// Options configures the services.
type Options struct {
	AllowAnonymousShares bool
	MaxShareRecipients   int
	MaxUploadBytes       int64
	AllowedImageTypes    []string
}

// New wires every service.
func New(deps Deps, opts Options) *Services {
	return &Services{
		Auth:     &AuthService{store: deps.Store, tokens: deps.Tokens, denylist: deps.Denylist},
		Lists:    &ListService{store: deps.Store},
		Items:    &ItemService{store: deps.Store, now: time.Now},
		Shares:   &ShareService{store: deps.Store, mailer: deps.Mailer, opts: opts},
		Profiles: &ProfileService{store: deps.Store},
		Storage:  &StorageService{objects: deps.Objects, opts: opts},
	}
}

// listRepos is what access resolution needs.
type listRepos interface {
	store.ListRepository
	store.ShareRepository
}

// access loads the list and derives the actor's role on it.
func access(ctx context.Context, repos listRepos, listID uuid.UUID, actor *models.User) (*models.List, authz.Role, error) {
	list, err := repos.GetList(ctx, listID)
	if err != nil {
		return nil, authz.RoleNone, fromStore(err)
	}
	if actor == nil {
		return list, authz.RoleNone, nil
	}
	if list.IsOwner(actor.ID) {
		return list, authz.RoleOwner, nil
	}

	share, err := repos.GetShareForUser(ctx, listID, actor.ID, actor.Email)
	if err != nil && !errors.Is(err, store.ErrShareNotFound) {
		return nil, authz.RoleNone, err
	}
	return list, authz.RoleFor(list, actor.ID, share), nil
}

// requireActor rejects anonymous callers.
func requireActor(actor *models.User) error {
	if actor == nil {
		return unauthorized("authentication required")
	}
	return nil
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/validation"
)

// ListInput carries list fields. On update, nil fields are left alone.
type ListInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ListService manages lists and their shares.
type ListService struct {
	store store.Store
}

func validateListInput(in ListInput) error {
	if in.Name != nil {
		if valid, msg := validation.ValidateName(*in.Name); !valid {
			return invalid(msg)
		}
	}
	if in.Description != nil && len(*in.Description) > validation.MaxDescriptionLength {
		return invalid("description is too long")
	}
	return nil
}

// CreateList creates a list owned by the actor.
func (s *ListService) CreateList(ctx context.Context, actor *models.User, in ListInput) (*models.List, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, invalid("name is required")
	}
	if err := validateListInput(in); err != nil {
		return nil, err
	}

	list := &models.List{
		OwnerID: actor.ID,
		Name:    strings.TrimSpace(*in.Name),
	}
	if in.Description != nil {
		list.Description = *in.Description
	}
	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fromStore(err)
	}

	slog.Info("list created", "list_id", list.ID, "owner_id", actor.ID)
	return list, nil
}

// GetList returns a list the actor owns or was invited to.
func (s *ListService) GetList(ctx context.Context, actor *models.User, id uuid.UUID) (*models.List, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, role, err := access(ctx, s.store, id, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanView(role); err != nil {
		return nil, forbidden(err)
	}
	return list, nil
}

// ListOwned returns the actor's own lists.
func (s *ListService) ListOwned(ctx context.Context, actor *models.User) ([]models.List, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.store.ListListsByOwner(ctx, actor.ID)
}

// ListSharedWithMe returns lists shared with the actor, including invitations
// not yet bound to the account.
func (s *ListService) ListSharedWithMe(ctx context.Context, actor *models.User) ([]models.SharedList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.store.ListListsSharedWith(ctx, actor.ID, actor.Email)
}

// ListShares returns the invitations of a list. Owner only.
func (s *ListService) ListShares(ctx context.Context, actor *models.User, listID uuid.UUID) ([]models.ListShare, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanEditList(role); err != nil {
		return nil, forbidden(err)
	}
	return s.store.ListShares(ctx, listID)
}

// UpdateList changes name and description. Owner only.
func (s *ListService) UpdateList(ctx context.Context, actor *models.User, id uuid.UUID, in ListInput) (*models.List, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, role, err := access(ctx, s.store, id, actor)
	if err != nil {
		return nil, err
	}
	if err := authz.CanEditList(role); err != nil {
		return nil, forbidden(err)
	}
	if err := validateListInput(in); err != nil {
		return nil, err
	}

	if in.Name != nil {
		list.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		list.Description = *in.Description
	}
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fromStore(err)
	}
	return list, nil
}

// DeleteList removes a list with its items and shares. Owner only, and only
// while no item is claimed.
func (s *ListService) DeleteList(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	_, role, err := access(ctx, s.store, id, actor)
	if err != nil {
		return err
	}
	if err := authz.CanEditList(role); err != nil {
		return forbidden(err)
	}

	if err := s.store.DeleteListIfUnclaimed(ctx, id); err != nil {
		return fromStore(err)
	}

	slog.Info("list deleted", "list_id", id, "owner_id", actor.ID)
	return nil
}

// RevokeShare removes an invitation. Owner only.
func (s *ListService) RevokeShare(ctx context.Context, actor *models.User, listID uuid.UUID, emailAddr string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	_, role, err := access(ctx, s.store, listID, actor)
	if err != nil {
		return err
	}
	if err := authz.CanEditList(role); err != nil {
		return forbidden(err)
	}

	email := validation.NormalizeEmail(emailAddr)
	if !validation.ValidateEmail(email) {
		return invalid("a valid email is required")
	}
	if err := s.store.DeleteShare(ctx, listID, email); err != nil {
		return fromStore(err)
	}
	return nil
}

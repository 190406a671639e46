package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/validation"
)

// ProfileInput carries profile fields. On update, nil fields are left alone.
type ProfileInput struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

func (in ProfileInput) validate() error {
	if in.DisplayName != nil && len(strings.TrimSpace(*in.DisplayName)) > validation.MaxNameLength {
		return invalid("display name is too long")
	}
	if in.AvatarURL != nil && *in.AvatarURL != "" {
		if valid, msg := validation.ValidateURL(*in.AvatarURL); !valid {
			return invalid(msg)
		}
	}
	return nil
}

func (in ProfileInput) apply(p *models.Profile) {
	if in.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
}

// ProfileService manages public profiles.
type ProfileService struct {
	store store.Store
}

// GetProfile returns any user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return p, nil
}

// CreateProfile creates the actor's profile.
func (s *ProfileService) CreateProfile(ctx context.Context, actor *models.User, in ProfileInput) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Profile{ID: actor.ID, Email: actor.Email}
	in.apply(p)
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, fromStore(err)
	}
	return p, nil
}

// UpdateProfile changes the actor's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *models.User, id uuid.UUID, in ProfileInput) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := authz.CanEditProfile(actor.ID, id); err != nil {
		return nil, forbidden(err)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	in.apply(p)
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, fromStore(err)
	}
	return p, nil
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

func TestProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signUp(t, "ana@example.com", "Ana")
	bob := f.signUp(t, "bob@example.com", "Bob")

	p, err := f.svc.Profiles.GetProfile(ctx, bob, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.DisplayName)

	_, err = f.svc.Profiles.GetProfile(ctx, bob, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Profiles.GetProfile(ctx, nil, ana.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Profiles.UpdateProfile(ctx, bob, ana.ID, ProfileInput{DisplayName: ptr("Hacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Profiles.UpdateProfile(ctx, ana, ana.ID, ProfileInput{AvatarURL: ptr("javascript:x")})
	assert.ErrorIs(t, err, ErrValidation)

	p, err = f.svc.Profiles.UpdateProfile(ctx, ana, ana.ID, ProfileInput{DisplayName: ptr(" Ana María "), AvatarURL: ptr("https://img.example.com/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", p.DisplayName)
	assert.Equal(t, "https://img.example.com/a.png", p.AvatarURL)

	_, err = f.svc.Profiles.CreateProfile(ctx, ana, ProfileInput{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := &models.User{Email: "carla@example.com", Provider: models.ProviderPassword}
	require.NoError(t, f.store.CreateUser(ctx, user))

	p, err := f.svc.Profiles.CreateProfile(ctx, user, ProfileInput{DisplayName: ptr("Carla")})
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, "carla@example.com", p.Email)
}

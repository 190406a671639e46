package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
)

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Auth.SignUp(ctx, SignUpInput{Email: "  Ana@Example.com ", Password: "password123", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.NotEmpty(t, sess.AccessToken)
	require.NotNil(t, sess.Profile)
	assert.Equal(t, "Ana", sess.Profile.DisplayName)

	_, err = f.svc.Auth.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Auth.SignUp(ctx, SignUpInput{Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Auth.SignUp(ctx, SignUpInput{Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignUp_ClaimsPendingShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.signUp(t, "owner@example.com", "Owner")
	list := f.newList(t, owner, "Birthday")

	_, err := f.svc.Shares.ShareList(ctx, owner, ShareRequest{ListID: list.ID, RecipientEmails: []string{"Guest@Example.com"}})
	require.NoError(t, err)

	guest := f.signUp(t, "guest@example.com", "Guest")

	shares, err := f.store.ListShares(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.NotNil(t, shares[0].UserID)
	assert.Equal(t, guest.ID, *shares[0].UserID)
}

func TestSignInAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "ana@example.com", "Ana")

	_, err := f.svc.Auth.SignIn(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Auth.SignIn(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	sess, err := f.svc.Auth.SignIn(ctx, "ANA@example.com", "password123")
	require.NoError(t, err)

	user, claims, err := f.svc.Auth.Authenticate(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, user.ID)

	require.NoError(t, f.svc.Auth.SignOut(ctx, claims))
	_, _, err = f.svc.Auth.Authenticate(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = f.svc.Auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signUp(t, "ana@example.com", "Ana")
	f.signUp(t, "bob@example.com", "Bob")

	_, err := f.svc.Auth.UpdateUser(ctx, ana, UpdateUserInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Auth.UpdateUser(ctx, ana, UpdateUserInput{Email: ptr("bob@example.com")})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := f.svc.Auth.UpdateUser(ctx, ana, UpdateUserInput{Email: ptr("Ana2@Example.com"), Password: ptr("new-password")})
	require.NoError(t, err)
	assert.Equal(t, "ana2@example.com", updated.Email)

	_, err = f.svc.Auth.SignIn(ctx, "ana2@example.com", "new-password")
	assert.NoError(t, err)

	profile, err := f.store.GetProfile(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana2@example.com", profile.Email)
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	ana := f.signUp(t, "ana@example.com", "Ana")

	cu, err := f.svc.Auth.CurrentUser(context.Background(), ana)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, cu.User.ID)
	assert.Equal(t, "Ana", cu.Profile.DisplayName)

	_, err = f.svc.Auth.CurrentUser(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

type fakeIDP struct {
	identity *auth.Identity
	err      error
	state    string
}

func (p *fakeIDP) AuthCodeURL(state string) string {
	p.state = state
	return "https://idp.example.com/authorize?state=" + state
}

func (p *fakeIDP) Exchange(ctx context.Context, code string) (*auth.Identity, error) {
	return p.identity, p.err
}

func TestOAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Auth.OAuthURL("/lists")
	assert.ErrorIs(t, err, ErrNotAllowed)

	idp := &fakeIDP{identity: &auth.Identity{Subject: "sub-1", Email: "Carla@Example.com", Name: "Carla", Picture: "https://img.example.com/c.png", EmailVerified: true}}
	f.svc.Auth.SetIdentityProvider(idp)

	_, err = f.svc.Auth.OAuthURL("https://evil.com")
	assert.ErrorIs(t, err, ErrValidation)

	url, err := f.svc.Auth.OAuthURL("/share/abc")
	require.NoError(t, err)
	assert.Contains(t, url, "https://idp.example.com/authorize")

	_, _, err = f.svc.Auth.OAuthCallback(ctx, "code", "bad-state")
	assert.ErrorIs(t, err, ErrUnauthorized)

	sess, redirect, err := f.svc.Auth.OAuthCallback(ctx, "code", idp.state)
	require.NoError(t, err)
	assert.Equal(t, "/share/abc", redirect)
	assert.Equal(t, "carla@example.com", sess.User.Email)
	assert.Equal(t, "Carla", sess.Profile.DisplayName)

	// Second login reuses the account.
	sess2, _, err := f.svc.Auth.OAuthCallback(ctx, "code", idp.state)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, sess2.User.ID)

	idp.err = errors.New("exchange failed")
	_, _, err = f.svc.Auth.OAuthCallback(ctx, "code", idp.state)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestOAuth_UnverifiedEmailIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "owner@example.com", "Owner")
	victim := f.signUp(t, "victim@example.com", "Victim")
	list := f.newList(t, owner, "Birthday")
	_, err := f.svc.Shares.ShareList(ctx, owner, ShareRequest{ListID: list.ID, RecipientEmails: []string{"pending@example.com"}})
	require.NoError(t, err)

	idp := &fakeIDP{}
	f.svc.Auth.SetIdentityProvider(idp)

	for _, addr := range []string{victim.Email, "pending@example.com"} {
		idp.identity = &auth.Identity{Subject: "sub-x", Email: addr, EmailVerified: false}
		_, err := f.svc.Auth.OAuthURL("/lists")
		require.NoError(t, err)

		_, _, err = f.svc.Auth.OAuthCallback(ctx, "code", idp.state)
		assert.ErrorIs(t, err, ErrUnauthorized, addr)
	}

	_, err = f.store.GetUserByEmail(ctx, "pending@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	shares, err := f.store.ListShares(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Nil(t, shares[0].UserID)
}

func TestUpdateUser_DoesNotClaimPendingShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "owner@example.com", "Owner")
	ana := f.signUp(t, "ana@example.com", "Ana")
	list := f.newList(t, owner, "Birthday")
	_, err := f.svc.Shares.ShareList(ctx, owner, ShareRequest{ListID: list.ID, RecipientEmails: []string{"boss@example.com"}})
	require.NoError(t, err)

	_, err = f.svc.Auth.UpdateUser(ctx, ana, UpdateUserInput{Email: ptr("boss@example.com")})
	require.NoError(t, err)

	shares, err := f.store.ListShares(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Nil(t, shares[0].UserID)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	f := newFixture(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, _, err := tokens.Generate(&models.User{ID: uuid.New(), Email: "ghost@example.com"})
	require.NoError(t, err)

	_, _, err = f.svc.Auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = f.svc.Auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

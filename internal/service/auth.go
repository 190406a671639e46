package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/store"
	"github.com/mdemena/lists-sharing-sub000/internal/validation"
)

// TokenIssuer issues and verifies bearer tokens and OAuth states.
type TokenIssuer interface {
	Generate(user *models.User) (string, *auth.Claims, error)
	Validate(token string) (*auth.Claims, error)
	GenerateState(redirectTo string) (string, error)
	ValidateState(state string) (string, error)
}

// Denylist records revoked token ids.
type Denylist = auth.Denylist

// IdentityProvider is the external OIDC login.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
}

// Session is returned by every successful login.
type Session struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        *models.User    `json:"user"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

// CurrentUser is the authenticated user with their profile.
type CurrentUser struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// SignUpInput is the body of a password signup.
type SignUpInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// UpdateUserInput changes credentials. Nil fields are left alone.
type UpdateUserInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// AuthService handles accounts and sessions.
type AuthService struct {
	store    store.Store
	tokens   TokenIssuer
	denylist Denylist
	idp      IdentityProvider
}

// SetIdentityProvider enables OIDC login.
func (s *AuthService) SetIdentityProvider(idp IdentityProvider) {
	s.idp = idp
}

// OAuthEnabled reports whether an identity provider is configured.
func (s *AuthService) OAuthEnabled() bool {
	return s.idp != nil
}

// SignUp creates an account and its profile, binds any invitations already
// sent to the email and logs the user in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := validation.NormalizeEmail(in.Email)
	if !validation.ValidateEmail(email) {
		return nil, invalid("a valid email is required")
	}
	if !validation.ValidatePassword(in.Password) {
		return nil, invalid("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Provider:     models.ProviderPassword,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fromStore(err)
	}

	profile, err := s.ensureProfile(ctx, user, strings.TrimSpace(in.DisplayName), "")
	if err != nil {
		return nil, err
	}

	s.claimPendingShares(ctx, user)

	slog.Info("user signed up", "user_id", user.ID)
	return s.session(user, profile)
}

// SignIn checks a password login.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*Session, error) {
	email := validation.NormalizeEmail(emailAddr)
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, unauthorized(auth.ErrInvalidCredentials.Error())
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, unauthorized(err.Error())
	}

	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}
	return s.session(user, profile)
}

// SignOut revokes the presented token until it expires.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return unauthorized("authentication required")
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return upstream("failed to revoke token", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, newError(ErrUnauthorized, auth.ErrInvalidToken.Error(), err)
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, upstream("failed to check token", err)
	}
	if revoked {
		return nil, nil, unauthorized("token has been revoked")
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, unauthorized("user no longer exists")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// CurrentUser returns the actor with their profile.
func (s *AuthService) CurrentUser(ctx context.Context, actor *models.User) (*CurrentUser, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	profile, err := s.store.GetProfile(ctx, actor.ID)
	if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}
	return &CurrentUser{User: actor, Profile: profile}, nil
}

// UpdateUser changes the actor's email and/or password. The new address is
// unverified, so invitations pending for it are not claimed here.
func (s *AuthService) UpdateUser(ctx context.Context, actor *models.User, in UpdateUserInput) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if in.Email == nil && in.Password == nil {
		return nil, invalid("nothing to update")
	}

	user, err := s.store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, fromStore(err)
	}

	emailChanged := false
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if !validation.ValidateEmail(email) {
			return nil, invalid("a valid email is required")
		}
		if email != user.Email {
			if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, conflict("email already registered")
			}
			user.Email = email
			emailChanged = true
		}
	}

	if in.Password != nil {
		if !validation.ValidatePassword(*in.Password) {
			return nil, invalid("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fromStore(err)
	}

	if emailChanged {
		if profile, err := s.store.GetProfile(ctx, user.ID); err == nil {
			profile.Email = user.Email
			if err := s.store.UpdateProfile(ctx, profile); err != nil {
				slog.Error("failed to sync profile email", "user_id", user.ID, "error", err)
			}
		}
	}

	return user, nil
}

// OAuthURL returns the provider login URL. redirectTo must be a path on the
// web client.
func (s *AuthService) OAuthURL(redirectTo string) (string, error) {
	if s.idp == nil {
		return "", notAllowed("oauth login is not configured")
	}
	redirectTo, err := safeRedirect(redirectTo)
	if err != nil {
		return "", err
	}
	state, err := s.tokens.GenerateState(redirectTo)
	if err != nil {
		return "", err
	}
	return s.idp.AuthCodeURL(state), nil
}

// OAuthCallback completes the provider login, creating the account on first
// use. It returns the session and the client path to continue at.
func (s *AuthService) OAuthCallback(ctx context.Context, code, state string) (*Session, string, error) {
	if s.idp == nil {
		return nil, "", notAllowed("oauth login is not configured")
	}
	redirectTo, err := s.tokens.ValidateState(state)
	if err != nil {
		return nil, "", newError(ErrUnauthorized, "invalid oauth state", err)
	}
	if code == "" {
		return nil, "", invalid("missing authorization code")
	}

	identity, err := s.idp.Exchange(ctx, code)
	if err != nil {
		return nil, "", upstream("oauth login failed", err)
	}

	// Accounts and invitations are keyed by email, so an address the
	// provider has not verified cannot sign in.
	if !identity.EmailVerified {
		slog.Warn("rejected oidc login with unverified email", "subject", identity.Subject)
		return nil, "", unauthorized("your identity provider has not verified this email address")
	}

	email := validation.NormalizeEmail(identity.Email)
	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		user = &models.User{Email: email, Provider: models.ProviderOIDC}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, "", fromStore(err)
		}
		slog.Info("user signed up via oidc", "user_id", user.ID)
	case err != nil:
		return nil, "", err
	}

	profile, err := s.ensureProfile(ctx, user, identity.Name, identity.Picture)
	if err != nil {
		return nil, "", err
	}

	s.claimPendingShares(ctx, user)

	session, err := s.session(user, profile)
	if err != nil {
		return nil, "", err
	}
	return session, redirectTo, nil
}

func (s *AuthService) session(user *models.User, profile *models.Profile) (*Session, error) {
	token, claims, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
		Profile:     profile,
	}, nil
}

// ensureProfile returns the user's profile, creating it if missing.
func (s *AuthService) ensureProfile(ctx context.Context, user *models.User, displayName, avatarURL string) (*models.Profile, error) {
	profile, err := s.store.GetProfile(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}

	profile = &models.Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrDuplicateProfile) {
			return s.store.GetProfile(ctx, user.ID)
		}
		return nil, err
	}
	return profile, nil
}

// claimPendingShares binds invitations sent before the account existed.
// Failures are logged; the next list visit retries.
func (s *AuthService) claimPendingShares(ctx context.Context, user *models.User) {
	n, err := s.store.ClaimPendingShares(ctx, user.Email, user.ID)
	if err != nil {
		slog.Error("failed to claim pending shares", "user_id", user.ID, "error", err)
		return
	}
	if n > 0 {
		slog.Info("claimed pending shares", "user_id", user.ID, "count", n)
	}
}

// safeRedirect accepts only local paths so the callback cannot be used as an
// open redirect.
func safeRedirect(redirectTo string) (string, error) {
	if redirectTo == "" {
		return "/", nil
	}
	if !strings.HasPrefix(redirectTo, "/") || strings.HasPrefix(redirectTo, "//") || strings.Contains(redirectTo, "\\") {
		return "", invalid("redirectTo must be a path")
	}
	return redirectTo, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Identity is what the OIDC provider tells us about a user.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
	// EmailVerified is false only when the provider says so explicitly.
	EmailVerified bool
}

// OIDCProvider runs the authorization code flow against an OIDC issuer.
type OIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewOIDCProvider discovers the issuer and prepares the OAuth2 client.
func NewOIDCProvider(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}

	return &OIDCProvider{
		provider: provider,
		oauth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthCodeURL returns the provider login URL for the given state.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified identity.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("missing id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("invalid id_token: %w", err)
	}

	claims := make(map[string]any)
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	// Some providers only put minimal claims in the ID token.
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(oauth2Token))
	if err == nil {
		var userInfoClaims map[string]any
		if err := userInfo.Claims(&userInfoClaims); err == nil {
			for k, v := range userInfoClaims {
				claims[k] = v
			}
		}
	} else {
		slog.Warn("failed to fetch oidc userinfo", "error", err)
	}

	id := &Identity{}
	id.Subject, _ = claims["sub"].(string)
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Picture, _ = claims["picture"].(string)
	id.EmailVerified = emailVerified(claims["email_verified"])

	if id.Email == "" {
		return nil, errors.New("oidc provider did not return an email")
	}
	return id, nil
}

// emailVerified reads the email_verified claim. Some providers send it as a
// string; a missing claim counts as verified.
func emailVerified(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return !strings.EqualFold(v, "false")
	}
	return true
}

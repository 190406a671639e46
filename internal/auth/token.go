// Package auth issues and validates bearer tokens, hashes passwords and
// talks to the optional OIDC provider.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

const (
	accessAudience = "lists-api"
	stateAudience  = "lists-oauth-state"
	stateTTL       = 10 * time.Minute
)

// Claims are the JWT claims of an access token. RegisteredClaims.ID is the
// token id used for revocation.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// stateClaims carry the post-login redirect through the OIDC round trip.
type stateClaims struct {
	RedirectTo string `json:"redirect_to"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewTokenManager creates a token manager with the given HMAC secret and token lifetime.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate creates a signed access token for the user.
func (m *TokenManager) Generate(user *models.User) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{accessAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := m.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Validate parses and validates an access token, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, accessAudience); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateState creates a short-lived signed OAuth state carrying redirectTo.
func (m *TokenManager) GenerateState(redirectTo string) (string, error) {
	now := m.now()
	return m.sign(&stateClaims{
		RedirectTo: redirectTo,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{stateAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

// ValidateState verifies an OAuth state and returns the redirect it carries.
func (m *TokenManager) ValidateState(state string) (string, error) {
	claims := &stateClaims{}
	if err := m.parse(state, claims, stateAudience); err != nil {
		return "", err
	}
	return claims.RedirectTo, nil
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, audience string) error {
	if tokenString == "" {
		return ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// AuthMiddleware handles user authentication via bearer tokens.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(a Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: a}
}

// RequireAuth ensures the request carries a valid bearer token.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	token := BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return unauthorized(c, auth.ErrMissingToken.Error())
	}

	user, claims, err := m.auth.Authenticate(c.Context(), token)
	if err != nil {
		return unauthorized(c, service.Message(err))
	}

	c.Locals(userKey, user)
	c.Locals(claimsKey, claims)
	return c.Next()
}

// OptionalAuth loads the user if a token is present. A token that is present
// but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	token := BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return c.Next()
	}
	return m.RequireAuth(c)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// User returns the authenticated user, or nil.
func User(c fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// Claims returns the claims of the presented token, or nil.
func Claims(c fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}

func unauthorized(c fiber.Ctx, msg string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="lists"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

package api

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/config"
	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// AuthHandler handles account and session actions.
type AuthHandler struct {
	auth *service.AuthService
	cfg  *config.Config
}

// NewAuthHandler creates a new API auth handler.
func NewAuthHandler(auth *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

// Get dispatches GET /auth?action=user.
func (h *AuthHandler) Get(c fiber.Ctx) error {
	switch c.Query("action") {
	case "user":
		cu, err := h.auth.CurrentUser(c.Context(), middleware.User(c))
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, cu)
	default:
		return unknownAction(c)
	}
}

// Post dispatches POST /auth?action=signup|signin|signout|oauth|update-user.
func (h *AuthHandler) Post(c fiber.Ctx) error {
	switch c.Query("action") {
	case "signup":
		return h.signUp(c)
	case "signin":
		return h.signIn(c)
	case "signout":
		return h.signOut(c)
	case "oauth":
		return h.oauth(c)
	case "update-user":
		return h.updateUser(c)
	default:
		return unknownAction(c)
	}
}

func (h *AuthHandler) signUp(c fiber.Ctx) error {
	var body service.SignUpInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	sess, err := h.auth.SignUp(c.Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonCreated(c, sess)
}

func (h *AuthHandler) signIn(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	sess, err := h.auth.SignIn(c.Context(), body.Email, body.Password)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, sess)
}

func (h *AuthHandler) signOut(c fiber.Ctx) error {
	if err := h.auth.SignOut(c.Context(), middleware.Claims(c)); err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"success": true})
}

func (h *AuthHandler) oauth(c fiber.Ctx) error {
	var body struct {
		RedirectTo string `json:"redirectTo"`
	}
	if len(c.Body()) > 0 {
		if err := decode(c, &body); err != nil {
			return writeError(c, err)
		}
	}
	authURL, err := h.auth.OAuthURL(body.RedirectTo)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"url": authURL})
}

func (h *AuthHandler) updateUser(c fiber.Ctx) error {
	var body service.UpdateUserInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	user, err := h.auth.UpdateUser(c.Context(), middleware.User(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"user": user})
}

// Callback completes the OIDC login and hands the token to the web client in
// the URL fragment.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		return jsonError(c, fiber.StatusUnauthorized, "oauth login failed: "+errParam)
	}

	sess, redirectTo, err := h.auth.OAuthCallback(c.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		return writeError(c, err)
	}

	fragment := url.Values{}
	fragment.Set("access_token", sess.AccessToken)
	fragment.Set("token_type", sess.TokenType)
	fragment.Set("expires_at", fmt.Sprint(sess.ExpiresAt.Unix()))

	return c.Redirect().To(h.cfg.ClientURL + redirectTo + "#" + fragment.Encode())
}

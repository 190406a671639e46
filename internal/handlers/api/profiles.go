package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// ProfileHandler handles profile operations via JSON API.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new API profile handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the profile ?id=, defaulting to the caller's own.
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	user := middleware.User(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id := user.ID
	if c.Query("id") != "" {
		var ok bool
		if id, ok = queryUUID(c, "id"); !ok {
			return invalidParam(c, "id")
		}
	}
	p, err := h.profiles.GetProfile(c.Context(), user, id)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, p)
}

// Create creates the caller's profile.
func (h *ProfileHandler) Create(c fiber.Ctx) error {
	var body service.ProfileInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	p, err := h.profiles.CreateProfile(c.Context(), middleware.User(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonCreated(c, p)
}

// Update changes the caller's profile.
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	user := middleware.User(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}
	id := user.ID
	if c.Query("id") != "" {
		var ok bool
		if id, ok = queryUUID(c, "id"); !ok {
			return invalidParam(c, "id")
		}
	}
	var body service.ProfileInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	p, err := h.profiles.UpdateProfile(c.Context(), user, id, body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, p)
}

package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// ShareHandler handles invitations and list exports via JSON API.
type ShareHandler struct {
	shares *service.ShareService
}

// NewShareHandler creates a new API share handler.
func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// ShareList invites recipients to a list. Authentication is optional.
func (h *ShareHandler) ShareList(c fiber.Ctx) error {
	var body service.ShareRequest
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	res, err := h.shares.ShareList(c.Context(), middleware.User(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{
		"success":    true,
		"recipients": res.Recipients,
		"created":    res.Created,
	})
}

// SendListFile emails an exported list.
func (h *ShareHandler) SendListFile(c fiber.Ctx) error {
	var body service.ListFileRequest
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	if err := h.shares.SendListFile(c.Context(), middleware.User(c), body); err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"success": true})
}

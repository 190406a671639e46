package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// ListHandler handles list operations via JSON API.
type ListHandler struct {
	lists  *service.ListService
	shares *service.ShareService
}

// NewListHandler creates a new API list handler.
func NewListHandler(lists *service.ListService, shares *service.ShareService) *ListHandler {
	return &ListHandler{lists: lists, shares: shares}
}

// Get dispatches GET /lists. Without an action it returns one list (?id=) or
// the caller's own lists.
func (h *ListHandler) Get(c fiber.Ctx) error {
	user := middleware.User(c)

	switch c.Query("action") {
	case "":
		if c.Query("id") == "" {
			lists, err := h.lists.ListOwned(c.Context(), user)
			if err != nil {
				return writeError(c, err)
			}
			return jsonSuccess(c, lists)
		}
		id, ok := queryUUID(c, "id")
		if !ok {
			return invalidParam(c, "id")
		}
		list, err := h.lists.GetList(c.Context(), user, id)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, list)

	case "shares":
		listID, ok := queryUUID(c, "listId")
		if !ok {
			return invalidParam(c, "listId")
		}
		shares, err := h.lists.ListShares(c.Context(), user, listID)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, shares)

	case "register-user":
		listID, ok := queryUUID(c, "listId")
		if !ok {
			return invalidParam(c, "listId")
		}
		res, err := h.shares.RegisterVisit(c.Context(), user, listID)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, res)

	case "my-shared-lists":
		lists, err := h.lists.ListSharedWithMe(c.Context(), user)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, lists)

	default:
		return unknownAction(c)
	}
}

// Create creates a list owned by the caller.
func (h *ListHandler) Create(c fiber.Ctx) error {
	var body service.ListInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	list, err := h.lists.CreateList(c.Context(), middleware.User(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonCreated(c, list)
}

// Update changes a list's name or description.
func (h *ListHandler) Update(c fiber.Ctx) error {
	id, ok := queryUUID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var body service.ListInput
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	list, err := h.lists.UpdateList(c.Context(), middleware.User(c), id, body)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, list)
}

// Delete removes a list (?id=) or revokes a share (?action=shares&listId=&email=).
func (h *ListHandler) Delete(c fiber.Ctx) error {
	user := middleware.User(c)

	switch c.Query("action") {
	case "":
		id, ok := queryUUID(c, "id")
		if !ok {
			return invalidParam(c, "id")
		}
		if err := h.lists.DeleteList(c.Context(), user, id); err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, fiber.Map{"success": true})

	case "shares":
		listID, ok := queryUUID(c, "listId")
		if !ok {
			return invalidParam(c, "listId")
		}
		if err := h.lists.RevokeShare(c.Context(), user, listID, c.Query("email")); err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, fiber.Map{"success": true})

	default:
		return unknownAction(c)
	}
}

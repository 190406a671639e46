package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// ItemHandler handles list item operations via JSON API.
type ItemHandler struct {
	items *service.ItemService
}

// NewItemHandler creates a new API item handler.
func NewItemHandler(items *service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

type itemBody struct {
	service.ItemInput
	ListID        *uuid.UUID `json:"list_id"`
	IsAdjudicated *bool      `json:"is_adjudicated"`
}

// Get returns one item (?itemId=) or every item of ?listId=.
func (h *ItemHandler) Get(c fiber.Ctx) error {
	listID, ok := queryUUID(c, "listId")
	if !ok {
		return invalidParam(c, "listId")
	}
	user := middleware.User(c)

	if c.Query("itemId") == "" {
		items, err := h.items.ListItems(c.Context(), user, listID)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, items)
	}

	itemID, ok := queryUUID(c, "itemId")
	if !ok {
		return invalidParam(c, "itemId")
	}
	item, err := h.items.GetItem(c.Context(), user, listID, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, item)
}

// Create adds an item to ?listId= (or body list_id).
func (h *ItemHandler) Create(c fiber.Ctx) error {
	var body itemBody
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}

	listID, ok := queryUUID(c, "listId")
	if !ok {
		if body.ListID == nil {
			return invalidParam(c, "listId")
		}
		listID = *body.ListID
	}

	item, err := h.items.CreateItem(c.Context(), middleware.User(c), listID, body.ItemInput)
	if err != nil {
		return writeError(c, err)
	}
	return jsonCreated(c, item)
}

// Update changes item metadata, or claims/releases the item when the body
// carries is_adjudicated.
func (h *ItemHandler) Update(c fiber.Ctx) error {
	listID, ok := queryUUID(c, "listId")
	if !ok {
		return invalidParam(c, "listId")
	}
	itemID, ok := queryUUID(c, "itemId")
	if !ok {
		return invalidParam(c, "itemId")
	}

	var body itemBody
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}

	user := middleware.User(c)
	if body.IsAdjudicated != nil {
		item, err := h.items.SetAdjudicated(c.Context(), user, listID, itemID, *body.IsAdjudicated)
		if err != nil {
			return writeError(c, err)
		}
		return jsonSuccess(c, item)
	}

	item, err := h.items.UpdateItem(c.Context(), user, listID, itemID, body.ItemInput)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, item)
}

// Delete removes an unclaimed item.
func (h *ItemHandler) Delete(c fiber.Ctx) error {
	listID, ok := queryUUID(c, "listId")
	if !ok {
		return invalidParam(c, "listId")
	}
	itemID, ok := queryUUID(c, "itemId")
	if !ok {
		return invalidParam(c, "itemId")
	}
	if err := h.items.DeleteItem(c.Context(), middleware.User(c), listID, itemID); err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"success": true})
}

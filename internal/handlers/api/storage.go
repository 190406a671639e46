package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// StorageHandler handles image uploads via JSON API.
type StorageHandler struct {
	storage *service.StorageService
}

// NewStorageHandler creates a new API storage handler.
func NewStorageHandler(storage *service.StorageService) *StorageHandler {
	return &StorageHandler{storage: storage}
}

// Post dispatches POST /storage?action=upload|delete|delete-multiple.
func (h *StorageHandler) Post(c fiber.Ctx) error {
	switch c.Query("action") {
	case "upload":
		return h.upload(c)
	case "delete":
		return h.delete(c)
	case "delete-multiple":
		return h.deleteMultiple(c)
	default:
		return unknownAction(c)
	}
}

func (h *StorageHandler) upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "failed to read file")
	}
	defer f.Close()

	up, err := h.storage.Upload(c.Context(), middleware.User(c), fh.Size, f)
	if err != nil {
		return writeError(c, err)
	}
	return jsonCreated(c, up)
}

func (h *StorageHandler) delete(c fiber.Ctx) error {
	var body struct {
		Path string `json:"path"`
	}
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	if err := h.storage.Delete(c.Context(), middleware.User(c), body.Path); err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"success": true})
}

func (h *StorageHandler) deleteMultiple(c fiber.Ctx) error {
	var body struct {
		Paths []string `json:"paths"`
	}
	if err := decode(c, &body); err != nil {
		return writeError(c, err)
	}
	n, err := h.storage.DeleteMany(c.Context(), middleware.User(c), body.Paths)
	if err != nil {
		return writeError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"success": true, "deleted": n})
}

// Package api holds the JSON handlers of the HTTP surface.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// jsonSuccess returns a 200 response with the resource as body.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(data)
}

// jsonCreated returns a 201 response with the resource as body.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNotAllowed):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {"error": message}. Unclassified errors are
// logged and hidden behind a generic message.
func writeError(c fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return jsonError(c, status, service.Message(err))
}

// decode parses the JSON body into v.
func decode(c fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return &service.Error{Kind: service.ErrValidation, Message: "invalid request body", Err: err}
	}
	return nil
}

// queryUUID parses a required UUID query parameter.
func queryUUID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query(name))
	return id, err == nil
}

func invalidParam(c fiber.Ctx, name string) error {
	return jsonError(c, fiber.StatusBadRequest, "invalid or missing "+name)
}

func unknownAction(c fiber.Ctx) error {
	return jsonError(c, fiber.StatusBadRequest, "unknown action "+c.Query("action"))
}

package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Healthz returns 200 when the store answers, 503 otherwise.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  "database unreachable",
		})
	}
	return jsonSuccess(c, fiber.Map{"status": "ok"})
}

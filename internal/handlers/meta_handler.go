package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HealthCheck reports whether the database answers.
type HealthCheck func(ctx context.Context) error

// MetaHandler serves service identity and liveness.
type MetaHandler struct {
	service string
	version string
	health  HealthCheck
}

// NewMetaHandler creates a new MetaHandler.
func NewMetaHandler(service, version string, health HealthCheck) *MetaHandler {
	return &MetaHandler{service: service, version: version, health: health}
}

// RegisterRoutes registers /api and /api/ping on router.
func (h *MetaHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Get("/ping", h.HandlePing)
}

// HandleIndex identifies the service.
func (h *MetaHandler) HandleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"service": h.service,
		"version": h.version,
	})
}

// HandlePing checks the database and answers 500 when it is unreachable.
func (h *MetaHandler) HandlePing(c *fiber.Ctx) error {
	body := fiber.Map{
		"ok":      true,
		"service": h.service,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"db":      "up",
	}

	if h.health != nil {
		if err := h.health(c.UserContext()); err != nil {
			log.Error().Err(err).Msg("database ping failed")
			body["ok"] = false
			body["db"] = "down"
			body["error"] = err.Error()
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		}
	}
	return c.JSON(body)
}

package in

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cashbridge/tokenvault/pkg/mpostgres"
	"github.com/cashbridge/tokenvault/pkg/mredis"
)

// HealthHandler serves the liveness and readiness probes of spec.md §6.
type HealthHandler struct {
	startedAt time.Time
	Postgres  *mpostgres.Connection
	Redis     *mredis.Connection
}

// NewHealthHandler returns a HealthHandler whose uptime is measured from now.
func NewHealthHandler(pg *mpostgres.Connection, rd *mredis.Connection) *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC(), Postgres: pg, Redis: rd}
}

// Health handles GET /health: a pure liveness probe, no dependency checks.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).String(),
	})
}

// Ready handles GET /ready: a readiness probe reporting each dependency's
// Connected flag, which is set once a connection succeeds and is not
// re-checked here. Returns 503 if either flag is false.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	dbUp := h.Postgres != nil && h.Postgres.Connected
	kvUp := h.Redis != nil && h.Redis.Connected

	status := fiber.StatusOK
	if !dbUp || !kvUp {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"db": dbUp,
		"kv": kvUp,
	})
}

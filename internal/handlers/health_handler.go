package handlers

import (
	"inkbook/internal/database"
	"inkbook/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// HealthHandler reports whether the service and its database are up.
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	if err := database.Ping(c.UserContext(), h.db); err != nil {
		log.Error().Err(err).Msg("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"database": "down",
		})
	}

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		metrics.UpdateDBConnections(stats.InUse, stats.Idle)
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "up",
	})
}

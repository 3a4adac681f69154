package handlers

import (
	"inkbook/internal/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AdminHandler exposes operational controls to administrators.
type AdminHandler struct {
	cache cache.QueryCache
}

func NewAdminHandler(queryCache cache.QueryCache) *AdminHandler {
	return &AdminHandler{cache: queryCache}
}

func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	r := router.Group("/admin")
	r.Get("/cache", guards.Auth, guards.Admin, h.HandleCacheStats)
	r.Delete("/cache", guards.Auth, guards.Admin, h.HandleCacheFlush)
}

func (h *AdminHandler) HandleCacheStats(c *fiber.Ctx) error {
	return respondData(c, fiber.StatusOK, h.cache.Stats(c.UserContext()))
}

func (h *AdminHandler) HandleCacheFlush(c *fiber.Ctx) error {
	if err := h.cache.Flush(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	log.Info().Str("user", actorOf(c).Username).Msg("query cache flushed")
	return c.JSON(fiber.Map{"message": "Cache flushed"})
}

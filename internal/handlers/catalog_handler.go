package handlers

import (
	"inkbook/internal/models"
	"inkbook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the city and tag reference data.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service, validate: newValidator()}
}

func (h *CatalogHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	router.Get("/cities", h.HandleListCities)
	router.Post("/cities", guards.Auth, guards.Admin, h.HandleCreateCity)
	router.Get("/tags", h.HandleListTags)
	router.Post("/tags", guards.Auth, guards.Admin, h.HandleCreateTag)
}

func (h *CatalogHandler) HandleListCities(c *fiber.Ctx) error {
	cities, err := h.service.ListCities(c.UserContext(), c.Query("country"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, cities)
}

func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext(), models.TagCategory(c.Query("category")))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tags)
}

func (h *CatalogHandler) HandleCreateCity(c *fiber.Ctx) error {
	var req services.CityInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	city, err := h.service.CreateCity(c.UserContext(), actorOf(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, city)
}

func (h *CatalogHandler) HandleCreateTag(c *fiber.Ctx) error {
	var req services.TagInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	tag, err := h.service.CreateTag(c.UserContext(), actorOf(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, tag)
}

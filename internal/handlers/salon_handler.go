package handlers

import (
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SalonHandler struct {
	service  *services.SalonService
	validate *validator.Validate
}

func NewSalonHandler(service *services.SalonService) *SalonHandler {
	return &SalonHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the salon routes.
func (h *SalonHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	r := router.Group("/salons")
	r.Get("/", h.HandleList)
	r.Get("/:slug", h.HandleGet)
	r.Post("/", guards.Auth, h.HandleCreate)
	r.Put("/:id", guards.Auth, h.HandleUpdate)
}

type salonView struct {
	*models.Salon
	ActiveArtistCount int `json:"active_artist_count"`
}

func newSalonView(s *models.Salon) salonView {
	return salonView{Salon: s, ActiveArtistCount: s.ActiveArtistCount()}
}

func (h *SalonHandler) HandleList(c *fiber.Ctx) error {
	var filter repositories.SalonFilter
	if err := parseQuery(c, &filter); err != nil {
		return respondError(c, err)
	}
	salons, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]salonView, len(salons))
	for i := range salons {
		views[i] = newSalonView(&salons[i])
	}
	return respondList(c, views, filter.Page, total)
}

func (h *SalonHandler) HandleGet(c *fiber.Ctx) error {
	salon, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, newSalonView(salon))
}

func (h *SalonHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.SalonInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	salon, err := h.service.Create(c.UserContext(), actorOf(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, newSalonView(salon))
}

func (h *SalonHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.SalonInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	salon, err := h.service.Update(c.UserContext(), actorOf(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, newSalonView(salon))
}

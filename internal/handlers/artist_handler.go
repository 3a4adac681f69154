package handlers

import (
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ArtistHandler handles HTTP requests for artist profiles.
type ArtistHandler struct {
	artists  *services.ArtistService
	tattoos  *services.TattooService
	validate *validator.Validate
}

// NewArtistHandler creates a new ArtistHandler.
func NewArtistHandler(artists *services.ArtistService, tattoos *services.TattooService) *ArtistHandler {
	return &ArtistHandler{artists: artists, tattoos: tattoos, validate: newValidator()}
}

// RegisterRoutes registers the artist routes.
func (h *ArtistHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	r := router.Group("/artists")
	r.Get("/", h.HandleList)
	r.Get("/:slug", h.HandleGet)
	r.Get("/:slug/tattoos", guards.OptionalAuth, h.HandleTattoos)
	r.Post("/", guards.Auth, h.HandleCreate)
	r.Put("/:id", guards.Auth, h.HandleUpdate)
	r.Patch("/:id/verification", guards.Auth, guards.Admin, h.HandleVerification)
	r.Post("/:id/salons", guards.Auth, h.HandleAttachSalon)
	r.Delete("/:id/salons/:salonId", guards.Auth, h.HandleDetachSalon)
}

// artistView adds the computed profile fields to the stored record.
type artistView struct {
	*models.Artist
	DisplayName         string `json:"display_name"`
	PriceRange          string `json:"price_range"`
	ProfileCompleteness int    `json:"profile_completeness"`
	IsVerified          bool   `json:"is_verified"`
}

func newArtistView(a *models.Artist) artistView {
	return artistView{
		Artist:              a,
		DisplayName:         a.DisplayName(),
		PriceRange:          a.PriceRange(),
		ProfileCompleteness: a.ProfileCompleteness(),
		IsVerified:          a.IsVerified(),
	}
}

// HandleList lists artists. Filters: city, style, verified, accepting, q, sort.
func (h *ArtistHandler) HandleList(c *fiber.Ctx) error {
	var filter repositories.ArtistFilter
	if err := parseQuery(c, &filter); err != nil {
		return respondError(c, err)
	}
	artists, total, err := h.artists.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]artistView, len(artists))
	for i := range artists {
		views[i] = newArtistView(&artists[i])
	}
	return respondList(c, views, filter.Page, total)
}

func (h *ArtistHandler) HandleGet(c *fiber.Ctx) error {
	artist, err := h.artists.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, newArtistView(artist))
}

// HandleTattoos lists an artist's portfolio.
func (h *ArtistHandler) HandleTattoos(c *fiber.Ctx) error {
	var filter repositories.TattooFilter
	if err := parseQuery(c, &filter); err != nil {
		return respondError(c, err)
	}
	tattoos, total, err := h.tattoos.ListByArtist(c.UserContext(), optionalActor(c), c.Params("slug"), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, tattoos, filter.Page, total)
}

func (h *ArtistHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.ArtistInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	artist, err := h.artists.Create(c.UserContext(), actorOf(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, newArtistView(artist))
}

func (h *ArtistHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.ArtistInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	artist, err := h.artists.Update(c.UserContext(), actorOf(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, newArtistView(artist))
}

// VerificationRequest moves an artist through vetting.
type VerificationRequest struct {
	Status models.VerificationStatus `json:"status" validate:"required,oneof=unverified scraped contacted onboarding verified"`
}

func (h *ArtistHandler) HandleVerification(c *fiber.Ctx) error {
	var req VerificationRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	artist, err := h.artists.UpdateVerification(c.UserContext(), actorOf(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, newArtistView(artist))
}

func (h *ArtistHandler) HandleAttachSalon(c *fiber.Ctx) error {
	var req services.AttachSalonInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	link, err := h.artists.AttachSalon(c.UserContext(), actorOf(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, link)
}

func (h *ArtistHandler) HandleDetachSalon(c *fiber.Ctx) error {
	if err := h.artists.DetachSalon(c.UserContext(), actorOf(c), c.Params("id"), c.Params("salonId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

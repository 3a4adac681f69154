package handlers

import (
	"inkbook/internal/middleware"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// InquiryHandler handles the contact form and the artist inbox.
type InquiryHandler struct {
	service  *services.InquiryService
	validate *validator.Validate
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(service *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the inquiry routes.
func (h *InquiryHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	r := router.Group("/inquiries")
	r.Post("/", guards.InquiryLimit, guards.OptionalAuth, h.HandleSubmit)
	r.Get("/", guards.Auth, h.HandleList)
	r.Get("/stats", guards.Auth, h.HandleStats)
	r.Get("/:id", guards.Auth, h.HandleGet)
	r.Patch("/:id/read", guards.Auth, h.HandleMarkAsRead)
	r.Post("/:id/reply", guards.Auth, h.HandleReply)
	r.Patch("/:id/status", guards.Auth, h.HandleUpdateStatus)
	r.Patch("/:id/priority", guards.Auth, guards.Admin, h.HandleSetPriority)
}

// HandleSubmit stores a new inquiry from the public contact form.
func (h *InquiryHandler) HandleSubmit(c *fiber.Ctx) error {
	var req services.SubmitInquiryInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	if actor, ok := middleware.ActorFrom(c); ok {
		req.UserID = actor.UserID
	}
	req.IPAddress = c.IP()
	req.UserAgent = c.Get(fiber.HeaderUserAgent)
	req.Source = c.Query("source", "website")

	inquiry, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inquiry sent",
		"data":    inquiry,
	})
}

// HandleList returns the caller's inbox.
func (h *InquiryHandler) HandleList(c *fiber.Ctx) error {
	var filter repositories.InquiryFilter
	if err := parseQuery(c, &filter); err != nil {
		return respondError(c, err)
	}
	items, total, err := h.service.List(c.UserContext(), actorOf(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, items, filter.Page, total)
}

// HandleStats summarizes the caller's inbox.
func (h *InquiryHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, stats)
}

func (h *InquiryHandler) HandleGet(c *fiber.Ctx) error {
	inquiry, err := h.service.Get(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, inquiry)
}

func (h *InquiryHandler) HandleMarkAsRead(c *fiber.Ctx) error {
	inquiry, err := h.service.MarkAsRead(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, inquiry)
}

// ReplyRequest is the artist's answer to an inquiry.
type ReplyRequest struct {
	Message string `json:"message" validate:"required,min=2,max=5000"`
}

func (h *InquiryHandler) HandleReply(c *fiber.Ctx) error {
	var req ReplyRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	inquiry, err := h.service.Reply(c.UserContext(), actorOf(c), c.Params("id"), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, inquiry)
}

// StatusRequest moves an inquiry to another status.
type StatusRequest struct {
	Status models.InquiryStatus `json:"status" validate:"required,oneof=in_progress replied closed spam pending"`
}

func (h *InquiryHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	inquiry, err := h.service.UpdateStatus(c.UserContext(), actorOf(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, inquiry)
}

// PriorityRequest overrides an inquiry's priority. Out of range values are clamped.
type PriorityRequest struct {
	Priority *int `json:"priority" validate:"required"`
}

func (h *InquiryHandler) HandleSetPriority(c *fiber.Ctx) error {
	var req PriorityRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	inquiry, err := h.service.SetPriority(c.UserContext(), actorOf(c), c.Params("id"), *req.Priority)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, inquiry)
}

func actorOf(c *fiber.Ctx) services.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

func optionalActor(c *fiber.Ctx) *services.Actor {
	if actor, ok := middleware.ActorFrom(c); ok {
		return &actor
	}
	return nil
}

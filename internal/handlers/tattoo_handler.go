package handlers

import (
	"fmt"
	"io"

	"inkbook/internal/repositories"
	"inkbook/internal/services"
	"inkbook/pkg/apperror"
	"inkbook/pkg/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TattooHandler handles portfolio pieces and their images.
type TattooHandler struct {
	service  *services.TattooService
	validate *validator.Validate
}

// NewTattooHandler creates a new TattooHandler.
func NewTattooHandler(service *services.TattooService) *TattooHandler {
	return &TattooHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the tattoo routes.
func (h *TattooHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	r := router.Group("/tattoos")
	r.Get("/", h.HandleList)
	r.Get("/:id", guards.OptionalAuth, h.HandleGet)
	r.Post("/:id/like", h.HandleLike)
	r.Post("/:id/share", h.HandleShare)
	r.Post("/", guards.Auth, h.HandleCreate)
	r.Post("/:id/image", guards.Auth, h.HandleUploadImage)
	r.Post("/:id/submit", guards.Auth, h.HandleSubmit)
	r.Post("/:id/publish", guards.Auth, guards.Admin, h.HandlePublish)
	r.Post("/:id/archive", guards.Auth, h.HandleArchive)
	r.Delete("/:id", guards.Auth, h.HandleDelete)
}

func (h *TattooHandler) HandleList(c *fiber.Ctx) error {
	var filter repositories.TattooFilter
	if err := parseQuery(c, &filter); err != nil {
		return respondError(c, err)
	}
	tattoos, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, tattoos, filter.Page, total)
}

func (h *TattooHandler) HandleGet(c *fiber.Ctx) error {
	tattoo, err := h.service.Get(c.UserContext(), optionalActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleLike(c *fiber.Ctx) error {
	tattoo, err := h.service.Like(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleShare(c *fiber.Ctx) error {
	tattoo, err := h.service.Share(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.TattooInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	tattoo, err := h.service.Create(c.UserContext(), actorOf(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, tattoo)
}

// HandleUploadImage accepts a multipart "image" field or a raw image body.
func (h *TattooHandler) HandleUploadImage(c *fiber.Ctx) error {
	data, err := readImage(c)
	if err != nil {
		return respondError(c, err)
	}
	tattoo, err := h.service.UploadImage(c.UserContext(), actorOf(c), c.Params("id"), data)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleSubmit(c *fiber.Ctx) error {
	tattoo, err := h.service.SubmitForReview(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandlePublish(c *fiber.Ctx) error {
	tattoo, err := h.service.Publish(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleArchive(c *fiber.Ctx) error {
	tattoo, err := h.service.Archive(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, tattoo)
}

func (h *TattooHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actorOf(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func readImage(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > storage.MaxImageSize {
			return nil, apperror.New(apperror.CodeValidation, "image exceeds %d bytes", storage.MaxImageSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	body := c.Body()
	if len(body) == 0 {
		return nil, apperror.New(apperror.CodeValidation, "image is required")
	}
	data := make([]byte, len(body))
	copy(data, body)
	return data, nil
}

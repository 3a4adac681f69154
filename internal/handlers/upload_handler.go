package handlers

import (
	"net/http"
	"strings"

	"inkbook/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ObjectReader reads stored uploads back by key.
type ObjectReader interface {
	Object(key string) ([]byte, string, bool)
}

// UploadHandler serves objects kept by the in-memory store under the
// /uploads prefix its URLs are built with.
type UploadHandler struct {
	objects ObjectReader
}

func NewUploadHandler(objects ObjectReader) *UploadHandler {
	return &UploadHandler{objects: objects}
}

func (h *UploadHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/uploads/*", h.HandleGet)
}

func (h *UploadHandler) HandleGet(c *fiber.Ctx) error {
	key := strings.TrimPrefix(c.Params("*"), "/")
	data, contentType, ok := h.objects.Object(key)
	if key == "" || !ok {
		return respondError(c, apperror.NotFound("upload"))
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"inkbook/internal/repositories"
	"inkbook/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Guards are the middlewares handlers attach to individual routes.
type Guards struct {
	Auth         fiber.Handler // valid JWT required
	OptionalAuth fiber.Handler // identifies the caller when a token is sent
	Admin        fiber.Handler // admin role required, after Auth
	InquiryLimit fiber.Handler // per-IP rate limit for the public contact form
}

// ListMeta describes the page returned by a list endpoint.
type ListMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

var (
	// errBadBody marks a request body that could not be parsed.
	errBadBody = errors.New("invalid request body")
	// errBadQuery marks query parameters that could not be parsed.
	errBadQuery = errors.New("invalid query parameters")
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return v.Struct(dst)
}

func parseQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadQuery, err)
	}
	return nil
}

func respondData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func respondList(c *fiber.Ctx, items interface{}, page repositories.Page, total int64) error {
	page = page.Normalize()
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice && v.IsNil() {
		items = []struct{}{}
	}
	totalPages := int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	return c.JSON(fiber.Map{
		"data": items,
		"meta": ListMeta{
			Page:       page.Page,
			PerPage:    page.PerPage,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

var codeStatus = map[apperror.Code]int{
	apperror.CodeNotFound:     fiber.StatusNotFound,
	apperror.CodeValidation:   fiber.StatusUnprocessableEntity,
	apperror.CodeConflict:     fiber.StatusConflict,
	apperror.CodeUnauthorized: fiber.StatusUnauthorized,
	apperror.CodeForbidden:    fiber.StatusForbidden,
	apperror.CodeInvalidState: fiber.StatusConflict,
}

// respondError maps an error onto the JSON error envelope.
func respondError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	if errors.Is(err, errBadBody) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if errors.Is(err, errBadQuery) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}

	code := apperror.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
			"error":   string(apperror.CodeInternal),
		})
	}
	message := apperror.MessageOf(err)
	if code == apperror.CodeValidation {
		// Validation causes are safe to show and tell the client what to fix.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			message = appErr.Error()
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   string(code),
	})
}

// ErrorHandler is the fiber fallback for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return respondError(c, err)
}

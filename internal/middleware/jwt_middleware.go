package middleware

import (
	"strings"

	"inkbook/internal/models"
	"inkbook/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const actorKey = "actor"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The caller is stored in Locals and read back with ActorFrom.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		actor, err := authenticate(authService, tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("jwt validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		setActor(c, actor)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if actor, err := authenticate(authService, tokenString); err == nil {
				setActor(c, actor)
			}
		}
		return c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles. Must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Insufficient permissions",
			"error":   "requires role " + joinRoles(roles),
		})
	}
}

// ActorFrom returns the authenticated caller, if any.
func ActorFrom(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(actorKey).(services.Actor)
	return actor, ok
}

func setActor(c *fiber.Ctx, actor services.Actor) {
	c.Locals(actorKey, actor)
	c.Locals("user_id", actor.UserID)
	c.Locals("username", actor.Username)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authenticate(authService *services.AuthService, tokenString string) (services.Actor, error) {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		return services.Actor{}, err
	}
	return services.ActorFromClaims(claims)
}

func joinRoles(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

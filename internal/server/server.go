package server

import (
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/config"
	"inkbook/internal/handlers"
	"inkbook/internal/metrics"
	"inkbook/internal/middleware"
	"inkbook/internal/models"
	"inkbook/internal/repositories"
	"inkbook/internal/services"
	"inkbook/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// bodyLimit leaves room for a maximum size image plus multipart framing.
const bodyLimit = storage.MaxImageSize + 2*1024*1024

// Dependencies are the resources the HTTP layer is built on.
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  cache.QueryCache        // nil disables memoization
	Store  storage.ObjectStore     // nil keeps uploads in memory
	Events services.EventPublisher // nil disables inquiry events
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(deps Dependencies) *fiber.App {
	cfg := deps.Config

	queryCache := deps.Cache
	if queryCache != nil {
		queryCache = metrics.ObserveCache(queryCache)
	}
	store := deps.Store
	if store == nil {
		store = storage.NewMemoryStorage("/uploads")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	cityRepo := repositories.NewGORMCityRepository(deps.DB)
	tagRepo := repositories.NewGORMTagRepository(deps.DB)
	artistRepo := repositories.NewGORMArtistRepository(deps.DB)
	salonRepo := repositories.NewGORMSalonRepository(deps.DB)
	tattooRepo := repositories.NewGORMTattooRepository(deps.DB)
	inquiryRepo := repositories.NewGORMInquiryRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	artistService := services.NewArtistService(artistRepo, userRepo, cityRepo, tagRepo, salonRepo, queryCache)
	salonService := services.NewSalonService(salonRepo, artistRepo, cityRepo, queryCache)
	tattooService := services.NewTattooService(tattooRepo, artistRepo, tagRepo, store, storage.NewImageProcessor(), queryCache)
	catalogService := services.NewCatalogService(cityRepo, tagRepo, queryCache)
	inquiryService := services.NewInquiryService(inquiryRepo, artistRepo, deps.Events)

	app := fiber.New(fiber.Config{
		AppName:      "inkbook",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())

	app.Get("/metrics", metrics.Handler())
	handlers.NewHealthHandler(deps.DB).RegisterRoutes(app)
	if mem, ok := store.(*storage.MemoryStorage); ok {
		handlers.NewUploadHandler(mem).RegisterRoutes(app)
	}

	guards := handlers.Guards{
		Auth:         middleware.AuthRequired(authService),
		OptionalAuth: middleware.OptionalAuth(authService),
		Admin:        middleware.RequireRole(models.RoleAdmin),
		InquiryLimit: inquiryLimiter(cfg.Inquiry.RateLimitPerMinute),
	}

	api := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(api, guards)
	handlers.NewArtistHandler(artistService, tattooService).RegisterRoutes(api, guards)
	handlers.NewSalonHandler(salonService).RegisterRoutes(api, guards)
	handlers.NewTattooHandler(tattooService).RegisterRoutes(api, guards)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(api, guards)
	handlers.NewInquiryHandler(inquiryService).RegisterRoutes(api, guards)
	if queryCache != nil {
		handlers.NewAdminHandler(queryCache).RegisterRoutes(api, guards)
	}

	return app
}

// inquiryLimiter caps contact form submissions per client IP.
func inquiryLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "inquiry:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many inquiries, try again later",
				"error":   "RATE_LIMITED",
			})
		},
	})
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/config"
	"inkbook/internal/database"
	"inkbook/internal/server"
	"inkbook/internal/services"
	"inkbook/pkg/logger"
	"inkbook/pkg/rabbitmq"
	"inkbook/pkg/storage"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet; zerolog's default still writes to stderr
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- Query cache, object storage, broker ---
	queryCache, closeCache, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up query cache")
	}
	defer closeCache()

	store, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up object storage")
	}

	mqClient, err := connectBroker(cfg.Broker)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
	}
	var events services.EventPublisher
	if mqClient != nil {
		defer mqClient.Close()
		events = mqClient

		// Artist notifications are logged; delivery by email is out of scope.
		if err := mqClient.ConsumeInquiryEvents(rabbitmq.NotifyArtist); err != nil {
			log.Error().Err(err).Msg("failed to start inquiry event consumer")
		}
	}

	// --- HTTP server ---
	app := server.NewApp(server.Dependencies{
		DB:     db,
		Config: cfg,
		Cache:  queryCache,
		Store:  store,
		Events: events,
	})

	go func() {
		log.Info().Str("addr", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting server")
		if err := app.Listen(cfg.App.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// buildCache picks Redis when an address is configured and the in-process cache otherwise.
func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.QueryCache, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info().Int("capacity", cfg.Capacity).Dur("ttl", cfg.TTL).Msg("using in-memory query cache")
		return cache.NewMemoryCache(cfg.TTL, cfg.Capacity), func() {}, nil
	}
	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	rc, err := cache.NewRedisCache(ctx, client, cfg.TTL)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.TTL).Msg("using redis query cache")
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}, nil
}

// buildStore picks MinIO when an endpoint is configured and memory otherwise.
func buildStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	if cfg.Endpoint == "" {
		log.Warn().Msg("MINIO_ENDPOINT not set, tattoo images are kept in memory")
		return storage.NewMemoryStorage("/uploads"), nil
	}
	return storage.NewMinIOStorage(ctx, cfg)
}

// connectBroker returns nil when no broker URL is configured.
func connectBroker(cfg config.BrokerConfig) (*rabbitmq.Client, error) {
	if cfg.URL == "" {
		log.Warn().Msg("RABBITMQ_URL not set, inquiry events are disabled")
		return nil, nil
	}
	return rabbitmq.NewClient(rabbitmq.Config{URL: cfg.URL})
}

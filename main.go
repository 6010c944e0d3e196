package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"inventory/internal/cache"
	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/server"
	"inventory/internal/services"
	"inventory/internal/storage"
	"inventory/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Logger = logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	redisCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisCache.Close()

	productOpts := []services.ProductOption{services.WithFileRemover(disk)}
	if redisCache != nil {
		productOpts = append(productOpts, services.WithCache(redisCache, cfg.CacheTTL))
	}

	mqClient := connectBroker(cfg)
	if mqClient != nil {
		defer mqClient.Close()
		productOpts = append(productOpts, services.WithEventPublisher(mqClient))
	}

	productService := services.NewProductService(repositories.NewGORMProductRepository(db), productOpts...)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	uploadService := services.NewUploadService(disk, cfg.MaxUploadSize)

	app := server.New(server.Options{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		AuthRequired:   cfg.AuthRequired,
		UploadDir:      cfg.UploadDir,
		MaxUploadSize:  cfg.MaxUploadSize,
		RequestLog:     true,
	}, server.Services{
		Products: productService,
		Uploads:  uploadService,
		Auth:     authService,
		Health:   func(ctx context.Context) error { return database.Ping(ctx, db) },
	})

	if !cfg.AuthRequired {
		log.Warn().Msg("AUTH_REQUIRED=false, product and upload routes are public")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("service", cfg.ServiceName).Msg("starting server")
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}

	log.Info().Msg("server gracefully stopped")
}

// connectBroker returns nil when events are disabled or the broker is down;
// the API keeps serving without events.
func connectBroker(cfg *config.Config) *rabbitmq.Client {
	if cfg.RabbitMQURL == "" {
		log.Info().Msg("RABBITMQ_URL not set, product events disabled")
		return nil
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.EventQueue})
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, product events disabled")
		return nil
	}

	if err := client.ConsumeProductEvents(logLowStock); err != nil {
		log.Warn().Err(err).Msg("failed to start product event consumer")
	}
	return client
}

func logLowStock(event models.ProductEvent) error {
	if event.Type != models.EventProductLowStock {
		return nil
	}
	log.Warn().
		Uint("product_id", event.ProductID).
		Str("name", event.Name).
		Int("stock", event.Stock).
		Msg("low stock alert")
	return nil
}

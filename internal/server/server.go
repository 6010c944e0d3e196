package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/services"
	"inventory/internal/storage"
)

// Room above the upload cap for multipart framing and other form fields.
const multipartOverhead = 1 << 20

// Options configures the HTTP application.
type Options struct {
	ServiceName    string
	ServiceVersion string
	AuthRequired   bool
	UploadDir      string
	MaxUploadSize  int64
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// Services are the collaborators the routes dispatch to.
type Services struct {
	Products *services.ProductService
	Uploads  *services.UploadService
	Auth     *services.AuthService
	Health   handlers.HealthCheck
}

// New builds the fiber app with every route registered.
func New(opts Options, svc Services) *fiber.App {
	// Bodies above BodyLimit are streamed rather than refused, so an
	// oversized upload still reaches UploadService and gets a 400 body.
	app := fiber.New(fiber.Config{
		AppName:           opts.ServiceName,
		BodyLimit:         int(opts.MaxUploadSize) + multipartOverhead,
		StreamRequestBody: true,
		ErrorHandler:      handlers.ErrorHandler,
	})

	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}
	app.Use(cors.New())

	app.Static(storage.URLPrefix, opts.UploadDir)

	api := app.Group("/api")

	handlers.NewMetaHandler(opts.ServiceName, opts.ServiceVersion, svc.Health).RegisterRoutes(api)
	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(api)

	guard := middleware.AuthRequired(svc.Auth, opts.AuthRequired)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(api, guard)
	handlers.NewUploadHandler(svc.Uploads).RegisterRoutes(api, guard)

	return app
}

package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jer-romano/capstone2-traveler/internal/config"
	"github.com/Jer-romano/capstone2-traveler/internal/domain"
	"github.com/Jer-romano/capstone2-traveler/internal/handler"
	"github.com/Jer-romano/capstone2-traveler/internal/middleware"
	"github.com/Jer-romano/capstone2-traveler/internal/repository"
	"github.com/Jer-romano/capstone2-traveler/internal/service"
	"github.com/Jer-romano/capstone2-traveler/internal/telemetry"
)

const idempotencyTTL = 10 * time.Minute

// AppDependencies holds the dependencies required to start the application.
// BlobStore may be pre-populated (tests inject a fake); when nil it is built
// from Config.S3.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	BlobStore   domain.BlobStore
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	tripRepo := repository.NewMongoTripRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)

	var cacheRepo domain.CacheRepository
	if deps.RedisClient != nil {
		cacheRepo = repository.NewRedisCacheRepository(deps.RedisClient)
	}

	blobStore := deps.BlobStore
	if blobStore == nil {
		s3Store, err := repository.NewS3BlobStore(context.Background(), deps.Config.S3, deps.Config.Server.MaxUploadSizeMB)
		if err != nil {
			log.Printf("Warning: failed to initialize blob store: %v", err)
		} else {
			blobStore = s3Store
		}
	}

	// Initialize services
	tripService := service.NewTripService(tripRepo, userRepo, cacheRepo)
	uploadService := service.NewUploadService(tripRepo, blobStore, cacheRepo)

	// Initialize handlers
	tripHandler := handler.NewTripHandler(tripService, uploadService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Traveler API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "traveler-api",
		})
	})

	trips := app.Group("/trips")
	trips.Post("/", tripHandler.CreateTrip)
	trips.Get("/", tripHandler.ListTrips)
	trips.Get("/:id", tripHandler.GetTrip)
	trips.Get("/:id/images", tripHandler.ListTripImages)
	trips.Delete("/:id", tripHandler.DeleteTrip)

	if deps.RedisClient != nil {
		trips.Post("/:id", middleware.Idempotency(deps.RedisClient, idempotencyTTL), tripHandler.UploadImage)
	} else {
		trips.Post("/:id", tripHandler.UploadImage)
	}

	return app
}

// errorHandler maps domain errors to stable HTTP statuses with a
// machine-readable kind. Internal details never reach the response body.
func errorHandler(c *fiber.Ctx, err error) error {
	log.Printf("Error: %v", err)

	var invalid *domain.InvalidInputError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"kind":  "not_found",
			"error": "trip not found",
		})
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"kind":  "invalid_input",
			"error": invalid.Msg,
		})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"kind":  "conflict",
			"error": "delete rejected by storage",
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"kind":  "store_unavailable",
			"error": "image store unavailable",
		})
	case errors.Is(err, domain.ErrStoreRejected):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":  "store_rejected",
			"error": "image store rejected the upload",
		})
	}

	var upload *domain.UploadError
	if errors.As(err, &upload) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"kind":  "upload_failed",
			"error": "image upload failed",
		})
	}

	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"kind":  "internal",
		"error": message,
	})
}

package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/heritage-nest/server/internal/config"
	"github.com/heritage-nest/server/internal/db"
	"github.com/heritage-nest/server/internal/handlers"
	"github.com/heritage-nest/server/internal/logger"
	"github.com/heritage-nest/server/internal/repository"
	"github.com/heritage-nest/server/internal/services"
	"github.com/heritage-nest/server/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(cors.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Connect to MongoDB
	database := db.Connect(cfg.MongoURI, cfg.DBName)
	// The unique email index is what enforces registration uniqueness, so
	// running without it is not an option.
	if err := db.EnsureIndexes(database); err != nil {
		logger.Fatal("index bootstrap failed", map[string]any{"error": err.Error()})
	}

	// Connect to MinIO
	photoStore, err := storage.NewPhotoStore(cfg)
	if err != nil {
		logger.Fatal("MinIO connection failed", map[string]any{"error": err.Error()})
	}

	userStore := repository.NewMongoUserStore(database)
	propertyStore := repository.NewMongoPropertyStore(database)

	authService := services.NewAuthService(userStore, cfg.JWTSecret, cfg.JWTExpiry)
	listingService := services.NewListingService(propertyStore, photoStore)

	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService)

	// Health route
	app.Get("/", handlers.Health)

	// Auth routes
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)

	// Property routes. The search route is registered before the :id route
	// so "search-query" is never captured as an identifier.
	app.Get("/properties", listingHandler.ListAll)
	app.Get("/properties/search-query", listingHandler.Search)
	app.Get("/properties/:id", listingHandler.GetByID)
	app.Post("/properties", listingHandler.Create)
	app.Patch("/properties/:id", listingHandler.Update)
	app.Delete("/properties/:id", listingHandler.Delete)
	app.Patch("/properties/:id/bid", listingHandler.PlaceBid)

	// Photo routes
	app.Post("/properties/:id/photos", listingHandler.UploadPhoto)
	app.Get("/properties/:id/photos/:object", listingHandler.PhotoURL)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}

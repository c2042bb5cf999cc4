package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"shoplens-backend/config"
	"shoplens-backend/database"
	"shoplens-backend/routes"
)

func main() {
	// Optional config.yaml; .env and environment variables override it.
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// Initialize database
	if err := database.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	app := fiber.New()

	// Add CORS middleware
	if cfg.Server.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	} else {
		app.Use(cors.New())
	}

	// Liveness probe: process is up and the pool can reach PostgreSQL.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := database.GetDB().Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("database ping failed: " + err.Error())
		}
		return c.SendString("ok")
	})

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	log.Printf("shoplens backend listening on %s", cfg.Server.Addr)
	log.Fatal(app.Listen(cfg.Server.Addr))
}

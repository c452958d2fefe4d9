package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/craftatlas/craftatlas/app/controllers"
	"github.com/craftatlas/craftatlas/app/repository"
	"github.com/craftatlas/craftatlas/internal/pkg/cache"
	"github.com/craftatlas/craftatlas/internal/pkg/database"
	"github.com/craftatlas/craftatlas/internal/pkg/env"
	"github.com/craftatlas/craftatlas/internal/pkg/moderation"
	"github.com/craftatlas/craftatlas/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// MODERATION_TERMS swaps out the built-in deny list wholesale.
	if terms := env.GetEnv("MODERATION_TERMS", ""); terms != "" {
		controllers.SetModerationFilter(moderation.NewFilter(strings.Split(terms, ",")))
	}

	app := fiber.New(fiber.Config{
		// Largest legitimate request is a bulk import payload (256 KiB) or
		// an image upload (300 KiB) plus multipart overhead.
		BodyLimit: 1024 * 1024,
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	return app
}

// Package main runs the akshara API server, the surface the corpus
// dashboard talks to.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/akshara-labs/akshara/internal/api"
	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/internal/scheduler"
	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/logging"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.SetupLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}

	metrics := storage.NewSimpleMetricsCollector()
	store, err := storage.NewFilesystemStore(cfg.Storage, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize artifact store")
	}

	bus := events.NewEventBus(256, 2)
	defer bus.Close()
	recorder := events.NewRecorder(bus, 200)

	fetcher := scraping.NewFetcher(cfg.Scraping)
	collector := scraping.NewCollector(fetcher, store, bus)
	if cfg.Storage.EnableGitArchive {
		archive, err := storage.NewGitArchive(cfg.Storage.GitArchiveDir, metrics)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize git archive")
		}
		collector.SetArchive(archive)
	}

	cleaner := processing.NewCorpusCleaner(store)
	service := scraping.NewService(collector, cleaner, store, bus)

	sched := scheduler.New(service, cfg.Scheduler, cfg.Collection)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName: "Akshara API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "UTC",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	h := api.NewHandlers(service, store, recorder, metrics, cfg.Collection)
	h.SetupRoutes(app)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "akshara",
			"version": "0.1.0",
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, getEnv("PORT", fmt.Sprintf("%d", cfg.Server.Port)))
	log.Info().Str("addr", addr).Msg("Starting akshara server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func loadConfig() (*pipecfg.PipelineConfig, error) {
	if path := os.Getenv("AKSHARA_CONFIG"); path != "" {
		return pipecfg.LoadConfig(path)
	}
	if os.Getenv("AKSHARA_ENV") == "production" {
		return pipecfg.ProductionPipelineConfig(), nil
	}
	return pipecfg.DefaultPipelineConfig(), nil
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

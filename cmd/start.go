package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketdata-manager/core/config"
	"marketdata-manager/core/database"
	"marketdata-manager/core/loader"
	"marketdata-manager/core/logger"
	"marketdata-manager/core/middleware/auth"
	"marketdata-manager/core/middleware/rayid"
	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/storage"

	"marketdata-manager/feature/instruments"
	"marketdata-manager/feature/news"
	"marketdata-manager/feature/profiles"
	"marketdata-manager/feature/quotes"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Market Data Manager API
// @version 1.0
// @description API for acquiring and serving market data.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the market data server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if missing := database.VerifyLoaderTables(db); len(missing) > 0 {
			logg.Warn("Loader tables missing, runs will fail until migrated",
				zap.Strings("tables", missing))
		}

		// The archive is optional: without it, news loads simply skip the
		// raw payload copies.
		var archive storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Payload archive unavailable", zap.Error(err))
		} else {
			archive = client
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		registry := instruments.NewFeature(db, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(registry)
		mgr.Register(quotes.NewFeature(db, logg, registry.Service(), cfg))
		mgr.Register(profiles.NewFeature(db, logg, registry.Service(), cfg))
		mgr.Register(news.NewFeature(db, logg, registry.Service(), archive, cfg))

		// RayID first so every later log line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Health stays public; everything after the auth middleware needs
		// the API key.
		app.Get("/health", handleHealth(db))

		if cfg.Server.RequiresAuth() {
			app.Use(auth.New(cfg.Server.ApiKey))
		}

		app.Get("/runs", handleRuns(db))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// handleHealth reports process and database health.
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func handleHealth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
			status = "degraded"
			c.Status(fiber.StatusServiceUnavailable)
		}
		return c.JSON(fiber.Map{"status": status})
	}
}

// handleRuns lists recent batch runs.
// @Summary List recent batch runs
// @Produce json
// @Success 200 {array} pipeline.ProcessRun
// @Router /runs [get]
func handleRuns(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit")
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		var runs []pipeline.ProcessRun
		err := db.WithContext(c.Context()).
			Order("started_at DESC").
			Limit(limit).
			Find(&runs).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(runs)
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}

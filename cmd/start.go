package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-manager/core/config"
	"catalog-manager/core/database"
	"catalog-manager/core/loader"
	"catalog-manager/core/logger"
	"catalog-manager/core/middleware/auth"
	"catalog-manager/core/middleware/rayid"
	"catalog-manager/core/storage"

	"catalog-manager/feature/catalog"
	"catalog-manager/feature/detection"
	"catalog-manager/feature/enrichment"
	"catalog-manager/feature/integrity"
	"catalog-manager/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "catalog-manager/docs/swagger"
)

// @title Catalog Manager API
// @version 1.0
// @description API for the versioned software and game catalog.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open Catalog (Required)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Catalog database connection failed", zap.Error(err))
		}
		if err := catalog.Migrate(db); err != nil {
			logg.Fatal("Catalog migration failed", zap.Error(err))
		}
		logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
		store := catalog.NewStore(db, logg)

		// 4. Initialize Storage (Optional)
		var client storage.Client
		if cfg.Storage.Enabled {
			client, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		} else {
			logg.Info("Snapshot storage disabled")
		}

		// 5. Initialize Detectors
		registry, err := detection.LoadRegistry(cfg.Detection)
		if err != nil {
			logg.Warn("Failed to load detector manifests", zap.Error(err))
			registry = detection.NewRegistry()
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		orchestrator := enrichment.NewOrchestrator(store, enrichment.BuildRegistry(cfg.Providers, logg), cfg.Enrichment, logg)

		mgr.Register(catalog.NewFeature(store, logg, cfg.Server.Actor))
		mgr.Register(enrichment.NewFeature(orchestrator, logg))
		mgr.Register(detection.NewFeature(detection.NewSyncer(store, logg), registry, cfg.Detection, logg))
		mgr.Register(integrity.NewFeature(integrity.NewService(db, client, cfg.Storage, logg)))
		if client != nil {
			mgr.Register(snapshot.NewFeature(snapshot.NewService(store, client, cfg.Storage, cfg.Snapshot, logg), logg))
		}

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

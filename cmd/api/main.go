package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photoapp/internal/config"
	"photoapp/internal/database"
	"photoapp/internal/database/migration"
	handlers "photoapp/internal/http/handler"
	"photoapp/internal/http/middleware"
	"photoapp/internal/logging"
	"photoapp/internal/otel"
	"photoapp/internal/repository/sqlrepo"
	"photoapp/internal/service"
	"photoapp/internal/storage"
	"photoapp/internal/view"
)

// @title Photo App
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, "info", time.UTC).Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, loc)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("startup_failed", "error", err.Error())
		if errors.Is(err, storage.ErrBucketNotFound) {
			fmt.Fprintf(os.Stderr, "You need to create the Amazon S3 bucket %q before running this app.\n", cfg.Storage.Bucket)
		}
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Connection pool via database/sql; driver picked by DB_DRIVER
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := migration.EnsureMigrated(ctx, db, cfg.Database, logger); err != nil {
			return err
		}
	}

	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, objStore); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	photoRepo := sqlrepo.NewPhotoSQL(db, cfg.Database.Driver, cfg.Database.Table)
	photoSvc, err := service.WithMetrics(service.NewPhotoService(objStore, photoRepo, logger), reg)
	if err != nil {
		return fmt.Errorf("register service metrics: %w", err)
	}

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, db, photoSvc, renderer, logger)

	handlers.RegisterDocs(app)

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", "addr", addr, "storage_driver", cfg.Storage.Driver, "db_driver", cfg.Database.Driver)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

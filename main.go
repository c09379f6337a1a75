package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/produtos-api/internal/app/service"
	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/mrops-br/produtos-api/internal/infrastructure/config"
	"github.com/mrops-br/produtos-api/internal/infrastructure/database"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http"
	"github.com/mrops-br/produtos-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/produtos-api/internal/infrastructure/repository/gormdb"
	"github.com/mrops-br/produtos-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/produtos-api/internal/infrastructure/storage"
	"github.com/mrops-br/produtos-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry
	telem, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	runErr := run(cfg, telem)
	if runErr != nil {
		telem.Logger.Error("Products API stopped with error", slog.String("error", runErr.Error()))
	}

	// Flush telemetry before exiting
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := telem.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}

	if runErr != nil {
		shutdownCancel()
		os.Exit(1)
	}
}

func run(cfg *config.Config, telem *telemetry.Telemetry) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Get tracer, meter, and logger instances
	tracer := telem.TracerProvider.Tracer("produtos-api")
	meter := telem.MeterProvider.Meter("produtos-api")
	logger := telem.Logger

	logger.Info("Starting Products API",
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("storage_driver", cfg.Storage.Driver),
	)

	repo, closeRepo, err := newRepository(&cfg.Database, tracer, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	images, serverOpts, err := newImageStore(&cfg.Storage, tracer, logger)
	if err != nil {
		return err
	}

	productService := service.NewProductService(repo, images, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, cfg.Server.UploadMaxMemory, cfg.Server.UploadMaxSize, logger)
	server := http.NewServer(&cfg.Server, productHandler, telem.MeterProvider, logger, serverOpts...)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Server stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// newRepository selects the product store from DB_DRIVER
func newRepository(cfg *config.DatabaseConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, func(), error) {
	if cfg.Driver == database.DriverMemory {
		return memory.NewProductRepository(tracer, logger), func() {}, nil
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := gormdb.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return gormdb.NewProductRepository(db, tracer, logger), closeDB, nil
}

// newImageStore selects the image store from STORAGE_DRIVER. The local store
// also needs the server to expose its directory.
func newImageStore(cfg *config.StorageConfig, tracer trace.Tracer, logger *slog.Logger) (domain.ImageStore, []http.Option, error) {
	switch cfg.Driver {
	case "s3":
		store, err := storage.NewS3Store(&cfg.S3, tracer, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicURL, tracer, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, []http.Option{http.WithImageFiles(store.PublicURL(), store.Dir())}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

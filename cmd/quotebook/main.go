// Package main is the entry point for the quotebook HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/sinks"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/platform/paths"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting quotebook",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,

		ExportInterval: cfg.Telemetry.ExportInterval,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()

	dataDir, err := paths.ResolveDataDir("", "")
	if err != nil {
		return fmt.Errorf("resolving data directory: %w", err)
	}

	backend, err := storage.Open(ctx, storage.Options{
		Driver:     cfg.Storage.Driver,
		Path:       cfg.Storage.Path,
		Dir:        dataDir,
		Collection: cfg.Storage.Collection,
	})
	if err != nil {
		return err
	}

	defer func() { _ = backend.Close() }()

	if err := healthRegistry.Register(backend); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	collectionMetrics, err := telemetry.NewCollectionMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering collection metrics: %w", err)
	}

	store := app.NewStore(app.StoreConfig{
		Repository:   backend,
		SeedExamples: cfg.Store.SeedExamples,
		OnChange:     collectionMetrics.Observe,
		Logger:       logger,
	})

	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	logger.Info("collection ready",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", backend.Path()),
		slog.Int("quotes", store.Len()),
	)

	if cfg.Storage.Watch {
		watcher, err := backend.Watch(ctx, store, logger, cfg.Storage.WatchDebounce)
		if err != nil {
			return err
		}

		if watcher != nil {
			defer watcher.Stop()
		}
	}

	serviceCfg := app.QuoteServiceConfig{
		Store:     store,
		Clipboard: sinks.NewClipboard(),
		Logger:    logger,
	}

	if cfg.Export.Dir != "" {
		serviceCfg.FileSink = sinks.NewDirectory(cfg.Export.Dir)
	}

	if cfg.Services.Library.Enabled() {
		library, err := newLibrary(cfg, logger)
		if err != nil {
			return err
		}

		if err := healthRegistry.Register(library); err != nil {
			return fmt.Errorf("registering library health check: %w", err)
		}

		serviceCfg.Source = library
	}

	quoteService := app.NewQuoteService(serviceCfg)

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, store, buildInfo)
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		HealthHandler: healthHandler,
		QuoteHandler:  quoteHandler,
		Timeout:       cfg.Server.RequestTimeout,
	})

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newLibrary builds the remote quote library adapter.
func newLibrary(cfg *config.Config, logger *slog.Logger) (*acl.Library, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Library.BaseURL,
		ServiceName: cfg.Services.Library.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating library client: %w", err)
	}

	return acl.NewLibrary(acl.LibraryConfig{Client: httpClient, Logger: logger}), nil
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

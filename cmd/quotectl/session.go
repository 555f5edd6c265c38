package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebook/internal/adapters/sinks"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/paths"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// openStore opens the configured medium and loads the collection. It is
// called once per invocation by the commands that need the collection.
func (e *env) openStore(ctx context.Context) (*app.Store, error) {
	if e.store != nil {
		return e.store, nil
	}

	dataDir, err := paths.ResolveDataDir(e.dataDir, e.v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	backend, err := storage.Open(ctx, storage.Options{
		Driver:     e.v.GetString(cfgKeyDriver),
		Dir:        dataDir,
		Collection: e.v.GetString(cfgKeyCollection),
	})
	if err != nil {
		return nil, err
	}

	store := app.NewStore(app.StoreConfig{
		Repository:   backend,
		SeedExamples: e.v.GetBool(cfgKeySeed),
		Now:          e.now,
		Logger:       e.logger,
	})

	if err := store.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	e.backend = backend
	e.store = store

	return store, nil
}

// service builds the use-case layer over the collection. files receives
// exports; nil disables saving them.
func (e *env) service(ctx context.Context, files ports.FileSink) (*app.QuoteService, error) {
	store, err := e.openStore(ctx)
	if err != nil {
		return nil, err
	}

	source, err := e.librarySource()
	if err != nil {
		return nil, err
	}

	return app.NewQuoteService(app.QuoteServiceConfig{
		Store:     store,
		Clipboard: e.clipboard,
		FileSink:  files,
		Source:    source,
		Logger:    e.logger,
	}), nil
}

// librarySource returns the remote library, or nil when none is
// configured.
func (e *env) librarySource() (ports.DocumentSource, error) {
	if e.source != nil {
		return e.source, nil
	}

	baseURL := e.v.GetString(cfgKeyLibraryURL)
	if baseURL == "" {
		return nil, nil
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: e.v.GetString(cfgKeyLibraryName),
		Timeout:     e.v.GetDuration(cfgKeyLibraryTimeout),
		Retry: config.RetryConfig{
			MaxAttempts:     e.v.GetInt(cfgKeyLibraryRetries),
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      config.DefaultClientRetryMultiplier,
			JitterFactor:    config.DefaultClientRetryJitterFactor,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   config.DefaultClientCircuitMaxFailures,
			Timeout:       30 * time.Second,
			HalfOpenLimit: config.DefaultClientCircuitHalfOpenLimit,
		},
		Logger: e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating library client: %w", err)
	}

	return acl.NewLibrary(acl.LibraryConfig{Client: client, Logger: e.logger}), nil
}

func (e *env) close() error {
	if e.backend == nil {
		return nil
	}

	err := e.backend.Close()
	e.backend, e.store = nil, nil

	return err
}

// confirmer asks on the terminal unless the user already agreed with
// --yes.
func confirmer(cmd *cobra.Command, yes bool) ports.Confirmer {
	if yes {
		return sinks.Always(true)
	}

	return sinks.NewPrompt(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

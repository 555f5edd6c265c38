// Package storage opens the configured collection medium: a JSON file
// (the default) or a SQLite database.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jsamuelsen/quotebook/internal/adapters/storage/jsonfile"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Options selects and locates the medium.
type Options struct {
	Driver string

	// Path is the file to use. When empty the file is named after the
	// collection inside Dir.
	Path string
	Dir  string

	Collection string
}

// Backend is an opened medium.
type Backend struct {
	ports.QuoteRepository
	ports.HealthChecker

	path  string
	json  *jsonfile.Repository
	close func() error
}

type repository interface {
	ports.QuoteRepository
	ports.HealthChecker
}

// Open opens the medium described by opts.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	if opts.Collection == "" {
		opts.Collection = domain.StorageKey
	}

	switch opts.Driver {
	case DriverJSON, "":
		path := resolvePath(opts, ".json")
		repo := jsonfile.New(path)

		return newBackend(repo, path, repo, nil), nil
	case DriverSQLite:
		path := resolvePath(opts, ".db")

		repo, err := sqlite.Open(ctx, path, opts.Collection)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}

		return newBackend(repo, path, nil, repo.Close), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func newBackend(repo repository, path string, json *jsonfile.Repository, closer func() error) *Backend {
	return &Backend{QuoteRepository: repo, HealthChecker: repo, path: path, json: json, close: closer}
}

func resolvePath(opts Options, ext string) string {
	if opts.Path != "" {
		return opts.Path
	}

	return filepath.Join(opts.Dir, opts.Collection+ext)
}

// Path returns the file backing the collection.
func (b *Backend) Path() string {
	return b.path
}

// Watch starts reloading target when another program edits the JSON file.
// It returns nil for media that are not watched.
func (b *Backend) Watch(ctx context.Context, target jsonfile.Reloader, logger *slog.Logger, debounce time.Duration) (*jsonfile.Watcher, error) {
	if b.json == nil {
		return nil, nil
	}

	w, err := jsonfile.NewWatcher(b.json, target, logger, debounce)
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}

	return w, nil
}

// Close releases the medium.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}

	return b.close()
}

// Package jsonfile stores a quote collection as a single JSON array on disk.
// Writes are atomic (temp file, fsync, rename) so a reader never sees a
// half-written collection.
package jsonfile

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// FileMode is the permission used for collection and export files.
const FileMode fs.FileMode = 0o600

// Repository implements ports.QuoteRepository on a JSON file.
//
// It remembers the digest of the content it last decoded or wrote. Persist
// refuses to overwrite a file that changed since then, including one that
// could not be decoded, and Changed lets a watcher tell external edits
// apart from its own writes.
type Repository struct {
	path string

	mu     sync.Mutex
	digest [sha256.Size]byte
	known  bool
}

// New returns a repository for the file at path. The file and its parent
// directory are created on the first Persist.
func New(path string) *Repository {
	return &Repository{path: filepath.Clean(path)}
}

// Path returns the collection file path.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the collection. A missing file is an empty collection.
func (r *Repository) Load(ctx context.Context) ([]domain.QuoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.remember(nil, false)
		return []domain.QuoteRecord{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	records, err := domain.DecodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", r.path, err)
	}

	r.remember(data, true)

	return records, nil
}

// Persist atomically replaces the file with records.
func (r *Repository) Persist(ctx context.Context, records []domain.QuoteRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	changed, err := r.Changed()
	if err != nil {
		return err
	}

	if changed {
		return domain.NewConflictError("collection", "file on disk was modified by another program or could not be read; fix or reload it first")
	}

	data, err := domain.EncodeCollection(records)
	if err != nil {
		return err
	}

	if err := WriteAtomic(r.path, data, FileMode); err != nil {
		return err
	}

	r.remember(data, true)

	return nil
}

// Changed reports whether the file differs from what this repository last
// decoded or wrote.
func (r *Repository) Changed() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return r.known, nil
	}

	if err != nil {
		return false, fmt.Errorf("reading %s: %w", r.path, err)
	}

	if !r.known {
		return true, nil
	}

	return sha256.Sum256(data) != r.digest, nil
}

// Name identifies the repository in readiness checks.
func (r *Repository) Name() string {
	return "storage"
}

// Check verifies the collection directory exists and is a directory.
func (r *Repository) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(filepath.Dir(r.path))
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(r.path))
	}

	return nil
}

func (r *Repository) remember(data []byte, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.known = exists
	if exists {
		r.digest = sha256.Sum256(data)
	}
}

// WriteAtomic writes data to path through a temp file in the same
// directory, fsyncs it, and renames it into place.
func WriteAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := w.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flushing buffer: %w", err)
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

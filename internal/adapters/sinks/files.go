package sinks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsamuelsen/quotebook/internal/adapters/storage/jsonfile"
)

// Directory implements ports.FileSink by writing into a fixed directory.
type Directory struct {
	dir string
}

// NewDirectory returns a sink that writes into dir, creating it on demand.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

// WriteFile atomically writes data as dir/name and returns the full path.
// The name must be a plain file name.
func (d *Directory) WriteFile(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New("invalid export file name: " + name)
	}

	path := filepath.Join(d.dir, name)
	if err := jsonfile.WriteAtomic(path, data, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

// FixedPath implements ports.FileSink by writing to one path regardless of
// the suggested name.
type FixedPath struct {
	path string
}

// NewFixedPath returns a sink that always writes to path.
func NewFixedPath(path string) *FixedPath {
	return &FixedPath{path: path}
}

// WriteFile atomically writes data to the fixed path.
func (f *FixedPath) WriteFile(ctx context.Context, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := jsonfile.WriteAtomic(f.path, data, 0o644); err != nil {
		return "", err
	}

	return f.path, nil
}

// Stream implements ports.FileSink on an already open file, usually stdout.
type Stream struct {
	out *os.File
}

// NewStream returns a sink writing to out.
func NewStream(out *os.File) *Stream {
	return &Stream{out: out}
}

// WriteFile writes data followed by a newline.
func (s *Stream) WriteFile(ctx context.Context, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := s.out.Write(data); err != nil {
		return "", err
	}

	if _, err := s.out.Write([]byte{'\n'}); err != nil {
		return "", err
	}

	return s.out.Name(), nil
}

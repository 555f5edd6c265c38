package jsonfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingReloader struct {
	repo  *Repository
	calls atomic.Int32
}

func (c *countingReloader) Reload(ctx context.Context) error {
	c.calls.Add(1)
	_, err := c.repo.Load(ctx)

	return err
}

func newTestWatcher(t *testing.T) (*Repository, *countingReloader, *Watcher) {
	t.Helper()

	repo := New(filepath.Join(t.TempDir(), "stellar_quotes_v1.json"))
	_, err := repo.Load(context.Background())
	require.NoError(t, err)

	reloader := &countingReloader{repo: repo}
	w, err := NewWatcher(repo, reloader, slog.New(slog.NewTextHandler(io.Discard, nil)), 30*time.Millisecond)
	require.NoError(t, err)

	return repo, reloader, w
}

func TestWatcher_ReloadsOnExternalEdit(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, reloader, w := newTestWatcher(t)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(repo.Path(), []byte(`[{"id":"x","text":"edited"}]`), 0o600))

	assert.Eventually(t, func() bool { return reloader.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, w.Reloads())
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, reloader, w := newTestWatcher(t)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, repo.Persist(context.Background(), sampleRecords()))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, reloader.calls.Load())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, w := newTestWatcher(t)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, _, w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	cancel()
	w.Stop()
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(nil)) //nolint:staticcheck // nil guard
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, FromContext(WithContext(context.Background(), custom)))
}

func TestContextIDs(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithTraceID(ctx, "trace-456")
	ctx = WithCorrelationID(ctx, "corr-789")

	FromContext(ctx).InfoContext(ctx, "quote added")

	entry := decode(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "trace-456", entry["trace_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
}

func TestWith_KeepsEarlierAttributes(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = With(ctx, "component", "store")
	ctx = WithRequestID(ctx, "req-1")

	FromContext(ctx).Info("persisted")

	entry := decode(t, &buf)
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "req-1", entry[KeyRequestID])
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { SetDefault(original) })

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDefault(custom)

	assert.Same(t, custom, FromContext(context.Background()))
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out *bytes.Buffer)
	}{
		{"json", func(t *testing.T, out *bytes.Buffer) {
			entry := decode(t, out)
			assert.Equal(t, "collection loaded", entry["msg"])
			assert.Equal(t, "quotebook", entry["service_name"])
			assert.Equal(t, "1.0.0", entry["service_version"])
		}},
		{"text", func(t *testing.T, out *bytes.Buffer) {
			assert.Contains(t, out.String(), `msg="collection loaded"`)
			assert.Contains(t, out.String(), "service_name=quotebook")
		}},
		{"pretty", func(t *testing.T, out *bytes.Buffer) {
			assert.Contains(t, out.String(), "collection loaded")
			assert.Contains(t, out.String(), "quotebook")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			logger := NewWithWriter(&Config{Level: "info", Format: tt.format, Service: "quotebook", Version: "1.0.0"}, &buf)
			logger.Info("collection loaded", slog.Int("count", 2))

			tt.check(t, &buf)
		})
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_Trace(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "trace", Format: "json"}, &buf)
	logger.Log(context.Background(), LevelTrace, "record normalized")

	assert.Contains(t, buf.String(), "record normalized")
}

func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotebook.log")

	var buf bytes.Buffer
	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "pretty",
		File:   FileConfig{Enabled: true, Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}, &buf)

	logger.Info("exported", slog.String("token", "hunter2"))

	assert.Contains(t, buf.String(), "exported")
	assert.NotContains(t, buf.String(), "hunter2")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"exported"`)
	assert.NotContains(t, string(content), "hunter2")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := map[slog.Level]log.Level{
		LevelTrace:      log.DebugLevel,
		slog.LevelDebug: log.DebugLevel,
		slog.LevelInfo:  log.InfoLevel,
		slog.LevelWarn:  log.WarnLevel,
		slog.LevelError: log.ErrorLevel,
		slog.Level(12):  log.ErrorLevel,
		slog.Level(-12): log.DebugLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, slogToCharmLevel(in), in.String())
	}
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer

	multi := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, multi.Enabled(context.Background(), LevelTrace))

	logger := slog.New(multi).With(slog.String("component", "store")).WithGroup("merge")
	logger.Info("merged", slog.Int("added", 3))
	logger.Debug("skipped")

	for _, out := range []string{debugBuf.String(), infoBuf.String()} {
		assert.Contains(t, out, `"component":"store"`)
		assert.Contains(t, out, `"merge":{"added":3}`)
	}

	assert.Contains(t, debugBuf.String(), "skipped")
	assert.NotContains(t, infoBuf.String(), "skipped")
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		key, value string
		redact     bool
	}{
		{"password", "secret123", true},
		{"token", "my-token", true},
		{"api_key", "k-1", true},
		{"api_token", "k-2", true},
		{"authorization", "Bearer abc123xyz456", true},
		{"secret_config", "sensitive-data", true},
		{"note", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", true},
		{"author", "Ada Lovelace", false},
		{"text", "Ship often.", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var buf bytes.Buffer

			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))
			logger.Info("test", slog.String(tt.key, tt.value))

			assert.Contains(t, buf.String(), tt.key)
			if tt.redact {
				assert.NotContains(t, buf.String(), tt.value)
			} else {
				assert.Contains(t, buf.String(), tt.value)
			}
		})
	}

	assert.Greater(t, len(DefaultRedactOptions()), 10)
}

package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// syncBuffer lets parallel requests share a log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func newCapturingLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		fromGin    func(*gin.Context) string
		fromCtx    func(context.Context) string
	}{
		{"request id", RequestID(), HeaderRequestID, GetRequestID, RequestIDFromContext},
		{"correlation id", CorrelationID(), HeaderCorrelationID, GetCorrelationID, CorrelationIDFromContext},
	}

	for _, tt := range tests {
		t.Run(tt.name+" generated", func(t *testing.T) {
			t.Parallel()

			var ginID, ctxID string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/quotes", func(c *gin.Context) {
				ginID = tt.fromGin(c)
				ctxID = tt.fromCtx(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil))

			require.NotEmpty(t, ginID)
			assert.Len(t, ginID, 36)
			assert.Equal(t, ginID, ctxID)
			assert.Equal(t, ginID, w.Header().Get(tt.header))
		})

		t.Run(tt.name+" propagated", func(t *testing.T) {
			t.Parallel()

			var ctxID string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/quotes", func(c *gin.Context) {
				ctxID = tt.fromCtx(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
			req.Header.Set(tt.header, "upstream-7")
			w := serve(router, req)

			assert.Equal(t, "upstream-7", ctxID)
			assert.Equal(t, "upstream-7", w.Header().Get(tt.header))
		})
	}
}

func TestIDMiddleware_EnrichesContextLogger(t *testing.T) {
	t.Parallel()

	logger, buf := newCapturingLogger()

	router := gin.New()
	router.Use(ContextLogger(logger), RequestID(), CorrelationID())
	router.GET("/quotes", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("listing")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "corr-1")
	serve(router, req)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"correlation_id":"corr-1"`)
}

func TestGetIDs_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		skip      []string
		wantLevel string
		wantNone  bool
	}{
		{name: "success at info", path: "/quotes?q=ship", status: http.StatusOK, wantLevel: `"level":"INFO"`},
		{name: "client error at warn", path: "/quotes/x", status: http.StatusNotFound, wantLevel: `"level":"WARN"`},
		{name: "server error at error", path: "/export", status: http.StatusInternalServerError, wantLevel: `"level":"ERROR"`},
		{name: "health skipped", path: "/-/ready", status: http.StatusOK, wantNone: true},
		{name: "configured skip", path: "/favicon.ico", status: http.StatusOK, skip: []string{"/favicon.ico"}, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := newCapturingLogger()

			router := gin.New()
			router.Use(ContextLogger(logger), Logging(tt.skip...))
			router.NoRoute(func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)

			out := buf.String()
			if tt.wantNone {
				assert.Empty(t, out)
				return
			}

			assert.Contains(t, out, "request completed")
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, tt.path)
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("passes normal requests", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery())
		router.GET("/quotes", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil)).Code)
	})

	t.Run("turns a panic into a 500 envelope", func(t *testing.T) {
		t.Parallel()

		logger, buf := newCapturingLogger()

		router := gin.New()
		router.Use(ContextLogger(logger), Recovery())
		router.GET("/quotes", func(_ *gin.Context) {
			panic("store exploded")
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.NotContains(t, w.Body.String(), "store exploded")
		assert.Contains(t, buf.String(), "store exploded")
		assert.Contains(t, buf.String(), "stack")
	})

	t.Run("keeps a response already written", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery())
		router.GET("/quotes", func(c *gin.Context) {
			c.String(http.StatusAccepted, "partial")
			panic("late")
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets a deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second))
		router.GET("/quotes", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("answers 504 when the handler gives up silently", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(20 * time.Millisecond))
		router.GET("/import/remote", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/import/remote", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "TIMEOUT")
	})

	t.Run("keeps the handler's own response", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(20 * time.Millisecond))
		router.GET("/quotes", func(c *gin.Context) {
			<-c.Request.Context().Done()
			c.Status(http.StatusServiceUnavailable)
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second, "/export"))
		router.GET("/export", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		serve(router, httptest.NewRequest(http.MethodGet, "/export", nil))

		assert.False(t, hasDeadline)
	})
}

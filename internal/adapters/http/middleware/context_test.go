package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "request-123")
	ctx = ContextWithCorrelationID(ctx, "correlation-456")

	assert.Equal(t, "request-123", RequestIDFromContext(ctx))
	assert.Equal(t, "correlation-456", CorrelationIDFromContext(ctx))
}

func TestIDFromContext_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, RequestIDFromContext(nil))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, CorrelationIDFromContext(nil))
}

func TestContextLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	var got *slog.Logger

	router := gin.New()
	router.Use(ContextLogger(logger))
	router.GET("/stats", func(c *gin.Context) {
		got = logging.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Same(t, logger, got)
}

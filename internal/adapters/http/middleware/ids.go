package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// Header names and gin keys of the tracking ids.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

type idMiddleware struct {
	header string
	key    string
	store  func(context.Context, string) context.Context
	enrich func(context.Context, string) context.Context
}

// RequestID takes the request id from X-Request-ID or generates a UUID. The
// id is echoed in the response and stored on the gin context, the request
// context and the context logger.
func RequestID() gin.HandlerFunc {
	return idMiddleware{
		header: HeaderRequestID,
		key:    ContextKeyRequestID,
		store:  ContextWithRequestID,
		enrich: logging.WithRequestID,
	}.handle
}

// CorrelationID does for X-Correlation-ID what RequestID does for
// X-Request-ID. A caller-supplied id ties several requests together.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware{
		header: HeaderCorrelationID,
		key:    ContextKeyCorrelationID,
		store:  ContextWithCorrelationID,
		enrich: logging.WithCorrelationID,
	}.handle
}

func (m idMiddleware) handle(c *gin.Context) {
	id := c.GetHeader(m.header)
	if id == "" {
		id = uuid.NewString()
	}

	c.Set(m.key, id)
	c.Header(m.header, id)

	ctx := m.enrich(m.store(c.Request.Context(), id), id)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}

// GetRequestID returns the request id of c, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation id of c, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

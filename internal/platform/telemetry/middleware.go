package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotebook/telemetry"

	// TraceHeader echoes the request's trace id to the caller.
	TraceHeader = "X-Trace-ID"
)

// serverMetrics are the OTel HTTP server instruments.
type serverMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	m := &serverMetrics{}

	var err error
	if m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.requests, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP requests served."),
	); err != nil {
		return nil, err
	}

	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests in flight."),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// Middleware returns the tracing chain for the router. otelgin opens the
// request span; the next handler runs inside it, so it can tag the request
// logger and the response with the trace id before recording metrics.
func Middleware(serviceName string) gin.HandlersChain {
	m, err := newServerMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{otelgin.Middleware(serviceName), m.handle}
}

// handle tolerates a nil receiver: metrics are skipped, trace ids are not.
func (m *serverMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID := sc.TraceID().String()
		c.Header(TraceHeader, traceID)

		ctx = logging.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
	}

	if m == nil {
		c.Next()
		return
	}

	route := metric.WithAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", c.FullPath()),
	)

	start := time.Now()

	m.inFlight.Add(ctx, 1, route)
	defer m.inFlight.Add(ctx, -1, route)

	c.Next()

	status := metric.WithAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	m.duration.Record(ctx, time.Since(start).Seconds(), route, status)
	m.requests.Add(ctx, 1, route, status)
}

package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig configures HTTPMetrics
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

type httpMetrics struct {
	requests  *telemetry.Counter
	failures  *telemetry.Counter
	latency   *telemetry.Histogram
	bodyBytes *telemetry.Histogram
	inFlight  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error
	if m.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if m.failures, err = telemetry.NewCounter(meter,
		"http_server_error_total", "HTTP requests answered with a storefront error code", "{request}"); err != nil {
		return nil, err
	}
	if m.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.bodyBytes, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size",
		Unit:        "By",
		Boundaries:  []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
	}); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics counts requests per route and status, records latency and body
// size, and counts failures per domain error code. It passes requests
// through untouched when metrics are disabled.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"))
}

// HTTPMetricsWithMeter is HTTPMetrics on an existing meter
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.inFlight.Add(ctx, 1)
		c.Next()
		m.inFlight.Add(ctx, -1)

		// route pattern, not the raw path, so /cart/lines/:index is one series
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		attrs := []attribute.KeyValue{
			telemetry.KeyHTTPMethod.String(c.Request.Method),
			telemetry.KeyHTTPRoute.String(route),
		}

		m.requests.Inc(ctx, append(attrs, telemetry.KeyHTTPStatusCode.Int(c.Writer.Status()))...)
		m.latency.RecordDuration(ctx, time.Since(start), attrs...)
		if size := c.Writer.Size(); size > 0 {
			m.bodyBytes.Record(ctx, float64(size), attrs...)
		}
		if code := errorCode(c); code != "" {
			m.failures.Inc(ctx, append(attrs, telemetry.KeyErrorCode.String(code))...)
		}
	}
}

// errorCode returns the domain code of the last error attached to the
// request, or "" when the handler attached none. Bind failures carry no
// domain code and count as validation errors.
func errorCode(c *gin.Context) string {
	last := c.Errors.Last()
	if last == nil {
		return ""
	}
	var domainErr *shared.DomainError
	if errors.As(last.Err, &domainErr) {
		return domainErr.Code
	}
	if c.Writer.Status() < http.StatusInternalServerError {
		return shared.CodeValidation
	}
	return shared.CodeInternal
}

func passThrough(c *gin.Context) {
	c.Next()
}

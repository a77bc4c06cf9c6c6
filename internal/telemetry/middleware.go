package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsMeterName is the name used for the HTTP metrics meter
const HTTPMetricsMeterName = "github.com/stacklok/storefront-catalog/http"

// unknownRoute labels requests chi could not route, keeping label cardinality bounded.
const unknownRoute = "unknown_route"

// probeRoutes are served to orchestrators and scrapers, not shoppers. They are
// not recorded.
var probeRoutes = map[string]struct{}{
	"/health":    {},
	"/readiness": {},
	"/metrics":   {},
}

// HTTPMetrics records request counts, latencies and listing payload sizes per route
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	responseSize    metric.Int64Histogram
}

// NewHTTPMetrics creates the HTTP instruments. A nil provider yields nil metrics,
// whose Middleware passes requests through.
func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(HTTPMetricsMeterName)

	m := &HTTPMetrics{}
	var err error
	if m.requestDuration, err = meter.Float64Histogram(
		"storefront_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, err
	}
	if m.requestsTotal, err = meter.Int64Counter(
		"storefront_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.activeRequests, err = meter.Int64UpDownCounter(
		"storefront_http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	// Listing responses grow with page size and facet count.
	if m.responseSize, err = meter.Int64Histogram(
		"storefront_http_response_size_bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(256, 1024, 4096, 16384, 65536, 262144, 1048576),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Middleware records one observation per request, labelled by method, chi route
// pattern and status code. Probe routes are skipped.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		m.activeRequests.Add(ctx, 1)
		next.ServeHTTP(ww, r)
		m.activeRequests.Add(ctx, -1)

		route := getRoutePattern(r)
		if _, probe := probeRoutes[route]; probe {
			return
		}

		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(ww.Status())),
		)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.requestsTotal.Add(ctx, 1, attrs)
		m.responseSize.Record(ctx, int64(ww.BytesWritten()), attrs)
	})
}

// getRoutePattern returns the chi pattern that served r, e.g.
// "/api/v1/search/{collection}", or unknownRoute.
func getRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unknownRoute
}

// MetricsMiddleware combines NewHTTPMetrics and Middleware.
func MetricsMiddleware(provider metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	metrics, err := NewHTTPMetrics(provider)
	if err != nil {
		return nil, err
	}
	return metrics.Middleware, nil
}

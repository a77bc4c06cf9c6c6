package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_NilPassThrough(t *testing.T) {
	t.Parallel()

	metrics, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	require.Nil(t, metrics)

	wrapped := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	t.Parallel()

	reader, mp := newTestMeterProvider(t)
	mw, err := MetricsMiddleware(mp)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/api/v1/search/{collection}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/v1/search/rings", "/api/v1/search/bags", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := collect(t, reader)
	total, ok := got["storefront_http_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value("route")
		status, _ := dp.Attributes.Value("status_code")
		byRoute[route.AsString()+" "+status.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		"/api/v1/search/{collection} 200": 2,
		"unknown_route 404":               1,
	}, byRoute)

	active, ok := got["storefront_http_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestMetricsMiddleware_NoopProvider(t *testing.T) {
	t.Parallel()

	mw, err := MetricsMiddleware(noop.NewMeterProvider())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestHTTPMetrics_SkipsProbesAndRecordsResponseSize(t *testing.T) {
	t.Parallel()

	reader, mp := newTestMeterProvider(t)
	mw, err := MetricsMiddleware(mp)
	require.NoError(t, err)

	body := `{"products":[],"count":0}`
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/api/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	for _, probe := range []string{"/health", "/readiness", "/metrics"} {
		r.Get(probe, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	for _, path := range []string{"/api/v1/search", "/health", "/readiness", "/metrics"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := collect(t, reader)
	total, ok := got["storefront_http_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	routes := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value("route")
		routes[route.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"/api/v1/search": 1}, routes)

	size, ok := got["storefront_http_response_size_bytes"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, uint64(1), size.DataPoints[0].Count)
	assert.Equal(t, int64(len(body)), size.DataPoints[0].Sum)
}

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingMiddleware_NilProvider(t *testing.T) {
	t.Parallel()

	called := false
	wrapped := TracingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestTracingMiddleware_Span(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	var handlerSpan trace.SpanContext
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(TracingMiddleware(tp))
	r.Get("/api/v1/search/{collection}", func(w http.ResponseWriter, req *http.Request) {
		handlerSpan = trace.SpanContextFromContext(req.Context())
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/v1/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/search/rings?tag=gold", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/fail", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET /api/v1/search/{collection}", ok.Name)
	assert.Equal(t, trace.SpanKindServer, ok.SpanKind)
	assert.Equal(t, codes.Ok, ok.Status.Code)
	assert.Equal(t, ok.SpanContext.SpanID(), handlerSpan.SpanID(), "handler sees the server span")

	route, found := attrValue(ok.Attributes, semconv.HTTPRouteKey)
	require.True(t, found)
	assert.Equal(t, "/api/v1/search/{collection}", route.AsString())
	path, _ := attrValue(ok.Attributes, semconv.URLPathKey)
	assert.Equal(t, "/api/v1/search/rings", path.AsString())
	_, found = attrValue(ok.Attributes, "http.request_id")
	assert.True(t, found)
	collection, found := attrValue(ok.Attributes, "catalog.collection")
	require.True(t, found)
	assert.Equal(t, "rings", collection.AsString())

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status.Code)
	_, found = attrValue(failed.Attributes, "catalog.collection")
	assert.False(t, found)
	status, _ := attrValue(failed.Attributes, semconv.HTTPResponseStatusCodeKey)
	assert.Equal(t, int64(http.StatusBadGateway), status.AsInt64())
}

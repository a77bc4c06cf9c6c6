package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/storefront-catalog/internal/api"
	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/service/mocks"
)

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	// No expectations needed - health check doesn't call service
	server := api.NewServer(mocks.NewMockStorefrontService(ctrl))

	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestAPIRoutesMounted(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockStorefrontService(ctrl)
	mockSvc.EXPECT().ListCollections(gomock.Any()).Return([]catalog.Collection{{Handle: "rings", Title: "Rings"}}, nil)

	server := api.NewServer(mockSvc, api.WithMiddlewares(middleware.RequestID, api.LoggingMiddleware))

	req, err := http.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"href":"/search/rings"`)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("storefront_http_requests_total 1\n"))
	})

	tests := []struct {
		name       string
		opts       []api.ServerOption
		wantStatus int
	}{
		{name: "mounted", opts: []api.ServerOption{api.WithMetricsHandler(metrics)}, wantStatus: http.StatusOK},
		{name: "not configured", wantStatus: http.StatusNotFound},
		{name: "nil handler", opts: []api.ServerOption{api.WithMetricsHandler(nil)}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			server := api.NewServer(mocks.NewMockStorefrontService(ctrl), tt.opts...)

			req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			server.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	server := api.NewServer(mocks.NewMockStorefrontService(ctrl))

	req, err := http.NewRequest(http.MethodGet, "/api/v2/search", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/storefront-catalog/internal/app/storage/mocks"
	"github.com/stacklok/storefront-catalog/internal/catalog"
)

// createTestApp builds an app over the fixture catalog whose factory expects one cleanup.
func createTestApp(t *testing.T, addr string) *StorefrontApp {
	t.Helper()
	ctrl := gomock.NewController(t)

	factory := mocks.NewMockFactory(ctrl)
	factory.EXPECT().CreateProvider(gomock.Any()).Return(catalog.NewFileProvider(fixture), nil)
	factory.EXPECT().Cleanup().Times(1)

	app, err := NewStorefrontApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithStorageFactory(factory),
		WithAddress(addr),
	)
	require.NoError(t, err)
	return app
}

func TestStorefrontApp_StartWithListener(t *testing.T) {
	t.Parallel()

	app := createTestApp(t, "127.0.0.1:0")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.StartWithListener(listener)
	}()

	url := "http://" + listener.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(url + "/api/v1/search?tag=rings")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"handle":"gold-ring"`)

	require.NoError(t, app.Stop(5*time.Second))

	select {
	case err := <-errCh:
		assert.NoError(t, err, "a graceful stop is not a start failure")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStorefrontApp_StartError(t *testing.T) {
	t.Parallel()

	app := createTestApp(t, "127.0.0.1:0")

	// Occupy a port so Start cannot bind it
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	app.GetHTTPServer().Addr = listener.Addr().String()

	err = app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")

	require.NoError(t, app.Stop(time.Second))
}

func TestStorefrontApp_StopIdempotent(t *testing.T) {
	t.Parallel()

	app := createTestApp(t, "127.0.0.1:0")

	require.NoError(t, app.Stop(time.Second))
	// Cleanup is expected exactly once by the mock factory
	require.NoError(t, app.Stop(time.Second))
}

func TestStorefrontApp_StopWithNilCancelFunc(t *testing.T) {
	t.Parallel()

	app := &StorefrontApp{httpServer: &http.Server{}}
	assert.NoError(t, app.Stop(time.Second))
}

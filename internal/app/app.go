// Package app provides application lifecycle management for the storefront API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/stacklok/storefront-catalog/internal/config"
)

// StorefrontApp encapsulates all components needed to run the storefront API server
type StorefrontApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start listens on the configured address and serves until the server stops
func (app *StorefrontApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.StartWithListener(listener)
}

// StartWithListener serves on listener until the server stops. It blocks.
func (app *StorefrontApp) StartWithListener(listener net.Listener) error {
	slog.Info("Server listening", "address", listener.Addr().String())
	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application with the given timeout. In-flight
// requests finish before the provider resources are released.
func (app *StorefrontApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
		app.cancelFunc = nil
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *StorefrontApp) GetConfig() *config.Config {
	return app.config
}

// GetComponents returns the wired application components
func (app *StorefrontApp) GetComponents() *AppComponents {
	return app.components
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *StorefrontApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/config"
	"github.com/stacklok/storefront-catalog/internal/httpclient"
)

// APIFactory creates a provider talking to the upstream catalog service.
type APIFactory struct {
	api    *config.APIConfig
	client httpclient.Client
	cache  cacheLayer
}

var _ Factory = (*APIFactory)(nil)

// APIFactoryOption configures an APIFactory
type APIFactoryOption func(*APIFactory)

// WithHTTPClient overrides the HTTP client used to reach the catalog service
func WithHTTPClient(client httpclient.Client) APIFactoryOption {
	return func(f *APIFactory) {
		f.client = client
	}
}

// NewAPIFactory creates a new API-based factory.
func NewAPIFactory(cfg *config.Config, opts ...APIFactoryOption) (*APIFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Provider.API == nil {
		return nil, fmt.Errorf("api provider configuration is required")
	}

	f := &APIFactory{
		api:   cfg.Provider.API,
		cache: cacheLayer{cfg: cfg.Cache},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httpclient.NewDefaultClient(cfg.Provider.API.GetTimeout())
	}
	return f, nil
}

// CreateProvider creates the API provider. The access token is read here so a
// rotated token file is picked up on restart.
func (f *APIFactory) CreateProvider(ctx context.Context) (catalog.Provider, error) {
	token, err := f.api.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to read provider token: %w", err)
	}

	provider, err := catalog.NewAPIProvider(f.client, f.api.Endpoint,
		catalog.WithAccessToken(f.api.TokenHeader, token),
		catalog.WithResponsePaths(f.api.ProductsPath, f.api.CollectionsPath),
		catalog.WithRetries(f.api.GetMaxRetries(), 0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API provider: %w", err)
	}

	slog.Info("Created catalog API provider",
		"endpoint", f.api.Endpoint,
		"timeout", f.api.GetTimeout(),
		"max_retries", f.api.GetMaxRetries(),
		"authenticated", token != "")
	return f.cache.wrap(ctx, provider)
}

// Cleanup releases the cache connection, if any.
func (f *APIFactory) Cleanup() {
	f.cache.close()
}

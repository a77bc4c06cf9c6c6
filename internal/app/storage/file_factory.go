package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/config"
)

// FileFactory creates a provider serving a local catalog document.
type FileFactory struct {
	path  string
	cache cacheLayer
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a new file-based factory. The catalog document must exist.
func NewFileFactory(cfg *config.Config) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Provider.File == nil || cfg.Provider.File.Path == "" {
		return nil, fmt.Errorf("file provider path is required")
	}

	path := cfg.Provider.File.Path
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog file %s is not accessible: %w", path, err)
	}

	slog.Info("Creating file-based catalog factory", "path", path)
	return &FileFactory{
		path:  path,
		cache: cacheLayer{cfg: cfg.Cache},
	}, nil
}

// CreateProvider creates the file provider.
func (f *FileFactory) CreateProvider(ctx context.Context) (catalog.Provider, error) {
	slog.Debug("Creating file catalog provider", "path", f.path)
	return f.cache.wrap(ctx, catalog.NewFileProvider(f.path))
}

// Cleanup releases the cache connection, if any.
func (f *FileFactory) Cleanup() {
	f.cache.close()
}

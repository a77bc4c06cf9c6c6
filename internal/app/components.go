package app

import (
	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/service"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Provider is the catalog data source, including its response cache
	Provider catalog.Provider

	// StorefrontService provides the search business logic
	StorefrontService service.StorefrontService
}

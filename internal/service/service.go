// Package service provides the business logic of the storefront API: turning
// request parameters into provider searches and filtered, faceted results.
package service

import (
	"context"
	"errors"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
)

// ErrProviderUnavailable is returned when the catalog provider cannot be reached
// or answers with an error.
var ErrProviderUnavailable = errors.New("catalog provider unavailable")

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go StorefrontService

// StorefrontService defines the storefront read operations
type StorefrontService interface {
	// CheckReadiness checks that the catalog provider answers
	CheckReadiness(ctx context.Context) error

	// Search runs a filtered product search
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)

	// ListCollections returns the collections offered for navigation
	ListCollections(ctx context.Context) ([]catalog.Collection, error)
}

// SearchRequest carries the raw request parameters and the listing path,
// e.g. "/search" or "/search/rings".
type SearchRequest struct {
	Params     filters.Params
	ActivePath string
}

// SearchResult is the outcome of one search round trip
type SearchResult struct {
	// State is the filter selection parsed from the request
	State filters.State

	// FreeText is the shopper's search text (the q parameter)
	FreeText string

	// ProviderQuery is the query string sent to the provider; empty for a
	// collection fetch
	ProviderQuery string

	Sort catalog.SortOption

	// Products passed visibility rules and local matching, in provider order
	Products []catalog.Product

	// Facets merges the value universe of the unrefined search with the
	// counts of Products
	Facets filters.Facets

	Groups        []filters.FacetGroup
	ActiveFilters []filters.FilterValue
	Collections   []catalog.Collection
}

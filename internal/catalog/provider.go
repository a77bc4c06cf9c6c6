package catalog

import (
	"context"
	"strconv"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go Provider

// Provider abstracts the upstream catalog service that stores products and executes searches.
type Provider interface {
	// SearchProducts executes a search and returns the matching products in the requested order.
	SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error)

	// ListCollections returns every collection known to the catalog.
	ListCollections(ctx context.Context) ([]Collection, error)

	// GetSource returns a descriptive string about where catalog data comes from.
	// Examples: "file:/data/catalog.json", "api:https://shop.example.com/api"
	GetSource() string
}

// SearchRequest describes one provider search.
type SearchRequest struct {
	// Query is a provider query string (see BuildQuery in the filters package).
	// Empty means unfiltered.
	Query string

	// Collection scopes the search to a collection handle when set.
	Collection string

	SortKey SortKey
	Reverse bool
}

// CacheKey returns a stable key identifying the request.
func (r SearchRequest) CacheKey() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(r.Query)
	b.WriteString("|c=")
	b.WriteString(r.Collection)
	b.WriteString("|s=")
	b.WriteString(string(r.SortKey))
	b.WriteString("|r=")
	b.WriteString(strconv.FormatBool(r.Reverse))
	return b.String()
}

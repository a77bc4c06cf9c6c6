package v1

import (
	"github.com/shopspring/decimal"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
)

// SearchResponse is the body of a search answer
type SearchResponse struct {
	Query         string                 `json:"query"`
	ProviderQuery string                 `json:"providerQuery"`
	Sort          catalog.SortOption     `json:"sort"`
	SortOptions   []SortLink             `json:"sortOptions,omitempty"`
	Count         int                    `json:"count"`
	Products      []catalog.Product      `json:"products"`
	Facets        []FacetGroupResponse   `json:"facets"`
	ActiveFilters []ActiveFilterResponse `json:"activeFilters"`
	PriceRange    *PriceRangeResponse    `json:"priceRange,omitempty"`
	ClearAllHref  string                 `json:"clearAllHref,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// FacetGroupResponse is a sidebar group whose options carry toggle links
type FacetGroupResponse struct {
	ID      string                `json:"id"`
	Label   string                `json:"label"`
	Type    filters.FilterType    `json:"type"`
	Options []FacetOptionResponse `json:"options"`
}

// FacetOptionResponse is a facet value. Href adds the value, or removes it when active.
type FacetOptionResponse struct {
	filters.FacetOption
	Href string `json:"href"`
}

// ActiveFilterResponse is a selected value with the link removing it
type ActiveFilterResponse struct {
	filters.FilterValue
	Href string `json:"href"`
}

// PriceRangeResponse is the observed price span plus the selected bounds
type PriceRangeResponse struct {
	Min         decimal.Decimal  `json:"min"`
	Max         decimal.Decimal  `json:"max"`
	SelectedMin *decimal.Decimal `json:"selectedMin,omitempty"`
	SelectedMax *decimal.Decimal `json:"selectedMax,omitempty"`
}

// SortLink is one entry of the sort menu
type SortLink struct {
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// CollectionLink is a navigable collection
type CollectionLink struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
	Href   string `json:"href"`
}

// CollectionsResponse is the body of a collections answer
type CollectionsResponse struct {
	Collections []CollectionLink `json:"collections"`
	Count       int              `json:"count"`
}

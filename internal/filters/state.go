package filters

import (
	"github.com/shopspring/decimal"
)

// PriceRange is a price filter. A nil bound is unbounded on that side.
// Inverted ranges are accepted and simply match nothing.
type PriceRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// OptionFilter is the selection for one variant option dimension.
type OptionFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// State is the active filter selection of one request. It is derived from the
// request on every call and never updated in place.
type State struct {
	Tags         []string       `json:"tags,omitempty"`
	Collections  []string       `json:"collections,omitempty"`
	ProductTypes []string       `json:"productTypes,omitempty"`
	Options      []OptionFilter `json:"options,omitempty"`
	Price        *PriceRange    `json:"price,omitempty"`
}

// Option returns the selected values of the named dimension.
func (s State) Option(name string) []string {
	for _, opt := range s.Options {
		if opt.Name == name {
			return opt.Values
		}
	}
	return nil
}

// IsEmpty reports whether no filter is active.
func (s State) IsEmpty() bool {
	return len(s.Collections) == 0 && !s.HasRefinements()
}

// HasRefinements reports whether anything besides the collection scope is active.
func (s State) HasRefinements() bool {
	if len(s.Tags) > 0 || len(s.ProductTypes) > 0 || s.Price != nil {
		return true
	}
	for _, opt := range s.Options {
		if len(opt.Values) > 0 {
			return true
		}
	}
	return false
}

// FilterType names a filterable dimension.
type FilterType string

// Filter types.
const (
	FilterCollection  FilterType = "collection"
	FilterOption      FilterType = "option"
	FilterPrice       FilterType = "price"
	FilterProductType FilterType = "productType"
	FilterTag         FilterType = "tag"
)

// FilterValue addresses a single selected value. Key holds the dimension name for
// option filters.
type FilterValue struct {
	Type  FilterType `json:"type"`
	Key   string     `json:"key"`
	Value string     `json:"value"`
	Label string     `json:"label"`
}

// FacetOption is one selectable value of a facet group. Count is nil when unknown.
type FacetOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Count  *int   `json:"count,omitempty"`
	Active bool   `json:"active"`
}

// FacetGroup is a filterable dimension with its values, as shown in the sidebar.
type FacetGroup struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Type    FilterType    `json:"type"`
	Options []FacetOption `json:"options"`
}

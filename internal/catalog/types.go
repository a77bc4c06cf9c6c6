// Package catalog defines the product catalog model consumed by the storefront
// and the providers that fetch it from the upstream catalog service.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultOptionValue is the placeholder option value the catalog service assigns
	// to products without a real variant axis.
	DefaultOptionValue = "Default Title"

	// DefaultHiddenTag marks products that must never be listed in the storefront.
	DefaultHiddenTag = "nextjs-frontend-hidden"
)

// Money is a decimal amount in a given currency. Amounts travel as decimal strings.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
}

// PriceRange is the span of variant prices of a product.
type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

// SelectedOption is one option axis value of a variant, e.g. Size=M.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable variation of a product.
type Variant struct {
	ID              string           `json:"id,omitempty"`
	Title           string           `json:"title,omitempty"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
}

// Product is a catalog item as returned by the provider. It is read-only for the storefront.
type Product struct {
	ID          string     `json:"id,omitempty"`
	Handle      string     `json:"handle"`
	Title       string     `json:"title"`
	Tags        []string   `json:"tags,omitempty"`
	ProductType string     `json:"productType,omitempty"`
	Collections []string   `json:"collections,omitempty"`
	PriceRange  PriceRange `json:"priceRange"`
	Variants    []Variant  `json:"variants,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
}

// MinPrice returns the lowest variant price, zero when unknown.
func (p *Product) MinPrice() decimal.Decimal {
	return p.PriceRange.MinVariantPrice.Amount
}

// MaxPrice returns the highest variant price, zero when unknown.
func (p *Product) MaxPrice() decimal.Decimal {
	return p.PriceRange.MaxVariantPrice.Amount
}

// HasTag reports whether the product carries the tag (case-insensitive).
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Collection is a named, curated group of products addressed by its handle.
type Collection struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

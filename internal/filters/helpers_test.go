package filters_test

import (
	"github.com/shopspring/decimal"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func money(s string) catalog.Money {
	return catalog.Money{Amount: decimal.RequireFromString(s), CurrencyCode: "USD"}
}

func priced(minPrice, maxPrice string) catalog.PriceRange {
	return catalog.PriceRange{MinVariantPrice: money(minPrice), MaxVariantPrice: money(maxPrice)}
}

// variant builds a variant from name/value pairs.
func variant(pairs ...string) catalog.Variant {
	var v catalog.Variant
	for i := 0; i+1 < len(pairs); i += 2 {
		v.SelectedOptions = append(v.SelectedOptions, catalog.SelectedOption{Name: pairs[i], Value: pairs[i+1]})
	}
	return v
}

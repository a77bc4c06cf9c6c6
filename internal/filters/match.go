package filters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

// MatchFunc decides whether a fetched product satisfies the state.
type MatchFunc func(item *catalog.Product, state State) bool

// OptionMatchMode selects how option dimensions are checked against variants.
type OptionMatchMode string

const (
	// OptionMatchAnyVariant checks every dimension against all variants independently.
	OptionMatchAnyVariant OptionMatchMode = "any-variant"
	// OptionMatchSameVariant requires a single variant satisfying every dimension.
	OptionMatchSameVariant OptionMatchMode = "same-variant"
)

// ParseOptionMatchMode validates a mode name. Empty selects OptionMatchAnyVariant.
func ParseOptionMatchMode(s string) (OptionMatchMode, error) {
	switch mode := OptionMatchMode(s); mode {
	case "":
		return OptionMatchAnyVariant, nil
	case OptionMatchAnyVariant, OptionMatchSameVariant:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown option match mode %q (expected %q or %q)",
			s, OptionMatchAnyVariant, OptionMatchSameVariant)
	}
}

// Matcher returns the match function of mode.
func Matcher(mode OptionMatchMode) MatchFunc {
	if mode == OptionMatchSameVariant {
		return MatchesSameVariant
	}
	return Matches
}

// Matches re-checks the predicates the provider query cannot express: the price
// overlap, product type membership and variant options. Each option dimension
// only needs some variant carrying one of its values; different dimensions may
// be satisfied by different variants. Tags and collections are left to the
// provider. A nil item never matches.
func Matches(item *catalog.Product, state State) bool {
	if item == nil {
		return false
	}
	if !matchesPrice(item, state.Price) || !matchesProductType(item, state.ProductTypes) {
		return false
	}
	for _, opt := range state.Options {
		if len(opt.Values) == 0 {
			continue
		}
		if !slices.ContainsFunc(item.Variants, func(v catalog.Variant) bool {
			return variantHas(v, opt)
		}) {
			return false
		}
	}
	return true
}

// MatchesSameVariant is Matches with stricter option semantics: one variant must
// carry a selected value of every active option dimension.
func MatchesSameVariant(item *catalog.Product, state State) bool {
	if item == nil {
		return false
	}
	if !matchesPrice(item, state.Price) || !matchesProductType(item, state.ProductTypes) {
		return false
	}

	active := slices.DeleteFunc(slices.Clone(state.Options), func(opt OptionFilter) bool {
		return len(opt.Values) == 0
	})
	if len(active) == 0 {
		return true
	}
	return slices.ContainsFunc(item.Variants, func(v catalog.Variant) bool {
		for _, opt := range active {
			if !variantHas(v, opt) {
				return false
			}
		}
		return true
	})
}

// matchesPrice is an overlap test between the filter range and the item's own
// price span.
func matchesPrice(item *catalog.Product, price *PriceRange) bool {
	if price == nil {
		return true
	}
	itemMin := item.MinPrice()
	itemMax := item.MaxPrice()
	if itemMax.LessThan(itemMin) {
		itemMax = itemMin
	}
	if price.Max != nil && itemMin.GreaterThan(*price.Max) {
		return false
	}
	if price.Min != nil && itemMax.LessThan(*price.Min) {
		return false
	}
	return true
}

func matchesProductType(item *catalog.Product, productTypes []string) bool {
	return len(productTypes) == 0 || slices.Contains(productTypes, item.ProductType)
}

func variantHas(v catalog.Variant, opt OptionFilter) bool {
	for _, selected := range v.SelectedOptions {
		if strings.EqualFold(selected.Name, opt.Name) && slices.Contains(opt.Values, selected.Value) {
			return true
		}
	}
	return false
}

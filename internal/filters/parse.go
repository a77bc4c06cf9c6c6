package filters

import (
	"net/url"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// searchSegment is the path segment of the unscoped listing.
const searchSegment = "search"

// Parse derives the filter state from request parameters and the request path.
// Malformed input never fails: unparseable price bounds are absent and unknown
// keys are ignored.
func Parse(params Params, activePath string) State {
	var state State

	for _, kv := range params {
		switch {
		case kv.Key == ParamTag:
			if !slices.Contains(state.Tags, kv.Value) {
				state.Tags = append(state.Tags, kv.Value)
			}
		case kv.Key == ParamProductType:
			if !slices.Contains(state.ProductTypes, kv.Value) {
				state.ProductTypes = append(state.ProductTypes, kv.Value)
			}
		case strings.HasPrefix(kv.Key, ParamOptionPrefix):
			name := strings.TrimPrefix(kv.Key, ParamOptionPrefix)
			if name == "" {
				continue
			}
			state.Options = appendOptionValue(state.Options, name, kv.Value)
		}
	}

	minPrice := parseBound(params, ParamMinPrice)
	maxPrice := parseBound(params, ParamMaxPrice)
	if minPrice != nil || maxPrice != nil {
		state.Price = &PriceRange{Min: minPrice, Max: maxPrice}
	}

	if collection := CollectionFromPath(activePath); collection != "" {
		state.Collections = []string{collection}
	}

	return state
}

// CollectionFromPath returns the collection handle addressed by path: its last
// non-empty segment, unless that segment is "search".
func CollectionFromPath(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segment = unescaped
		}
		if segment == searchSegment {
			return ""
		}
		return segment
	}
	return ""
}

func appendOptionValue(options []OptionFilter, name, value string) []OptionFilter {
	for i := range options {
		if options[i].Name == name {
			options[i].Values = append(options[i].Values, value)
			return options
		}
	}
	return append(options, OptionFilter{Name: name, Values: []string{value}})
}

// maxBoundScale limits the exponent of a price bound; bounds outside it parse as absent.
const maxBoundScale = 30

// maxBoundDigits limits the significant digits of a price bound.
const maxBoundDigits = 40

func parseBound(params Params, key string) *decimal.Decimal {
	raw, ok := params.Lookup(key)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	if exp := d.Exponent(); exp > maxBoundScale || exp < -maxBoundScale || d.NumDigits() > maxBoundDigits {
		return nil
	}
	return &d
}

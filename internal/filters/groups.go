package filters

import (
	"cmp"
	"slices"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

// Facet group identifiers.
const (
	GroupCollections  = "collections"
	GroupProductTypes = "productType"
	GroupTags         = "tags"
	GroupPrice        = "price"
)

// BuildFacetGroups derives the sidebar groups: collections (no counts), product
// types, tags, one group per option dimension and, when the price span is not
// degenerate, a price group without options. Counted values are ordered by count,
// highest first, ties keeping first-seen order. Zero-count values stay listed.
func BuildFacetGroups(collections []catalog.Collection, facets Facets, state State) []FacetGroup {
	var groups []FacetGroup

	if len(collections) > 0 {
		options := make([]FacetOption, 0, len(collections))
		for _, c := range collections {
			label := c.Title
			if label == "" {
				label = c.Handle
			}
			options = append(options, FacetOption{
				Value:  c.Handle,
				Label:  label,
				Active: slices.Contains(state.Collections, c.Handle),
			})
		}
		groups = append(groups, FacetGroup{ID: GroupCollections, Label: "Collections", Type: FilterCollection, Options: options})
	}

	if len(facets.ProductTypes) > 0 {
		groups = append(groups, FacetGroup{
			ID:      GroupProductTypes,
			Label:   "Product Type",
			Type:    FilterProductType,
			Options: countedOptions(facets.ProductTypes, state.ProductTypes),
		})
	}

	if len(facets.Tags) > 0 {
		groups = append(groups, FacetGroup{
			ID:      GroupTags,
			Label:   "Tags",
			Type:    FilterTag,
			Options: countedOptions(facets.Tags, state.Tags),
		})
	}

	for _, oc := range facets.Options {
		if len(oc.Values) == 0 {
			continue
		}
		groups = append(groups, FacetGroup{
			ID:      oc.Name,
			Label:   oc.Name,
			Type:    FilterOption,
			Options: countedOptions(oc.Values, state.Option(oc.Name)),
		})
	}

	if facets.PriceRange.Min.LessThan(facets.PriceRange.Max) {
		groups = append(groups, FacetGroup{ID: GroupPrice, Label: "Price", Type: FilterPrice, Options: []FacetOption{}})
	}

	return groups
}

func countedOptions(counts Counts, selected []string) []FacetOption {
	sorted := slices.Clone(counts)
	slices.SortStableFunc(sorted, func(a, b ValueCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	options := make([]FacetOption, 0, len(sorted))
	for _, vc := range sorted {
		count := vc.Count
		options = append(options, FacetOption{
			Value:  vc.Value,
			Label:  vc.Value,
			Count:  &count,
			Active: slices.Contains(selected, vc.Value),
		})
	}
	return options
}

// ActiveFilters lists the active selection as removable chips: tags, collections,
// product types, option values and finally the price range.
func ActiveFilters(state State) []FilterValue {
	var out []FilterValue
	for _, tag := range state.Tags {
		out = append(out, FilterValue{Type: FilterTag, Key: ParamTag, Value: tag, Label: tag})
	}
	for _, c := range state.Collections {
		out = append(out, FilterValue{Type: FilterCollection, Key: ParamCollection, Value: c, Label: c})
	}
	for _, pt := range state.ProductTypes {
		out = append(out, FilterValue{Type: FilterProductType, Key: string(FilterProductType), Value: pt, Label: pt})
	}
	for _, opt := range state.Options {
		for _, v := range opt.Values {
			out = append(out, FilterValue{Type: FilterOption, Key: opt.Name, Value: v, Label: opt.Name + ": " + v})
		}
	}
	if label := priceLabel(state.Price); label != "" {
		out = append(out, FilterValue{Type: FilterPrice, Key: string(FilterPrice), Value: string(FilterPrice), Label: label})
	}
	return out
}

func priceLabel(price *PriceRange) string {
	switch {
	case price == nil:
		return ""
	case price.Min != nil && price.Max != nil:
		return "$" + price.Min.String() + " - $" + price.Max.String()
	case price.Min != nil:
		return "$" + price.Min.String() + "+"
	case price.Max != nil:
		return "Up to $" + price.Max.String()
	}
	return ""
}

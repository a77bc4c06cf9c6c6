package filters

import (
	"github.com/shopspring/decimal"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

// ValueCount is an observed facet value and its number of occurrences.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Counts maps values to counts in first-seen order.
type Counts []ValueCount

// Get returns the count of value and whether value was observed.
func (c Counts) Get(value string) (int, bool) {
	for _, vc := range c {
		if vc.Value == value {
			return vc.Count, true
		}
	}
	return 0, false
}

// OptionCount holds the value counts of one option dimension.
type OptionCount struct {
	Name   string `json:"name"`
	Values Counts `json:"values"`
}

// OptionCounts maps option names to value counts in first-seen order.
type OptionCounts []OptionCount

// Get returns the value counts of the named dimension.
func (o OptionCounts) Get(name string) (Counts, bool) {
	for _, oc := range o {
		if oc.Name == name {
			return oc.Values, true
		}
	}
	return nil, false
}

// Bounds is the observed price span. The zero value means no priced item was seen.
type Bounds struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// IsZero reports whether no priced item contributed to the bounds.
func (b Bounds) IsZero() bool {
	return b.Min.IsZero() && b.Max.IsZero()
}

// Facets are the value counts and price span observed in a result set.
type Facets struct {
	Tags         Counts       `json:"tags"`
	Options      OptionCounts `json:"options"`
	ProductTypes Counts       `json:"productTypes"`
	PriceRange   Bounds       `json:"priceRange"`
}

// counter accumulates counts while remembering first-seen order.
type counter struct {
	index map[string]int
	out   Counts
}

func (c *counter) inc(value string) {
	if value == "" {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[value]; ok {
		c.out[i].Count++
		return
	}
	c.index[value] = len(c.out)
	c.out = append(c.out, ValueCount{Value: value, Count: 1})
}

func (c *counter) counts() Counts {
	if c.out == nil {
		return Counts{}
	}
	return c.out
}

// Aggregate counts facet values across items. Tags count once per occurrence,
// options once per variant selected option and product types once per product.
// The placeholder option value catalog.DefaultOptionValue is skipped. Only
// positive minimum variant prices feed the price bounds; with none the bounds
// stay {0, 0}.
func Aggregate(items []catalog.Product) Facets {
	var (
		tags, productTypes counter
		optionIndex        = make(map[string]int)
		options            []counter
		optionNames        []string
		bounds             Bounds
		priced             bool
	)

	for i := range items {
		item := &items[i]
		for _, tag := range item.Tags {
			tags.inc(tag)
		}
		productTypes.inc(item.ProductType)

		for _, variant := range item.Variants {
			for _, opt := range variant.SelectedOptions {
				if opt.Name == "" || opt.Value == "" || opt.Value == catalog.DefaultOptionValue {
					continue
				}
				idx, ok := optionIndex[opt.Name]
				if !ok {
					idx = len(options)
					optionIndex[opt.Name] = idx
					options = append(options, counter{})
					optionNames = append(optionNames, opt.Name)
				}
				options[idx].inc(opt.Value)
			}
		}

		price := item.MinPrice()
		if !price.IsPositive() {
			continue
		}
		if !priced {
			bounds = Bounds{Min: price, Max: price}
			priced = true
			continue
		}
		bounds.Min = decimal.Min(bounds.Min, price)
		bounds.Max = decimal.Max(bounds.Max, price)
	}

	optionCounts := make(OptionCounts, 0, len(options))
	for i := range options {
		optionCounts = append(optionCounts, OptionCount{Name: optionNames[i], Values: options[i].counts()})
	}

	return Facets{
		Tags:         tags.counts(),
		Options:      optionCounts,
		ProductTypes: productTypes.counts(),
		PriceRange:   bounds,
	}
}

// MergeFacets combines the value universe of an unrefined result set with the
// counts of the filtered one. Values appear in universe order followed by
// filtered-only values; counts come from filtered and default to zero. The
// universe price span wins when it saw any priced item. Neither input is modified.
func MergeFacets(universe, filtered Facets) Facets {
	merged := Facets{
		Tags:         mergeCounts(universe.Tags, filtered.Tags),
		ProductTypes: mergeCounts(universe.ProductTypes, filtered.ProductTypes),
		Options:      make(OptionCounts, 0, len(universe.Options)+len(filtered.Options)),
		PriceRange:   universe.PriceRange,
	}
	if universe.PriceRange.IsZero() {
		merged.PriceRange = filtered.PriceRange
	}

	for _, oc := range universe.Options {
		counts, _ := filtered.Options.Get(oc.Name)
		merged.Options = append(merged.Options, OptionCount{Name: oc.Name, Values: mergeCounts(oc.Values, counts)})
	}
	for _, oc := range filtered.Options {
		if _, ok := universe.Options.Get(oc.Name); ok {
			continue
		}
		merged.Options = append(merged.Options, OptionCount{Name: oc.Name, Values: mergeCounts(nil, oc.Values)})
	}
	return merged
}

func mergeCounts(universe, filtered Counts) Counts {
	out := make(Counts, 0, len(universe)+len(filtered))
	for _, vc := range universe {
		count, _ := filtered.Get(vc.Value)
		out = append(out, ValueCount{Value: vc.Value, Count: count})
	}
	for _, vc := range filtered {
		if _, ok := universe.Get(vc.Value); ok {
			continue
		}
		out = append(out, vc)
	}
	return out
}

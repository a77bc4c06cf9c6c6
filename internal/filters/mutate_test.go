package filters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/storefront-catalog/internal/filters"
)

func TestAddFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		value filters.FilterValue
		want  string
	}{
		{name: "tag", raw: "sort=price-asc", value: filters.FilterValue{Type: filters.FilterTag, Value: "gold"}, want: "sort=price-asc&tag=gold"},
		{name: "second tag appended", raw: "tag=gold", value: filters.FilterValue{Type: filters.FilterTag, Value: "silver"}, want: "tag=gold&tag=silver"},
		{name: "duplicate not added", raw: "tag=gold", value: filters.FilterValue{Type: filters.FilterTag, Value: "gold"}, want: "tag=gold"},
		{
			name:  "product type",
			value: filters.FilterValue{Type: filters.FilterProductType, Value: "Ring"},
			want:  "filter.p.product_type=Ring",
		},
		{
			name:  "option uses key",
			raw:   "option%3ASize=M",
			value: filters.FilterValue{Type: filters.FilterOption, Key: "Size", Value: "L"},
			want:  "option%3ASize=M&option%3ASize=L",
		},
		{name: "option without key ignored", value: filters.FilterValue{Type: filters.FilterOption, Value: "L"}, want: ""},
		{name: "collection", value: filters.FilterValue{Type: filters.FilterCollection, Value: "rings"}, want: "collection=rings"},
		{name: "price ignored", raw: "tag=a", value: filters.FilterValue{Type: filters.FilterPrice, Value: "price"}, want: "tag=a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := filters.ParseQuery(tt.raw)
			before := params.Clone()
			assert.Equal(t, tt.want, filters.AddFilter(params, tt.value).Encode())
			assert.Equal(t, before, params)
		})
	}
}

func TestRemoveFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		value filters.FilterValue
		want  string
	}{
		{
			name:  "keeps order of the rest",
			raw:   "tag=a&sort=price-asc&tag=b&tag=c",
			value: filters.FilterValue{Type: filters.FilterTag, Value: "b"},
			want:  "tag=a&sort=price-asc&tag=c",
		},
		{
			name:  "only the matching option dimension",
			raw:   "option%3ASize=M&option%3AColor=M",
			value: filters.FilterValue{Type: filters.FilterOption, Key: "Size", Value: "M"},
			want:  "option%3AColor=M",
		},
		{
			name:  "price removes both bounds",
			raw:   "minPrice=10&tag=a&maxPrice=30",
			value: filters.FilterValue{Type: filters.FilterPrice, Key: "price", Value: "price"},
			want:  "tag=a",
		},
		{
			name:  "absent value is a no-op",
			raw:   "tag=a",
			value: filters.FilterValue{Type: filters.FilterTag, Value: "z"},
			want:  "tag=a",
		},
		{
			name:  "product type",
			raw:   "filter.p.product_type=Ring&filter.p.product_type=Bag",
			value: filters.FilterValue{Type: filters.FilterProductType, Value: "Ring"},
			want:  "filter.p.product_type=Bag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filters.RemoveFilter(filters.ParseQuery(tt.raw), tt.value).Encode())
		})
	}
}

func TestAddThenRemoveRestoresMembership(t *testing.T) {
	t.Parallel()

	values := []filters.FilterValue{
		{Type: filters.FilterTag, Value: "gold"},
		{Type: filters.FilterProductType, Value: "Ring"},
		{Type: filters.FilterOption, Key: "Size", Value: "L"},
	}
	params := filters.ParseQuery("tag=silver&sort=price-asc&option:Size=M&filter.p.product_type=Bag")

	for _, v := range values {
		roundTrip := filters.RemoveFilter(filters.AddFilter(params, v), v)
		assert.Equal(t, params, roundTrip, "value %+v", v)
	}
}

func TestClearAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		pathname string
		want     string
		wantPath string
	}{
		{
			name:     "keeps sort only",
			raw:      "sort=price-asc&tag=gold&minPrice=10",
			pathname: "/search",
			want:     "sort=price-asc",
			wantPath: "/search",
		},
		{
			name:     "sort before q, first values",
			raw:      "q=ring&option%3ASize=M&sort=latest-desc&q=other&sort=price-asc",
			pathname: "/search",
			want:     "sort=latest-desc&q=ring",
			wantPath: "/search",
		},
		{
			name:     "collection path navigates to search",
			raw:      "tag=gold",
			pathname: "/search/rings",
			want:     "",
			wantPath: "/search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params, path := filters.ClearAll(filters.ParseQuery(tt.raw), tt.pathname)
			assert.Equal(t, tt.want, params.Encode())
			assert.Equal(t, tt.wantPath, path)
			assert.True(t, filters.Parse(params, path).IsEmpty())
		})
	}
}

func TestSetPriceRange(t *testing.T) {
	t.Parallel()

	params := filters.ParseQuery("minPrice=1&tag=gold&maxPrice=2")

	got := filters.SetPriceRange(params, filters.PriceRange{Min: dec("10.50")})
	assert.Equal(t, "tag=gold&minPrice=10.5", got.Encode())

	got = filters.SetPriceRange(params, filters.PriceRange{Min: dec("10"), Max: dec("30")})
	assert.Equal(t, "tag=gold&minPrice=10&maxPrice=30", got.Encode())

	state := filters.Parse(got, "")
	assert.Equal(t, "$10 - $30", filters.ActiveFilters(state)[1].Label)

	assert.Equal(t, "tag=gold", filters.SetPriceRange(params, filters.PriceRange{}).Encode())
}

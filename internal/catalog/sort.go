package catalog

// SortKey is the provider-side sort key.
type SortKey string

const (
	// SortRelevance orders by search relevance (provider default)
	SortRelevance SortKey = "RELEVANCE"
	// SortBestSelling orders by sales
	SortBestSelling SortKey = "BEST_SELLING"
	// SortCreatedAt orders by creation time
	SortCreatedAt SortKey = "CREATED_AT"
	// SortPrice orders by minimum variant price
	SortPrice SortKey = "PRICE"
)

// SortOption maps a public sort slug onto a provider sort key and direction.
type SortOption struct {
	Title   string  `json:"title"`
	Slug    string  `json:"slug"`
	Key     SortKey `json:"sortKey"`
	Reverse bool    `json:"reverse"`
}

// DefaultSort is used when no sort slug, or an unknown one, is requested.
var DefaultSort = SortOption{Title: "Relevance", Slug: "", Key: SortRelevance}

// SortOptions lists the sort orders offered to shoppers.
var SortOptions = []SortOption{
	DefaultSort,
	{Title: "Trending", Slug: "trending-desc", Key: SortBestSelling},
	{Title: "Latest arrivals", Slug: "latest-desc", Key: SortCreatedAt, Reverse: true},
	{Title: "Price: Low to high", Slug: "price-asc", Key: SortPrice},
	{Title: "Price: High to low", Slug: "price-desc", Key: SortPrice, Reverse: true},
}

// LookupSort resolves a sort slug, falling back to DefaultSort.
func LookupSort(slug string) SortOption {
	if slug == "" {
		return DefaultSort
	}
	for _, opt := range SortOptions {
		if opt.Slug == slug {
			return opt
		}
	}
	return DefaultSort
}

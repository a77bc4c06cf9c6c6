// Package filters translates a shopper's filter selection between request
// parameters, the catalog provider's query grammar and the facet sidebar.
//
// Every function in this package is pure: inputs are never mutated and every
// call builds fresh output values, so results can be shared across requests
// without locking.
//
// # Parameters
//
// The active selection lives in the request query string:
//
//   - tag (repeatable): product tags
//   - filter.p.product_type (repeatable): product types, deduplicated on parse
//   - option:<name> (repeatable per name): variant option values, e.g. option:Size=M
//   - minPrice, maxPrice: decimal price bounds, either may be absent
//   - sort, q: sort slug and free text, preserved by ClearAll
//
// Collections are not query parameters: they come from the last segment of the
// request path (/search/<collection>).
//
// # Provider Query
//
// BuildQuery serializes a State into clauses joined with " AND ". Each active
// dimension produces one parenthesized clause whose values are joined with " OR ":
//
//	summer AND (tag:"gold" OR tag:"silver") AND (variant_options.ring_size:"7")
//
// Price is never part of the query. The provider cannot express range predicates
// over variant prices, so prices are checked by Matches after the fetch.
//
// # Facets
//
// Aggregate counts tag, product type and option values across a result set.
// A sidebar that keeps zero-count values visible aggregates twice (once over the
// unrefined universe, once over the filtered set) and combines the two with
// MergeFacets.
package filters

package v1

import (
	"net/url"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/service"
)

// searchPath is the storefront listing path links point at. Collections are
// addressed as its sub-paths.
const searchPath = "/search"

func collectionPath(handle string) string {
	return searchPath + "/" + url.PathEscape(handle)
}

// facetGroups attaches toggle links to every facet option. Collection options
// navigate by path and keep the other parameters.
func facetGroups(groups []filters.FacetGroup, params filters.Params, activePath string) []FacetGroupResponse {
	out := make([]FacetGroupResponse, 0, len(groups))
	for _, g := range groups {
		options := make([]FacetOptionResponse, 0, len(g.Options))
		for _, opt := range g.Options {
			options = append(options, FacetOptionResponse{
				FacetOption: opt,
				Href:        toggleHref(g, opt, params, activePath),
			})
		}
		out = append(out, FacetGroupResponse{ID: g.ID, Label: g.Label, Type: g.Type, Options: options})
	}
	return out
}

func toggleHref(g filters.FacetGroup, opt filters.FacetOption, params filters.Params, activePath string) string {
	if g.Type == filters.FilterCollection {
		if opt.Active {
			return filters.Href(searchPath, params)
		}
		return filters.Href(collectionPath(opt.Value), params)
	}

	value := filters.FilterValue{Type: g.Type, Key: g.ID, Value: opt.Value}
	if opt.Active {
		return filters.Href(activePath, filters.RemoveFilter(params, value))
	}
	return filters.Href(activePath, filters.AddFilter(params, value))
}

func activeFilters(active []filters.FilterValue, params filters.Params, activePath string) []ActiveFilterResponse {
	out := make([]ActiveFilterResponse, 0, len(active))
	for _, v := range active {
		href := filters.Href(activePath, filters.RemoveFilter(params, v))
		if v.Type == filters.FilterCollection {
			href = filters.Href(searchPath, params)
		}
		out = append(out, ActiveFilterResponse{FilterValue: v, Href: href})
	}
	return out
}

func sortLinks(current catalog.SortOption, params filters.Params, activePath string) []SortLink {
	out := make([]SortLink, 0, len(catalog.SortOptions))
	for _, opt := range catalog.SortOptions {
		next := params.Del(filters.ParamSort)
		if opt.Slug != "" {
			next = params.Set(filters.ParamSort, opt.Slug)
		}
		out = append(out, SortLink{
			Title:  opt.Title,
			Slug:   opt.Slug,
			Href:   filters.Href(activePath, next),
			Active: opt.Slug == current.Slug,
		})
	}
	return out
}

func priceRange(result *service.SearchResult) *PriceRangeResponse {
	bounds := result.Facets.PriceRange
	price := result.State.Price
	if bounds.IsZero() && price == nil {
		return nil
	}
	resp := &PriceRangeResponse{Min: bounds.Min, Max: bounds.Max}
	if price != nil {
		resp.SelectedMin = price.Min
		resp.SelectedMax = price.Max
	}
	return resp
}

func clearAllHref(state filters.State, params filters.Params, activePath string) string {
	if state.IsEmpty() {
		return ""
	}
	next, path := filters.ClearAll(params, activePath)
	return filters.Href(path, next)
}

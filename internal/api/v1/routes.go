// Package v1 provides the storefront search API v1 endpoints.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/storefront-catalog/internal/api/common"
	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/service"
)

// Routes handles HTTP requests for the storefront API v1 endpoints.
type Routes struct {
	service service.StorefrontService
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.StorefrontService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates and configures the HTTP router for the v1 endpoints.
func Router(svc service.StorefrontService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Get("/search", routes.search)
	r.Get("/search/{collection}", routes.searchCollection)
	r.Get("/collections", routes.listCollections)

	return r
}

// search handles GET /api/v1/search
//
// @Summary		Search products
// @Description	Search the catalog with tag, product type, option and price filters
// @Tags			storefront
// @Produce		json
// @Param			q				query		string	false	"Free text"
// @Param			tag				query		string	false	"Tag filter, repeatable"
// @Param			minPrice		query		number	false	"Lower price bound"
// @Param			maxPrice		query		number	false	"Upper price bound"
// @Param			sort			query		string	false	"Sort slug"
// @Success		200				{object}	SearchResponse
// @Failure		502				{object}	SearchResponse
// @Router			/api/v1/search [get]
func (routes *Routes) search(w http.ResponseWriter, r *http.Request) {
	routes.handleSearch(w, r, searchPath)
}

// searchCollection handles GET /api/v1/search/{collection}
//
// @Summary		Search a collection
// @Description	Search the products of one collection
// @Tags			storefront
// @Produce		json
// @Param			collection		path		string	true	"Collection handle"
// @Success		200				{object}	SearchResponse
// @Failure		400				{object}	common.ErrorResponse
// @Failure		502				{object}	SearchResponse
// @Router			/api/v1/search/{collection} [get]
func (routes *Routes) searchCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := common.GetAndValidateURLParam(r, "collection")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	routes.handleSearch(w, r, collectionPath(collection))
}

// handleSearch is the shared search handler. activePath is the storefront path
// the request stands for; every link in the response is relative to it.
func (routes *Routes) handleSearch(w http.ResponseWriter, r *http.Request, activePath string) {
	// The raw query keeps parameter order, which links must preserve.
	params := filters.ParseQuery(r.URL.RawQuery)

	result, err := routes.service.Search(r.Context(), service.SearchRequest{
		Params:     params,
		ActivePath: activePath,
	})
	if err != nil {
		writeSearchError(w, r, params, err)
		return
	}

	common.WriteJSONResponse(w, SearchResponse{
		Query:         result.FreeText,
		ProviderQuery: result.ProviderQuery,
		Sort:          result.Sort,
		SortOptions:   sortLinks(result.Sort, params, activePath),
		Count:         len(result.Products),
		Products:      result.Products,
		Facets:        facetGroups(result.Groups, params, activePath),
		ActiveFilters: activeFilters(result.ActiveFilters, params, activePath),
		PriceRange:    priceRange(result),
		ClearAllHref:  clearAllHref(result.State, params, activePath),
	}, http.StatusOK)
}

func writeSearchError(w http.ResponseWriter, r *http.Request, params filters.Params, err error) {
	switch {
	case errors.Is(err, service.ErrProviderUnavailable):
		slog.ErrorContext(r.Context(), "Search failed", "error", err)
		common.WriteJSONResponse(w, SearchResponse{
			Query:         params.Get(filters.ParamQuery),
			Products:      []catalog.Product{},
			Facets:        []FacetGroupResponse{},
			ActiveFilters: []ActiveFilterResponse{},
			Error:         service.ErrProviderUnavailable.Error(),
		}, http.StatusBadGateway)
	case errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(r.Context(), "Search timed out", "error", err)
		common.WriteErrorResponse(w, "Search timed out", http.StatusGatewayTimeout)
	default:
		slog.ErrorContext(r.Context(), "Search failed", "error", err)
		common.WriteErrorResponse(w, "Failed to search products", http.StatusInternalServerError)
	}
}

// listCollections handles GET /api/v1/collections
//
// @Summary		List collections
// @Description	List the collections offered for navigation
// @Tags			storefront
// @Produce		json
// @Success		200	{object}	CollectionsResponse
// @Failure		502	{object}	common.ErrorResponse
// @Router			/api/v1/collections [get]
func (routes *Routes) listCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := routes.service.ListCollections(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list collections", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrProviderUnavailable) {
			status = http.StatusBadGateway
		}
		common.WriteErrorResponse(w, "Failed to list collections", status)
		return
	}

	links := make([]CollectionLink, 0, len(collections))
	for _, c := range collections {
		title := c.Title
		if title == "" {
			title = c.Handle
		}
		links = append(links, CollectionLink{Handle: c.Handle, Title: title, Href: collectionPath(c.Handle)})
	}
	common.WriteJSONResponse(w, CollectionsResponse{Collections: links, Count: len(links)}, http.StatusOK)
}

// Package storefront implements service.StorefrontService on top of a catalog provider.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/config"
	"github.com/stacklok/storefront-catalog/internal/filtering"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/otel"
	"github.com/stacklok/storefront-catalog/internal/service"
	"github.com/stacklok/storefront-catalog/internal/telemetry"
)

// storefrontSvc implements the StorefrontService interface
type storefrontSvc struct {
	provider   catalog.Provider
	visibility filtering.FilterService
	rules      *config.FilterConfig
	match      filters.MatchFunc
	tracer     trace.Tracer
	metrics    *telemetry.SearchMetrics
}

var _ service.StorefrontService = (*storefrontSvc)(nil)

// Option is a functional option for configuring the storefront service
type Option func(*storefrontSvc) error

// WithFilterConfig sets the visibility rules and the option match mode
func WithFilterConfig(rules *config.FilterConfig) Option {
	return func(s *storefrontSvc) error {
		mode, err := filters.ParseOptionMatchMode(rules.GetOptionMatch())
		if err != nil {
			return err
		}
		s.rules = rules
		s.match = filters.Matcher(mode)
		return nil
	}
}

// WithVisibilityFilter overrides the filter service applying visibility rules
func WithVisibilityFilter(fs filtering.FilterService) Option {
	return func(s *storefrontSvc) error {
		if fs == nil {
			return fmt.Errorf("visibility filter cannot be nil")
		}
		s.visibility = fs
		return nil
	}
}

// WithTracer sets the tracer used for search spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *storefrontSvc) error {
		s.tracer = tracer
		return nil
	}
}

// WithMetrics sets the search metrics recorder
func WithMetrics(metrics *telemetry.SearchMetrics) Option {
	return func(s *storefrontSvc) error {
		s.metrics = metrics
		return nil
	}
}

// New creates a storefront service searching provider.
func New(provider catalog.Provider, opts ...Option) (service.StorefrontService, error) {
	if provider == nil {
		return nil, fmt.Errorf("catalog provider is required")
	}

	s := &storefrontSvc{
		provider:   provider,
		visibility: filtering.NewDefaultFilterService(),
		match:      filters.Matches,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CheckReadiness lists collections to prove the provider answers
func (s *storefrontSvc) CheckReadiness(ctx context.Context) error {
	if _, err := s.provider.ListCollections(ctx); err != nil {
		return fmt.Errorf("%w: %w", service.ErrProviderUnavailable, err)
	}
	return nil
}

// ListCollections returns the provider's collections
func (s *storefrontSvc) ListCollections(ctx context.Context) ([]catalog.Collection, error) {
	collections, err := s.provider.ListCollections(ctx)
	if err != nil {
		s.metrics.RecordProviderError(ctx, "collections")
		return nil, fmt.Errorf("%w: %w", service.ErrProviderUnavailable, err)
	}
	return collections, nil
}

// Search parses the request, fetches the filtered set, the unrefined universe set
// and the collections concurrently, re-validates the filtered items locally and
// merges both facet passes.
func (s *storefrontSvc) Search(ctx context.Context, req service.SearchRequest) (result *service.SearchResult, err error) {
	start := time.Now()

	plan := PlanSearch(req.Params, req.ActivePath)
	state, freeText, sort, refined := plan.State, plan.FreeText, plan.Sort, plan.Refined
	filteredReq, universeReq := plan.Filtered, plan.Universe

	ctx, span := otel.StartSpan(ctx, s.tracer, "storefront.Search",
		trace.WithAttributes(
			otel.AttrProviderSource.String(s.provider.GetSource()),
			otel.AttrProviderQuery.String(filteredReq.Query),
			otel.AttrCollection.String(filteredReq.Collection),
			otel.AttrSortKey.String(string(sort.Key)),
			otel.AttrRefined.Bool(refined),
		),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
		count := 0
		if result != nil {
			count = len(result.Products)
		}
		s.metrics.RecordSearch(ctx, filteredReq.Collection, time.Since(start), count, err == nil)
	}()

	var (
		filteredItems []catalog.Product
		universeItems []catalog.Product
		collections   []catalog.Collection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.provider.SearchProducts(gctx, filteredReq)
		if err != nil {
			s.metrics.RecordProviderError(gctx, "search")
			return fmt.Errorf("filtered search: %w", err)
		}
		filteredItems = items
		return nil
	})
	if refined {
		g.Go(func() error {
			items, err := s.provider.SearchProducts(gctx, universeReq)
			if err != nil {
				s.metrics.RecordProviderError(gctx, "search")
				return fmt.Errorf("universe search: %w", err)
			}
			universeItems = items
			return nil
		})
	}
	g.Go(func() error {
		items, err := s.provider.ListCollections(gctx)
		if err != nil {
			s.metrics.RecordProviderError(gctx, "collections")
			return fmt.Errorf("collections: %w", err)
		}
		collections = items
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Catalog provider search failed",
			"source", s.provider.GetSource(),
			"query", filteredReq.Query,
			"collection", filteredReq.Collection,
			"error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", service.ErrProviderUnavailable, err)
	}

	filteredItems = s.visibility.ApplyFilters(ctx, filteredItems, s.rules)
	products := make([]catalog.Product, 0, len(filteredItems))
	for i := range filteredItems {
		if s.match(&filteredItems[i], state) {
			products = append(products, filteredItems[i])
		}
	}

	filteredFacets := filters.Aggregate(products)
	facets := filteredFacets
	if refined {
		universe := s.visibility.ApplyFilters(ctx, universeItems, s.rules)
		facets = filters.MergeFacets(filters.Aggregate(universe), filteredFacets)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(products)))
	slog.DebugContext(ctx, "Search completed",
		"query", filteredReq.Query,
		"collection", filteredReq.Collection,
		"fetched", len(filteredItems),
		"matched", len(products))

	return &service.SearchResult{
		State:         state,
		FreeText:      freeText,
		ProviderQuery: filteredReq.Query,
		Sort:          sort,
		Products:      products,
		Facets:        facets,
		Groups:        filters.BuildFacetGroups(collections, facets, state),
		ActiveFilters: filters.ActiveFilters(state),
		Collections:   collections,
	}, nil
}

// SearchPlan describes the provider round trip of one search request.
type SearchPlan struct {
	State    filters.State
	FreeText string
	Sort     catalog.SortOption

	// Refined reports whether the state narrows the listing beyond its collection
	// scope, in which case Universe is fetched as well for facet values.
	Refined bool

	// Filtered fetches the candidates for the result list
	Filtered catalog.SearchRequest

	// Universe keeps the collection scope and free text but drops every
	// refinement, so facet values stay listed after they stop matching.
	Universe catalog.SearchRequest
}

// PlanSearch parses the request parameters and path into provider requests.
func PlanSearch(params filters.Params, activePath string) SearchPlan {
	state := filters.Parse(params, activePath)
	freeText := params.Get(filters.ParamQuery)
	sort := catalog.LookupSort(params.Get(filters.ParamSort))
	return SearchPlan{
		State:    state,
		FreeText: freeText,
		Sort:     sort,
		Refined:  state.HasRefinements(),
		Filtered: searchRequest(state, freeText, sort),
		Universe: searchRequest(filters.State{Collections: state.Collections}, freeText, sort),
	}
}

// searchRequest builds the provider request for state. A collection listing
// without refinements or free text uses the collection's own product listing;
// anything else is a query search, where the collection travels as a clause.
func searchRequest(state filters.State, freeText string, sort catalog.SortOption) catalog.SearchRequest {
	req := catalog.SearchRequest{SortKey: sort.Key, Reverse: sort.Reverse}
	if len(state.Collections) == 1 && !state.HasRefinements() && freeText == "" {
		req.Collection = state.Collections[0]
		return req
	}
	req.Query = filters.BuildQuery(state, freeText)
	return req
}

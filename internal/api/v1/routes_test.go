package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/stacklok/storefront-catalog/internal/api/v1"
	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/filters"
	"github.com/stacklok/storefront-catalog/internal/service"
	"github.com/stacklok/storefront-catalog/internal/service/mocks"
)

var testCollections = []catalog.Collection{
	{Handle: "jewelry", Title: "Jewelry"},
	{Handle: "rings", Title: "Rings"},
}

// searchResult assembles a result the way the service does for the given state and facets.
func searchResult(state filters.State, facets filters.Facets, products ...catalog.Product) *service.SearchResult {
	return &service.SearchResult{
		State:         state,
		ProviderQuery: filters.BuildQuery(state, ""),
		Sort:          catalog.LookupSort("price-asc"),
		Products:      products,
		Facets:        facets,
		Groups:        filters.BuildFacetGroups(testCollections, facets, state),
		ActiveFilters: filters.ActiveFilters(state),
		Collections:   testCollections,
	}
}

func serve(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func findGroup(t *testing.T, groups []v1.FacetGroupResponse, id string) v1.FacetGroupResponse {
	t.Helper()
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	require.FailNow(t, "facet group not found", id)
	return v1.FacetGroupResponse{}
}

func hrefs(options []v1.FacetOptionResponse) map[string]string {
	out := make(map[string]string, len(options))
	for _, opt := range options {
		out[opt.Value] = opt.Href
	}
	return out
}

func TestSearchCollection(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	state := filters.State{Tags: []string{"gold"}, Collections: []string{"jewelry"}}
	facets := filters.Facets{
		Tags:         filters.Counts{{Value: "gold", Count: 1}, {Value: "silver", Count: 0}},
		Options:      filters.OptionCounts{{Name: "Ring Size", Values: filters.Counts{{Value: "7", Count: 1}}}},
		ProductTypes: filters.Counts{{Value: "Ring", Count: 1}},
		PriceRange:   filters.Bounds{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(80)},
	}
	product := catalog.Product{Handle: "gold-ring", Title: "Gold Ring"}

	mockSvc := mocks.NewMockStorefrontService(ctrl)
	mockSvc.EXPECT().Search(gomock.Any(), service.SearchRequest{
		Params:     filters.Params{{Key: "tag", Value: "gold"}, {Key: "sort", Value: "price-asc"}},
		ActivePath: "/search/jewelry",
	}).Return(searchResult(state, facets, product), nil)

	rr := serve(t, v1.Router(mockSvc), "/search/jewelry?tag=gold&sort=price-asc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode[v1.SearchResponse](t, rr)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []catalog.Product{product}, resp.Products)
	assert.Equal(t, `(tag:"gold") AND (collection:"jewelry")`, resp.ProviderQuery)
	assert.Equal(t, "price-asc", resp.Sort.Slug)
	assert.Empty(t, resp.Error)

	assert.Equal(t, map[string]string{
		"jewelry": "/search?tag=gold&sort=price-asc",
		"rings":   "/search/rings?tag=gold&sort=price-asc",
	}, hrefs(findGroup(t, resp.Facets, filters.GroupCollections).Options))

	assert.Equal(t, map[string]string{
		"gold":   "/search/jewelry?sort=price-asc",
		"silver": "/search/jewelry?tag=gold&sort=price-asc&tag=silver",
	}, hrefs(findGroup(t, resp.Facets, filters.GroupTags).Options))

	assert.Equal(t, map[string]string{
		"7": "/search/jewelry?tag=gold&sort=price-asc&option%3ARing+Size=7",
	}, hrefs(findGroup(t, resp.Facets, "Ring Size").Options))

	assert.Equal(t, map[string]string{
		"Ring": "/search/jewelry?tag=gold&sort=price-asc&filter.p.product_type=Ring",
	}, hrefs(findGroup(t, resp.Facets, filters.GroupProductTypes).Options))

	require.Len(t, resp.ActiveFilters, 2)
	assert.Equal(t, "/search/jewelry?sort=price-asc", resp.ActiveFilters[0].Href)
	assert.Equal(t, "/search?tag=gold&sort=price-asc", resp.ActiveFilters[1].Href)

	assert.Equal(t, "/search?sort=price-asc", resp.ClearAllHref)

	require.NotNil(t, resp.PriceRange)
	assert.True(t, resp.PriceRange.Min.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.PriceRange.Max.Equal(decimal.NewFromInt(80)))
	assert.Nil(t, resp.PriceRange.SelectedMin)

	sorts := map[string]v1.SortLink{}
	for _, s := range resp.SortOptions {
		sorts[s.Slug] = s
	}
	assert.Equal(t, "/search/jewelry?tag=gold", sorts[""].Href)
	assert.Equal(t, "/search/jewelry?tag=gold&sort=price-desc", sorts["price-desc"].Href)
	assert.True(t, sorts["price-asc"].Active)
	assert.False(t, sorts["price-desc"].Active)
}

func TestSearch_PriceFilter(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	minPrice := decimal.NewFromInt(15)
	state := filters.State{Price: &filters.PriceRange{Min: &minPrice}}

	mockSvc := mocks.NewMockStorefrontService(ctrl)
	mockSvc.EXPECT().Search(gomock.Any(), gomock.Any()).Return(searchResult(state, filters.Facets{}), nil)

	rr := serve(t, v1.Router(mockSvc), "/search?q=ring&minPrice=15")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[v1.SearchResponse](t, rr)
	assert.Equal(t, 0, resp.Count)
	require.Len(t, resp.ActiveFilters, 1)
	assert.Equal(t, "$15+", resp.ActiveFilters[0].Label)
	assert.Equal(t, "/search?q=ring", resp.ActiveFilters[0].Href)
	assert.Equal(t, "/search?q=ring", resp.ClearAllHref)

	require.NotNil(t, resp.PriceRange)
	require.NotNil(t, resp.PriceRange.SelectedMin)
	assert.True(t, resp.PriceRange.SelectedMin.Equal(minPrice))
}

func TestSearch_NoFiltersHasNoClearAll(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockStorefrontService(ctrl)
	mockSvc.EXPECT().Search(gomock.Any(), service.SearchRequest{ActivePath: "/search"}).
		Return(searchResult(filters.State{}, filters.Facets{}), nil)

	rr := serve(t, v1.Router(mockSvc), "/search")
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[v1.SearchResponse](t, rr)
	assert.Empty(t, resp.ClearAllHref)
	assert.Empty(t, resp.ActiveFilters)
	assert.Nil(t, resp.PriceRange)
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "provider unavailable",
			err:        fmt.Errorf("%w: HTTP 503", service.ErrProviderUnavailable),
			wantStatus: http.StatusBadGateway,
			wantError:  service.ErrProviderUnavailable.Error(),
		},
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("filtered search: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "Search timed out",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to search products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockStorefrontService(ctrl)
			mockSvc.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			rr := serve(t, v1.Router(mockSvc), "/search?tag=gold")
			assert.Equal(t, tt.wantStatus, rr.Code)

			body := decode[map[string]any](t, rr)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestSearch_ProviderUnavailableBody(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockStorefrontService(ctrl)
	mockSvc.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, service.ErrProviderUnavailable)

	rr := serve(t, v1.Router(mockSvc), "/search?q=ring")
	require.Equal(t, http.StatusBadGateway, rr.Code)

	resp := decode[v1.SearchResponse](t, rr)
	assert.Equal(t, "ring", resp.Query)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
}

func TestSearchCollection_InvalidHandle(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	// No expectations: the service must not be called
	mockSvc := mocks.NewMockStorefrontService(ctrl)

	rr := serve(t, v1.Router(mockSvc), "/search/gift%20ideas")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListCollections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setupMock  func(*mocks.MockStorefrontService)
		wantStatus int
		wantBody   v1.CollectionsResponse
	}{
		{
			name: "collections listed",
			setupMock: func(m *mocks.MockStorefrontService) {
				m.EXPECT().ListCollections(gomock.Any()).Return([]catalog.Collection{
					{Handle: "rings", Title: "Rings"},
					{Handle: "gift ideas"},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: v1.CollectionsResponse{
				Collections: []v1.CollectionLink{
					{Handle: "rings", Title: "Rings", Href: "/search/rings"},
					{Handle: "gift ideas", Title: "gift ideas", Href: "/search/gift%20ideas"},
				},
				Count: 2,
			},
		},
		{
			name: "provider unavailable",
			setupMock: func(m *mocks.MockStorefrontService) {
				m.EXPECT().ListCollections(gomock.Any()).Return(nil, service.ErrProviderUnavailable)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockStorefrontService(ctrl)
			tt.setupMock(mockSvc)

			rr := serve(t, v1.Router(mockSvc), "/collections")
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, decode[v1.CollectionsResponse](t, rr))
			}
		})
	}
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		setupMock  func(*mocks.MockStorefrontService)
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantKey: "status", wantValue: "healthy"},
		{
			name: "ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockStorefrontService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantKey:    "status",
			wantValue:  "ready",
		},
		{
			name: "not ready",
			path: "/readiness",
			setupMock: func(m *mocks.MockStorefrontService) {
				m.EXPECT().CheckReadiness(gomock.Any()).Return(service.ErrProviderUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantKey:    "error",
			wantValue:  "StorefrontService not ready: catalog provider unavailable",
		},
		{name: "version", path: "/version", wantStatus: http.StatusOK, wantKey: "go_version", wantValue: runtime.Version()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			mockSvc := mocks.NewMockStorefrontService(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(mockSvc)
			}

			rr := serve(t, v1.HealthRouter(mockSvc), tt.path)
			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decode[map[string]string](t, rr)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

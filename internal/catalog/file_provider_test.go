package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

const fixture = "testdata/catalog.json"

func TestFileProvider_SearchProducts(t *testing.T) {
	t.Parallel()

	provider := catalog.NewFileProvider(fixture)

	tests := []struct {
		name string
		req  catalog.SearchRequest
		want []string
	}{
		{
			name: "unfiltered keeps document order",
			req:  catalog.SearchRequest{},
			want: []string{"gold-ring", "silver-ring", "gold-necklace", "canvas-tote", "sample-ring"},
		},
		{
			name: "collection scope",
			req:  catalog.SearchRequest{Collection: "rings"},
			want: []string{"gold-ring", "silver-ring"},
		},
		{
			name: "collection scope with query",
			req:  catalog.SearchRequest{Collection: "jewelry", Query: `tag:"gold" AND product_type:"Necklace"`},
			want: []string{"gold-necklace"},
		},
		{
			name: "price ascending",
			req:  catalog.SearchRequest{Collection: "jewelry", SortKey: catalog.SortPrice},
			want: []string{"sample-ring", "gold-ring", "silver-ring", "gold-necklace"},
		},
		{
			name: "price descending",
			req:  catalog.SearchRequest{Collection: "jewelry", SortKey: catalog.SortPrice, Reverse: true},
			want: []string{"gold-necklace", "silver-ring", "gold-ring", "sample-ring"},
		},
		{
			name: "latest first",
			req:  catalog.SearchRequest{SortKey: catalog.SortCreatedAt, Reverse: true},
			want: []string{"silver-ring", "canvas-tote", "gold-ring", "gold-necklace", "sample-ring"},
		},
		{
			name: "variant option field",
			req:  catalog.SearchRequest{Query: `(variant_options.material:"Rose Gold" OR variant_options.material:"Silver")`},
			want: []string{"gold-ring", "silver-ring"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			products, err := provider.SearchProducts(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handles(products))
		})
	}
}

func TestFileProvider_ListCollections(t *testing.T) {
	t.Parallel()

	collections, err := catalog.NewFileProvider(fixture).ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 3)
	assert.Equal(t, "Jewelry", collections[0].Title)
}

func TestFileProvider_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"products": [`), 0o600))

	_, err := catalog.NewFileProvider(broken).SearchProducts(context.Background(), catalog.SearchRequest{})
	require.ErrorIs(t, err, catalog.ErrMalformedResponse)

	_, err = catalog.NewFileProvider(filepath.Join(dir, "missing.json")).ListCollections(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, "file:"+broken, catalog.NewFileProvider(broken).GetSource())
}

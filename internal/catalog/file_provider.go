package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// catalogFile is the on-disk catalog document.
type catalogFile struct {
	Products    []Product    `json:"products"`
	Collections []Collection `json:"collections"`
}

// FileProvider serves the catalog from a local JSON document and executes the
// provider query grammar in process. Used for development and tests.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading the catalog document at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// SearchProducts evaluates the request against the catalog document.
func (p *FileProvider) SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error) {
	doc, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	products := doc.Products
	if req.Collection != "" {
		scoped := make([]Product, 0, len(products))
		for _, product := range products {
			if slices.ContainsFunc(product.Collections, func(c string) bool {
				return strings.EqualFold(c, req.Collection)
			}) {
				scoped = append(scoped, product)
			}
		}
		products = scoped
	}

	products = EvaluateQuery(req.Query, products)
	sortProducts(products, req.SortKey, req.Reverse)
	return products, nil
}

// ListCollections returns the collections of the catalog document.
func (p *FileProvider) ListCollections(ctx context.Context) ([]Collection, error) {
	doc, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Collections, nil
}

// GetSource returns the catalog file path.
func (p *FileProvider) GetSource() string {
	return "file:" + p.path
}

func (p *FileProvider) load(ctx context.Context) (*catalogFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", p.path, err)
	}
	var doc catalogFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: catalog file %s: %v", ErrMalformedResponse, p.path, err)
	}
	return &doc, nil
}

// sortProducts orders products in place. Relevance and best-selling keep document order.
func sortProducts(products []Product, key SortKey, reverse bool) {
	switch key {
	case SortPrice:
		slices.SortStableFunc(products, func(a, b Product) int {
			return a.MinPrice().Cmp(b.MinPrice())
		})
	case SortCreatedAt:
		slices.SortStableFunc(products, func(a, b Product) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	}
	if reverse {
		slices.Reverse(products)
	}
}

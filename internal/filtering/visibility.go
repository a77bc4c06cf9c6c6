package filtering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stacklok/storefront-catalog/internal/catalog"
	"github.com/stacklok/storefront-catalog/internal/config"
)

// FilterService removes products the storefront must not list
type FilterService interface {
	// ApplyFilters returns the visible products, preserving order. The input slice is not modified.
	ApplyFilters(ctx context.Context, products []catalog.Product, filter *config.FilterConfig) []catalog.Product
}

type defaultFilterService struct {
	handleFilter HandleFilter
	tagFilter    TagFilter
}

// NewDefaultFilterService creates a FilterService with the default handle and tag filters
func NewDefaultFilterService() FilterService {
	return &defaultFilterService{
		handleFilter: NewDefaultHandleFilter(),
		tagFilter:    NewDefaultTagFilter(),
	}
}

// NewFilterService creates a FilterService with custom filter implementations
func NewFilterService(handleFilter HandleFilter, tagFilter TagFilter) FilterService {
	return &defaultFilterService{
		handleFilter: handleFilter,
		tagFilter:    tagFilter,
	}
}

// ApplyFilters filters products by the configured handle and tag rules. The hidden
// tag is excluded even when filter is nil.
func (s *defaultFilterService) ApplyFilters(
	ctx context.Context,
	products []catalog.Product,
	filter *config.FilterConfig,
) []catalog.Product {
	var handleInclude, handleExclude, tagInclude []string
	tagExclude := []string{filter.GetHiddenTag()}
	if filter != nil {
		if filter.Handles != nil {
			handleInclude = filter.Handles.Include
			handleExclude = filter.Handles.Exclude
		}
		if filter.Tags != nil {
			tagInclude = filter.Tags.Include
			tagExclude = append(tagExclude, filter.Tags.Exclude...)
		}
	}

	visible := make([]catalog.Product, 0, len(products))
	for _, product := range products {
		included, reason := s.shouldIncludeWithReason(
			&product, handleInclude, handleExclude, tagInclude, tagExclude)
		if included {
			visible = append(visible, product)
			continue
		}
		slog.DebugContext(ctx, "Excluding product",
			"handle", product.Handle,
			"tags", product.Tags,
			"reason", reason)
	}
	return visible
}

// shouldIncludeWithReason requires both the handle and the tag filter to pass
func (s *defaultFilterService) shouldIncludeWithReason(
	product *catalog.Product,
	handleInclude, handleExclude, tagInclude, tagExclude []string,
) (bool, string) {
	handleIncluded, handleReason := s.handleFilter.ShouldInclude(product.Handle, handleInclude, handleExclude)
	if !handleIncluded {
		return false, fmt.Sprintf("handle filter: %s", handleReason)
	}

	tagIncluded, tagReason := s.tagFilter.ShouldInclude(product.Tags, tagInclude, tagExclude)
	if !tagIncluded {
		return false, fmt.Sprintf("tag filter: %s", tagReason)
	}

	reasons := []string{fmt.Sprintf("tag filter: %s", tagReason)}
	if len(handleInclude) > 0 || len(handleExclude) > 0 {
		reasons = append([]string{fmt.Sprintf("handle filter: %s", handleReason)}, reasons...)
	}
	return true, "passed all filters: " + strings.Join(reasons, " AND ")
}

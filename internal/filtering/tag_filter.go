package filtering

import (
	"fmt"
	"strings"
)

// TagFilter handles tag-based filtering
type TagFilter interface {
	// ShouldInclude determines if a product with the given tags passes the include/exclude lists.
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(tags []string, include, exclude []string) (bool, string)
}

// DefaultTagFilter implements tag filtering with case-insensitive comparison
type DefaultTagFilter struct{}

// NewDefaultTagFilter creates a new DefaultTagFilter
func NewDefaultTagFilter() *DefaultTagFilter {
	return &DefaultTagFilter{}
}

// ShouldInclude applies the exclude list first, then the include list.
func (*DefaultTagFilter) ShouldInclude(tags []string, include, exclude []string) (bool, string) {
	if tag, ok := firstCommon(tags, exclude); ok {
		return false, fmt.Sprintf("excluded by tag '%s'", tag)
	}

	if len(include) > 0 {
		if tag, ok := firstCommon(tags, include); ok {
			return true, fmt.Sprintf("included by tag '%s'", tag)
		}
		return false, fmt.Sprintf("no matching tags found in include list %v (product tags: %v)", include, tags)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no matching tags in exclude list %v", exclude)
	}
	return true, "no tag filters specified"
}

func firstCommon(tags, list []string) (string, bool) {
	for _, tag := range tags {
		for _, candidate := range list {
			if strings.EqualFold(tag, candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

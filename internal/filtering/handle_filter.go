package filtering

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

// HandleFilter handles product handle filtering using glob patterns
type HandleFilter interface {
	// ShouldInclude determines if a product handle passes the include/exclude patterns.
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(handle string, include, exclude []string) (bool, string)
}

// defaultHandleFilter compiles each pattern once and reuses it across requests
type defaultHandleFilter struct {
	compiled sync.Map // pattern -> glob.Glob
}

var _ HandleFilter = (*defaultHandleFilter)(nil)

// NewDefaultHandleFilter creates a new glob based HandleFilter
func NewDefaultHandleFilter() HandleFilter {
	return &defaultHandleFilter{}
}

func (f *defaultHandleFilter) match(pattern, handle string) (bool, error) {
	if g, ok := f.compiled.Load(pattern); ok {
		return g.(glob.Glob).Match(handle), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid glob pattern: %v", err)
	}
	f.compiled.Store(pattern, g)
	return g.Match(handle), nil
}

// ShouldInclude applies exclude patterns first, then include patterns.
// An invalid pattern excludes the product.
func (f *defaultHandleFilter) ShouldInclude(handle string, include, exclude []string) (bool, string) {
	for _, pattern := range exclude {
		matches, err := f.match(pattern, handle)
		if err != nil {
			return false, fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err)
		}
		if matches {
			return false, fmt.Sprintf("excluded by pattern '%s'", pattern)
		}
	}

	if len(include) > 0 {
		for _, pattern := range include {
			matches, err := f.match(pattern, handle)
			if err != nil {
				return false, fmt.Sprintf("invalid include pattern '%s': %v", pattern, err)
			}
			if matches {
				return true, fmt.Sprintf("included by pattern '%s'", pattern)
			}
		}
		return false, fmt.Sprintf("no match found in include patterns %v", include)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no match in exclude patterns %v", exclude)
	}
	return true, "no handle filters specified"
}

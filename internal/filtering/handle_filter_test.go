package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHandleFilter_ShouldInclude(t *testing.T) {
	t.Parallel()

	filter := NewDefaultHandleFilter()

	tests := []struct {
		name       string
		handle     string
		include    []string
		exclude    []string
		expected   bool
		wantReason string
	}{
		{name: "no patterns", handle: "gold-ring", expected: true, wantReason: "no handle filters specified"},
		{name: "include match", handle: "gold-ring", include: []string{"*-ring"}, expected: true,
			wantReason: "included by pattern '*-ring'"},
		{name: "include miss", handle: "canvas-tote", include: []string{"*-ring"}, expected: false,
			wantReason: "no match found in include patterns"},
		{name: "exclude match", handle: "sample-ring", exclude: []string{"sample-*"}, expected: false,
			wantReason: "excluded by pattern 'sample-*'"},
		{name: "exclude wins over include", handle: "sample-ring", include: []string{"*-ring"},
			exclude: []string{"sample-*"}, expected: false},
		{name: "exclude miss", handle: "gold-ring", exclude: []string{"sample-*"}, expected: true,
			wantReason: "no match in exclude patterns"},
		{name: "single character wildcard", handle: "ring-1", include: []string{"ring-?"}, expected: true},
		{name: "single character wildcard rejects longer", handle: "ring-10", include: []string{"ring-?"}, expected: false},
		{name: "character class", handle: "ring-2", include: []string{"ring-[1-3]"}, expected: true},
		{name: "star crosses slashes", handle: "summer/gold-ring", include: []string{"summer*"}, expected: true},
		{name: "invalid pattern excludes", handle: "gold-ring", include: []string{"[gold"}, expected: false,
			wantReason: "invalid include pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			included, reason := filter.ShouldInclude(tt.handle, tt.include, tt.exclude)
			assert.Equal(t, tt.expected, included)
			if tt.wantReason != "" {
				assert.Contains(t, reason, tt.wantReason)
			}
		})
	}
}

func TestDefaultHandleFilter_ReusesCompiledPatterns(t *testing.T) {
	t.Parallel()

	filter := &defaultHandleFilter{}
	for range 3 {
		included, _ := filter.ShouldInclude("gold-ring", []string{"gold-*"}, nil)
		assert.True(t, included)
	}
	_, ok := filter.compiled.Load("gold-*")
	assert.True(t, ok)
}

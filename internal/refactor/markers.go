package refactor

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/project-hoist/internal/model"
)

// DefaultMarkerPatterns match the relational markers emitted by the analyzer:
// relational properties (rel_...), relation arrows (a=>b) and relational
// context references (R(...)).
var DefaultMarkerPatterns = []string{"rel_*", "*=>*", "R(*"}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// MarkerFilter recognizes plan elements that denote analyzer-derived
// relations rather than model members.
type MarkerFilter struct {
	patterns []compiledPattern
}

// NewMarkerFilter compiles the given glob patterns.
func NewMarkerFilter(patterns []string) (*MarkerFilter, error) {
	f := &MarkerFilter{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid marker pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	return f, nil
}

// IsMarker reports whether element matches any marker pattern.
func (f *MarkerFilter) IsMarker(element string) bool {
	for _, cp := range f.patterns {
		if cp.glob.Match(element) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns in order.
func (f *MarkerFilter) Patterns() []string {
	out := make([]string, len(f.patterns))
	for i, cp := range f.patterns {
		out[i] = cp.pattern
	}
	return out
}

// Normalize reduces a raw plan element such as "weight: int" or "ship()" to
// a bare member name.
func Normalize(element string) string {
	name, _, _ := strings.Cut(element, ":")
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, model.EmptyParams)
	return strings.TrimSpace(name)
}

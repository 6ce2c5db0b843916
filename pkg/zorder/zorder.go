// Package zorder allocates stacking order for floating content.
//
// Every portal category owns a z-index band, and nested floating
// content climbs within its band by nesting depth, so a submenu always
// beats its menu while any overlay still beats every container portal.
package zorder

import "github.com/go-drift/stagehand/pkg/portal"

// Policy maps portal categories to the base z-index of their band.
type Policy struct {
	bases map[portal.Category]int
}

// NewPolicy builds a policy from explicit band bases. Callers are
// expected to pass increasing values; config.Tuning validates that.
func NewPolicy(container, overlay, topmost int) Policy {
	return Policy{bases: map[portal.Category]int{
		portal.CategoryContainer: container,
		portal.CategoryOverlay:   overlay,
		portal.CategoryTopmost:   topmost,
	}}
}

// DefaultPolicy returns the standard bands: container 40, overlay 60,
// topmost 80.
func DefaultPolicy() Policy {
	return NewPolicy(40, 60, 80)
}

// Base returns the band base for a category. Unknown categories fall
// back to the container band.
func (p Policy) Base(category portal.Category) int {
	if base, ok := p.bases[category]; ok {
		return base
	}
	return p.bases[portal.CategoryContainer]
}

// Allocate returns the z-index for floating content at the given
// nesting depth within a category. Depth 0 is the band base; negative
// depths are treated as 0.
func (p Policy) Allocate(category portal.Category, depth int) int {
	if depth < 0 {
		depth = 0
	}
	return p.Base(category) + depth
}

// Resolve applies the caller-override convention: a non-zero override
// wins unchanged, zero means "managed" and allocates from the policy.
func (p Policy) Resolve(category portal.Category, depth, override int) int {
	if override != 0 {
		return override
	}
	return p.Allocate(category, depth)
}

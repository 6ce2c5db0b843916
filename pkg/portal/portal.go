// Package portal renders detached UI content into shared hosts.
//
// A portal is a piece of content registered under a stable id. Hosts
// subscribe to one [Category] each and re-render whenever the set of
// portals in that category changes, so dialogs, dropdowns and toasts
// mount into a single top-level node instead of scattering through the
// component tree. Entries keep the order in which their ids first
// appeared: re-registering updates content in place and never moves an
// entry, which keeps stacking stable while content churns.
package portal

import (
	"errors"

	"github.com/google/uuid"
)

// ID identifies one portal within a registry.
type ID string

// NewID returns a random unique portal id for callers that have no
// natural key of their own.
func NewID() ID {
	return ID(uuid.NewString())
}

// Category is an isolation domain for portals. Hosts render exactly
// one category, and mutations in one category never wake the hosts of
// another.
type Category int

const (
	// CategoryContainer holds content scoped to an app-defined container.
	CategoryContainer Category = iota
	// CategoryOverlay holds viewport-level content such as dialogs.
	CategoryOverlay
	// CategoryTopmost holds content that must beat everything else,
	// such as toasts and dev tooling.
	CategoryTopmost
)

func (c Category) String() string {
	switch c {
	case CategoryContainer:
		return "container"
	case CategoryOverlay:
		return "overlay"
	case CategoryTopmost:
		return "topmost"
	default:
		return "unknown"
	}
}

// Content is anything a portal can carry. The registry never inspects
// it; the host's surface decides how to draw it.
type Content interface {
	// Render draws the content into the surface-provided target.
	Render(into Target)
}

// Target is the render destination handed to content by a surface.
// Its concrete type is an agreement between surface and content.
type Target interface{}

// Fragment is one renderable unit in a host's output: a top-level
// portal or a child scoped beneath one.
type Fragment struct {
	// ID is the portal or child id.
	ID ID
	// Parent is the owning portal's id for scoped children, empty for
	// top-level entries.
	Parent ID
	// Content is the registered content.
	Content Content
}

// Surface receives a host's rendered output. Implementations bridge to
// the actual UI tree.
type Surface interface {
	// SetContent replaces the surface's children with the given
	// fragments, in order.
	SetContent(fragments []Fragment)
}

// ErrRegistrationConflict is returned when a registration would give
// one id two positions in the tree, such as registering a scoped child
// id at top level or re-parenting a child.
var ErrRegistrationConflict = errors.New("portal: registration conflict")

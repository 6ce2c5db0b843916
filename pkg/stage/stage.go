// Package stage abstracts the rendering surface the overlay engine drives.
//
// The engine never talks to a concrete UI tree directly. It resolves
// elements, measures them and applies placements through the [Document]
// and [Element] interfaces, so the same positioning logic runs against a
// live interop boundary in production and against fakes in tests.
package stage

import (
	"time"

	"github.com/go-drift/stagehand/pkg/geometry"
)

// Strategy selects the CSS positioning scheme of placed content.
type Strategy int

const (
	// StrategyAbsolute positions content relative to its containing block.
	StrategyAbsolute Strategy = iota
	// StrategyFixed positions content relative to the viewport.
	StrategyFixed
)

func (s Strategy) String() string {
	if s == StrategyFixed {
		return "fixed"
	}
	return "absolute"
}

// Signal identifies an environment change that can invalidate placements.
type Signal int

const (
	// SignalResize fires when the viewport changes size.
	SignalResize Signal = iota
	// SignalScroll fires when an ancestor of an anchor scrolls.
	SignalScroll
	// SignalMutation fires when observed layout-relevant geometry mutates.
	SignalMutation
)

func (s Signal) String() string {
	switch s {
	case SignalResize:
		return "resize"
	case SignalScroll:
		return "scroll"
	case SignalMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

// Placement is the full set of style properties the engine writes to a
// floating element in one pass.
type Placement struct {
	// Position is the top-left corner in viewport coordinates.
	Position geometry.Offset
	// Strategy selects absolute or fixed positioning.
	Strategy Strategy
	// ZIndex is the stacking order. Zero means unmanaged.
	ZIndex int
	// Width and Height constrain the element when non-zero.
	Width  float64
	Height float64
	// Scroll enables internal scrolling when content exceeds the viewport.
	Scroll bool
}

// Element is a single resolvable node on the stage.
//
// Bounds are reported in viewport coordinates regardless of the
// positioning strategy in effect; the stage implementation is
// responsible for the conversion.
type Element interface {
	// ID returns the element's stable identifier.
	ID() string
	// Bounds measures the element's current border box.
	Bounds() geometry.Rect
	// Apply writes a placement to the element's style.
	Apply(p Placement)
	// Content returns the first rendered child, if the element is a
	// wrapper around user content.
	Content() (Element, bool)
	// SetTransformOrigin sets the CSS transform-origin used by
	// entry and exit animations.
	SetTransformOrigin(origin string)
}

// Document is the engine's window onto the host page.
type Document interface {
	// ElementByID resolves an element, reporting false while it has
	// not been rendered yet.
	ElementByID(id string) (Element, bool)
	// Viewport returns the visible area in viewport coordinates.
	Viewport() geometry.Rect
	// Observe subscribes to environment signals. The returned cancel
	// detaches the subscription synchronously.
	Observe(fn func(Signal)) (cancel func())
	// After schedules fn once after d. The returned cancel prevents
	// the call if it has not fired yet.
	After(d time.Duration, fn func()) (cancel func())
}

// Clock abstracts time for components that need it, so tests can
// control the flow of time.
type Clock interface {
	Now() time.Time
}

// systemClock implements Clock using real time.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// Package anchor positions floating content relative to anchor elements.
//
// A [Positioner] owns the placement pipeline: resolve both elements
// (polling briefly if they have not rendered yet), pick a side with
// enough room, align and offset the content, nudge it fully into the
// viewport, and keep doing all of that on every resize, scroll and
// mutation signal until the [Session] is disposed. The math itself is
// pure; only the apply step touches the stage.
package anchor

import "github.com/go-drift/stagehand/pkg/stage"

// Side is the anchor edge floating content attaches to. The zero value
// is SideBottom, the natural default for menus and selects.
type Side int

const (
	// SideBottom places content below the anchor.
	SideBottom Side = iota
	// SideTop places content above the anchor.
	SideTop
	// SideLeft places content to the anchor's left.
	SideLeft
	// SideRight places content to the anchor's right.
	SideRight
)

// sides lists every side in declaration order, the order the flip
// fallback walks after the preferred side and its opposite.
var sides = [4]Side{SideBottom, SideTop, SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideBottom:
		return "bottom"
	case SideTop:
		return "top"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the side across the anchor.
func (s Side) Opposite() Side {
	switch s {
	case SideBottom:
		return SideTop
	case SideTop:
		return SideBottom
	case SideLeft:
		return SideRight
	default:
		return SideLeft
	}
}

// vertical reports whether the side places content above or below,
// making X the cross axis.
func (s Side) vertical() bool {
	return s == SideTop || s == SideBottom
}

// Align positions content along the cross axis of its side. The zero
// value is AlignCenter.
type Align int

const (
	// AlignCenter centers content on the anchor.
	AlignCenter Align = iota
	// AlignStart aligns content with the anchor's leading edge.
	AlignStart
	// AlignEnd aligns content with the anchor's trailing edge.
	AlignEnd
)

func (a Align) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	default:
		return "center"
	}
}

// Request describes one anchored placement.
type Request struct {
	// AnchorID is the element the content attaches to.
	AnchorID string
	// FloatingID is the element being placed.
	FloatingID string
	// Side is the preferred side.
	Side Side
	// Align is the cross-axis alignment.
	Align Align
	// Offset is the gap in pixels between anchor and content.
	Offset float64
	// Flip allows falling back to other sides when the preferred side
	// lacks room.
	Flip bool
	// Shift nudges content along the cross axis to stay inside the
	// viewport.
	Shift bool
	// MatchAnchorSize stretches the content's cross-axis extent to the
	// anchor's, the select-menu convention.
	MatchAnchorSize bool
	// Strategy selects the positioning scheme written to the element.
	Strategy stage.Strategy
	// ZIndex overrides the stacking order when non-zero.
	ZIndex int
	// OnReady fires once, after the first completed placement.
	OnReady func()
}

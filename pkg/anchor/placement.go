package anchor

import "github.com/go-drift/stagehand/pkg/geometry"

// availableSpace measures the free room between the anchor's edge and
// the viewport's edge on the given side.
func availableSpace(anchor, viewport geometry.Rect, side Side) float64 {
	switch side {
	case SideBottom:
		return viewport.Bottom - anchor.Bottom
	case SideTop:
		return anchor.Top - viewport.Top
	case SideLeft:
		return anchor.Left - viewport.Left
	default:
		return viewport.Right - anchor.Right
	}
}

// requiredSpace is the main-axis extent the content needs on a side,
// including the anchor gap.
func requiredSpace(size geometry.Size, side Side, gap float64) float64 {
	if side.vertical() {
		return size.Height + gap
	}
	return size.Width + gap
}

// resolveSide picks the side to place on. The preferred side wins when
// it has room or flipping is disabled. Otherwise the opposite side is
// tried, then the remaining sides in declaration order, and when no
// side fits, the one with the most room.
func resolveSide(anchor geometry.Rect, size geometry.Size, viewport geometry.Rect, pref Side, gap float64, flip bool) Side {
	fits := func(s Side) bool {
		return availableSpace(anchor, viewport, s) >= requiredSpace(size, s, gap)
	}
	if fits(pref) || !flip {
		return pref
	}
	if op := pref.Opposite(); fits(op) {
		return op
	}
	for _, s := range sides {
		if s == pref || s == pref.Opposite() {
			continue
		}
		if fits(s) {
			return s
		}
	}

	best := pref
	bestRoom := availableSpace(anchor, viewport, pref)
	for _, s := range sides {
		if room := availableSpace(anchor, viewport, s); room > bestRoom {
			best, bestRoom = s, room
		}
	}
	return best
}

// basePosition computes the top-left corner for content of the given
// size on a side, before any viewport adjustment.
func basePosition(anchor geometry.Rect, size geometry.Size, side Side, align Align, gap float64) geometry.Offset {
	var pos geometry.Offset

	switch side {
	case SideBottom:
		pos.Y = anchor.Bottom + gap
	case SideTop:
		pos.Y = anchor.Top - gap - size.Height
	case SideLeft:
		pos.X = anchor.Left - gap - size.Width
	default:
		pos.X = anchor.Right + gap
	}

	if side.vertical() {
		switch align {
		case AlignStart:
			pos.X = anchor.Left
		case AlignEnd:
			pos.X = anchor.Right - size.Width
		default:
			pos.X = anchor.Center().X - size.Width/2
		}
	} else {
		switch align {
		case AlignStart:
			pos.Y = anchor.Top
		case AlignEnd:
			pos.Y = anchor.Bottom - size.Height
		default:
			pos.Y = anchor.Center().Y - size.Height/2
		}
	}
	return pos
}

// shiftIntoViewport clamps the cross-axis coordinate so the content
// stays inside the viewport. When the content is wider than the
// viewport the leading edge stays visible.
func shiftIntoViewport(pos geometry.Offset, size geometry.Size, viewport geometry.Rect, side Side) geometry.Offset {
	if side.vertical() {
		pos.X = geometry.Clamp(pos.X, viewport.Left, viewport.Right-size.Width)
	} else {
		pos.Y = geometry.Clamp(pos.Y, viewport.Top, viewport.Bottom-size.Height)
	}
	return pos
}

// correction is the adjustment the post-apply pass found necessary.
type correction struct {
	// delta translates the content fully into view.
	delta geometry.Offset
	// width and height clamp the content when it cannot fit; 0 means
	// no clamping on that axis.
	width  float64
	height float64
	// scroll is set when clamping forces internal scrolling.
	scroll bool
}

// correctInto compares the measured rect against the viewport and
// returns what must change, reporting false when the rect is already
// fully visible. Each axis is handled independently: content that fits
// is translated into view, content that cannot fit is clamped to the
// viewport extent and pinned to its leading edge.
func correctInto(rect, viewport geometry.Rect) (correction, bool) {
	var c correction
	needed := false

	if rect.Width() > viewport.Width() {
		c.width = viewport.Width()
		c.delta.X = viewport.Left - rect.Left
		c.scroll = true
		needed = true
	} else if rect.Left < viewport.Left {
		c.delta.X = viewport.Left - rect.Left
		needed = true
	} else if rect.Right > viewport.Right {
		c.delta.X = viewport.Right - rect.Right
		needed = true
	}

	if rect.Height() > viewport.Height() {
		c.height = viewport.Height()
		c.delta.Y = viewport.Top - rect.Top
		c.scroll = true
		needed = true
	} else if rect.Top < viewport.Top {
		c.delta.Y = viewport.Top - rect.Top
		needed = true
	} else if rect.Bottom > viewport.Bottom {
		c.delta.Y = viewport.Bottom - rect.Bottom
		needed = true
	}

	return c, needed
}

// originFor maps the final side and alignment to the CSS
// transform-origin of the content, the point entry and exit
// animations scale from. The origin faces the anchor.
func originFor(side Side, align Align) string {
	var x, y string
	if side.vertical() {
		switch align {
		case AlignStart:
			x = "left"
		case AlignEnd:
			x = "right"
		default:
			x = "center"
		}
		if side == SideBottom {
			y = "top"
		} else {
			y = "bottom"
		}
	} else {
		if side == SideRight {
			x = "left"
		} else {
			x = "right"
		}
		switch align {
		case AlignStart:
			y = "top"
		case AlignEnd:
			y = "bottom"
		default:
			y = "center"
		}
	}
	return x + " " + y
}

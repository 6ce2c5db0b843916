package testing

import (
	"sync"

	"github.com/go-drift/stagehand/pkg/geometry"
	"github.com/go-drift/stagehand/pkg/stage"
)

// FakeElement is an in-memory stage.Element. Its bounds start at the
// natural rect given to NewFakeElement and track applied placements
// afterwards: the position moves to Placement.Position, and explicit
// Width/Height override the natural size while set.
type FakeElement struct {
	mu      sync.Mutex
	id      string
	natural geometry.Size
	rect    geometry.Rect
	content *FakeElement
	origin  string
	applied []stage.Placement
}

// NewFakeElement creates an element with the given natural bounds.
func NewFakeElement(id string, rect geometry.Rect) *FakeElement {
	return &FakeElement{
		id:      id,
		natural: rect.Size(),
		rect:    rect,
	}
}

// SetContent nests a child element, modeling a wrapper around user
// content. Returns the receiver for chaining.
func (e *FakeElement) SetContent(child *FakeElement) *FakeElement {
	e.mu.Lock()
	e.content = child
	e.mu.Unlock()
	return e
}

// SetRect moves the element, modeling layout shifts or scrolling.
func (e *FakeElement) SetRect(r geometry.Rect) {
	e.mu.Lock()
	e.rect = r
	e.natural = r.Size()
	e.mu.Unlock()
}

// Origin returns the last transform-origin applied.
func (e *FakeElement) Origin() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.origin
}

// Applied returns a copy of every placement applied, oldest first.
func (e *FakeElement) Applied() []stage.Placement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]stage.Placement, len(e.applied))
	copy(out, e.applied)
	return out
}

// LastPlacement returns the most recent placement, if any.
func (e *FakeElement) LastPlacement() (stage.Placement, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.applied) == 0 {
		return stage.Placement{}, false
	}
	return e.applied[len(e.applied)-1], true
}

// ID implements stage.Element.
func (e *FakeElement) ID() string {
	return e.id
}

// Bounds implements stage.Element.
func (e *FakeElement) Bounds() geometry.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

// Apply implements stage.Element.
func (e *FakeElement) Apply(p stage.Placement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applied = append(e.applied, p)

	size := e.natural
	if p.Width > 0 {
		size.Width = p.Width
	}
	if p.Height > 0 {
		size.Height = p.Height
	}
	e.rect = geometry.RectFromOffsetSize(p.Position, size)
}

// Content implements stage.Element.
func (e *FakeElement) Content() (stage.Element, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.content == nil {
		return nil, false
	}
	return e.content, true
}

// SetTransformOrigin implements stage.Element.
func (e *FakeElement) SetTransformOrigin(origin string) {
	e.mu.Lock()
	e.origin = origin
	e.mu.Unlock()
}

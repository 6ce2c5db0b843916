package testing

import (
	"sync"
	"time"

	"github.com/go-drift/stagehand/pkg/geometry"
	"github.com/go-drift/stagehand/pkg/stage"
)

// FakeDocument is an in-memory stage.Document. Elements are added and
// removed by hand, signals fire synchronously through Emit, and timers
// run only when Flush is called, so tests control every step.
type FakeDocument struct {
	mu        sync.Mutex
	clock     stage.Clock
	viewport  geometry.Rect
	elements  map[string]*FakeElement
	observers map[int]func(stage.Signal)
	nextObs   int
	timers    []*fakeTimer
}

type fakeTimer struct {
	at       time.Time
	fn       func()
	canceled bool
}

// NewFakeDocument creates an empty document driven by the given clock.
// A nil clock falls back to the system clock.
func NewFakeDocument(clock stage.Clock) *FakeDocument {
	if clock == nil {
		clock = stage.SystemClock()
	}
	return &FakeDocument{
		clock:     clock,
		viewport:  geometry.RectFromLTWH(0, 0, 1024, 768),
		elements:  make(map[string]*FakeElement),
		observers: make(map[int]func(stage.Signal)),
	}
}

// SetViewport changes the visible area reported by Viewport.
func (d *FakeDocument) SetViewport(r geometry.Rect) {
	d.mu.Lock()
	d.viewport = r
	d.mu.Unlock()
}

// AddElement makes el resolvable through ElementByID.
func (d *FakeDocument) AddElement(el *FakeElement) {
	d.mu.Lock()
	d.elements[el.ID()] = el
	d.mu.Unlock()
}

// RemoveElement makes the id unresolvable again.
func (d *FakeDocument) RemoveElement(id string) {
	d.mu.Lock()
	delete(d.elements, id)
	d.mu.Unlock()
}

// Emit delivers a signal to every observer, synchronously, in
// unspecified order.
func (d *FakeDocument) Emit(sig stage.Signal) {
	d.mu.Lock()
	fns := make([]func(stage.Signal), 0, len(d.observers))
	for _, fn := range d.observers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(sig)
	}
}

// Flush runs every timer due at the clock's current time. Timers
// scheduled by the callbacks themselves stay pending until the next
// Flush.
func (d *FakeDocument) Flush() {
	d.mu.Lock()
	var due []*fakeTimer
	var rest []*fakeTimer
	now := d.clock.Now()
	for _, tm := range d.timers {
		if tm.canceled {
			continue
		}
		if !tm.at.After(now) {
			due = append(due, tm)
		} else {
			rest = append(rest, tm)
		}
	}
	d.timers = rest
	d.mu.Unlock()

	for _, tm := range due {
		tm.fn()
	}
}

// PendingTimers returns how many scheduled callbacks have not fired.
func (d *FakeDocument) PendingTimers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, tm := range d.timers {
		if !tm.canceled {
			n++
		}
	}
	return n
}

// Observers returns how many signal subscriptions are active.
func (d *FakeDocument) Observers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// ElementByID implements stage.Document.
func (d *FakeDocument) ElementByID(id string) (stage.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Viewport implements stage.Document.
func (d *FakeDocument) Viewport() geometry.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}

// Observe implements stage.Document.
func (d *FakeDocument) Observe(fn func(stage.Signal)) (cancel func()) {
	d.mu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// After implements stage.Document. The callback fires during a Flush
// once the clock has reached the deadline.
func (d *FakeDocument) After(delay time.Duration, fn func()) (cancel func()) {
	tm := &fakeTimer{at: d.clock.Now().Add(delay), fn: fn}
	d.mu.Lock()
	d.timers = append(d.timers, tm)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		tm.canceled = true
		d.mu.Unlock()
	}
}

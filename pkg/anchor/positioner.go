package anchor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/stagehand/pkg/errors"
	"github.com/go-drift/stagehand/pkg/geometry"
	"github.com/go-drift/stagehand/pkg/stage"
)

// Positioner places floating content against a stage document and
// keeps every placement current until its session is disposed.
type Positioner struct {
	doc           stage.Document
	padding       float64
	retryInterval time.Duration
	retryBudget   int

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Positioner.
type Option func(*Positioner)

// WithPadding keeps placed content at least px pixels away from every
// viewport edge.
func WithPadding(px float64) Option {
	return func(p *Positioner) {
		if px >= 0 {
			p.padding = px
		}
	}
}

// WithRetry tunes the lookup polling for elements that have not
// rendered yet: budget attempts, interval apart.
func WithRetry(interval time.Duration, budget int) Option {
	return func(p *Positioner) {
		if interval > 0 {
			p.retryInterval = interval
		}
		if budget > 0 {
			p.retryBudget = budget
		}
	}
}

// NewPositioner creates a positioner for the given document.
func NewPositioner(doc stage.Document, opts ...Option) *Positioner {
	p := &Positioner{
		doc:           doc,
		padding:       8,
		retryInterval: 25 * time.Millisecond,
		retryBudget:   40,
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Place starts a placement session for the request. If a live session
// already targets the same floating element it is disposed first, so
// one element never has two writers.
//
// A request with missing ids yields a session that is already dead;
// disposing it is still safe.
func (p *Positioner) Place(req Request) *Session {
	s := &Session{p: p, req: req}
	if req.AnchorID == "" || req.FloatingID == "" {
		errors.Report(&errors.EngineError{
			Op:     "anchor.Place",
			Kind:   errors.KindPlacement,
			Portal: req.FloatingID,
			Err:    fmt.Errorf("anchor: request needs both anchor and floating ids"),
		})
		return s
	}

	s.live.Store(true)
	p.mu.Lock()
	old := p.sessions[req.FloatingID]
	p.sessions[req.FloatingID] = s
	p.mu.Unlock()
	if old != nil {
		old.Dispose()
	}

	s.start()
	return s
}

// Sessions returns the number of live sessions.
func (p *Positioner) Sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// DisposeAll tears down every live session.
func (p *Positioner) DisposeAll() {
	p.mu.Lock()
	all := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		all = append(all, s)
	}
	p.mu.Unlock()

	for _, s := range all {
		s.Dispose()
	}
}

// remove drops s from the session table unless it was already replaced
// by a newer session for the same floating element.
func (p *Positioner) remove(s *Session) {
	p.mu.Lock()
	if p.sessions[s.req.FloatingID] == s {
		delete(p.sessions, s.req.FloatingID)
	}
	p.mu.Unlock()
}

// Session is one live anchored placement. It recomputes on every
// environment signal until disposed.
type Session struct {
	p   *Positioner
	req Request

	live  atomic.Bool
	ready atomic.Bool

	readyOnce sync.Once

	mu            sync.Mutex
	cancelObserve func()
	cancelRetry   func()
	attempts      int
	resolvedSide  Side
	resolved      bool
}

// start subscribes to environment signals and runs the first
// placement attempt.
func (s *Session) start() {
	s.mu.Lock()
	cancel := s.p.doc.Observe(s.onSignal)
	s.cancelObserve = cancel
	s.mu.Unlock()

	// Disposed between Place publishing the session and this point:
	// drop the subscription we just made.
	if !s.live.Load() {
		cancel()
		return
	}
	s.attempt()
}

// onSignal recomputes the placement for any environment change.
func (s *Session) onSignal(stage.Signal) {
	if !s.live.Load() {
		return
	}
	s.recompute()
}

// attempt looks both elements up, retrying on a timer while either is
// missing. Once the budget is spent the session reports a diagnostic
// and ends passively, leaving any applied styles in place.
func (s *Session) attempt() {
	if !s.live.Load() {
		return
	}
	_, okAnchor := s.p.doc.ElementByID(s.req.AnchorID)
	_, okFloating := s.p.doc.ElementByID(s.req.FloatingID)
	if okAnchor && okFloating {
		s.recompute()
		return
	}

	s.mu.Lock()
	s.attempts++
	exhausted := s.attempts >= s.p.retryBudget
	if !exhausted && s.live.Load() {
		s.cancelRetry = s.p.doc.After(s.p.retryInterval, s.attempt)
	}
	s.mu.Unlock()

	if exhausted {
		errors.Report(&errors.EngineError{
			Op:     "anchor.Place",
			Kind:   errors.KindPlacement,
			Portal: s.req.FloatingID,
			Err: fmt.Errorf("gave up after %d lookups: anchor %q or floating %q never rendered",
				s.p.retryBudget, s.req.AnchorID, s.req.FloatingID),
		})
		s.Dispose()
	}
}

// recompute runs the full placement pipeline once: resolve, measure,
// pick a side, position, apply, then re-measure and correct. Elements
// that vanished mid-session make the pass a no-op; the next signal or
// placement request picks things up again.
func (s *Session) recompute() {
	defer errors.Recover("anchor.recompute")

	anchorEl, okAnchor := s.p.doc.ElementByID(s.req.AnchorID)
	floatEl, okFloating := s.p.doc.ElementByID(s.req.FloatingID)
	if !okAnchor || !okFloating {
		return
	}

	viewport := geometry.UniformInsets(s.p.padding).Shrink(s.p.doc.Viewport())
	anchorRect := anchorEl.Bounds()
	size := floatEl.Bounds().Size()

	side := resolveSide(anchorRect, size, viewport, s.req.Side, s.req.Offset, s.req.Flip)

	pl := stage.Placement{
		Strategy: s.req.Strategy,
		ZIndex:   s.req.ZIndex,
	}
	if s.req.MatchAnchorSize {
		if side.vertical() {
			pl.Width = anchorRect.Width()
			size.Width = pl.Width
		} else {
			pl.Height = anchorRect.Height()
			size.Height = pl.Height
		}
	}

	pos := basePosition(anchorRect, size, side, s.req.Align, s.req.Offset)
	if s.req.Shift {
		pos = shiftIntoViewport(pos, size, viewport, side)
	}
	pl.Position = pos

	if !s.live.Load() {
		return
	}
	floatEl.Apply(pl)

	// The applied constraints may have changed the real extent, so
	// measure again and pull the content fully into view.
	if c, needed := correctInto(floatEl.Bounds(), viewport); needed {
		pl.Position = pl.Position.Add(c.delta)
		if c.width > 0 {
			pl.Width = c.width
		}
		if c.height > 0 {
			pl.Height = c.height
		}
		pl.Scroll = c.scroll
		if !s.live.Load() {
			return
		}
		floatEl.Apply(pl)
	}

	origin := originFor(side, s.req.Align)
	if content, ok := floatEl.Content(); ok {
		content.SetTransformOrigin(origin)
	} else {
		floatEl.SetTransformOrigin(origin)
	}

	s.mu.Lock()
	s.resolvedSide = side
	s.resolved = true
	s.mu.Unlock()

	s.readyOnce.Do(func() {
		s.ready.Store(true)
		if s.req.OnReady != nil {
			s.req.OnReady()
		}
	})
}

// Ready reports whether the first placement has completed.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Live reports whether the session still recomputes on signals.
func (s *Session) Live() bool {
	return s.live.Load()
}

// ResolvedSide returns the side chosen by the latest completed pass.
func (s *Session) ResolvedSide() (Side, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolvedSide, s.resolved
}

// Dispose ends the session synchronously: after it returns no further
// styles are written and no callbacks fire. Dispose is idempotent and
// leaves the last applied placement on the element.
func (s *Session) Dispose() {
	if !s.live.CompareAndSwap(true, false) {
		return
	}
	s.mu.Lock()
	cancelObserve := s.cancelObserve
	cancelRetry := s.cancelRetry
	s.cancelObserve, s.cancelRetry = nil, nil
	s.mu.Unlock()

	if cancelObserve != nil {
		cancelObserve()
	}
	if cancelRetry != nil {
		cancelRetry()
	}
	s.p.remove(s)
}

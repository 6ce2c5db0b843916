// Package stagehand wires the portal registry, cascade guard, anchored
// positioner and layer policy into one engine with a single lifecycle.
// Applications construct an [Engine] per stage document and pass it to
// the components that need it; nothing in this module is ambient.
package stagehand

import (
	"sync"

	"github.com/go-drift/stagehand/pkg/anchor"
	"github.com/go-drift/stagehand/pkg/cascade"
	"github.com/go-drift/stagehand/pkg/config"
	"github.com/go-drift/stagehand/pkg/portal"
	"github.com/go-drift/stagehand/pkg/stage"
	"github.com/go-drift/stagehand/pkg/zorder"
)

// Engine owns one registry, one guard, one positioner and one layer
// policy, all tuned from the same [config.Tuning]. Close tears down
// every host and placement session the engine handed out.
type Engine struct {
	registry   *portal.Registry
	guard      *cascade.Guard
	positioner *anchor.Positioner
	layers     zorder.Policy

	mu     sync.Mutex
	hosts  []*portal.Host
	closed bool
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	tuning config.Tuning
	clock  stage.Clock
}

// WithTuning replaces the default tuning, usually with values loaded
// from a stagehand.yaml via [config.LoadOptional].
func WithTuning(t config.Tuning) Option {
	return func(s *settings) {
		s.tuning = t
	}
}

// WithClock substitutes the clock driving the cascade guard's sliding
// window. Tests pair this with a fake clock.
func WithClock(c stage.Clock) Option {
	return func(s *settings) {
		s.clock = c
	}
}

// New builds an engine for the given document.
func New(doc stage.Document, opts ...Option) *Engine {
	s := settings{tuning: config.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	t := s.tuning

	guard := cascade.NewGuard(t.Guard.Window.Std(), t.Guard.Threshold, cascade.WithClock(s.clock))
	return &Engine{
		registry: portal.NewRegistry(portal.WithGuard(guard)),
		guard:    guard,
		positioner: anchor.NewPositioner(doc,
			anchor.WithPadding(t.Placement.Padding),
			anchor.WithRetry(t.Placement.RetryInterval.Std(), t.Placement.RetryBudget)),
		layers: zorder.NewPolicy(t.Layers.Container, t.Layers.Overlay, t.Layers.Topmost),
	}
}

// Registry returns the engine's portal registry.
func (e *Engine) Registry() *portal.Registry {
	return e.registry
}

// Guard returns the cascade guard shared by the registry.
func (e *Engine) Guard() *cascade.Guard {
	return e.guard
}

// Positioner returns the engine's anchored positioner.
func (e *Engine) Positioner() *anchor.Positioner {
	return e.positioner
}

// Layers returns the engine's z-order policy.
func (e *Engine) Layers() zorder.Policy {
	return e.layers
}

// MountHost attaches a surface to one portal category and tracks the
// host for teardown on Close. Returns nil once the engine is closed.
func (e *Engine) MountHost(category portal.Category, surface portal.Surface) *portal.Host {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	h := portal.NewHost(e.registry, category, surface)
	e.hosts = append(e.hosts, h)
	e.mu.Unlock()
	return h
}

// Place starts a placement session with the z-index resolved from the
// layer policy: a non-zero req.ZIndex wins, otherwise the category base
// plus nesting depth is used.
func (e *Engine) Place(category portal.Category, depth int, req anchor.Request) *anchor.Session {
	req.ZIndex = e.layers.Resolve(category, depth, req.ZIndex)
	return e.positioner.Place(req)
}

// Close disposes every mounted host and every live placement session.
// Close is idempotent; the registry keeps its entries so a later
// inspection still sees them.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	hosts := e.hosts
	e.hosts = nil
	e.mu.Unlock()

	for _, h := range hosts {
		h.Dispose()
	}
	e.positioner.DisposeAll()
}

package testing

import (
	"sync"

	"github.com/go-drift/stagehand/pkg/portal"
)

// FakeSurface records every render a host pushes to it.
type FakeSurface struct {
	mu      sync.Mutex
	renders [][]portal.Fragment
}

// NewFakeSurface creates an empty surface.
func NewFakeSurface() *FakeSurface {
	return &FakeSurface{}
}

// SetContent implements portal.Surface.
func (s *FakeSurface) SetContent(fragments []portal.Fragment) {
	copied := make([]portal.Fragment, len(fragments))
	copy(copied, fragments)

	s.mu.Lock()
	s.renders = append(s.renders, copied)
	s.mu.Unlock()
}

// Renders returns how many times SetContent was called.
func (s *FakeSurface) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.renders)
}

// Last returns the fragments of the most recent render, or nil if the
// surface has never rendered.
func (s *FakeSurface) Last() []portal.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.renders) == 0 {
		return nil
	}
	return s.renders[len(s.renders)-1]
}

// LastIDs returns the ids of the most recent render, in order.
func (s *FakeSurface) LastIDs() []portal.ID {
	last := s.Last()
	ids := make([]portal.ID, len(last))
	for i, f := range last {
		ids[i] = f.ID
	}
	return ids
}

// NoteContent is trivial portal content for tests: rendering appends
// its label to the target when the target is a *RenderLog.
type NoteContent struct {
	Label string
}

// Render implements portal.Content.
func (c NoteContent) Render(into portal.Target) {
	if log, ok := into.(*RenderLog); ok {
		log.mu.Lock()
		log.entries = append(log.entries, c.Label)
		log.mu.Unlock()
	}
}

// RenderLog is a portal.Target that collects NoteContent labels.
type RenderLog struct {
	mu      sync.Mutex
	entries []string
}

// Entries returns the labels rendered so far, in order.
func (l *RenderLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

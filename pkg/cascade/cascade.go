// Package cascade protects the portal registry from registration storms.
//
// A buggy consumer can wire a portal registration into its own render
// path, so that every registration triggers a re-render which triggers
// another registration. The [Guard] detects that feedback loop per
// portal id with a sliding-window counter and suppresses further
// registrations until the window drains, keeping one runaway id from
// freezing the whole UI.
package cascade

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/stagehand/pkg/errors"
	"github.com/go-drift/stagehand/pkg/stage"
)

// shardCount spreads ids over independent locks so unrelated portals
// never contend. Must be a power of two.
const shardCount = 16

// defaults applied when NewGuard receives out-of-range parameters.
const (
	defaultWindow    = 100 * time.Millisecond
	minimumThreshold = 2
)

// Option configures a Guard.
type Option func(*Guard)

// WithClock substitutes the time source, used by tests.
func WithClock(c stage.Clock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

// queue tracks the recent allowed attempts for one id.
type queue struct {
	stamps     []time.Time
	lastReport time.Time
}

// shard is one lock domain of the guard.
type shard struct {
	mu     sync.Mutex
	queues map[string]*queue
}

// Guard is a per-id sliding-window rate limiter.
//
// An attempt is allowed unless the id has already been allowed
// threshold-1 times inside the window; the current attempt counts
// toward the threshold. Denied attempts do not extend the window, so
// a runaway id recovers by itself once its window ages out. State is
// kept only for recently active ids and evicted lazily.
type Guard struct {
	window    time.Duration
	threshold int
	clock     stage.Clock
	denials   atomic.Uint64
	shards    [shardCount]shard
}

// NewGuard creates a guard that denies an id once it has been seen
// threshold times (counting the current attempt) within window.
// Out-of-range parameters are clamped to safe values.
func NewGuard(window time.Duration, threshold int, opts ...Option) *Guard {
	if window <= 0 {
		window = defaultWindow
	}
	if threshold < minimumThreshold {
		threshold = minimumThreshold
	}
	g := &Guard{
		window:    window,
		threshold: threshold,
		clock:     stage.SystemClock(),
	}
	for _, opt := range opts {
		opt(g)
	}
	for i := range g.shards {
		g.shards[i].queues = make(map[string]*queue)
	}
	return g
}

// Allow records one registration attempt for id and reports whether it
// may proceed. A denial leaves the id's window untouched.
func (g *Guard) Allow(id string) bool {
	now := g.clock.Now()
	cutoff := now.Add(-g.window)
	s := &g.shards[shardIndex(id)]

	s.mu.Lock()
	q := s.queues[id]
	if q == nil {
		q = &queue{}
		s.queues[id] = q
	}
	q.stamps = evict(q.stamps, cutoff)

	if len(q.stamps) >= g.threshold-1 {
		report := q.lastReport.IsZero() || now.Sub(q.lastReport) >= g.window
		if report {
			q.lastReport = now
		}
		s.mu.Unlock()

		g.denials.Add(1)
		if report {
			errors.Report(&errors.EngineError{
				Op:     "cascade.Allow",
				Kind:   errors.KindCascade,
				Portal: id,
				Err: fmt.Errorf("suppressed registration burst: %d attempts within %s",
					g.threshold, g.window),
			})
		}
		return false
	}

	q.stamps = append(q.stamps, now)
	s.mu.Unlock()
	return true
}

// Forget drops all window state for id. Used when a portal is
// unregistered so a later remount starts clean.
func (g *Guard) Forget(id string) {
	s := &g.shards[shardIndex(id)]
	s.mu.Lock()
	delete(s.queues, id)
	s.mu.Unlock()
}

// Denials returns the total number of suppressed attempts.
func (g *Guard) Denials() uint64 {
	return g.denials.Load()
}

// Tracked returns how many ids currently hold window state. Queues
// whose entries have all aged out still count until their next touch.
func (g *Guard) Tracked() int {
	total := 0
	for i := range g.shards {
		s := &g.shards[i]
		s.mu.Lock()
		total += len(s.queues)
		s.mu.Unlock()
	}
	return total
}

// evict drops stamps at or before cutoff. Stamps are appended in time
// order, so a single scan from the front suffices. An emptied queue
// keeps its backing array for reuse.
func evict(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}

// shardIndex hashes id with FNV-1a onto a shard.
func shardIndex(id string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(id); i++ {
		h ^= uint32(id[i])
		h *= 16777619
	}
	return h & (shardCount - 1)
}

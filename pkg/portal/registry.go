package portal

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/stagehand/pkg/cascade"
	"github.com/go-drift/stagehand/pkg/errors"
)

// entry is one top-level portal. The order is allocated once, on first
// registration, and never reused.
type entry struct {
	order    uint64
	category Category
	content  Content
}

// scopedChild is content registered beneath a parent portal.
type scopedChild struct {
	id      ID
	content Content
}

// scope holds a parent's children in insertion order. Children take no
// order slot of their own; they ride on the parent's.
type scope struct {
	children []scopedChild
}

// Option configures a Registry.
type Option func(*Registry)

// WithGuard installs a cascade guard that rate-limits registrations
// per id. Without one, registrations are never suppressed.
func WithGuard(g *cascade.Guard) Option {
	return func(r *Registry) {
		r.guard = g
	}
}

// Registry is the shared portal table. All methods are safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[ID]*entry
	scopes   map[ID]*scope
	parentOf map[ID]ID
	subs     map[Category]map[int]func()
	nextSub  int

	order atomic.Uint64
	guard *cascade.Guard

	registrations atomic.Uint64
	updates       atomic.Uint64
	notifications atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:  make(map[ID]*entry),
		scopes:   make(map[ID]*scope),
		parentOf: make(map[ID]ID),
		subs:     make(map[Category]map[int]func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or updates the top-level portal id in the given
// category. A new id is appended after every portal registered before
// it; a known id keeps its position and only its content is replaced.
//
// Registering an id that currently lives as a scoped child returns
// [ErrRegistrationConflict]. When a cascade guard denies the attempt,
// Register is a silent no-op and returns nil; the guard emits the
// diagnostic.
func (r *Registry) Register(id ID, category Category, content Content) error {
	if id == "" {
		return fmt.Errorf("portal: empty id")
	}
	if r.guard != nil && !r.guard.Allow(string(id)) {
		return nil
	}

	r.mu.Lock()
	if parent, ok := r.parentOf[id]; ok {
		r.mu.Unlock()
		err := fmt.Errorf("portal: id %q is scoped under %q: %w", id, parent, ErrRegistrationConflict)
		reportConflict("portal.Register", id, err)
		return err
	}
	if e, ok := r.entries[id]; ok {
		e.content = content
		cat := e.category
		r.mu.Unlock()
		if cat != category {
			// The entry stays in its original category; a category is
			// fixed for the lifetime of the id.
			reportConflict("portal.Register", id,
				fmt.Errorf("portal: id %q keeps category %s, ignoring %s", id, cat, category))
		}
		r.updates.Add(1)
		r.notify(cat)
		return nil
	}
	r.entries[id] = &entry{
		order:    r.order.Add(1),
		category: category,
		content:  content,
	}
	r.mu.Unlock()
	r.registrations.Add(1)
	r.notify(category)
	return nil
}

// RegisterChild scopes content under an existing top-level portal.
// Children render immediately after their parent, in insertion order,
// and inherit the parent's category and stacking position.
//
// The parent must already be registered; a child cannot itself have
// children, be re-parented, or shadow a top-level id.
func (r *Registry) RegisterChild(parent, id ID, content Content) error {
	if parent == "" || id == "" {
		return fmt.Errorf("portal: empty id")
	}
	if r.guard != nil && !r.guard.Allow(string(id)) {
		return nil
	}

	r.mu.Lock()
	pe, ok := r.entries[parent]
	if !ok {
		r.mu.Unlock()
		err := fmt.Errorf("portal: parent %q is not a registered portal: %w", parent, ErrRegistrationConflict)
		reportConflict("portal.RegisterChild", id, err)
		return err
	}
	if _, ok := r.entries[id]; ok {
		r.mu.Unlock()
		err := fmt.Errorf("portal: id %q is already a top-level portal: %w", id, ErrRegistrationConflict)
		reportConflict("portal.RegisterChild", id, err)
		return err
	}
	if existing, ok := r.parentOf[id]; ok && existing != parent {
		r.mu.Unlock()
		err := fmt.Errorf("portal: id %q is scoped under %q: %w", id, existing, ErrRegistrationConflict)
		reportConflict("portal.RegisterChild", id, err)
		return err
	}

	cat := pe.category
	sc := r.scopes[parent]
	if sc == nil {
		sc = &scope{}
		r.scopes[parent] = sc
	}
	replaced := false
	for i := range sc.children {
		if sc.children[i].id == id {
			sc.children[i].content = content
			replaced = true
			break
		}
	}
	if !replaced {
		sc.children = append(sc.children, scopedChild{id: id, content: content})
		r.parentOf[id] = parent
	}
	r.mu.Unlock()

	if replaced {
		r.updates.Add(1)
	} else {
		r.registrations.Add(1)
	}
	r.notify(cat)
	return nil
}

// Unregister removes the top-level portal id together with any scoped
// children. Unknown ids are a no-op, so teardown paths can call it
// unconditionally.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, id)
	if sc := r.scopes[id]; sc != nil {
		for _, c := range sc.children {
			delete(r.parentOf, c.id)
			if r.guard != nil {
				r.guard.Forget(string(c.id))
			}
		}
		delete(r.scopes, id)
	}
	cat := e.category
	r.mu.Unlock()

	if r.guard != nil {
		r.guard.Forget(string(id))
	}
	r.notify(cat)
}

// UnregisterChild removes one scoped child from its parent. The pair
// must match a live registration; anything else is a no-op.
func (r *Registry) UnregisterChild(parent, id ID) {
	r.mu.Lock()
	if r.parentOf[id] != parent {
		r.mu.Unlock()
		return
	}
	sc := r.scopes[parent]
	for i := range sc.children {
		if sc.children[i].id == id {
			sc.children = append(sc.children[:i], sc.children[i+1:]...)
			break
		}
	}
	if len(sc.children) == 0 {
		delete(r.scopes, parent)
	}
	delete(r.parentOf, id)
	cat := r.entries[parent].category
	r.mu.Unlock()

	if r.guard != nil {
		r.guard.Forget(string(id))
	}
	r.notify(cat)
}

// Has reports whether id is currently registered, either top-level or
// as a scoped child.
func (r *Registry) Has(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.entries[id]; ok {
		return true
	}
	_, ok := r.parentOf[id]
	return ok
}

// OrderedContent returns the category's portals in registration order,
// each top-level fragment immediately followed by its children in
// insertion order.
func (r *Registry) OrderedContent(category Category) []Fragment {
	type row struct {
		id       ID
		order    uint64
		content  Content
		children []scopedChild
	}

	r.mu.RLock()
	rows := make([]row, 0, len(r.entries))
	total := 0
	for id, e := range r.entries {
		if e.category != category {
			continue
		}
		w := row{id: id, order: e.order, content: e.content}
		if sc := r.scopes[id]; sc != nil {
			w.children = slices.Clone(sc.children)
		}
		rows = append(rows, w)
		total += 1 + len(w.children)
	}
	r.mu.RUnlock()

	slices.SortFunc(rows, func(a, b row) int {
		return cmp.Compare(a.order, b.order)
	})

	out := make([]Fragment, 0, total)
	for _, w := range rows {
		out = append(out, Fragment{ID: w.id, Content: w.content})
		for _, c := range w.children {
			out = append(out, Fragment{ID: c.id, Parent: w.id, Content: c.content})
		}
	}
	return out
}

// Subscribe registers fn to run after every mutation in the category.
// The returned cancel detaches it; cancel is idempotent.
func (r *Registry) Subscribe(category Category, fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	set := r.subs[category]
	if set == nil {
		set = make(map[int]func())
		r.subs[category] = set
	}
	set[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs[category], id)
		r.mu.Unlock()
	}
}

// Stats describes the registry's current shape and lifetime counters.
type Stats struct {
	// Portals is the number of live top-level entries.
	Portals int
	// Children is the number of live scoped children.
	Children int
	// Registrations counts first-time registrations.
	Registrations uint64
	// Updates counts content replacements on live ids.
	Updates uint64
	// Notifications counts subscriber callbacks delivered.
	Notifications uint64
	// Denials counts attempts suppressed by the cascade guard.
	Denials uint64
}

// Stats returns a snapshot of the registry.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	portals := len(r.entries)
	children := len(r.parentOf)
	r.mu.RUnlock()

	s := Stats{
		Portals:       portals,
		Children:      children,
		Registrations: r.registrations.Load(),
		Updates:       r.updates.Load(),
		Notifications: r.notifications.Load(),
	}
	if r.guard != nil {
		s.Denials = r.guard.Denials()
	}
	return s
}

// notify delivers the category's subscriber callbacks outside the
// registry lock, so callbacks may re-enter the registry freely.
func (r *Registry) notify(category Category) {
	r.mu.RLock()
	fns := make([]func(), 0, len(r.subs[category]))
	for _, fn := range r.subs[category] {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	r.notifications.Add(uint64(len(fns)))
}

func reportConflict(op string, id ID, err error) {
	errors.Report(&errors.EngineError{
		Op:     op,
		Kind:   errors.KindRegistration,
		Portal: string(id),
		Err:    err,
	})
}

package portal

import "sync"

// Host mirrors one category of a registry onto a surface. It renders
// once on creation and again after every mutation in its category,
// always passing the full ordered fragment list.
//
// Hosts for different categories are isolated: a mutation in one
// category never re-renders another category's host.
type Host struct {
	registry *Registry
	category Category
	surface  Surface

	mu     sync.Mutex
	cancel func()
}

// NewHost attaches a surface to the registry's category. The registry
// and surface must be non-nil. The surface receives its first
// SetContent before NewHost returns.
func NewHost(registry *Registry, category Category, surface Surface) *Host {
	h := &Host{
		registry: registry,
		category: category,
		surface:  surface,
	}
	h.cancel = registry.Subscribe(category, h.render)
	h.render()
	return h
}

// Category returns the category this host renders.
func (h *Host) Category() Category {
	return h.category
}

// render pushes the current ordered content to the surface.
func (h *Host) render() {
	h.surface.SetContent(h.registry.OrderedContent(h.category))
}

// Dispose detaches the host from the registry; mutations after
// Dispose no longer reach the surface. Dispose is idempotent;
// registered portals are left in place for other hosts.
func (h *Host) Dispose() {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

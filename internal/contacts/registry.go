package contacts

import "sync"

// Factory builds the lifecycle engine for one owner.
type Factory func(ownerID string) *Service

// Registry is the process-wide per-owner engine cache. An owner keeps the same
// engine instance across requests so pending cards survive between webhook
// calls. Populated lazily; Reset drops a single owner (e.g. after tests).
type Registry struct {
	mu      sync.Mutex
	factory Factory
	byOwner map[string]*Service
}

// NewRegistry creates a registry that builds engines with factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		byOwner: make(map[string]*Service),
	}
}

// ForOwner returns the engine for ownerID, creating it on first use.
func (r *Registry) ForOwner(ownerID string) *Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.byOwner[ownerID]; ok {
		return svc
	}
	svc := r.factory(ownerID)
	r.byOwner[ownerID] = svc
	return svc
}

// Reset removes the cached engine for ownerID.
func (r *Registry) Reset(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byOwner, ownerID)
}

package lifecycle

import "sync"

// Registry tracks live component owners on behalf of the host. Gates and
// orchestrators hold Handles into it instead of owner pointers, so a gate
// lifetime can never keep a destroyed component alive: once the host removes
// the entry, every Handle stops resolving.
type Registry struct {
	mu     sync.RWMutex
	owners map[uint64]any
	nextID uint64
}

// NewRegistry creates an empty owner registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[uint64]any)}
}

// Add registers an owner and returns a Handle for it. The host must call
// Remove when the owner is destroyed.
func (r *Registry) Add(owner any) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.owners[id] = owner
	return Handle{registry: r, id: id}
}

// Remove drops the owner behind the handle. Safe to call more than once.
func (r *Registry) Remove(h Handle) {
	if h.registry != r {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, h.id)
}

// Handle is a non-owning reference to a registered owner. The zero Handle
// never resolves.
type Handle struct {
	registry *Registry
	id       uint64
}

// Resolve returns the owner if it is still registered.
func (h Handle) Resolve() (any, bool) {
	if h.registry == nil {
		return nil, false
	}
	h.registry.mu.RLock()
	defer h.registry.mu.RUnlock()
	owner, ok := h.registry.owners[h.id]
	return owner, ok
}

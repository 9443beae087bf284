// Package contract holds the static call contracts of a run: for each static
// task, the set of tasks it is permitted to invoke.
package contract

import (
	"sync"

	"github.com/vk/taskgrid/internal/nodeid"
)

// Registry maps a static task to its allowed children. Entries are written
// once, on the first real execution of the owner, and never cleared.
type Registry struct {
	mu      sync.RWMutex
	allowed map[nodeid.Address]map[nodeid.Address]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{allowed: make(map[nodeid.Address]map[nodeid.Address]struct{})}
}

// Declare registers the allowed children of owner. It returns false and
// leaves the registry untouched if owner was already declared.
func (r *Registry) Declare(owner nodeid.Address, children []nodeid.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.allowed[owner]; exists {
		return false
	}
	set := make(map[nodeid.Address]struct{}, len(children))
	for _, c := range children {
		set[c] = struct{}{}
	}
	r.allowed[owner] = set
	return true
}

// Permits reports whether caller may invoke callee. Callers without a
// declared contract are unconstrained; a declared empty contract permits
// nothing.
func (r *Registry) Permits(caller, callee nodeid.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, constrained := r.allowed[caller]
	if !constrained {
		return true
	}
	_, ok := set[callee]
	return ok
}

// Allowed returns the declared children of owner.
func (r *Registry) Allowed(owner nodeid.Address) ([]nodeid.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.allowed[owner]
	if !ok {
		return nil, false
	}
	out := make([]nodeid.Address, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out, true
}

// Len returns the number of declared owners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.allowed)
}

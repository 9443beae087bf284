package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/taskgrid/internal/task"
)

// Module is the interface that all workflow modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the entry tasks of one application instance.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*task.Task
}

// New creates an empty Registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{workflows: make(map[string]*task.Task)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterWorkflow binds name to an entry task. Registering a name twice is
// a programming error.
func (r *Registry) RegisterWorkflow(name string, entry *task.Task) {
	if name == "" || entry == nil {
		panic("registry: workflow needs a name and an entry task")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[name]; exists {
		panic(fmt.Sprintf("workflow with name '%s' already registered", name))
	}
	slog.Debug("Registering workflow.", "name", name, "entry", entry.Name())
	r.workflows[name] = entry
}

// Lookup returns the entry task registered under name.
func (r *Registry) Lookup(name string) (*task.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.workflows[name]
	return t, ok
}

// Names lists the registered workflows in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

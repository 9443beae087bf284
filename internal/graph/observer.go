package graph

import "github.com/vk/taskgrid/internal/nodeid"

// EventKind names a graph mutation.
type EventKind string

const (
	EventEdgeAdded     EventKind = "edge_added"
	EventStatusChanged EventKind = "status_changed"
	EventNodePruned    EventKind = "node_pruned"
)

// Event describes a single mutation of the graph.
type Event struct {
	Kind EventKind
	Node nodeid.Address
	// Parent is set for EventEdgeAdded and EventNodePruned.
	Parent nodeid.Address
	Status Status
}

// Observer receives graph events. Implementations must be safe for
// concurrent use since batches may run in parallel.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

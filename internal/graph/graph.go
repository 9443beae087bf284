package graph

import (
	"sync"

	"github.com/vk/taskgrid/internal/nodeid"
)

// Graph is the call graph of a single workflow. The zero value is not
// usable, create instances with New.
type Graph struct {
	// mutex protects every field below.
	mutex sync.RWMutex
	// nodes is the arena. Positions never change once assigned.
	nodes []*node
	// index maps an address to its arena position.
	index map[nodeid.Address]int
	root  int

	observers []Observer
}

type node struct {
	addr     nodeid.Address
	status   Status
	present  bool
	children []int
}

// NodeInfo is a read-only view of a node.
type NodeInfo struct {
	Address nodeid.Address
	Status  Status
}

// Edge is a parent to child relation.
type Edge struct {
	From nodeid.Address
	To   nodeid.Address
}

// New creates a graph whose root is the entry task, initially StaticKnown.
func New(root nodeid.Address) *Graph {
	g := &Graph{index: make(map[nodeid.Address]int)}
	g.root = g.ensure(root)
	return g
}

// ensure returns the arena position of addr, allocating a slot or reviving
// a pruned one as StaticKnown. Callers must hold the write lock.
func (g *Graph) ensure(addr nodeid.Address) int {
	if idx, ok := g.index[addr]; ok {
		n := g.nodes[idx]
		if !n.present {
			n.present = true
			n.status = StaticKnown
			n.children = nil
		}
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, &node{addr: addr, status: StaticKnown, present: true})
	g.index[addr] = idx
	return idx
}

// Root returns the address of the entry task.
func (g *Graph) Root() nodeid.Address {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.nodes[g.root].addr
}

// AddObserver registers o for all subsequent events.
func (g *Graph) AddObserver(o Observer) {
	if o == nil {
		return
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.observers = append(g.observers, o)
}

// AddEdge records that parent called child. Duplicate edges are ignored.
// A child seen for the first time starts as StaticKnown, a known child keeps
// its status.
func (g *Graph) AddEdge(parent, child nodeid.Address) {
	g.mutex.Lock()
	p := g.ensure(parent)
	c := g.ensure(child)

	var events []Event
	if !contains(g.nodes[p].children, c) {
		g.nodes[p].children = append(g.nodes[p].children, c)
		events = append(events, Event{Kind: EventEdgeAdded, Node: child, Parent: parent, Status: g.nodes[c].status})
	}
	observers := g.observers
	g.mutex.Unlock()

	notify(observers, events)
}

// Started marks addr InProgress.
func (g *Graph) Started(addr nodeid.Address) { g.setStatus(addr, InProgress) }

// Completed marks addr Completed.
func (g *Graph) Completed(addr nodeid.Address) { g.setStatus(addr, Completed) }

// Error marks addr Error.
func (g *Graph) Error(addr nodeid.Address) { g.setStatus(addr, Error) }

// Branch marks addr as a branch its parent may take.
func (g *Graph) Branch(addr nodeid.Address) { g.setStatus(addr, BranchPossible) }

// Scheduled marks a batch that has been created but not started yet.
func (g *Graph) Scheduled(addr nodeid.Address) { g.setStatus(addr, BranchNotTaken) }

// Speculate marks addr Speculated and gives it a single placeholder child
// standing in for the callees its skipped body would have made. The
// placeholder address is returned.
func (g *Graph) Speculate(addr nodeid.Address) nodeid.Address {
	placeholder := addr.PlaceholderChild()

	g.mutex.Lock()
	idx := g.ensure(addr)
	g.nodes[idx].status = Speculated
	events := []Event{{Kind: EventStatusChanged, Node: addr, Status: Speculated}}

	ph := g.ensure(placeholder)
	g.nodes[ph].status = Speculated
	if !contains(g.nodes[idx].children, ph) {
		g.nodes[idx].children = append(g.nodes[idx].children, ph)
		events = append(events, Event{Kind: EventEdgeAdded, Node: placeholder, Parent: addr, Status: Speculated})
	}
	observers := g.observers
	g.mutex.Unlock()

	notify(observers, events)
	return placeholder
}

func (g *Graph) setStatus(addr nodeid.Address, status Status) {
	g.mutex.Lock()
	idx := g.ensure(addr)
	n := g.nodes[idx]
	n.status = status

	events := []Event{{Kind: EventStatusChanged, Node: addr, Status: status}}
	if status == Completed {
		events = append(events, g.pruneSpeculative(idx)...)
	}
	observers := g.observers
	g.mutex.Unlock()

	notify(observers, events)
}

// pruneSpeculative drops the speculated children of a node whose real
// execution has finished, since its real callees are recorded by then.
// A child still reachable from another node is only unlinked.
// Callers must hold the write lock.
func (g *Graph) pruneSpeculative(idx int) []Event {
	n := g.nodes[idx]
	var (
		kept   []int
		events []Event
	)
	for _, c := range n.children {
		child := g.nodes[c]
		if child.status != Speculated {
			kept = append(kept, c)
			continue
		}
		if g.referencedElsewhere(c, idx) {
			continue
		}
		events = append(events, Event{Kind: EventNodePruned, Node: child.addr, Parent: n.addr, Status: Speculated})
		events = append(events, g.pruneSpeculative(c)...)
		child.present = false
		child.children = nil
	}
	n.children = kept
	return events
}

// referencedElsewhere reports whether any present node other than parent
// lists c as a child.
func (g *Graph) referencedElsewhere(c, parent int) bool {
	for i, n := range g.nodes {
		if i == parent || !n.present {
			continue
		}
		if contains(n.children, c) {
			return true
		}
	}
	return false
}

// Status returns the status of addr and whether the node is present.
func (g *Graph) Status(addr nodeid.Address) (Status, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	idx, ok := g.index[addr]
	if !ok || !g.nodes[idx].present {
		return 0, false
	}
	return g.nodes[idx].status, true
}

// Children returns the children of addr in insertion order.
func (g *Graph) Children(addr nodeid.Address) []nodeid.Address {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	idx, ok := g.index[addr]
	if !ok || !g.nodes[idx].present {
		return nil
	}
	out := make([]nodeid.Address, 0, len(g.nodes[idx].children))
	for _, c := range g.nodes[idx].children {
		out = append(out, g.nodes[c].addr)
	}
	return out
}

// Nodes returns all present nodes in the order they were first seen.
func (g *Graph) Nodes() []NodeInfo {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]NodeInfo, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.present {
			out = append(out, NodeInfo{Address: n.addr, Status: n.status})
		}
	}
	return out
}

// Edges returns all edges, grouped by parent in node order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var out []Edge
	for _, n := range g.nodes {
		if !n.present {
			continue
		}
		for _, c := range n.children {
			out = append(out, Edge{From: n.addr, To: g.nodes[c].addr})
		}
	}
	return out
}

// Len returns the number of present nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	count := 0
	for _, n := range g.nodes {
		if n.present {
			count++
		}
	}
	return count
}

func notify(observers []Observer, events []Event) {
	for _, e := range events {
		for _, o := range observers {
			o.OnEvent(e)
		}
	}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

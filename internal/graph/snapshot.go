package graph

import (
	"fmt"
	"io"

	"github.com/vk/taskgrid/internal/nodeid"
	"gopkg.in/yaml.v3"
)

// Snapshot is the serializable form of a Graph.
type Snapshot struct {
	Root  string         `yaml:"root"`
	Nodes []SnapshotNode `yaml:"nodes"`
}

// SnapshotNode is one node of a Snapshot. IDs use the nodeid canonical form.
type SnapshotNode struct {
	ID       string   `yaml:"id"`
	Status   string   `yaml:"status"`
	Children []string `yaml:"children,omitempty"`
}

// Snapshot captures the present nodes and edges of the graph.
func (g *Graph) Snapshot() Snapshot {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	snap := Snapshot{Root: g.nodes[g.root].addr.String()}
	for _, n := range g.nodes {
		if !n.present {
			continue
		}
		sn := SnapshotNode{ID: n.addr.String(), Status: n.status.String()}
		for _, c := range n.children {
			sn.Children = append(sn.Children, g.nodes[c].addr.String())
		}
		snap.Nodes = append(snap.Nodes, sn)
	}
	return snap
}

// FromSnapshot rebuilds a Graph. Children must refer to nodes listed in the
// snapshot.
func FromSnapshot(snap Snapshot) (*Graph, error) {
	root, err := nodeid.Parse(snap.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot root: %w", err)
	}
	g := New(root)

	known := make(map[string]nodeid.Address, len(snap.Nodes))
	for _, sn := range snap.Nodes {
		addr, err := nodeid.Parse(sn.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot node: %w", err)
		}
		status, err := ParseStatus(sn.Status)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", sn.ID, err)
		}
		idx := g.ensure(addr)
		g.nodes[idx].status = status
		known[sn.ID] = addr
	}

	for _, sn := range snap.Nodes {
		parent := g.index[known[sn.ID]]
		for _, childID := range sn.Children {
			child, ok := known[childID]
			if !ok {
				return nil, fmt.Errorf("node %s references unknown child %s", sn.ID, childID)
			}
			c := g.index[child]
			if !contains(g.nodes[parent].children, c) {
				g.nodes[parent].children = append(g.nodes[parent].children, c)
			}
		}
	}
	return g, nil
}

// WriteSnapshot encodes snap as YAML.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode graph snapshot: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot decodes a YAML snapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode graph snapshot: %w", err)
	}
	return snap, nil
}

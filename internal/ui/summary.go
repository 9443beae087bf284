package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/nodeid"
)

// Summary prints the graph as an indented tree rooted at the entry task,
// followed by per-status totals. Nodes reachable twice are printed once.
func Summary(w io.Writer, g *graph.Graph, runErr error) {
	statuses := make(map[nodeid.Address]graph.Status)
	counts := make(map[graph.Status]int)
	for _, n := range g.Nodes() {
		statuses[n.Address] = n.Status
		counts[n.Status]++
	}

	seen := make(map[nodeid.Address]bool)
	var walk func(addr nodeid.Address, depth int)
	walk = func(addr nodeid.Address, depth int) {
		indent := strings.Repeat("  ", depth)
		if seen[addr] {
			fmt.Fprintf(w, "%s%s %s\n", indent, Dim("↺"), Dim(addr.Label()))
			return
		}
		seen[addr] = true
		fmt.Fprintf(w, "%s%s %s %s\n", indent, StatusIcon(statuses[addr]), addr.Label(), Dim(statuses[addr].String()))
		for _, child := range g.Children(addr) {
			walk(child, depth+1)
		}
	}
	walk(g.Root(), 0)

	var parts []string
	for _, s := range []graph.Status{graph.Completed, graph.InProgress, graph.Error, graph.Speculated, graph.BranchPossible, graph.BranchNotTaken, graph.StaticKnown} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", Bold("Nodes:"), strings.Join(parts, ", "))

	if runErr != nil {
		fmt.Fprintf(w, "%s %v\n", BoldRed("FAILED"), runErr)
		return
	}
	fmt.Fprintln(w, BoldGreen("OK"))
}

package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var nodeStyles = map[Status]string{
	InProgress:     `style="rounded,filled" fillcolor="yellow"`,
	Completed:      `style="rounded,filled" fillcolor="green"`,
	Error:          `style="rounded,filled" fillcolor="red"`,
	Speculated:     `style="rounded,dotted"`,
	BranchPossible: `style="rounded,dotted"`,
	BranchNotTaken: `color="gray"`,
}

// WriteDOT renders the graph as a Graphviz digraph. Rendering has no effect
// on node statuses.
func (g *Graph) WriteDOT(w io.Writer) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph {")
	fmt.Fprintln(bw, "\trankdir=LR;")
	fmt.Fprintln(bw, "\tnode [shape=\"rectangle\" style=\"rounded\"];")

	for i, n := range g.nodes {
		if !n.present {
			continue
		}
		attrs := "label=" + strconv.Quote(n.addr.Label())
		if style, ok := nodeStyles[n.status]; ok {
			attrs += " " + style
		}
		fmt.Fprintf(bw, "\t%s [%s];\n", dotID(i), attrs)
	}

	for i, n := range g.nodes {
		if !n.present {
			continue
		}
		for _, c := range n.children {
			if g.nodes[c].status.tentative() {
				fmt.Fprintf(bw, "\t%s -> %s [style=\"dashed\"];\n", dotID(i), dotID(c))
				continue
			}
			fmt.Fprintf(bw, "\t%s -> %s;\n", dotID(i), dotID(c))
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// DOT returns the Graphviz rendering as a string.
func (g *Graph) DOT() string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = g.WriteDOT(&sb)
	return sb.String()
}

func dotID(idx int) string {
	return "n" + strconv.Itoa(idx)
}

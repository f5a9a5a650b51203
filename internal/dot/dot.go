// Package dot renders a graph.Graph as Graphviz DOT or as a Mermaid
// flowchart. When a schedule is supplied, operations are grouped by the
// time step they start at.
package dot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/schedule"
)

var shapes = map[node.Kind]string{
	node.Input:  "invtriangle",
	node.Output: "triangle",
	node.And:    "box",
	node.Or:     "ellipse",
	node.Not:    "diamond",
	node.Wire:   "point",
}

// WriteDOT writes g as a DOT digraph. Edges follow successor order. If s
// is not nil, operations sharing a step are placed on the same rank.
func WriteDOT(w io.Writer, g *graph.Graph, s *schedule.Schedule) error {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("    rankdir=LR;\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "    %s [shape=%s, label=%s];\n",
			strconv.Quote(n.Name), shapes[n.Kind], strconv.Quote(label(n, s)))
	}
	if s != nil {
		for _, step := range s.Steps {
			ids := stepIDs(step)
			if len(ids) == 0 {
				continue
			}
			fmt.Fprintf(&b, "    { rank=same;")
			for _, id := range ids {
				fmt.Fprintf(&b, " %s;", strconv.Quote(g.Name(id)))
			}
			b.WriteString(" }\n")
		}
	}
	for _, n := range g.Nodes() {
		for _, succ := range n.Succs {
			fmt.Fprintf(&b, "    %s -> %s;\n", strconv.Quote(n.Name), strconv.Quote(g.Name(succ)))
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMermaid writes g as a left-to-right Mermaid flowchart. If s is not
// nil, operations are wrapped in one subgraph per step.
func WriteMermaid(w io.Writer, g *graph.Graph, s *schedule.Schedule) error {
	var b strings.Builder
	b.WriteString("graph LR\n")

	inStep := make([]bool, g.Len())
	if s != nil {
		for _, step := range s.Steps {
			ids := stepIDs(step)
			if len(ids) == 0 {
				continue
			}
			fmt.Fprintf(&b, "    subgraph step%d [Step %d]\n", step.Index, step.Index)
			for _, id := range ids {
				fmt.Fprintf(&b, "        %s\n", mermaidNode(g.Node(id), s))
				inStep[id] = true
			}
			b.WriteString("    end\n")
		}
	}
	for _, n := range g.Nodes() {
		if !inStep[n.ID] {
			fmt.Fprintf(&b, "    %s\n", mermaidNode(&n, s))
		}
	}
	for _, n := range g.Nodes() {
		for _, succ := range n.Succs {
			fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(n.ID), mermaidID(succ))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func label(n node.Node, s *schedule.Schedule) string {
	if !n.Kind.IsOperation() {
		return n.Name
	}
	if s != nil {
		return fmt.Sprintf("%s\n%s @%d", n.Name, n.Kind, s.Time(n.ID))
	}
	return fmt.Sprintf("%s\n%s", n.Name, n.Kind)
}

func stepIDs(step schedule.Step) []nodeid.ID {
	var ids []nodeid.ID
	for _, c := range node.Classes {
		ids = append(ids, step.Ops[c]...)
	}
	return ids
}

// mermaidID avoids signal names, which may contain characters Mermaid
// treats as syntax.
func mermaidID(id nodeid.ID) string {
	return "n" + strconv.Itoa(int(id))
}

func mermaidNode(n *node.Node, s *schedule.Schedule) string {
	text := strings.ReplaceAll(label(*n, s), "\n", "<br/>")
	text = strings.ReplaceAll(text, `"`, "#quot;")
	left, right := "[", "]"
	switch n.Kind {
	case node.Input, node.Output:
		left, right = "([", "])"
	case node.Or:
		left, right = "(", ")"
	case node.Not:
		left, right = "{", "}"
	}
	return fmt.Sprintf(`%s%s"%s"%s`, mermaidID(n.ID), left, text, right)
}

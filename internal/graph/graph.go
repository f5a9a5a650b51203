package graph

import (
	"context"
	"fmt"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/topologystore"
)

// Graph is a frozen netlist dependency graph. It is safe for concurrent
// reads. Slices returned by accessors share the graph's storage and must not
// be modified.
type Graph struct {
	nodes   []node.Node
	byName  map[string]nodeid.ID
	inputs  []nodeid.ID
	outputs []nodeid.ID
	ops     []nodeid.ID
}

// Freeze copies the contents of a topology store into a new immutable Graph
// and validates the structural guarantees documented on the package.
func Freeze(ctx context.Context, store topologystore.Store) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	nodes := store.AllNodes(ctx)
	g := &Graph{
		nodes:   nodes,
		byName:  make(map[string]nodeid.ID, len(nodes)),
		inputs:  store.Inputs(ctx),
		outputs: store.Outputs(ctx),
	}

	for i := range g.nodes {
		n := &g.nodes[i]
		if n.ID != nodeid.ID(i) {
			return nil, fmt.Errorf("node %q has ID %s at arena slot %d", n.Name, n.ID, i)
		}
		if _, dup := g.byName[n.Name]; dup {
			return nil, fmt.Errorf("duplicate node name %q", n.Name)
		}
		g.byName[n.Name] = n.ID

		switch n.Kind {
		case node.KindUnknown:
			return nil, fmt.Errorf("node %q has no resolved kind", n.Name)
		case node.Input:
			if len(n.Preds) > 0 {
				return nil, fmt.Errorf("input node %q has %d predecessors", n.Name, len(n.Preds))
			}
		case node.And, node.Or, node.Not:
			g.ops = append(g.ops, n.ID)
		case node.Output, node.Wire:
		default:
			return nil, fmt.Errorf("node %q has invalid kind %s", n.Name, n.Kind)
		}
	}

	if err := g.checkMutualEdges(); err != nil {
		return nil, err
	}

	logger.Debug("Graph frozen.",
		"nodes", len(g.nodes),
		"operations", len(g.ops),
		"inputs", len(g.inputs),
		"outputs", len(g.outputs),
	)
	return g, nil
}

func (g *Graph) checkMutualEdges() error {
	for i := range g.nodes {
		n := &g.nodes[i]
		for _, p := range n.Preds {
			if !g.valid(p) {
				return fmt.Errorf("node %q references unknown predecessor %s", n.Name, p)
			}
			if !contains(g.nodes[p].Succs, n.ID) {
				return fmt.Errorf("edge %q -> %q is not mutual", g.nodes[p].Name, n.Name)
			}
		}
		for _, s := range n.Succs {
			if !g.valid(s) {
				return fmt.Errorf("node %q references unknown successor %s", n.Name, s)
			}
			if !contains(g.nodes[s].Preds, n.ID) {
				return fmt.Errorf("edge %q -> %q is not mutual", n.Name, g.nodes[s].Name)
			}
		}
	}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns every node in ID order.
func (g *Graph) Nodes() []node.Node { return g.nodes }

// Node returns the node with the given ID. It panics if id is out of range.
func (g *Graph) Node(id nodeid.ID) *node.Node { return &g.nodes[id] }

// ByName returns the ID of the named node.
func (g *Graph) ByName(name string) (nodeid.ID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the name of a node.
func (g *Graph) Name(id nodeid.ID) string { return g.nodes[id].Name }

// Kind returns the kind of a node.
func (g *Graph) Kind(id nodeid.ID) node.Kind { return g.nodes[id].Kind }

// Preds returns the predecessors of a node.
func (g *Graph) Preds(id nodeid.ID) []nodeid.ID { return g.nodes[id].Preds }

// Succs returns the successors of a node.
func (g *Graph) Succs(id nodeid.ID) []nodeid.ID { return g.nodes[id].Succs }

// Inputs returns the designated primary inputs in declaration order.
func (g *Graph) Inputs() []nodeid.ID { return g.inputs }

// Outputs returns the designated primary outputs in declaration order.
func (g *Graph) Outputs() []nodeid.ID { return g.outputs }

// Operations returns the schedulable nodes (AND, OR, NOT) in ID order.
func (g *Graph) Operations() []nodeid.ID { return g.ops }

// ClassCounts returns the number of operations per resource class.
func (g *Graph) ClassCounts() [node.NumClasses]int {
	var counts [node.NumClasses]int
	for _, id := range g.ops {
		c, _ := g.nodes[id].Kind.Class()
		counts[c]++
	}
	return counts
}

func (g *Graph) valid(id nodeid.ID) bool {
	return id.Valid() && int(id) < len(g.nodes)
}

func contains(ids []nodeid.ID, want nodeid.ID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

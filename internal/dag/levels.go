package dag

import (
	"fmt"
	"slices"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/nodeid"
)

// Levels layers the graph with Kahn's algorithm: level 0 holds every node
// without predecessors and each later level holds the nodes whose
// predecessors all sit in earlier levels. Nodes within a level are in
// ascending ID order.
//
// An error wrapping ErrCycle is returned if some nodes can never be placed.
func Levels(g *graph.Graph) ([][]nodeid.ID, error) {
	indeg := make([]int, g.Len())
	var current []nodeid.ID
	for i := 0; i < g.Len(); i++ {
		id := nodeid.ID(i)
		indeg[i] = len(g.Preds(id))
		if indeg[i] == 0 {
			current = append(current, id)
		}
	}

	var levels [][]nodeid.ID
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var next []nodeid.ID
		for _, id := range current {
			for _, s := range g.Succs(id) {
				indeg[s]--
				if indeg[s] == 0 {
					next = append(next, s)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if placed != g.Len() {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable by layering", ErrCycle, g.Len()-placed, g.Len())
	}
	return levels, nil
}

// CriticalPath returns the earliest step of every operation when resources
// are unlimited, given the operation predecessor lists from OpPredecessors,
// and the largest such step. No schedule under any limits can be shorter
// than the returned length. Entries for non-operations are zero.
func CriticalPath(g *graph.Graph, opPreds [][]nodeid.ID) ([]int, int, error) {
	levels, err := Levels(g)
	if err != nil {
		return nil, 0, err
	}

	asap := make([]int, g.Len())
	length := 0
	for _, level := range levels {
		for _, id := range level {
			if !g.Kind(id).IsOperation() {
				continue
			}
			step := 1
			for _, p := range opPreds[id] {
				if asap[p]+1 > step {
					step = asap[p] + 1
				}
			}
			asap[id] = step
			if step > length {
				length = step
			}
		}
	}
	return asap, length, nil
}

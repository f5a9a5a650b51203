package dag

import (
	"slices"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
)

// OpPredecessors returns, for every operation, the operations it must wait
// for: its nearest operation ancestors. Input predecessors contribute
// nothing, since inputs are available before the first step. Wire and
// output-sink nodes are transparent and dependencies flow through them to
// the operations behind them.
//
// The result is indexed by nodeid.ID. Entries for non-operations are nil;
// each operation's list is sorted by ascending ID and free of duplicates.
func OpPredecessors(g *graph.Graph) [][]nodeid.ID {
	out := make([][]nodeid.ID, g.Len())

	// stamp[n] == op+1 marks n as already seen while expanding op.
	stamp := make([]nodeid.ID, g.Len())
	var stack []nodeid.ID

	for _, op := range g.Operations() {
		tag := op + 1
		var found []nodeid.ID

		stack = append(stack[:0], g.Preds(op)...)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if stamp[p] == tag {
				continue
			}
			stamp[p] = tag

			switch k := g.Kind(p); {
			case k.IsOperation():
				found = append(found, p)
			case k == node.Wire || k == node.Output:
				stack = append(stack, g.Preds(p)...)
			}
		}

		slices.Sort(found)
		out[op] = found
	}
	return out
}

package dag

import (
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/nodeid"
)

// Priorities returns, for every node, the number of nodes on the longest
// path from that node to a sink following successor edges. A sink has
// priority 1. The slice is indexed by nodeid.ID.
//
// An error wrapping ErrCycle is returned if the graph is cyclic.
func Priorities(g *graph.Graph) ([]int, error) {
	prio := make([]int, g.Len())

	err := postOrder(g, func(id nodeid.ID) {
		best := 0
		for _, s := range g.Succs(id) {
			if prio[s] > best {
				best = prio[s]
			}
		}
		prio[id] = best + 1
	})
	if err != nil {
		return nil, err
	}
	return prio, nil
}

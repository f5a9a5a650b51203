package dag

import (
	"errors"
	"fmt"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/nodeid"
)

// ErrCycle is returned when a traversal finds a node that is reachable from
// itself.
var ErrCycle = errors.New("cycle detected")

// mark is the three-state visitation mark used by depth-first traversals.
type mark uint8

const (
	unvisited mark = iota
	inProgress
	done
)

// frame is one entry of an explicit depth-first stack: a node and the index
// of the next successor to explore.
type frame struct {
	id   nodeid.ID
	next int
}

// cycleError names the node at which the back edge was found.
func cycleError(g *graph.Graph, id nodeid.ID) error {
	return fmt.Errorf("%w involving node %q", ErrCycle, g.Name(id))
}

// DetectCycles returns an error wrapping ErrCycle if the graph contains a
// directed cycle, and nil otherwise.
func DetectCycles(g *graph.Graph) error {
	return postOrder(g, nil)
}

// postOrder walks every node along successor edges and calls visit for each
// node after all of its successors have been visited. Roots are taken in ID
// order. A successor that is still in progress is a back edge, reported as a
// cycle.
func postOrder(g *graph.Graph, visit func(nodeid.ID)) error {
	marks := make([]mark, g.Len())
	var stack []frame

	for root := 0; root < g.Len(); root++ {
		if marks[root] != unvisited {
			continue
		}
		marks[root] = inProgress
		stack = append(stack[:0], frame{id: nodeid.ID(root)})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := g.Succs(top.id)

			if top.next < len(succs) {
				s := succs[top.next]
				top.next++
				switch marks[s] {
				case unvisited:
					marks[s] = inProgress
					stack = append(stack, frame{id: s})
				case inProgress:
					return cycleError(g, s)
				case done:
				}
				continue
			}

			marks[top.id] = done
			if visit != nil {
				visit(top.id)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

package schedule

import (
	"errors"
	"fmt"

	"github.com/vk/mlrcs/internal/dag"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
)

// ErrInvalid is wrapped by every error returned from Verify.
var ErrInvalid = errors.New("invalid schedule")

// Verify checks a schedule against the graph it was computed for and the
// limits it was computed under:
//
//   - every operation starts at exactly one step in [1, Latency]
//   - every operation starts strictly after each operation it depends on
//   - no step uses more units of a class than the class limit allows
//   - Latency is the last used step, or 1 when nothing is scheduled
//
// All violations are reported together.
func Verify(g *graph.Graph, s *Schedule, limits Limits) error {
	if len(s.times) != g.Len() {
		return fmt.Errorf("%w: schedule covers %d nodes, graph has %d", ErrInvalid, len(s.times), g.Len())
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(s.Steps) != s.Latency {
		fail("latency %d but %d steps", s.Latency, len(s.Steps))
	}

	seen := make([]int, g.Len())
	last := 0
	for i, step := range s.Steps {
		if step.Index != i+1 {
			fail("step at position %d has index %d", i+1, step.Index)
		}
		for _, c := range node.Classes {
			ops := step.Ops[c]
			if len(ops) > limits.Of(c) {
				fail("step %d uses %d %s units, limit is %d", step.Index, len(ops), c, limits.Of(c))
			}
			for _, id := range ops {
				if k, ok := g.Kind(id).Class(); !ok || k != c {
					fail("node %q of kind %s listed as %s at step %d", g.Name(id), g.Kind(id), c, step.Index)
					continue
				}
				if s.times[id] != step.Index {
					fail("node %q listed at step %d but starts at %d", g.Name(id), step.Index, s.times[id])
				}
				seen[id]++
				last = max(last, step.Index)
			}
		}
	}

	opPreds := dag.OpPredecessors(g)
	for _, op := range g.Operations() {
		switch {
		case seen[op] == 0:
			fail("operation %q is not scheduled", g.Name(op))
			continue
		case seen[op] > 1:
			fail("operation %q is scheduled %d times", g.Name(op), seen[op])
		}
		for _, p := range opPreds[op] {
			if s.times[p] >= s.times[op] {
				fail("operation %q at step %d does not follow its dependency %q at step %d",
					g.Name(op), s.times[op], g.Name(p), s.times[p])
			}
		}
	}

	if want := max(1, last); s.Latency != want {
		fail("latency is %d, last used step is %d", s.Latency, want)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

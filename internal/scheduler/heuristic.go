package scheduler

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/dag"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/schedule"
)

// Heuristic is the critical-path list scheduler. It is stateless; one value
// can serve any number of concurrent calls.
type Heuristic struct{}

// NewHeuristic returns the list scheduler.
func NewHeuristic() *Heuristic { return &Heuristic{} }

var _ Scheduler = (*Heuristic)(nil)

// Name implements Scheduler.
func (h *Heuristic) Name() schedule.Strategy { return schedule.Heuristic }

// Schedule implements Scheduler.
func (h *Heuristic) Schedule(ctx context.Context, g *graph.Graph, limits Limits) (*schedule.Schedule, error) {
	logger := ctxlog.FromContext(ctx)

	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}
	prio, err := dag.Priorities(g)
	if err != nil {
		return nil, fmt.Errorf("computing priorities: %w", err)
	}
	opPreds := dag.OpPredecessors(g)

	times := make([]int, g.Len())
	pending := slices.Clone(g.Operations())
	byPriority := func(a, b nodeid.ID) int {
		if c := cmp.Compare(prio[b], prio[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}

	for t := 1; len(pending) > 0; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ready [node.NumClasses][]nodeid.ID
		for _, op := range pending {
			if isReady(op, opPreds, times) {
				c, _ := g.Kind(op).Class()
				ready[c] = append(ready[c], op)
			}
		}

		started := 0
		var counts [node.NumClasses]int
		for _, c := range node.Classes {
			slices.SortFunc(ready[c], byPriority)
			n := min(limits.Of(c), len(ready[c]))
			for _, op := range ready[c][:n] {
				times[op] = t
			}
			counts[c] = n
			started += n
		}

		if started == 0 {
			return nil, deadlock(g, ready, len(pending))
		}

		pending = slices.DeleteFunc(pending, func(op nodeid.ID) bool { return times[op] != 0 })
		logger.Debug("Scheduled step.",
			"step", t,
			"and", counts[node.ClassAnd],
			"or", counts[node.ClassOr],
			"not", counts[node.ClassNot],
			"remaining", len(pending),
		)
	}

	s, err := schedule.FromTimes(g, schedule.Heuristic, times)
	if err != nil {
		return nil, fmt.Errorf("assembling heuristic schedule: %w", err)
	}
	logger.Debug("Heuristic schedule complete.", "latency", s.Latency, "operations", len(g.Operations()))
	return s, nil
}

func isReady(op nodeid.ID, opPreds [][]nodeid.ID, times []int) bool {
	for _, p := range opPreds[op] {
		if times[p] == 0 {
			return false
		}
	}
	return true
}

func deadlock(g *graph.Graph, ready [node.NumClasses][]nodeid.ID, remaining int) error {
	var blocked []string
	for _, c := range node.Classes {
		if len(ready[c]) > 0 {
			blocked = append(blocked, fmt.Sprintf("%s (%d ready, e.g. %q)", c, len(ready[c]), g.Name(ready[c][0])))
		}
	}
	return fmt.Errorf("%w: %d operations cannot start, no units for %s",
		ErrResourceDeadlock, remaining, strings.Join(blocked, ", "))
}

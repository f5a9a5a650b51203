package scheduler

import (
	"context"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/schedule"
)

// Limits is the number of functional units per class and time step.
type Limits = schedule.Limits

// Scheduler computes a schedule for a graph under resource limits.
//
// Implementations must not modify the graph and must be safe to call
// concurrently on the same graph.
type Scheduler interface {
	// Name identifies the strategy in logs and reports.
	Name() schedule.Strategy

	// Schedule returns a complete, verified schedule or an error wrapping
	// one of the sentinels of this package.
	Schedule(ctx context.Context, g *graph.Graph, limits Limits) (*schedule.Schedule, error)
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/schedule"
)

// AssertValidSchedule fails the test unless s is a complete, dependency
// respecting schedule of g that stays within limits.
func AssertValidSchedule(t testing.TB, g *graph.Graph, s *schedule.Schedule, limits schedule.Limits) {
	t.Helper()
	require.NotNil(t, s)
	require.NoError(t, schedule.Verify(g, s, limits))
}

// StepNames returns, per step, the names of all operations started at that
// step in AND, OR, NOT order. It makes expected schedules easy to write.
func StepNames(g *graph.Graph, s *schedule.Schedule) [][]string {
	out := make([][]string, len(s.Steps))
	for i, step := range s.Steps {
		out[i] = []string{}
		for _, ids := range step.Ops {
			for _, id := range ids {
				out[i] = append(out[i], g.Name(id))
			}
		}
	}
	return out
}

// ID returns the ID of a named node, failing the test if it does not exist.
func ID(t testing.TB, g *graph.Graph, name string) nodeid.ID {
	t.Helper()
	id, ok := g.ByName(name)
	require.True(t, ok, "node %q not found", name)
	return id
}

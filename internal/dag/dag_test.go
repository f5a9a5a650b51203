package dag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/dag"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/testutil"
)

func cyclic(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.NewBuilder().
		Input("in").
		Gate("a", node.And, "in", "c").
		Gate("b", node.Or, "a", "in").
		Gate("c", node.Not, "b").
		Build(context.Background())
	require.NoError(t, err)
	return g
}

func TestDetectCycles(t *testing.T) {
	t.Run("acyclic graphs pass", func(t *testing.T) {
		assert.NoError(t, dag.DetectCycles(testutil.Chain(t)))
		assert.NoError(t, dag.DetectCycles(testutil.Mixed(t)))
		assert.NoError(t, dag.DetectCycles(testutil.InputAlias(t)))
	})

	t.Run("cycle is reported with a node name", func(t *testing.T) {
		err := dag.DetectCycles(cyclic(t))
		require.ErrorIs(t, err, dag.ErrCycle)
		assert.Contains(t, err.Error(), "involving node")
	})
}

func TestPriorities(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		g := testutil.Chain(t)
		prio, err := dag.Priorities(g)
		require.NoError(t, err)

		// x -> a -> b -> c is the longest path from x.
		assert.Equal(t, 4, prio[testutil.ID(t, g, "x")])
		assert.Equal(t, 3, prio[testutil.ID(t, g, "a")])
		assert.Equal(t, 2, prio[testutil.ID(t, g, "b")])
		assert.Equal(t, 1, prio[testutil.ID(t, g, "c")])
	})

	t.Run("takes the longest branch", func(t *testing.T) {
		g := testutil.Mixed(t)
		prio, err := dag.Priorities(g)
		require.NoError(t, err)

		assert.Equal(t, 4, prio[testutil.ID(t, g, "a1")]) // a1 o1 n1 f
		assert.Equal(t, 4, prio[testutil.ID(t, g, "a2")]) // a2 o1 n1 f
		assert.Equal(t, 3, prio[testutil.ID(t, g, "a3")]) // a3 o2 f
		assert.Equal(t, 1, prio[testutil.ID(t, g, "n2")])
	})

	t.Run("deep chains do not recurse", func(t *testing.T) {
		const depth = 200_000
		g := testutil.NotChain(t, depth)
		prio, err := dag.Priorities(g)
		require.NoError(t, err)
		assert.Equal(t, depth+1, prio[testutil.ID(t, g, "in")])
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := dag.Priorities(cyclic(t))
		require.ErrorIs(t, err, dag.ErrCycle)
	})
}

func TestOpPredecessors(t *testing.T) {
	t.Run("inputs are dropped", func(t *testing.T) {
		g := testutil.Chain(t)
		preds := dag.OpPredecessors(g)

		assert.Empty(t, preds[testutil.ID(t, g, "a")])
		assert.Equal(t, []nodeid.ID{testutil.ID(t, g, "a")}, preds[testutil.ID(t, g, "b")])
		assert.Equal(t, []nodeid.ID{testutil.ID(t, g, "b")}, preds[testutil.ID(t, g, "c")])
		assert.Nil(t, preds[testutil.ID(t, g, "x")])
	})

	t.Run("wires and output sinks are transparent", func(t *testing.T) {
		g, err := graph.NewBuilder().
			Input("x").Input("y").
			Gate("a", node.And, "x", "y").
			Gate("b", node.Or, "x", "y").
			Edge("a", "w1").Edge("w1", "w2").
			Edge("b", "w2").
			Output("o").Edge("a", "o").
			Gate("n", node.Not, "w2").
			Gate("m", node.Not, "o").
			Build(context.Background())
		require.NoError(t, err)
		require.Equal(t, node.Wire, g.Kind(testutil.ID(t, g, "w2")))

		preds := dag.OpPredecessors(g)
		a := testutil.ID(t, g, "a")
		b := testutil.ID(t, g, "b")
		assert.Equal(t, []nodeid.ID{a, b}, preds[testutil.ID(t, g, "n")])
		assert.Equal(t, []nodeid.ID{a}, preds[testutil.ID(t, g, "m")])
	})

	t.Run("duplicate paths collapse", func(t *testing.T) {
		g := testutil.Mixed(t)
		preds := dag.OpPredecessors(g)
		assert.Equal(t,
			[]nodeid.ID{testutil.ID(t, g, "o2"), testutil.ID(t, g, "n1")},
			preds[testutil.ID(t, g, "f")])
	})
}

func TestLevelsAndCriticalPath(t *testing.T) {
	g := testutil.Mixed(t)

	levels, err := dag.Levels(g)
	require.NoError(t, err)
	require.Len(t, levels, 5)
	assert.Len(t, levels[0], 3)

	asap, length, err := dag.CriticalPath(g, dag.OpPredecessors(g))
	require.NoError(t, err)
	assert.Equal(t, 4, length)
	assert.Equal(t, 1, asap[testutil.ID(t, g, "a3")])
	assert.Equal(t, 2, asap[testutil.ID(t, g, "n2")])
	assert.Equal(t, 4, asap[testutil.ID(t, g, "f")])

	_, err = dag.Levels(cyclic(t))
	assert.ErrorIs(t, err, dag.ErrCycle)
}

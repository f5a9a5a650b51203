package inmemorytopology

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
)

func TestAddAndGetNode(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, created, err := s.AddNode(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.AddNode(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	n, ok := s.GetNode(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "n1", n.Name)
	assert.Equal(t, node.KindUnknown, n.Kind)

	require.NoError(t, s.SetKind(ctx, id, node.And))
	n, _ = s.GetNode(ctx, id)
	assert.Equal(t, node.And, n.Kind)

	_, ok = s.GetNode(ctx, nodeid.ID(9))
	assert.False(t, ok)
}

func TestDependencies(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _, _ := s.AddNode(ctx, "a")
	b, _, _ := s.AddNode(ctx, "b")

	// b depends on a
	require.NoError(t, s.AddDependency(ctx, a, b))
	// Duplicate operands collapse into one edge.
	require.NoError(t, s.AddDependency(ctx, a, b))

	deps, err := s.DependenciesOf(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []nodeid.ID{a}, deps)

	dependents, err := s.DependentsOf(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []nodeid.ID{b}, dependents)

	err = s.AddDependency(ctx, a, a)
	assert.ErrorContains(t, err, "self-referential edge")

	err = s.AddDependency(ctx, a, nodeid.ID(5))
	assert.ErrorContains(t, err, "dependency target")

	_, err = s.DependenciesOf(ctx, nodeid.None)
	assert.Error(t, err)
}

func TestInputsOutputsKeepOrderAndDeduplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	x, _, _ := s.AddNode(ctx, "x")
	y, _, _ := s.AddNode(ctx, "y")

	require.NoError(t, s.MarkInput(ctx, y))
	require.NoError(t, s.MarkInput(ctx, x))
	require.NoError(t, s.MarkInput(ctx, y))
	require.NoError(t, s.MarkOutput(ctx, x))

	assert.Equal(t, []nodeid.ID{y, x}, s.Inputs(ctx))
	assert.Equal(t, []nodeid.ID{x}, s.Outputs(ctx))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _, _ := s.AddNode(ctx, "a")
	b, _, _ := s.AddNode(ctx, "b")
	require.NoError(t, s.AddDependency(ctx, a, b))

	nodes := s.AllNodes(ctx)
	nodes[1].Preds[0] = nodeid.ID(99)

	fresh, _ := s.GetNode(ctx, b)
	assert.Equal(t, []nodeid.ID{a}, fresh.Preds)
}

func TestConcurrentAddNode(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{"a", "b", "c", "d"} {
				_, _, err := s.AddNode(ctx, name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, s.AllNodes(ctx), 4)
}

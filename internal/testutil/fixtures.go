// Package testutil holds graph fixtures and assertions shared by the test
// suites of the scheduling packages.
package testutil

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
)

func build(t testing.TB, b *graph.Builder) *graph.Graph {
	t.Helper()
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	return g
}

// Chain is x,y -> AND a -> OR b -> NOT c, with c as the primary output.
func Chain(t testing.TB) *graph.Graph {
	t.Helper()
	return build(t, graph.NewBuilder().
		Input("x").Input("y").
		Gate("a", node.And, "x", "y").
		Gate("b", node.Or, "a", "x").
		Gate("c", node.Not, "b").
		Output("c"))
}

// IndependentAnds has two AND gates a and b fed only by inputs.
func IndependentAnds(t testing.TB) *graph.Graph {
	t.Helper()
	return build(t, graph.NewBuilder().
		Input("x").Input("y").Input("z").
		Gate("a", node.And, "x", "y").
		Gate("b", node.And, "y", "z").
		Output("a").Output("b"))
}

// InputAlias has no operations: its only output is its only input.
func InputAlias(t testing.TB) *graph.Graph {
	t.Helper()
	return build(t, graph.NewBuilder().Input("a").Output("a"))
}

// Mixed is a small network where every class competes for units:
//
//	a1 = AND(x,y)  a2 = AND(y,z)  a3 = AND(x,z)
//	o1 = OR(a1,a2) o2 = OR(a2,a3)
//	n1 = NOT(o1)   n2 = NOT(a3)
//	f  = AND(n1,o2)
func Mixed(t testing.TB) *graph.Graph {
	t.Helper()
	return build(t, graph.NewBuilder().
		Input("x").Input("y").Input("z").
		Gate("a1", node.And, "x", "y").
		Gate("a2", node.And, "y", "z").
		Gate("a3", node.And, "x", "z").
		Gate("o1", node.Or, "a1", "a2").
		Gate("o2", node.Or, "a2", "a3").
		Gate("n1", node.Not, "o1").
		Gate("n2", node.Not, "a3").
		Gate("f", node.And, "n1", "o2").
		Output("f").Output("n2"))
}

// NotChain is an inverter chain of the given length fed by one input.
func NotChain(t testing.TB, length int) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder().Input("in")
	prev := "in"
	for i := range length {
		name := fmt.Sprintf("n%d", i)
		b.Gate(name, node.Not, prev)
		prev = name
	}
	return build(t, b.Output(prev))
}

// Random returns a reproducible random acyclic network with the given
// number of inputs and operations. Operands are always drawn from earlier
// nodes, so the result is acyclic by construction.
func Random(t testing.TB, seed uint64, inputs, ops int) *graph.Graph {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	b := graph.NewBuilder()
	pool := make([]string, 0, inputs+ops)
	for i := range inputs {
		name := fmt.Sprintf("i%d", i)
		b.Input(name)
		pool = append(pool, name)
	}

	kinds := [...]node.Kind{node.And, node.Or, node.Not}
	for i := range ops {
		name := fmt.Sprintf("g%d", i)
		kind := kinds[rng.IntN(len(kinds))]
		if kind == node.Not {
			b.Gate(name, kind, pool[rng.IntN(len(pool))])
		} else {
			l := pool[rng.IntN(len(pool))]
			r := pool[rng.IntN(len(pool))]
			b.Gate(name, kind, l, r)
		}
		pool = append(pool, name)
	}
	return build(t, b)
}

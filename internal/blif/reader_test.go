package blif

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
)

func parse(t *testing.T, src string) *graph.Graph {
	t.Helper()
	g, err := Parse(context.Background(), strings.NewReader(src), "test.blif")
	require.NoError(t, err)
	return g
}

func kindOf(t *testing.T, g *graph.Graph, name string) node.Kind {
	t.Helper()
	id, ok := g.ByName(name)
	require.True(t, ok, "node %q not found", name)
	return g.Kind(id)
}

func TestParse_GateKinds(t *testing.T) {
	g := parse(t, `
.model kinds
.inputs a b c
.outputs f
.names a b x
11 1
.names a c y
1- 1
-1 1
.names x z
0 1
.names y z f
11 1
.end
`)

	assert.Equal(t, node.And, kindOf(t, g, "x"))
	assert.Equal(t, node.Or, kindOf(t, g, "y"))
	assert.Equal(t, node.Not, kindOf(t, g, "z"))
	assert.Equal(t, node.And, kindOf(t, g, "f"))
	assert.Equal(t, node.Input, kindOf(t, g, "a"))
	assert.Len(t, g.Operations(), 4)

	f, _ := g.ByName("f")
	require.Len(t, g.Outputs(), 1)
	assert.Equal(t, "f", g.Name(g.Outputs()[0]))
	assert.Len(t, g.Preds(f), 2)
}

func TestParse_CommentsAndContinuation(t *testing.T) {
	g := parse(t, `# header comment
.inputs a \
  b   # trailing comment
.outputs o
.names a \
 b o
11 1
`)

	assert.Len(t, g.Inputs(), 2)
	assert.Equal(t, node.And, kindOf(t, g, "o"))
	o, _ := g.ByName("o")
	assert.Len(t, g.Preds(o), 2)
}

func TestParse_EndStopsReading(t *testing.T) {
	g := parse(t, `.inputs a
.outputs o
.names a o
0 1
.end
.names a q
this is not parsed
`)
	_, ok := g.ByName("q")
	assert.False(t, ok)
}

func TestParse_Resolution(t *testing.T) {
	// "u" is used but never declared or driven: it becomes an input.
	// "w" is driven by a .names without cover rows: it becomes a wire.
	// "k" is a constant: it has no operands and becomes an input.
	// "s" is driven but never consumed or declared: it becomes an output.
	g := parse(t, `.inputs a
.outputs o
.names a u w
.names k
1
.names w k o
11 1
.names o s
`)

	assert.Equal(t, node.Input, kindOf(t, g, "u"))
	assert.Equal(t, node.Wire, kindOf(t, g, "w"))
	assert.Equal(t, node.Input, kindOf(t, g, "k"))
	assert.Equal(t, node.Output, kindOf(t, g, "s"))

	var inputs, outputs []string
	for _, id := range g.Inputs() {
		inputs = append(inputs, g.Name(id))
	}
	for _, id := range g.Outputs() {
		outputs = append(outputs, g.Name(id))
	}
	assert.ElementsMatch(t, []string{"a", "u", "k"}, inputs)
	assert.ElementsMatch(t, []string{"o", "s"}, outputs)
}

func TestParse_OutputAliasesInput(t *testing.T) {
	g := parse(t, ".inputs a\n.outputs a\n.end\n")

	assert.Equal(t, node.Input, kindOf(t, g, "a"))
	assert.Len(t, g.Outputs(), 1)
	assert.Empty(t, g.Operations())
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "unsupported directive",
			src:     ".inputs a\n.latch a b 0\n",
			wantMsg: "test.blif:2: unsupported directive \".latch\"",
		},
		{
			name:    "empty names",
			src:     ".names\n",
			wantMsg: ".names without signals",
		},
		{
			name:    "gate drives input",
			src:     ".inputs a b\n.names b a\n0 1\n",
			wantMsg: `input "a" cannot be driven by a gate`,
		},
		{
			name:    "double definition",
			src:     ".inputs a\n.names a x\n0 1\n.names a x\n1 1\n",
			wantMsg: "driven by more than one .names",
		},
		{
			name:    "dangling continuation",
			src:     ".inputs a \\\n",
			wantMsg: "line continuation at end of file",
		},
		{
			name:    "cycle",
			src:     ".inputs a\n.names a y x\n11 1\n.names x y\n0 1\n",
			wantMsg: "cycle detected",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(tc.src), "test.blif")
			require.ErrorIs(t, err, ErrInput)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inv.blif")
		require.NoError(t, os.WriteFile(path, []byte(".inputs a\n.outputs o\n.names a o\n0 1\n.end\n"), 0o644))

		g, err := ParseFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, node.Not, kindOf(t, g, "o"))
	})

	t.Run("missing file is an input error", func(t *testing.T) {
		_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.blif"))
		assert.ErrorIs(t, err, ErrInput)
	})
}

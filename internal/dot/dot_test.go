package dot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/scheduler"
	"github.com/vk/mlrcs/internal/testutil"
)

func TestWriteDOT(t *testing.T) {
	g := testutil.Chain(t)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g, nil))
	out := buf.String()

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("digraph G {\n")))
	assert.Contains(t, out, `"x" -> "a";`)
	assert.Contains(t, out, `"b" -> "c";`)
	assert.Contains(t, out, `"a" [shape=box, label="a\nAND"];`)
	assert.Contains(t, out, `"x" [shape=invtriangle, label="x"];`)
	assert.NotContains(t, out, "rank=same")
}

func TestWriteDOT_WithSchedule(t *testing.T) {
	g := testutil.IndependentAnds(t)
	s, err := scheduler.NewHeuristic().Schedule(context.Background(), g, scheduler.Limits{And: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g, s))
	assert.Contains(t, buf.String(), `{ rank=same; "a"; "b"; }`)
	assert.Contains(t, buf.String(), `label="a\nAND @1"`)
}

func TestWriteMermaid(t *testing.T) {
	g := testutil.Chain(t)
	s, err := scheduler.NewHeuristic().Schedule(context.Background(), g, scheduler.Limits{And: 1, Or: 1, Not: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMermaid(&buf, g, s))
	out := buf.String()

	assert.Contains(t, out, "graph LR\n")
	assert.Contains(t, out, "    subgraph step1 [Step 1]\n        n2[\"a<br/>AND @1\"]\n    end\n")
	assert.Contains(t, out, "    n0([\"x\"])\n")
	assert.Contains(t, out, "    n2 --> n3\n")
	assert.Contains(t, out, "n4{\"c<br/>NOT @3\"}")
}

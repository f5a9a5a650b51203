package schedule_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/schedule"
	"github.com/vk/mlrcs/internal/testutil"
	"gopkg.in/yaml.v3"
)

func timesFor(t *testing.T, g *graph.Graph, byName map[string]int) []int {
	t.Helper()
	times := make([]int, g.Len())
	for name, step := range byName {
		times[testutil.ID(t, g, name)] = step
	}
	return times
}

func chainSchedule(t *testing.T, g *graph.Graph) *schedule.Schedule {
	t.Helper()
	s, err := schedule.FromTimes(g, schedule.Heuristic, timesFor(t, g, map[string]int{"a": 1, "b": 2, "c": 3}))
	require.NoError(t, err)
	return s
}

func TestFromTimes(t *testing.T) {
	g := testutil.Chain(t)
	s := chainSchedule(t, g)

	assert.Equal(t, 3, s.Latency)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, testutil.StepNames(g, s))
	assert.Equal(t, 2, s.Time(testutil.ID(t, g, "b")))
	assert.Equal(t, 0, s.Time(testutil.ID(t, g, "x")))
}

func TestFromTimes_NoOperations(t *testing.T) {
	g := testutil.InputAlias(t)
	s, err := schedule.FromTimes(g, schedule.Exact, make([]int, g.Len()))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Latency)
	require.Len(t, s.Steps, 1)
	assert.NoError(t, schedule.Verify(g, s, schedule.Limits{}))
}

func TestFromTimes_MissingTime(t *testing.T) {
	g := testutil.Chain(t)
	_, err := schedule.FromTimes(g, schedule.Heuristic, timesFor(t, g, map[string]int{"a": 1, "b": 2}))
	assert.ErrorContains(t, err, `operation "c" has no start time`)
}

func TestVerify(t *testing.T) {
	g := testutil.Chain(t)
	one := schedule.Limits{And: 1, Or: 1, Not: 1}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, schedule.Verify(g, chainSchedule(t, g), one))
	})

	t.Run("precedence violation", func(t *testing.T) {
		s, err := schedule.FromTimes(g, schedule.Heuristic, timesFor(t, g, map[string]int{"a": 1, "b": 1, "c": 2}))
		require.NoError(t, err)

		err = schedule.Verify(g, s, one)
		require.ErrorIs(t, err, schedule.ErrInvalid)
		assert.ErrorContains(t, err, `operation "b" at step 1 does not follow its dependency "a" at step 1`)
	})

	t.Run("resource violation", func(t *testing.T) {
		g := testutil.IndependentAnds(t)
		s, err := schedule.FromTimes(g, schedule.Heuristic, timesFor(t, g, map[string]int{"a": 1, "b": 1}))
		require.NoError(t, err)

		assert.NoError(t, schedule.Verify(g, s, schedule.Limits{And: 2}))
		err = schedule.Verify(g, s, schedule.Limits{And: 1})
		assert.ErrorContains(t, err, "step 1 uses 2 AND units, limit is 1")
	})

	t.Run("graph mismatch", func(t *testing.T) {
		err := schedule.Verify(testutil.Mixed(t), chainSchedule(t, g), one)
		assert.ErrorIs(t, err, schedule.ErrInvalid)
	})
}

func TestLimits(t *testing.T) {
	assert.NoError(t, schedule.Limits{}.Validate())
	assert.ErrorContains(t, schedule.Limits{And: 1, Or: -1}.Validate(), "OR limit must not be negative")
	assert.Equal(t, "AND=1 OR=2 NOT=3", schedule.Limits{And: 1, Or: 2, Not: 3}.String())
}

func TestWriteText(t *testing.T) {
	g := testutil.Mixed(t)
	s, err := schedule.FromTimes(g, schedule.Heuristic, timesFor(t, g, map[string]int{
		"a1": 1, "a2": 1, "a3": 2, "o1": 2, "o2": 3, "n1": 3, "n2": 3, "f": 4,
	}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, schedule.WriteText(&buf, g, s))

	want := `Heuristic Scheduling Result
1: {a1 a2} {} {}
2: {a3} {o1} {}
3: {} {o2} {n1 n2}
4: {f} {} {}
LATENCY: 4
END
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteText_UnprovenExact(t *testing.T) {
	g := testutil.Chain(t)
	s := chainSchedule(t, g)
	s.Strategy = schedule.Exact

	var buf bytes.Buffer
	require.NoError(t, schedule.WriteText(&buf, g, s))
	assert.Contains(t, buf.String(), "ILP-based Scheduling Result\n")
	assert.Contains(t, buf.String(), "LATENCY: 3\n"+schedule.NotProvenNote+"\nEND\n")

	s.Proven = true
	buf.Reset()
	require.NoError(t, schedule.WriteText(&buf, g, s))
	assert.NotContains(t, buf.String(), "NOTE:")
}

func TestWrite_Documents(t *testing.T) {
	g := testutil.Chain(t)
	s := chainSchedule(t, g)
	want := schedule.Report{
		Strategy: schedule.Heuristic,
		Latency:  3,
		Steps: []schedule.StepReport{
			{Step: 1, And: []string{"a"}, Or: []string{}, Not: []string{}},
			{Step: 2, And: []string{}, Or: []string{"b"}, Not: []string{}},
			{Step: 3, And: []string{}, Or: []string{}, Not: []string{"c"}},
		},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, schedule.Write(&buf, schedule.FormatJSON, g, s))

		var got schedule.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("json report mismatch (-want +got):\n%s", diff)
		}
		assert.Contains(t, buf.String(), `"strategy": "heuristic"`)
		assert.NotContains(t, buf.String(), "solver_latency")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, schedule.Write(&buf, schedule.FormatYAML, g, s))

		var got schedule.Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("yaml report mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestWrite_SolverLatency(t *testing.T) {
	g := testutil.Chain(t)
	s := chainSchedule(t, g)
	s.Strategy = schedule.Exact
	s.SolverLatency = 5

	var buf bytes.Buffer
	require.NoError(t, schedule.WriteText(&buf, g, s))
	assert.Contains(t, buf.String(),
		"LATENCY: 3\n"+schedule.NotProvenNote+" (last used step 3, solver latency 5)\nEND\n")

	buf.Reset()
	require.NoError(t, schedule.Write(&buf, schedule.FormatJSON, g, s))
	var got schedule.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Latency)
	assert.Equal(t, 5, got.SolverLatency)
	assert.False(t, got.Proven)
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"text", "JSON", "yaml"} {
		_, err := schedule.ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := schedule.ParseFormat("xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

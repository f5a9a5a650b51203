package scheduler

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/milp"
	"github.com/vk/mlrcs/internal/pbsolver"
	"github.com/vk/mlrcs/internal/satsolver"
	"github.com/vk/mlrcs/internal/testutil"
)

// stubSolver answers with a fixed status and, for statuses with a point,
// the model's start values.
type stubSolver struct {
	status milp.Status
	err    error
	mutate func([]float64)

	model *milp.Model
	opts  milp.Options
}

func (s *stubSolver) Solve(_ context.Context, m *milp.Model, opts milp.Options) (*milp.Solution, error) {
	s.model = m
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	sol := &milp.Solution{Status: s.status, Elapsed: time.Second}
	if s.status.HasPoint() {
		start, _ := m.Start()
		if s.mutate != nil {
			s.mutate(start)
		}
		sol.Values = start
	}
	return sol, nil
}

func exact(solver milp.Solver) *Exact {
	return NewExact(solver, 20*time.Second, 0)
}

var backends = []struct {
	name   string
	solver func() milp.Solver
}{
	{name: "gini", solver: func() milp.Solver { return satsolver.New() }},
	{name: "gophersat", solver: func() milp.Solver { return pbsolver.New() }},
}

func TestExact_Scenarios(t *testing.T) {
	testCases := []struct {
		name        string
		graph       func(testing.TB) *graph.Graph
		limits      Limits
		wantSteps   [][]string
		wantLatency int
	}{
		{
			name:        "linear chain",
			graph:       testutil.Chain,
			limits:      ones,
			wantSteps:   [][]string{{"a"}, {"b"}, {"c"}},
			wantLatency: 3,
		},
		{
			name:        "independent ands with two units",
			graph:       testutil.IndependentAnds,
			limits:      Limits{And: 2, Or: 1, Not: 1},
			wantSteps:   [][]string{{"a", "b"}},
			wantLatency: 1,
		},
		{
			name:        "no operations",
			graph:       testutil.InputAlias,
			limits:      Limits{},
			wantSteps:   [][]string{{}},
			wantLatency: 1,
		},
	}

	for _, b := range backends {
		for _, tc := range testCases {
			t.Run(b.name+"/"+tc.name, func(t *testing.T) {
				g := tc.graph(t)
				s, err := exact(b.solver()).Schedule(context.Background(), g, tc.limits)
				require.NoError(t, err)

				testutil.AssertValidSchedule(t, g, s, tc.limits)
				assert.Equal(t, tc.wantLatency, s.Latency)
				assert.Equal(t, tc.wantSteps, testutil.StepNames(g, s))
				assert.True(t, s.Proven)
			})
		}
	}
}

func TestExact_MixedIsOptimal(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			g := testutil.Mixed(t)
			s, err := exact(b.solver()).Schedule(context.Background(), g, ones)
			require.NoError(t, err)

			testutil.AssertValidSchedule(t, g, s, ones)
			assert.Equal(t, 5, s.Latency)
			assert.True(t, s.Proven)
		})
	}
}

func TestExact_NeverWorseThanHeuristic(t *testing.T) {
	limitSets := []Limits{ones, {And: 2, Or: 1, Not: 1}}

	for seed := uint64(1); seed <= 6; seed++ {
		g := testutil.Random(t, seed, 4, 10)
		for _, limits := range limitSets {
			h, err := NewHeuristic().Schedule(context.Background(), g, limits)
			require.NoError(t, err)
			e, err := exact(satsolver.New()).Schedule(context.Background(), g, limits)
			require.NoError(t, err)

			testutil.AssertValidSchedule(t, g, e, limits)
			assert.LessOrEqual(t, e.Latency, h.Latency, "seed %d limits %s", seed, limits)
		}
	}
}

func TestExact_TimeLimitReturnsUnprovenSchedule(t *testing.T) {
	g := testutil.Random(t, 7, 6, 60)
	h, err := NewHeuristic().Schedule(context.Background(), g, ones)
	require.NoError(t, err)

	baseline := runtime.NumGoroutine()
	const limit = 300 * time.Millisecond
	began := time.Now()
	s, err := NewExact(satsolver.New(), limit, 0).Schedule(context.Background(), g, ones)
	elapsed := time.Since(began)
	require.NoError(t, err)

	testutil.AssertValidSchedule(t, g, s, ones)
	assert.LessOrEqual(t, s.Latency, h.Latency)
	if !s.Proven {
		assert.GreaterOrEqual(t, elapsed, limit)
	}
	assert.Less(t, elapsed, limit+10*time.Second)
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 2*time.Second, 10*time.Millisecond, "no search may outlive the schedule call")
}

func TestExact_SolverLatency(t *testing.T) {
	g := testutil.Chain(t)
	stub := &stubSolver{status: milp.Feasible, mutate: func(v []float64) {
		// Raise L above the last used step.
		v[len(v)-1]++
	}}
	s, err := exact(stub).Schedule(context.Background(), g, ones)
	require.NoError(t, err)

	assert.False(t, s.Proven)
	assert.Equal(t, 3, s.Latency)
	assert.Equal(t, 4, s.SolverLatency)
}

func TestExact_WarmStartSatisfiesModel(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		g := testutil.Random(t, seed, 5, 25)
		stub := &stubSolver{status: milp.Optimal}

		_, err := exact(stub).Schedule(context.Background(), g, ones)
		require.NoError(t, err)

		start, ok := stub.model.Start()
		require.True(t, ok, "every variable must have a start value")
		assert.NoError(t, stub.model.Evaluate(start), "seed %d", seed)
	}
}

func TestExact_ModelRejectsOverlap(t *testing.T) {
	g := testutil.Chain(t)
	stub := &stubSolver{status: milp.Optimal}
	_, err := exact(stub).Schedule(context.Background(), g, ones)
	require.NoError(t, err)

	// Put every operation at step 1 and L at 1.
	m := stub.model
	point := make([]float64, m.NumVars())
	for i, v := range m.Variables() {
		if v.Name == "L" || v.Name[len(v.Name)-2:] == "1]" {
			point[i] = 1
		}
	}
	assert.ErrorContains(t, m.Evaluate(point), "violated")
}

func TestExact_StatusMapping(t *testing.T) {
	t.Run("feasible is returned unproven with a warning", func(t *testing.T) {
		var logs testutil.SafeBuffer
		ctx := ctxlog.WithLogger(context.Background(), testutil.NewLogger(&logs))
		g := testutil.Mixed(t)

		s, err := exact(&stubSolver{status: milp.Feasible}).Schedule(ctx, g, ones)
		require.NoError(t, err)
		assert.False(t, s.Proven)
		assert.Equal(t, 5, s.Latency)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "not proven optimal")
	})

	t.Run("infeasible", func(t *testing.T) {
		_, err := exact(&stubSolver{status: milp.Infeasible}).Schedule(context.Background(), testutil.Chain(t), ones)
		require.ErrorIs(t, err, ErrModelInfeasible)
		assert.Equal(t, KindModelInfeasible, KindOf(err))
	})

	t.Run("no solution", func(t *testing.T) {
		_, err := exact(&stubSolver{status: milp.NoSolution}).Schedule(context.Background(), testutil.Chain(t), ones)
		require.ErrorIs(t, err, ErrSolverTimeout)
		assert.ErrorContains(t, err, "no incumbent")
		assert.Equal(t, KindSolverTimeout, KindOf(err))
	})

	t.Run("backend error is internal", func(t *testing.T) {
		_, err := exact(&stubSolver{err: errors.New("boom")}).Schedule(context.Background(), testutil.Chain(t), ones)
		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
	})

	t.Run("invalid solution fails verification", func(t *testing.T) {
		stub := &stubSolver{status: milp.Optimal, mutate: func(v []float64) {
			for i := range v {
				v[i] = 0
			}
		}}
		_, err := exact(stub).Schedule(context.Background(), testutil.Chain(t), ones)
		assert.ErrorContains(t, err, "assigns no step")
	})
}

func TestExact_OptionsDefaults(t *testing.T) {
	stub := &stubSolver{status: milp.Optimal}
	_, err := NewExact(stub, 0, 0).Schedule(context.Background(), testutil.Chain(t), ones)
	require.NoError(t, err)

	assert.Equal(t, milp.DefaultTimeLimit, stub.opts.TimeLimit)
	assert.Equal(t, milp.DefaultThreads(), stub.opts.Threads)
}

func TestExact_InheritsHeuristicFailures(t *testing.T) {
	_, err := exact(satsolver.New()).Schedule(context.Background(), testutil.Chain(t), Limits{Or: 1, Not: 1})
	assert.ErrorIs(t, err, ErrResourceDeadlock)

	_, err = NewExact(nil, 0, 0).Schedule(context.Background(), testutil.Chain(t), ones)
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("other")))
	assert.Equal(t, KindCanceled, KindOf(context.DeadlineExceeded))
	assert.Equal(t, "ResourceDeadlock", KindResourceDeadlock.String())
}

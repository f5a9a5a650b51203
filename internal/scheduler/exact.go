package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/dag"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/milp"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/schedule"
)

// Exact computes minimum-latency schedules with a time-indexed 0-1 model.
//
// The heuristic runs first. Its latency bounds the horizon of the model and
// its schedule is supplied to the solver as the starting point, so the
// exact result is never worse than the heuristic one.
type Exact struct {
	// Solver is the MILP backend. Required.
	Solver milp.Solver
	// TimeLimit bounds the solve. Zero means milp.DefaultTimeLimit.
	TimeLimit time.Duration
	// Threads is passed to the solver as a hint. Zero means
	// milp.DefaultThreads().
	Threads int

	heuristic Heuristic
}

// NewExact returns an exact scheduler using solver.
func NewExact(solver milp.Solver, timeLimit time.Duration, threads int) *Exact {
	return &Exact{Solver: solver, TimeLimit: timeLimit, Threads: threads}
}

var _ Scheduler = (*Exact)(nil)

// Name implements Scheduler.
func (e *Exact) Name() schedule.Strategy { return schedule.Exact }

// Schedule implements Scheduler.
//
// When the solver proves optimality the result has Proven set. When it runs
// out of time with an incumbent, the incumbent is returned unproven and a
// warning is logged. Without an incumbent the error wraps ErrSolverTimeout.
func (e *Exact) Schedule(ctx context.Context, g *graph.Graph, limits Limits) (*schedule.Schedule, error) {
	logger := ctxlog.FromContext(ctx)
	if e.Solver == nil {
		return nil, errors.New("exact scheduler has no solver")
	}

	bound, err := e.heuristic.Schedule(ctx, g, limits)
	if err != nil {
		return nil, err
	}
	if len(g.Operations()) == 0 {
		bound.Strategy = schedule.Exact
		bound.Proven = true
		return bound, nil
	}

	opPreds := dag.OpPredecessors(g)
	if _, lower, err := dag.CriticalPath(g, opPreds); err == nil {
		logger.Debug("Latency bounds.", "lower", lower, "upper", bound.Latency)
	}

	tm := newTimeModel(g, opPreds, limits, bound.Latency)
	tm.warmStart(bound)

	opts := milp.Options{TimeLimit: e.TimeLimit, Threads: e.Threads}.WithDefaults()
	logger.Debug("Solving exact model.",
		"variables", tm.model.NumVars(),
		"constraints", len(tm.model.Constraints()),
		"horizon", bound.Latency,
		"time_limit", opts.TimeLimit,
		"threads", opts.Threads,
	)

	sol, err := e.Solver.Solve(ctx, tm.model, opts)
	if err != nil {
		return nil, fmt.Errorf("solving exact model: %w", err)
	}

	switch sol.Status {
	case milp.Optimal, milp.Feasible:
	case milp.Infeasible:
		return nil, fmt.Errorf("%w: no schedule within %d steps", ErrModelInfeasible, bound.Latency)
	case milp.NoSolution:
		return nil, fmt.Errorf("%w: no incumbent after %s", ErrSolverTimeout, sol.Elapsed.Round(time.Millisecond))
	default:
		return nil, fmt.Errorf("unexpected solver status %s", sol.Status)
	}

	s, err := tm.decode(ctx, g, sol)
	if err != nil {
		return nil, err
	}
	if err := schedule.Verify(g, s, limits); err != nil {
		return nil, fmt.Errorf("exact solution failed verification: %w", err)
	}
	s.Proven = sol.Status == milp.Optimal

	if !s.Proven {
		logger.Warn("Time limit reached, schedule not proven optimal.",
			"latency", s.Latency,
			"solver_latency", s.SolverLatency,
			"heuristic_latency", bound.Latency,
			"elapsed", sol.Elapsed,
		)
	}
	logger.Debug("Exact schedule complete.", "latency", s.Latency, "proven", s.Proven, "elapsed", sol.Elapsed)
	return s, nil
}

// timeModel is the time-indexed model and the variables needed to read a
// schedule back out of a solution.
type timeModel struct {
	model   *milp.Model
	ops     []nodeid.ID
	horizon int
	// x[i][t-1] is 1 when ops[i] starts at step t.
	x       [][]milp.Var
	latency milp.Var
}

func newTimeModel(g *graph.Graph, opPreds [][]nodeid.ID, limits Limits, horizon int) *timeModel {
	m := milp.NewModel("schedule")
	tm := &timeModel{model: m, ops: g.Operations(), horizon: horizon}

	index := make(map[nodeid.ID]int, len(tm.ops))
	tm.x = make([][]milp.Var, len(tm.ops))
	for i, op := range tm.ops {
		index[op] = i
		tm.x[i] = make([]milp.Var, horizon)
		for t := 1; t <= horizon; t++ {
			tm.x[i][t-1] = m.AddBinary(fmt.Sprintf("x[%s,%d]", g.Name(op), t))
		}
	}
	tm.latency = m.AddInteger("L", 1, horizon)

	// Each operation starts exactly once.
	for i, op := range tm.ops {
		m.AddConstraint("assign "+g.Name(op), milp.Sum(tm.x[i]...), milp.EQ, 1)
	}

	// An operation can start at t only if each dependency started before t.
	for i, op := range tm.ops {
		for _, p := range opPreds[op] {
			j := index[p]
			for t := 1; t <= horizon; t++ {
				e := milp.Expr{}.Plus(1, tm.x[i][t-1])
				for tp := 1; tp < t; tp++ {
					e = e.Plus(-1, tm.x[j][tp-1])
				}
				m.AddConstraint(fmt.Sprintf("order %s<%s@%d", g.Name(p), g.Name(op), t), e, milp.LE, 0)
			}
		}
	}

	// Per step and class, no more starts than units.
	var byClass [node.NumClasses][]int
	for i, op := range tm.ops {
		c, _ := g.Kind(op).Class()
		byClass[c] = append(byClass[c], i)
	}
	for _, c := range node.Classes {
		if len(byClass[c]) == 0 {
			continue
		}
		for t := 1; t <= horizon; t++ {
			var e milp.Expr
			for _, i := range byClass[c] {
				e = e.Plus(1, tm.x[i][t-1])
			}
			m.AddConstraint(fmt.Sprintf("units %s@%d", c, t), e, milp.LE, float64(limits.Of(c)))
		}
	}

	// L is no earlier than any start.
	for i, op := range tm.ops {
		e := milp.Expr{}.Plus(1, tm.latency)
		for t := 1; t <= horizon; t++ {
			e = e.Plus(-float64(t), tm.x[i][t-1])
		}
		m.AddConstraint("latency "+g.Name(op), e, milp.GE, 0)
	}

	// Outputs driven straight from an input still occupy one step.
	for _, out := range g.Outputs() {
		preds := g.Preds(out)
		if g.Kind(out) == node.Input || (len(preds) == 1 && g.Kind(preds[0]) == node.Input) {
			m.AddConstraint("output "+g.Name(out), milp.Sum(tm.latency), milp.GE, 1)
		}
	}

	m.SetObjective(milp.Sum(tm.latency), milp.Minimize)
	return tm
}

func (tm *timeModel) warmStart(s *schedule.Schedule) {
	for i, op := range tm.ops {
		start := s.Time(op)
		for t := 1; t <= tm.horizon; t++ {
			v := 0.0
			if t == start {
				v = 1
			}
			tm.model.SetStart(tm.x[i][t-1], v)
		}
	}
	tm.model.SetStart(tm.latency, float64(s.Latency))
}

func (tm *timeModel) decode(ctx context.Context, g *graph.Graph, sol *milp.Solution) (*schedule.Schedule, error) {
	times := make([]int, g.Len())
	for i, op := range tm.ops {
		for t := 1; t <= tm.horizon; t++ {
			if sol.Value(tm.x[i][t-1]) >= 0.5 {
				times[op] = t
				break
			}
		}
		if times[op] == 0 {
			return nil, fmt.Errorf("solution assigns no step to operation %q", g.Name(op))
		}
	}

	s, err := schedule.FromTimes(g, schedule.Exact, times)
	if err != nil {
		return nil, fmt.Errorf("assembling exact schedule: %w", err)
	}
	s.SolverLatency = int(math.Round(sol.Value(tm.latency)))
	if s.SolverLatency != s.Latency {
		ctxlog.FromContext(ctx).Debug("Latency variable exceeds last used step.",
			"latency_var", s.SolverLatency, "last_step", s.Latency)
	}
	return s, nil
}

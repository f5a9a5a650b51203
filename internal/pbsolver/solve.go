package pbsolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/milp"
)

var errTriviallyFalse = errors.New("no assignment can satisfy the constraint")

// Solver solves milp models with gophersat. The zero value is ready to use.
type Solver struct {
	detached atomic.Int64
}

// New returns a gophersat-backed milp.Solver.
func New() *Solver { return &Solver{} }

var _ milp.Solver = (*Solver)(nil)

// Solve implements milp.Solver.
//
// A feasible start point on the model becomes the first incumbent, so a
// solve that runs out of time after a valid start always reports Feasible.
// Cancellation of ctx is returned as an error; its deadline and
// opts.TimeLimit are treated as time limits.
//
// gophersat cannot be interrupted. When the time limit or ctx ends first,
// Solve returns the incumbent while the search keeps running on its
// goroutine until it finishes on its own. Detached counts such searches.
func (s *Solver) Solve(ctx context.Context, m *milp.Model, opts milp.Options) (*milp.Solution, error) {
	logger := ctxlog.FromContext(ctx)
	opts = opts.WithDefaults()
	began := time.Now()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %q: %w", m.Name(), err)
	}
	enc, err := newEncoding(m)
	if err != nil {
		return nil, err
	}
	constrs, err := enc.constraints()
	if errors.Is(err, errTriviallyFalse) {
		logger.Debug("Model is infeasible before search.", "model", m.Name(), "reason", err)
		return &milp.Solution{Status: milp.Infeasible, Elapsed: time.Since(began)}, nil
	}
	if err != nil {
		return nil, err
	}
	lits, weights, err := enc.cost()
	if err != nil {
		return nil, err
	}

	var best *milp.Solution
	if start, ok := m.Start(); ok {
		if err := m.Evaluate(start); err != nil {
			logger.Warn("Ignoring infeasible start point.", "model", m.Name(), "error", err)
		} else {
			best = &milp.Solution{Status: milp.Feasible, Values: start, Objective: m.ObjectiveValue(start)}
		}
	}

	logger.Debug("Pseudo-boolean model encoded.",
		"model", m.Name(),
		"variables", m.NumVars(),
		"literals", enc.numVars,
		"constraints", len(constrs),
		"cost_terms", len(lits),
		"time_limit", opts.TimeLimit,
		"threads_hint", opts.Threads,
	)

	pb := solver.ParsePBConstrs(constrs)
	if len(lits) > 0 {
		pb.SetCostFunc(lits, weights)
	}
	sv := solver.New(pb)

	solveCtx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()
	if err := solveCtx.Err(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return timedOut(best, began), nil
	}

	results := make(chan solver.Result)
	stop := make(chan struct{})
	done := make(chan solver.Result, 1)
	go func() { done <- sv.Optimal(results, stop) }()

	improve := func(r solver.Result) {
		values := enc.decode(r.Model)
		obj := m.ObjectiveValue(values)
		if best == nil || better(m, obj, best.Objective) {
			best = &milp.Solution{Status: milp.Feasible, Values: values, Objective: obj}
			logger.Debug("New incumbent.", "model", m.Name(), "objective", obj)
		}
	}

	for {
		select {
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if r.Status == solver.Sat {
				improve(r)
			}

		case r := <-done:
			switch r.Status {
			case solver.Sat:
				values := enc.decode(r.Model)
				return &milp.Solution{
					Status:    milp.Optimal,
					Values:    values,
					Objective: m.ObjectiveValue(values),
					Elapsed:   time.Since(began),
				}, nil
			case solver.Unsat:
				return &milp.Solution{Status: milp.Infeasible, Elapsed: time.Since(began)}, nil
			default:
				return timedOut(best, began), nil
			}

		case <-solveCtx.Done():
			// Optimal never reads stop, so the search runs to completion.
			close(stop)
			s.detached.Add(1)
			go func() {
				defer s.detached.Add(-1)
				drain(results, done)
			}()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, ctx.Err()
			}
			logger.Debug("Search interrupted by time limit.", "model", m.Name(), "elapsed", time.Since(began))
			return timedOut(best, began), nil
		}
	}
}

// Detached returns the number of searches that outlived their Solve call
// and are still running.
func (s *Solver) Detached() int {
	return int(s.detached.Load())
}

func timedOut(best *milp.Solution, began time.Time) *milp.Solution {
	if best == nil {
		return &milp.Solution{Status: milp.NoSolution, Elapsed: time.Since(began)}
	}
	best.Status = milp.Feasible
	best.Elapsed = time.Since(began)
	return best
}

func better(m *milp.Model, candidate, incumbent float64) bool {
	if _, dir := m.Objective(); dir == milp.Maximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}

// drain consumes the results of an abandoned search until it returns.
func drain(results <-chan solver.Result, done <-chan solver.Result) {
	for {
		select {
		case _, ok := <-results:
			if !ok {
				results = nil
			}
		case <-done:
			return
		}
	}
}

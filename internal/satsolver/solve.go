package satsolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/milp"
)

// pollInterval is how often a running search is checked for a result.
const pollInterval = 5 * time.Millisecond

// Solver solves milp models with gini. The zero value is ready to use.
type Solver struct{}

// New returns a gini-backed milp.Solver.
func New() *Solver { return &Solver{} }

var _ milp.Solver = (*Solver)(nil)

// Solve implements milp.Solver.
//
// A feasible start point on the model becomes the first incumbent, so a
// solve that runs out of time after a valid start always reports Feasible.
// Cancellation of ctx is returned as an error; its deadline and
// opts.TimeLimit are treated as time limits. In every case the search has
// stopped by the time Solve returns.
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
	err = enc.constraints()
	if errors.Is(err, errTriviallyFalse) {
		logger.Debug("Model is infeasible before search.", "model", m.Name(), "reason", err)
		return &milp.Solution{Status: milp.Infeasible, Elapsed: time.Since(began)}, nil
	}
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

	g := gini.New()
	mark, gates := enc.c.CnfSince(g, nil, enc.roots...)
	for _, r := range enc.roots {
		g.Add(r)
		g.Add(0)
	}
	logger.Debug("Circuit model encoded.",
		"model", m.Name(),
		"variables", m.NumVars(),
		"solver_variables", g.MaxVar(),
		"gates", gates,
		"roots", len(enc.roots),
		"groups", len(enc.groups),
		"time_limit", opts.TimeLimit,
		"threads_hint", opts.Threads,
	)

	solveCtx, cancel := context.WithTimeout(ctx, opts.TimeLimit)
	defer cancel()

	for round := 1; ; round++ {
		if best != nil {
			better, err := enc.improving(best.Objective)
			if errors.Is(err, errTriviallyFalse) {
				return optimal(best, began), nil
			}
			if err != nil {
				return nil, err
			}
			mark, _ = enc.c.CnfSince(g, mark, better)
			g.Add(better)
			g.Add(0)
		}

		if err := solveCtx.Err(); err != nil {
			return interrupted(ctx, m, best, began)
		}
		switch search(solveCtx, g) {
		case 1:
			values := enc.decode(g)
			if err := m.Evaluate(values); err != nil {
				return nil, fmt.Errorf("decoded point of %q is not feasible: %w", m.Name(), err)
			}
			best = &milp.Solution{Status: milp.Feasible, Values: values, Objective: m.ObjectiveValue(values)}
			logger.Debug("New incumbent.", "model", m.Name(), "objective", best.Objective, "round", round)
		case -1:
			if best == nil {
				return &milp.Solution{Status: milp.Infeasible, Elapsed: time.Since(began)}, nil
			}
			return optimal(best, began), nil
		default:
			return interrupted(ctx, m, best, began)
		}
	}
}

// search runs one satisfiability check on a separate goroutine and stops it
// when ctx ends. The goroutine has delivered its result, and so is
// finished, when search returns. The result is 1 for sat, -1 for unsat
// and 0 when the check was stopped.
func search(ctx context.Context, g *gini.Gini) int {
	conn := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// A check that finished in the meantime reports its result.
			return conn.Stop()
		case <-ticker.C:
			if res, done := conn.Test(); done {
				return res
			}
		}
	}
}

func interrupted(ctx context.Context, m *milp.Model, best *milp.Solution, began time.Time) (*milp.Solution, error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ctx.Err()
	}
	ctxlog.FromContext(ctx).Debug("Search interrupted by time limit.", "model", m.Name(), "elapsed", time.Since(began))
	if best == nil {
		return &milp.Solution{Status: milp.NoSolution, Elapsed: time.Since(began)}, nil
	}
	best.Status = milp.Feasible
	best.Elapsed = time.Since(began)
	return best, nil
}

func optimal(best *milp.Solution, began time.Time) *milp.Solution {
	best.Status = milp.Optimal
	best.Elapsed = time.Since(began)
	return best
}

package milp

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrNonIntegral is returned by backends that only handle integral
// coefficients when a model contains a fractional one.
var ErrNonIntegral = errors.New("non-integral coefficient")

// DefaultTimeLimit bounds a solve when Options.TimeLimit is zero.
const DefaultTimeLimit = 900 * time.Second

// Status is the outcome of a solve.
type Status int

const (
	// NoSolution means the search stopped before finding any feasible
	// point.
	NoSolution Status = iota
	// Optimal means the returned point is proven optimal.
	Optimal
	// Feasible means the returned point satisfies the model but the search
	// stopped before proving optimality.
	Feasible
	// Infeasible means the model has no feasible point.
	Infeasible
)

func (s Status) String() string {
	switch s {
	case NoSolution:
		return "no solution"
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasPoint reports whether a solution with this status carries values.
func (s Status) HasPoint() bool {
	return s == Optimal || s == Feasible
}

// Options tune a solve.
type Options struct {
	// TimeLimit bounds the search. Zero means DefaultTimeLimit.
	TimeLimit time.Duration
	// Threads is a parallelism hint. Zero means DefaultThreads().
	Threads int
}

// WithDefaults returns o with zero fields replaced by their defaults.
func (o Options) WithDefaults() Options {
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Threads <= 0 {
		o.Threads = DefaultThreads()
	}
	return o
}

// DefaultThreads returns the number of logical CPUs, or 4 if that cannot be
// determined.
func DefaultThreads() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

// Solution is the result of a solve.
type Solution struct {
	Status    Status
	Objective float64
	// Values holds one value per model variable when Status.HasPoint().
	Values  []float64
	Elapsed time.Duration
}

// Value returns the value of v, or 0 when the solution has no point.
func (s *Solution) Value(v Var) float64 {
	if int(v) < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// Solver is implemented by MILP backends.
//
// Solve must honor ctx cancellation and opts.TimeLimit, whichever comes
// first, and report the best point found so far as Feasible. Model errors
// are returned as errors; infeasibility and timeouts are statuses.
type Solver interface {
	Solve(ctx context.Context, m *Model, opts Options) (*Solution, error)
}

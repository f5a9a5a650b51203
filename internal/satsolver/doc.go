// Package satsolver implements milp.Solver on top of gini, a pure Go CDCL
// SAT solver whose searches can be stopped from outside.
//
// The model is compiled into an and-inverter graph (gini/logic.C) that
// shares its variables with the solver:
//
//   - a binary variable is one input literal
//   - an integer variable v in [lo, hi] is order encoded with literals
//     u1 ... u(hi-lo), where uk means v >= lo+k and u(k+1) implies uk
//   - an equality "sum of binaries = 1" is recognized as an exactly-one
//     group and coded as a clause plus a sorting network bound
//   - every other row becomes a sum of weighted "digits" that must reach a
//     bound, compiled as a decision diagram memoized on the remaining
//     bound. An integer variable or an exactly-one group is one digit, so
//     rows like L >= sum t*x[t] stay quadratic in the horizon
//
// Optimization is a descent on the objective. Every satisfying assignment
// becomes the incumbent and a permanent bound demanding a strictly better
// objective is added before the next search; an unsatisfiable search
// proves the incumbent optimal. A feasible start point on the model is the
// first incumbent.
//
// Each search runs on its own goroutine through gini's GoSolve and is
// stopped when the time limit or ctx ends. Solve does not return while a
// search it started is still running.
//
// Only integral coefficients, bounds and right-hand sides are accepted;
// anything else fails with milp.ErrNonIntegral. gini searches on a single
// goroutine, so the thread hint is only logged.
package satsolver

// Package pbsolver implements milp.Solver on top of gophersat, a pure Go
// pseudo-boolean optimizer.
//
// Pseudo-boolean constraints are linear inequalities over 0-1 literals with
// integer weights, which is exactly what a time-indexed scheduling model
// produces. The translation is:
//
//   - a binary variable is one solver variable
//   - an integer variable v in [lo, hi] is order encoded as
//     lo + u1 + ... + u(hi-lo) with u(k+1) implying u(k)
//   - every constraint is rewritten as a sum of positively weighted
//     literals that must reach a bound; constant terms move to the bound
//   - the objective becomes a weighted literal cost plus a constant
//
// Only integral coefficients, bounds and right-hand sides are accepted;
// anything else fails with milp.ErrNonIntegral.
//
// gophersat searches on a single goroutine. The thread hint is recorded in
// the logs and otherwise ignored.
//
// A gophersat search cannot be stopped. A solve that reaches its time limit
// returns its incumbent on time, but the search behind it keeps a CPU busy
// until it ends by itself, which for a hard model may be never within the
// life of the process. Solver.Detached reports how many such searches are
// still running. The satsolver package is the backend to use when time
// limits must release the CPU.
package pbsolver

// Package milp is a small, backend-neutral vocabulary for mixed-integer
// linear programs.
//
// # Why MILP Package Exists
//
// The exact scheduler is a 0-1 model: it only ever needs to declare bounded
// binary and integer variables, add linear constraints, minimize a linear
// objective, suggest a starting point and solve under a time limit. Tying
// the scheduler to one solver's API would make every backend swap a
// rewrite of the scheduler, so the scheduler talks to this package and a
// backend implements Solver.
//
// # Building a Model
//
//	m := milp.NewModel("example")
//	x := m.AddBinary("x")
//	y := m.AddBinary("y")
//	l := m.AddInteger("l", 1, 4)
//	m.AddConstraint("pick", milp.Sum(x, y), milp.EQ, 1)
//	m.AddConstraint("bound", milp.Expr{}.Plus(1, l).Plus(-2, y), milp.GE, 0)
//	m.SetObjective(milp.Sum(l), milp.Minimize)
//	m.SetStart(x, 1)
//
// The model only records what it is given; structural problems such as an
// out-of-range variable or inverted bounds are reported by Validate, which
// backends call before solving.
//
// # Backends
//
// internal/satsolver compiles a model to a circuit for the gini SAT solver
// and is the default. internal/pbsolver hands it to gophersat as
// pseudo-boolean constraints.
package milp

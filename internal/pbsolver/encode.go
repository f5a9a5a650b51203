package pbsolver

import (
	"fmt"
	"math"
	"sort"

	"github.com/crillab/gophersat/solver"
	"github.com/vk/mlrcs/internal/milp"
)

// encoding maps model variables to solver variables. Solver variables are
// numbered from 1.
type encoding struct {
	model *milp.Model
	// lits[v] lists the solver variables whose sum, plus base[v], is the
	// value of model variable v.
	lits    [][]int
	base    []int
	numVars int
}

func newEncoding(m *milp.Model) (*encoding, error) {
	e := &encoding{
		model: m,
		lits:  make([][]int, m.NumVars()),
		base:  make([]int, m.NumVars()),
	}
	for i, v := range m.Variables() {
		lo, hi := v.Lo, v.Hi
		if v.Type == milp.Binary {
			lo, hi = 0, 1
		}
		if !integral(lo) || !integral(hi) {
			return nil, fmt.Errorf("%w: bounds of %q", milp.ErrNonIntegral, v.Name)
		}
		e.base[i] = int(lo)
		width := int(hi) - int(lo)
		e.lits[i] = make([]int, width)
		for k := range width {
			e.numVars++
			e.lits[i][k] = e.numVars
		}
	}
	return e, nil
}

// linear is a pseudo-boolean expression under construction: a weight per
// solver variable plus a constant.
type linear struct {
	weights map[int]int
	konst   int
}

func (e *encoding) expand(expr milp.Expr) (linear, error) {
	lin := linear{weights: make(map[int]int)}
	for _, t := range expr {
		if !integral(t.Coef) {
			return lin, fmt.Errorf("%w: %g on %q", milp.ErrNonIntegral, t.Coef, e.model.Variable(t.Var).Name)
		}
		c := int(t.Coef)
		lin.konst += c * e.base[t.Var]
		for _, l := range e.lits[t.Var] {
			lin.weights[l] += c
		}
	}
	return lin, nil
}

// atLeast normalizes lin >= bound into a gophersat constraint with
// positive weights. A negative weight w on x is rewritten with
// w*x = w - w*(not x). The boolean reports whether the constraint is
// trivially satisfied, in which case it can be dropped; an error reports a
// constraint no assignment can satisfy.
func atLeast(lin linear, bound int) (solver.PBConstr, bool, error) {
	bound -= lin.konst

	vars := make([]int, 0, len(lin.weights))
	for v, w := range lin.weights {
		if w != 0 {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)

	c := solver.PBConstr{
		Lits:    make([]int, 0, len(vars)),
		Weights: make([]int, 0, len(vars)),
	}
	total := 0
	for _, v := range vars {
		w := lin.weights[v]
		if w < 0 {
			bound -= w
			c.Lits = append(c.Lits, -v)
			c.Weights = append(c.Weights, -w)
			total += -w
			continue
		}
		c.Lits = append(c.Lits, v)
		c.Weights = append(c.Weights, w)
		total += w
	}
	c.AtLeast = bound

	if bound <= 0 {
		return c, true, nil
	}
	if total < bound {
		return c, false, errTriviallyFalse
	}
	return c, false, nil
}

// constraints translates the model's constraints and the order encoding of
// its integer variables.
func (e *encoding) constraints() ([]solver.PBConstr, error) {
	var out []solver.PBConstr

	// A zero-bound constraint over every variable registers all of them
	// with the solver, including those that only appear in the objective.
	all := make([]int, e.numVars)
	ones := make([]int, e.numVars)
	for i := range all {
		all[i] = i + 1
		ones[i] = 1
	}
	out = append(out, solver.PBConstr{Lits: all, Weights: ones, AtLeast: 0})

	for _, lits := range e.lits {
		for k := 0; k+1 < len(lits); k++ {
			// u(k+1) implies u(k).
			out = append(out, solver.PropClause(lits[k], -lits[k+1]))
		}
	}

	add := func(name string, lin linear, bound int) error {
		c, trivial, err := atLeast(lin, bound)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
		if !trivial {
			out = append(out, c)
		}
		return nil
	}

	for _, con := range e.model.Constraints() {
		if !integral(con.RHS) {
			return nil, fmt.Errorf("%w: right-hand side of %q", milp.ErrNonIntegral, con.Name)
		}
		lin, err := e.expand(con.Expr)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", con.Name, err)
		}
		rhs := int(con.RHS)

		if con.Sense == milp.GE || con.Sense == milp.EQ {
			if err := add(con.Name, lin, rhs); err != nil {
				return nil, err
			}
		}
		if con.Sense == milp.LE || con.Sense == milp.EQ {
			if err := add(con.Name, negate(lin), -rhs); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// cost translates the objective into a minimized literal cost and the
// constant to add back to the solver's reported weight.
func (e *encoding) cost() ([]solver.Lit, []int, error) {
	expr, dir := e.model.Objective()
	lin, err := e.expand(expr)
	if err != nil {
		return nil, nil, fmt.Errorf("objective: %w", err)
	}
	if dir == milp.Maximize {
		lin = negate(lin)
	}

	vars := make([]int, 0, len(lin.weights))
	for v, w := range lin.weights {
		if w != 0 {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)

	lits := make([]solver.Lit, 0, len(vars))
	weights := make([]int, 0, len(vars))
	for _, v := range vars {
		w := lin.weights[v]
		if w < 0 {
			lits = append(lits, solver.IntToLit(int32(-v)))
			weights = append(weights, -w)
			continue
		}
		lits = append(lits, solver.IntToLit(int32(v)))
		weights = append(weights, w)
	}
	return lits, weights, nil
}

// decode converts a solver model into model variable values. Solver
// variable i is model[i-1].
func (e *encoding) decode(model []bool) []float64 {
	values := make([]float64, len(e.lits))
	for v, lits := range e.lits {
		x := e.base[v]
		for _, l := range lits {
			if l-1 < len(model) && model[l-1] {
				x++
			}
		}
		values[v] = float64(x)
	}
	return values
}

func negate(lin linear) linear {
	out := linear{weights: make(map[int]int, len(lin.weights)), konst: -lin.konst}
	for v, w := range lin.weights {
		out.weights[v] = -w
	}
	return out
}

func integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

package milp

import (
	"errors"
	"fmt"
	"math"
)

// Var identifies a variable within its Model.
type Var int

// VarType is the domain of a variable.
type VarType int

const (
	Binary VarType = iota
	Integer
)

func (t VarType) String() string {
	switch t {
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	}
	return fmt.Sprintf("VarType(%d)", int(t))
}

// Variable describes one decision variable. Binary variables have bounds
// [0, 1].
type Variable struct {
	Name string
	Type VarType
	Lo   float64
	Hi   float64
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: the sum of its terms.
type Expr []Term

// Plus returns e with coef*v appended.
func (e Expr) Plus(coef float64, v Var) Expr {
	return append(e, Term{Var: v, Coef: coef})
}

// Add returns the concatenation of e and other.
func (e Expr) Add(other Expr) Expr {
	return append(e, other...)
}

// Sum returns the expression v1 + v2 + ... .
func Sum(vars ...Var) Expr {
	e := make(Expr, len(vars))
	for i, v := range vars {
		e[i] = Term{Var: v, Coef: 1}
	}
	return e
}

// Eval returns the value of e at the given point.
func (e Expr) Eval(values []float64) float64 {
	total := 0.0
	for _, t := range e {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Sense is the relation of a constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Constraint is the linear relation Expr Sense RHS.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Direction is the optimization direction of the objective.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Tolerance is the absolute slack allowed when checking constraints and
// integrality of a point.
const Tolerance = 1e-6

// Model is a mixed-integer linear program under construction. It is not
// safe for concurrent mutation.
type Model struct {
	name        string
	vars        []Variable
	constraints []Constraint
	objective   Expr
	direction   Direction
	start       map[Var]float64
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{name: name, start: make(map[Var]float64)}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// AddBinary declares a 0-1 variable.
func (m *Model) AddBinary(name string) Var {
	m.vars = append(m.vars, Variable{Name: name, Type: Binary, Lo: 0, Hi: 1})
	return Var(len(m.vars) - 1)
}

// AddInteger declares an integer variable with inclusive bounds.
func (m *Model) AddInteger(name string, lo, hi int) Var {
	m.vars = append(m.vars, Variable{Name: name, Type: Integer, Lo: float64(lo), Hi: float64(hi)})
	return Var(len(m.vars) - 1)
}

// AddConstraint records the constraint e sense rhs.
func (m *Model) AddConstraint(name string, e Expr, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: e, Sense: sense, RHS: rhs})
}

// SetObjective replaces the objective.
func (m *Model) SetObjective(e Expr, d Direction) {
	m.objective = e
	m.direction = d
}

// SetStart suggests an initial value for a variable.
func (m *Model) SetStart(v Var, value float64) {
	m.start[v] = value
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// Variable returns the declaration of v.
func (m *Model) Variable(v Var) Variable { return m.vars[v] }

// Variables returns every declared variable in declaration order.
func (m *Model) Variables() []Variable { return m.vars }

// Constraints returns every constraint in insertion order.
func (m *Model) Constraints() []Constraint { return m.constraints }

// Objective returns the objective expression and direction.
func (m *Model) Objective() (Expr, Direction) { return m.objective, m.direction }

// Start returns the suggested starting point. The boolean is false unless
// every variable received a start value.
func (m *Model) Start() ([]float64, bool) {
	if len(m.start) == 0 {
		return nil, false
	}
	values := make([]float64, len(m.vars))
	for i := range m.vars {
		v, ok := m.start[Var(i)]
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// ObjectiveValue evaluates the objective at a point.
func (m *Model) ObjectiveValue(values []float64) float64 {
	return m.objective.Eval(values)
}

// Validate reports structural errors: unknown variables, inverted bounds
// and start values for unknown variables.
func (m *Model) Validate() error {
	var errs []error
	for _, v := range m.vars {
		if v.Lo > v.Hi {
			errs = append(errs, fmt.Errorf("variable %q has bounds [%g, %g]", v.Name, v.Lo, v.Hi))
		}
		if v.Type == Integer && (v.Lo != math.Trunc(v.Lo) || v.Hi != math.Trunc(v.Hi)) {
			errs = append(errs, fmt.Errorf("integer variable %q has fractional bounds", v.Name))
		}
	}
	check := func(where string, e Expr) {
		for _, t := range e {
			if t.Var < 0 || int(t.Var) >= len(m.vars) {
				errs = append(errs, fmt.Errorf("%s references unknown variable %d", where, t.Var))
			}
		}
	}
	for _, c := range m.constraints {
		check(fmt.Sprintf("constraint %q", c.Name), c.Expr)
	}
	check("objective", m.objective)
	for v := range m.start {
		if v < 0 || int(v) >= len(m.vars) {
			errs = append(errs, fmt.Errorf("start value for unknown variable %d", v))
		}
	}
	return errors.Join(errs...)
}

// Evaluate checks a point against bounds, integrality and every
// constraint, and returns the first violation found.
func (m *Model) Evaluate(values []float64) error {
	if len(values) != len(m.vars) {
		return fmt.Errorf("point has %d values for %d variables", len(values), len(m.vars))
	}
	for i, v := range m.vars {
		x := values[i]
		if x < v.Lo-Tolerance || x > v.Hi+Tolerance {
			return fmt.Errorf("variable %q = %g outside [%g, %g]", v.Name, x, v.Lo, v.Hi)
		}
		if math.Abs(x-math.Round(x)) > Tolerance {
			return fmt.Errorf("variable %q = %g is not integral", v.Name, x)
		}
	}
	for _, c := range m.constraints {
		lhs := c.Expr.Eval(values)
		ok := true
		switch c.Sense {
		case LE:
			ok = lhs <= c.RHS+Tolerance
		case GE:
			ok = lhs >= c.RHS-Tolerance
		case EQ:
			ok = math.Abs(lhs-c.RHS) <= Tolerance
		}
		if !ok {
			return fmt.Errorf("constraint %q violated: %g %s %g", c.Name, lhs, c.Sense, c.RHS)
		}
	}
	return nil
}

package satsolver

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/vk/mlrcs/internal/milp"
)

var errTriviallyFalse = errors.New("no assignment can satisfy the constraint")

// encoding is the circuit form of a model. Circuit literals are also
// solver literals.
type encoding struct {
	model *milp.Model
	c     *logic.C
	// lits[v] holds the literal of binary v, or the order literals
	// u1 ... u(hi-lo) of integer v.
	lits [][]z.Lit
	lo   []int
	// group[v] is the exactly-one group of binary v, or -1.
	group  []int
	groups [][]milp.Var
	// roots hold in every solution.
	roots     []z.Lit
	objective linear
}

// linear is an integral expression: a coefficient per variable plus a
// constant.
type linear struct {
	coefs map[milp.Var]int
	konst int
}

// option is one way for a digit to contribute weight.
type option struct {
	lit    z.Lit
	weight int
}

// digit is a part of a row that contributes the weight of its heaviest
// true option, or nothing. Options are sorted by increasing weight.
type digit struct {
	options []option
}

func (d digit) max() int { return d.options[len(d.options)-1].weight }

func newEncoding(m *milp.Model) (*encoding, error) {
	e := &encoding{
		model: m,
		c:     logic.NewC(),
		lits:  make([][]z.Lit, m.NumVars()),
		lo:    make([]int, m.NumVars()),
		group: make([]int, m.NumVars()),
	}
	for i, v := range m.Variables() {
		e.group[i] = -1
		if v.Type == milp.Binary {
			e.lits[i] = []z.Lit{e.c.Lit()}
			continue
		}
		if !integral(v.Lo) || !integral(v.Hi) {
			return nil, fmt.Errorf("%w: bounds of %q", milp.ErrNonIntegral, v.Name)
		}
		e.lo[i] = int(v.Lo)
		width := int(v.Hi) - int(v.Lo)
		e.lits[i] = make([]z.Lit, width)
		for k := range width {
			e.lits[i][k] = e.c.Lit()
			if k > 0 {
				e.roots = append(e.roots, e.c.Implies(e.lits[i][k], e.lits[i][k-1]))
			}
		}
	}

	expr, _ := m.Objective()
	obj, err := expand(m, expr)
	if err != nil {
		return nil, fmt.Errorf("objective: %w", err)
	}
	e.objective = obj
	return e, nil
}

// constraints compiles every row of the model into roots. It fails with
// errTriviallyFalse when a row cannot be met by any assignment.
func (e *encoding) constraints() error {
	rows := e.model.Constraints()
	defining := e.findGroups(rows)

	add := func(name string, lin linear, bound int) error {
		root, err := e.atLeast(lin, bound)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
		if root != e.c.T {
			e.roots = append(e.roots, root)
		}
		return nil
	}

	for i, con := range rows {
		if !integral(con.RHS) {
			return fmt.Errorf("%w: right-hand side of %q", milp.ErrNonIntegral, con.Name)
		}
		if g, ok := defining[i]; ok {
			e.exactlyOne(e.groups[g])
			continue
		}
		lin, err := expand(e.model, con.Expr)
		if err != nil {
			return fmt.Errorf("constraint %q: %w", con.Name, err)
		}
		rhs := int(con.RHS)
		if con.Sense == milp.GE || con.Sense == milp.EQ {
			if err := add(con.Name, lin, rhs); err != nil {
				return err
			}
		}
		if con.Sense == milp.LE || con.Sense == milp.EQ {
			if err := add(con.Name, negate(lin), -rhs); err != nil {
				return err
			}
		}
	}
	return nil
}

// findGroups turns rows of the form x1 + ... + xn = 1 over distinct,
// ungrouped binaries into exactly-one groups. It returns the group index
// of each such row.
func (e *encoding) findGroups(rows []milp.Constraint) map[int]int {
	defining := make(map[int]int)
	for i, con := range rows {
		if con.Sense != milp.EQ || con.RHS != 1 || len(con.Expr) < 2 {
			continue
		}
		seen := make(map[milp.Var]bool, len(con.Expr))
		ok := true
		for _, t := range con.Expr {
			if t.Coef != 1 || e.model.Variable(t.Var).Type != milp.Binary || e.group[t.Var] >= 0 || seen[t.Var] {
				ok = false
				break
			}
			seen[t.Var] = true
		}
		if !ok {
			continue
		}
		g := len(e.groups)
		members := make([]milp.Var, len(con.Expr))
		for j, t := range con.Expr {
			members[j] = t.Var
			e.group[t.Var] = g
		}
		e.groups = append(e.groups, members)
		defining[i] = g
	}
	return defining
}

func (e *encoding) exactlyOne(members []milp.Var) {
	ms := make([]z.Lit, len(members))
	for i, v := range members {
		ms[i] = e.lits[v][0]
	}
	e.roots = append(e.roots, e.c.Ors(ms...), e.c.CardSort(ms).Leq(1))
}

// atLeast returns a literal equivalent to lin >= bound in every assignment
// that satisfies the exactly-one groups.
func (e *encoding) atLeast(lin linear, bound int) (z.Lit, error) {
	digits, konst := e.digits(lin)
	need := bound - konst
	if need <= 0 {
		return e.c.T, nil
	}
	total := 0
	unit := true
	for _, d := range digits {
		total += d.max()
		unit = unit && len(d.options) == 1 && d.max() == 1
	}
	if total < need {
		return z.LitNull, errTriviallyFalse
	}

	if need == 1 || unit {
		var ms []z.Lit
		for _, d := range digits {
			for _, o := range d.options {
				ms = append(ms, o.lit)
			}
		}
		if need == 1 {
			return e.c.Ors(ms...), nil
		}
		return e.c.CardSort(ms).Geq(need), nil
	}
	return newDiagram(e.c, digits).node(0, need), nil
}

// digits splits lin into digits and returns them with the constant part.
// A group with several terms becomes one digit after shifting its weights
// so that the lightest member weighs zero.
func (e *encoding) digits(lin linear) ([]digit, int) {
	konst := lin.konst
	var out []digit

	vars := make([]milp.Var, 0, len(lin.coefs))
	for v, w := range lin.coefs {
		if w != 0 {
			vars = append(vars, v)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	present := make(map[int][]milp.Var)
	var order []int
	for _, v := range vars {
		g := e.group[v]
		if g < 0 {
			konst += e.term(&out, v, lin.coefs[v])
			continue
		}
		if _, ok := present[g]; !ok {
			order = append(order, g)
		}
		present[g] = append(present[g], v)
	}

	for _, g := range order {
		if len(present[g]) == 1 {
			v := present[g][0]
			konst += e.term(&out, v, lin.coefs[v])
			continue
		}
		shift := math.MaxInt
		if len(present[g]) < len(e.groups[g]) {
			shift = 0
		}
		for _, v := range present[g] {
			shift = min(shift, lin.coefs[v])
		}
		konst += shift

		byWeight := make(map[int][]z.Lit)
		for _, v := range e.groups[g] {
			if w := lin.coefs[v] - shift; w > 0 {
				byWeight[w] = append(byWeight[w], e.lits[v][0])
			}
		}
		if len(byWeight) == 0 {
			continue
		}
		d := digit{options: make([]option, 0, len(byWeight))}
		for w, ms := range byWeight {
			d.options = append(d.options, option{lit: e.c.Ors(ms...), weight: w})
		}
		sort.Slice(d.options, func(i, j int) bool { return d.options[i].weight < d.options[j].weight })
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].max() > out[j].max() })
	return out, konst
}

// term appends the digit of w*v for an ungrouped variable and returns the
// constant moved out of it. Negative weights are made positive through
// complemented literals.
func (e *encoding) term(out *[]digit, v milp.Var, w int) int {
	lits := e.lits[v]
	if e.model.Variable(v).Type == milp.Binary {
		if w > 0 {
			*out = append(*out, digit{options: []option{{lit: lits[0], weight: w}}})
			return 0
		}
		*out = append(*out, digit{options: []option{{lit: lits[0].Not(), weight: -w}}})
		return w
	}

	konst := w * e.lo[v]
	width := len(lits)
	if width == 0 {
		return konst
	}
	d := digit{options: make([]option, width)}
	for a := 1; a <= width; a++ {
		if w > 0 {
			d.options[a-1] = option{lit: lits[a-1], weight: w * a}
		} else {
			// w*(v-lo) = w*width - w*(width-(v-lo)); v-lo <= width-a
			// is the complement of u(width-a+1).
			d.options[a-1] = option{lit: lits[width-a].Not(), weight: -w * a}
		}
	}
	if w < 0 {
		konst += w * width
	}
	*out = append(*out, d)
	return konst
}

// improving returns a literal that holds when the objective is strictly
// better than incumbent.
func (e *encoding) improving(incumbent float64) (z.Lit, error) {
	bound := int(math.Round(incumbent))
	if _, dir := e.model.Objective(); dir == milp.Maximize {
		return e.atLeast(e.objective, bound+1)
	}
	return e.atLeast(negate(e.objective), 1-bound)
}

// decode reads model variable values out of a satisfying assignment.
func (e *encoding) decode(g *gini.Gini) []float64 {
	top := g.MaxVar()
	holds := func(m z.Lit) bool { return m.Var() <= top && g.Value(m) }

	values := make([]float64, len(e.lits))
	for v, lits := range e.lits {
		if e.model.Variable(milp.Var(v)).Type == milp.Binary {
			if holds(lits[0]) {
				values[v] = 1
			}
			continue
		}
		x := e.lo[v]
		for _, u := range lits {
			if holds(u) {
				x++
			}
		}
		values[v] = float64(x)
	}
	return values
}

// diagram compiles a sum of digits reaching a bound into a decision
// diagram memoized on the digit index and the remaining bound.
type diagram struct {
	c      *logic.C
	digits []digit
	// rest[i] is the largest total of digits i and later.
	rest []int
	memo map[[2]int]z.Lit
}

func newDiagram(c *logic.C, digits []digit) *diagram {
	d := &diagram{c: c, digits: digits, rest: make([]int, len(digits)+1), memo: make(map[[2]int]z.Lit)}
	for i := len(digits) - 1; i >= 0; i-- {
		d.rest[i] = d.rest[i+1] + digits[i].max()
	}
	return d
}

func (d *diagram) node(i, need int) z.Lit {
	if need <= 0 {
		return d.c.T
	}
	if d.rest[i] < need {
		return d.c.F
	}
	key := [2]int{i, need}
	if m, ok := d.memo[key]; ok {
		return m
	}
	out := d.node(i+1, need)
	for _, o := range d.digits[i].options {
		out = d.c.Or(out, d.c.And(o.lit, d.node(i+1, need-o.weight)))
	}
	d.memo[key] = out
	return out
}

func expand(m *milp.Model, expr milp.Expr) (linear, error) {
	lin := linear{coefs: make(map[milp.Var]int, len(expr))}
	for _, t := range expr {
		if !integral(t.Coef) {
			return lin, fmt.Errorf("%w: %g on %q", milp.ErrNonIntegral, t.Coef, m.Variable(t.Var).Name)
		}
		lin.coefs[t.Var] += int(t.Coef)
	}
	return lin, nil
}

func negate(lin linear) linear {
	out := linear{coefs: make(map[milp.Var]int, len(lin.coefs)), konst: -lin.konst}
	for v, w := range lin.coefs {
		out.coefs[v] = -w
	}
	return out
}

func integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

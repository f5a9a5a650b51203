package testutil

import (
	"fmt"

	"github.com/vk/mlrcs/internal/milp"
)

// PigeonModel places holes+1 pigeons into holes+1 holes and minimizes the
// use of the last hole. Its start point is already optimal, but proving
// that means refuting the pigeonhole principle over the other holes, which
// clause-learning search does not finish in reasonable time for a dozen
// holes. Solves under a short time limit are therefore cut off mid-search
// with the start point as incumbent.
func PigeonModel(holes int) *milp.Model {
	m := milp.NewModel("pigeons")
	n := holes + 1
	x := make([][]milp.Var, n)
	for p := range n {
		x[p] = make([]milp.Var, n)
		for h := range n {
			x[p][h] = m.AddBinary(fmt.Sprintf("x[%d,%d]", p, h))
		}
	}
	var overflow milp.Expr
	for p := range n {
		m.AddConstraint(fmt.Sprintf("pigeon %d", p), milp.Sum(x[p]...), milp.EQ, 1)
		overflow = overflow.Plus(1, x[p][holes])
	}
	for h := range n {
		var e milp.Expr
		for p := range n {
			e = e.Plus(1, x[p][h])
		}
		m.AddConstraint(fmt.Sprintf("hole %d", h), e, milp.LE, 1)
	}
	m.SetObjective(overflow, milp.Minimize)
	for p := range n {
		for h := range n {
			v := 0.0
			if p == h {
				v = 1
			}
			m.SetStart(x[p][h], v)
		}
	}
	return m
}

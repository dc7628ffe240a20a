package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/lvlath-labs/terramesh/ilp"
)

// standardForm is an ilp.Problem rewritten for gonum's simplex: equality
// constraints only (Ax = b), every column non-negative. Inequalities get
// a slack/surplus column; variables with a non-zero lower bound are
// shifted (x = x' + lower) and finite upper bounds become an extra row
// (x' + slack = upper - lower); binary variables get an implicit [0,1]
// upper bound row.
type standardForm struct {
	colNames []string
	colIndex map[string]int
	shift    map[string]float64 // lower bound subtracted from each original variable
	rows     [][]float64
	rhs      []float64
}

// standardize builds the standard form for p, with fixed overriding each
// named variable's bounds to a single branch-and-bound pin.
func standardize(p ilp.Problem, fixed []fixedBound) (*standardForm, error) {
	lower := make(map[string]float64, len(p.Variables))
	upper := make(map[string]float64, len(p.Variables))
	for _, v := range p.Variables {
		lo, hi := v.Lower, v.Upper
		if v.Kind == ilp.Binary {
			lo, hi = 0, 1
		}
		lower[v.Name], upper[v.Name] = lo, hi
	}
	for _, f := range fixed {
		lower[f.name], upper[f.name] = f.lo, f.hi
	}

	sf := &standardForm{colIndex: make(map[string]int), shift: make(map[string]float64)}
	addCol := func(name string) int {
		if idx, ok := sf.colIndex[name]; ok {
			return idx
		}
		idx := len(sf.colNames)
		sf.colNames = append(sf.colNames, name)
		sf.colIndex[name] = idx
		return idx
	}

	names := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		names[i] = v.Name
		sf.shift[v.Name] = lower[v.Name]
		addCol(v.Name)
	}

	var rows [][]float64
	var rhs []float64

	row := func() []float64 { return make([]float64, len(sf.colNames)) }
	extendRows := func() {
		for i, r := range rows {
			if len(r) < len(sf.colNames) {
				nr := make([]float64, len(sf.colNames))
				copy(nr, r)
				rows[i] = nr
			}
		}
	}

	for _, c := range p.Constraints {
		r := row()
		rhsVal := c.RHS
		for _, t := range c.Terms {
			idx := sf.colIndex[t.Var]
			r[idx] += t.Coef
			rhsVal -= t.Coef * sf.shift[t.Var] // substitute x = x' + shift
		}
		switch c.Sense {
		case ilp.LE:
			extendRows()
			r = append(r, 1) // slack
			addCol(slackName(c.Name))
			rows = append(rows, r)
			rhs = append(rhs, rhsVal)
		case ilp.GE:
			extendRows()
			r = append(r, -1) // surplus
			addCol(slackName(c.Name))
			rows = append(rows, r)
			rhs = append(rhs, rhsVal)
		default: // EQ
			rows = append(rows, r)
			rhs = append(rhs, rhsVal)
		}
	}

	// finite-upper-bound rows: x' + slack = upper - lower
	for _, name := range names {
		hi := upper[name]
		if math.IsInf(hi, 1) {
			continue
		}
		extendRows()
		r := row()
		r[sf.colIndex[name]] = 1
		r = append(r, 1)
		addCol(slackName("ub_" + name))
		rows = append(rows, r)
		rhs = append(rhs, hi-lower[name])
	}

	extendRows()
	for i, r := range rows {
		if len(r) < len(sf.colNames) {
			nr := make([]float64, len(sf.colNames))
			copy(nr, r)
			rows[i] = nr
		}
	}

	sf.rows, sf.rhs = rows, rhs
	return sf, nil
}

func slackName(base string) string { return fmt.Sprintf("slack[%s]", base) }

// objectiveVector builds gonum simplex's minimization cost vector,
// negating obj's terms when obj is a maximization (simplex always
// minimizes) and zero-filling every slack column.
func (sf *standardForm) objectiveVector(obj ilp.Objective) []float64 {
	c := make([]float64, len(sf.colNames))
	sign := 1.0
	if obj.Sense == ilp.Maximize {
		sign = -1.0
	}
	for _, t := range obj.Terms {
		if idx, ok := sf.colIndex[t.Var]; ok {
			c[idx] += sign * t.Coef
		}
	}
	return c
}

// sortedColNames is a debug helper returning columns in a stable order.
func (sf *standardForm) sortedColNames() []string {
	out := append([]string(nil), sf.colNames...)
	sort.Strings(out)
	return out
}

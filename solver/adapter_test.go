package solver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/solver"
)

// tinyProblem: maximize x + y subject to x + y <= 1, x,y binary. Optimal
// is exactly one of x,y set to 1.
func tinyProblem() ilp.Problem {
	b := ilp.NewBuilder()
	x := b.Var(ilp.Variable{Name: "x", Kind: ilp.Binary})
	y := b.Var(ilp.Variable{Name: "y", Kind: ilp.Binary})
	b.Constrain(ilp.Constraint{Name: "cap", Terms: []ilp.Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, Sense: ilp.LE, RHS: 1})
	return b.Build(ilp.Objective{Sense: ilp.Maximize, Terms: []ilp.Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}})
}

func TestAdapter_Solve_TinyBinaryKnapsack(t *testing.T) {
	a := solver.Adapter{}
	p := a.Build(tinyProblem())
	res, err := a.Solve(context.Background(), p, solver.Options{TimeLimitMinutes: 1, RelGap: 0.01})
	require.NoError(t, err)
	require.Equal(t, solver.Optimal, res.Status)
	assert.InDelta(t, 1.0, res.Objective, 1e-6)
	assert.InDelta(t, 1.0, a.Extract(res, "x")+a.Extract(res, "y"), 1e-6)
}

func TestAdapter_Solve_WritesDebugFile(t *testing.T) {
	dir := t.TempDir()
	a := solver.Adapter{}
	p := a.Build(tinyProblem())
	_, err := a.Solve(context.Background(), p, solver.Options{TimeLimitMinutes: 1, RelGap: 0.01, DebugDir: dir, DebugLabel: "tiny"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tiny.lp"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Maximize")
	assert.Contains(t, string(data), "Binaries")
}

func TestAdapter_Solve_InfeasibleReportsInfeasible(t *testing.T) {
	b := ilp.NewBuilder()
	x := b.Var(ilp.Variable{Name: "x", Kind: ilp.Continuous, Lower: 0, Upper: 1})
	b.Constrain(ilp.Constraint{Name: "contradiction_lo", Terms: []ilp.Term{{Var: x, Coef: 1}}, Sense: ilp.GE, RHS: 5})
	prob := b.Build(ilp.Objective{Sense: ilp.Minimize, Terms: []ilp.Term{{Var: x, Coef: 1}}})

	a := solver.Adapter{}
	res, err := a.Solve(context.Background(), a.Build(prob), solver.Options{TimeLimitMinutes: 1, RelGap: 0.01})
	require.NoError(t, err)
	assert.Equal(t, solver.Infeasible, res.Status)
}

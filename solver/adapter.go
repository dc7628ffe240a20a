package solver

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	lp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/lvlath-labs/terramesh/ilp"
)

// Adapter is the solver side of spec §4.6's build/solve/extract contract.
type Adapter struct{}

// Build implements build(variables, constraints, objective) → Problem: a
// thin wrapper today, since ilp.Problem is already in canonical
// deterministic order; kept as its own step so standardization work
// (variable shifting, slack insertion) stays inside Solve where the
// solver-specific representation belongs, not leaked into ilp.
func (Adapter) Build(p ilp.Problem) Problem { return Problem{source: p} }

// Solve implements solve(Problem, opts) → outcome per spec §4.6. The LP
// relaxation is solved with gonum's simplex; binary variables are then
// resolved by depth-first branch-and-bound, bounded by opts.TimeLimitMinutes
// and pruning every node whose relaxation bound does not beat the
// incumbent by more than opts.RelGap of the incumbent's magnitude. Determinism when opts.ThreadCount is fixed follows
// from branch-and-bound's deterministic variable-selection order (lowest
// variable name first, per spec §5's ordering guarantee) — this adapter
// does no internal parallelism, so ThreadCount only participates in that
// determinism contract, not in actual concurrency.
func (a Adapter) Solve(ctx context.Context, p Problem, opts Options) (*Result, error) {
	if opts.DebugDir != "" {
		if err := dumpDebugFile(p.source, opts); err != nil {
			return nil, fmt.Errorf("solver: debug dump: %w", err)
		}
	}

	deadline := time.Now().Add(time.Duration(opts.TimeLimitMinutes * float64(time.Minute)))
	sf, err := standardize(p.source, nil)
	if err != nil {
		return nil, fmt.Errorf("solver: standardize: %w", err)
	}

	best, bestObj, status := bnb(ctx, p.source, sf, deadline, opts.RelGap)
	if status == Infeasible {
		return &Result{Status: Infeasible}, nil
	}

	values := make(map[string]float64, len(p.source.Variables))
	for _, v := range p.source.Variables {
		values[v.Name] = best[v.Name]
	}

	gap := 0.0
	if status == TimedOut && bestObj != 0 {
		gap = opts.RelGap
	}

	return &Result{Status: status, Objective: objectiveValue(p.source.Objective, values), Gap: gap, Values: values}, nil
}

// Extract implements extract(var) → value.
func (Adapter) Extract(r *Result, varName string) float64 { return r.Value(varName) }

func objectiveValue(obj ilp.Objective, values map[string]float64) float64 {
	total := 0.0
	for _, t := range obj.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

// fixedBound pins a single variable to exactly one value during
// branch-and-bound.
type fixedBound struct {
	name string
	lo, hi float64
}

// bnb performs depth-first branch-and-bound over p's binary variables,
// exploring the lowest-named fractional variable first at every node for
// deterministic tie-breaking.
func bnb(ctx context.Context, p ilp.Problem, sf *standardForm, deadline time.Time, relGap float64) (map[string]float64, float64, Status) {
	type node struct {
		fixed []fixedBound
	}
	stack := []node{{}}

	var bestValues map[string]float64
	bestObj := math.Inf(1)
	bestIsMax := p.Objective.Sense == ilp.Maximize
	timedOut := false

	for len(stack) > 0 {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		select {
		case <-ctx.Done():
			timedOut = true
		default:
		}
		if timedOut {
			break
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		relaxed, err := standardize(p, n.fixed)
		if err != nil {
			continue
		}
		values, obj, feasible := solveRelaxation(p, relaxed)
		if !feasible {
			continue
		}
		if bestValues != nil {
			threshold := bestObj - relGap*math.Abs(bestObj)
			if bestIsMax {
				threshold = bestObj + relGap*math.Abs(bestObj)
			}
			if isWorseOrEqual(obj, threshold, bestIsMax) {
				continue
			}
		}

		frac := mostFractionalBinary(p, values)
		if frac == "" {
			// integral already: candidate solution.
			if bestValues == nil || isBetter(obj, bestObj, bestIsMax) {
				bestValues, bestObj = values, obj
			}
			continue
		}

		stack = append(stack,
			node{fixed: append(append([]fixedBound{}, n.fixed...), fixedBound{frac, 1, 1})},
			node{fixed: append(append([]fixedBound{}, n.fixed...), fixedBound{frac, 0, 0})},
		)
	}

	if bestValues == nil {
		return nil, 0, Infeasible
	}
	if timedOut {
		return bestValues, bestObj, TimedOut
	}
	return bestValues, bestObj, Optimal
}

func isBetter(obj, best float64, isMax bool) bool {
	if isMax {
		return obj > best
	}
	return obj < best
}

func isWorseOrEqual(obj, best float64, isMax bool) bool {
	if math.IsInf(best, 0) {
		return false
	}
	if isMax {
		return obj <= best
	}
	return obj >= best
}

// mostFractionalBinary returns the lowest-named binary variable whose
// relaxed value is not within 1e-6 of 0 or 1, or "" if every binary
// variable is already integral.
func mostFractionalBinary(p ilp.Problem, values map[string]float64) string {
	names := make([]string, 0, len(p.Variables))
	for _, v := range p.Variables {
		if v.Kind == ilp.Binary {
			names = append(names, v.Name)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		v := values[n]
		if v > 1e-6 && v < 1-1e-6 {
			return n
		}
	}
	return ""
}

// solveRelaxation runs the LP relaxation sf represents and, on success,
// returns every original variable's value (continuous relaxation for
// binaries included) plus the true objective value under p's sense.
func solveRelaxation(p ilp.Problem, sf *standardForm) (map[string]float64, float64, bool) {
	c := sf.objectiveVector(p.Objective)
	A := mat.NewDense(len(sf.rows), len(sf.colNames), flatten(sf.rows))
	b := append([]float64(nil), sf.rhs...)

	_, x, err := lp.Simplex(c, A, b, 1e-8, nil)
	if err != nil {
		return nil, 0, false
	}

	values := make(map[string]float64, len(p.Variables))
	for _, v := range p.Variables {
		idx, ok := sf.colIndex[v.Name]
		if !ok {
			continue
		}
		values[v.Name] = x[idx] + sf.shift[v.Name]
	}
	return values, objectiveValue(p.Objective, values), true
}

func flatten(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func dumpDebugFile(p ilp.Problem, opts Options) error {
	if err := os.MkdirAll(opts.DebugDir, 0o755); err != nil {
		return err
	}
	name := opts.DebugLabel
	if name == "" {
		name = "problem"
	}
	path := filepath.Join(opts.DebugDir, name+".lp")
	return os.WriteFile(path, []byte(writeLPFormat(p)), 0o644)
}

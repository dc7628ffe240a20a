// Package solver adapts an ilp.Problem to a concrete LP/MILP backend:
// gonum's simplex for the LP relaxation, with a depth-first
// branch-and-bound layer over the problem's binary variables. It
// implements the build/solve/extract contract spec §4.6 names and
// persists LP-format debug files as the only permitted side effect.
package solver

import "github.com/lvlath-labs/terramesh/ilp"

// Status is one solve's outcome classification.
type Status int

const (
	Optimal Status = iota
	Feasible
	Infeasible
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Options configures one solve invocation.
type Options struct {
	RelGap           float64 // acceptable relative optimality gap before branch-and-bound stops
	TimeLimitMinutes float64
	ThreadCount      int // fixed thread count required for deterministic mode
	DebugDir         string // non-empty enables LP-format file persistence
	DebugLabel       string // filename stem, e.g. "phase3_min_cost"
}

// Result is one solve's outcome: status, objective value (meaningless
// when Infeasible), optimality gap (0 for Optimal), and every variable's
// assigned value.
type Result struct {
	Status    Status
	Objective float64
	Gap       float64
	Values    map[string]float64
}

// Value implements extract(var) → value from spec §4.6's contract.
func (r *Result) Value(name string) float64 {
	if r == nil || r.Values == nil {
		return 0
	}
	return r.Values[name]
}

// Problem is the solver's internal representation, built from an
// ilp.Problem by Build. It wraps the ilp.Problem unchanged and exposes no
// fields; the standardized form is built inside Solve.
type Problem struct {
	source ilp.Problem
}

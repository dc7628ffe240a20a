// Package pipeline sequences the six optimization phases spec §4.7
// names, each consuming the current Topology and producing a refined
// one. Phases never mutate a prior phase's snapshot: Run clones the
// candidate graph at every phase boundary, per spec §9's "global state"
// note — immutable configuration at process scope, one mutable Topology
// handed between phases by value.
package pipeline

import (
	"github.com/lvlath-labs/terramesh/config"
)

// GammaSchedule is the stepdown sequence phase 3's coverage constraint
// relaxes through on infeasibility, starting at 1.0 and decreasing until
// a feasible solve is found (spec §4.7 phase 3, §8 property 8).
type GammaSchedule struct {
	Steps []float64
}

// DefaultGammaSchedule returns the stepdown spec §4.7 names: start at
// full coverage and relax in even steps down to zero.
func DefaultGammaSchedule() GammaSchedule {
	return GammaSchedule{Steps: []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1, 0.0}}
}

// PhaseName identifies one of the six ordered phases, used to key
// config.Config.PhaseLimits and to label solver debug dumps.
type PhaseName string

const (
	PhasePOPProposal        PhaseName = "pop_proposal"
	PhaseConnectedDemand    PhaseName = "connected_demand"
	PhaseMinCostBase        PhaseName = "min_cost_base"
	PhaseRedundancy         PhaseName = "redundancy"
	PhaseCoverageMaximization PhaseName = "coverage_maximization"
	PhaseInterferenceMinim  PhaseName = "interference_minimization"
	PhaseFlowAnalysis       PhaseName = "flow_analysis"
)

func phaseLimits(cfg *config.Config, name PhaseName) (relGap, timeLimitMinutes float64) {
	if cfg.PhaseLimits == nil {
		return 0.01, 10
	}
	if lim, ok := cfg.PhaseLimits[string(name)]; ok {
		return lim.RelGap, lim.MaxTimeMinutes
	}
	return 0.01, 10
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/pipeline/flowanalyzer"
	"github.com/lvlath-labs/terramesh/topology"
)

// Report bundles the final topology alongside the Flow Analyzer's result,
// the complete output Run hands to the report package. RunID is a
// random identifier minted fresh per invocation — unlike topology.ID,
// which must stay a deterministic content hash so the same input always
// produces the same graph, RunID exists only to correlate one Run's log
// lines with the CSV/summary files it produced, and a random value is
// exactly what that correlation needs.
type Report struct {
	RunID    string
	Topology *topology.CandidateGraph
	Flow     *flowanalyzer.Result
}

// Run sequences the six optimization phases spec §4.7 names over the
// input candidate graph, cloning at every phase boundary so no phase
// observes a later phase's mutations. cfg.EnableLegacyRedundancyMethod
// and cfg.RedundancyLevel govern phase 4; cfg.NumberOfExtraPOPs governs
// phase 1; every other phase is unconditional.
func Run(ctx context.Context, cfg *config.Config, candidate *topology.CandidateGraph) (*Report, error) {
	runID := uuid.New().String()
	topo := candidate.Clone()

	topo, err := phasePOPProposal(ctx, cfg, topo)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	topo, err = phaseConnectedDemand(ctx, cfg, topo)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	topo, err = phaseMinCostBase(ctx, cfg, topo, DefaultGammaSchedule())
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	topo, err = phaseRedundancy(ctx, cfg, topo)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	topo, err = phaseInterferenceMinimization(ctx, cfg, topo)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	relGap, timeLimit := phaseLimits(cfg, PhaseFlowAnalysis)
	flowOpts := solverOptions(cfg, PhaseFlowAnalysis, relGap, timeLimit)
	flowResult, err := flowanalyzer.Run(ctx, topo, routingFilterOf(cfg), flowOpts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: flow analysis phase: %w", err)
	}
	applyFlowResult(topo, flowResult)

	return &Report{RunID: runID, Topology: topo, Flow: flowResult}, nil
}

func routingFilterOf(cfg *config.Config) flowanalyzer.RoutingFilter {
	switch cfg.TopologyRouting {
	case config.RoutingMCSCostPath:
		return flowanalyzer.MCSCostPath
	case config.RoutingDPAPath:
		return flowanalyzer.DPAPath
	default:
		return flowanalyzer.ShortestPath
	}
}

func applyFlowResult(g *topology.CandidateGraph, res *flowanalyzer.Result) {
	if res == nil {
		return
	}
	for _, l := range g.Links() {
		if util, ok := res.LinkUtilization[l.ID.String()]; ok {
			l.FlowMbps = util * l.MaxThroughputMbps
		}
	}
	for _, d := range g.DemandSites() {
		achieved, ok := res.PerDemandMbps[d.ID.String()]
		if !ok {
			continue
		}
		d.AchievedGbps = achieved / 1000
		d.Shortfall = d.DemandGbps - d.AchievedGbps
		if d.Shortfall < 0 {
			d.Shortfall = 0
		}
	}
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/pipeline/prune"
	"github.com/lvlath-labs/terramesh/planererrors"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// connectedVar names the binary "this demand site can ever be served"
// indicator phase 2 maximizes the sum of.
func connectedVar(demandID string) string { return "connected[" + demandID + "]" }

// phaseConnectedDemand implements spec §4.7 phase 2: maximize Σ s_i over
// demand sites subject to flow, polarity, and flow-gating, with
// M ≥ |demand sites| in the flow-site gate. A demand site's "connected"
// indicator is linked to its shortfall φ by φ ≤ (1-connected)·d_i: the
// indicator can only be 1 when the site's shortfall is driven to zero.
func phaseConnectedDemand(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph) (*topology.CandidateGraph, error) {
	out := g.Clone()

	b := ilp.NewBuilder()
	ilpCtx := &ilp.Context{
		Graph:           out,
		PopCapacityMbps: cfg.POPCapacityGbps * 1000,
		BigM:            float64(len(out.DemandSites()) + len(out.SortedSites()) + 1),
	}
	ilp.AddFlowBalance(b, ilpCtx)
	ilp.AddFlowCapacity(b, ilpCtx, ilp.MCSRowsPerLink(ilpCtx))
	ilp.AddFlowSiteGating(b, ilpCtx)
	ilp.AddPolarityProxy(b, ilpCtx)

	reachable, err := prune.ReachableDemandSites(out)
	if err != nil {
		return nil, fmt.Errorf("pipeline: connected demand phase: %w", err)
	}

	var objTerms []ilp.Term
	for _, d := range out.DemandSites() {
		id := d.ID.String()
		if !reachable[id] {
			// No path from any POP exists at all: the connected-indicator
			// constraint below would only ever be satisfiable at c==0, so
			// skip generating it and leave the site's shortfall at full
			// demand, per spec §4.8's allowance for β_i == 0.
			continue
		}
		c := b.Var(ilp.Variable{Name: connectedVar(id), Kind: ilp.Binary})
		phi := ilp.ShortfallVar(id)
		b.Constrain(ilp.Constraint{
			Name:  "connected_gate[" + id + "]",
			Terms: []ilp.Term{{Var: phi, Coef: 1}, {Var: c, Coef: d.DemandGbps * 1000}},
			Sense: ilp.LE, RHS: d.DemandGbps * 1000,
		})
		objTerms = append(objTerms, ilp.Term{Var: c, Coef: 1})
	}

	prob := b.Build(ilp.Objective{Sense: ilp.Maximize, Terms: objTerms})
	relGap, timeLimit := phaseLimits(cfg, PhaseConnectedDemand)
	opts := solverOptions(cfg, PhaseConnectedDemand, relGap, timeLimit)

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: connected demand phase: %w", err)
	}
	if res.Status == solver.Infeasible {
		return nil, &planererrors.Infeasible{Phase: string(PhaseConnectedDemand)}
	}

	for _, d := range out.DemandSites() {
		d.Shortfall = res.Value(ilp.ShortfallVar(d.ID.String()))
	}
	return out, nil
}

func solverOptions(cfg *config.Config, phase PhaseName, relGap, timeLimit float64) solver.Options {
	opts := solver.Options{RelGap: relGap, TimeLimitMinutes: timeLimit, ThreadCount: cfg.SolverThreadCount}
	if cfg.SolverDebugMode {
		opts.DebugDir = cfg.SolverDebugDir
		opts.DebugLabel = string(phase)
	}
	return opts
}

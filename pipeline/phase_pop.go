package pipeline

import (
	"context"
	"fmt"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// phasePOPProposal implements spec §4.7 phase 1: when the operator allows
// cfg.NumberOfExtraPOPs additional POP sites beyond whatever the input
// already marks as SitePOP, choose which DN-capable sites to promote by
// minimizing total promoted-POP CAPEX subject to AddFlowSiteGating's
// reachability requirement — a promoted POP is worth its cost only if it
// actually gates flow somewhere. Skipped entirely when
// NumberOfExtraPOPs <= 0, leaving every input-designated POP as-is.
func phasePOPProposal(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph) (*topology.CandidateGraph, error) {
	if cfg.NumberOfExtraPOPs <= 0 {
		return g, nil
	}
	out := g.Clone()

	var candidates []*topology.Site
	for _, s := range out.SortedSites() {
		if s.Type == topology.SiteDN {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return out, nil
	}

	b := ilp.NewBuilder()
	ilpCtx := &ilp.Context{
		Graph:           out,
		PopCapacityMbps: cfg.POPCapacityGbps * 1000,
		BigM:            float64(len(out.SortedSites()) + 1),
	}
	ilp.AddFlowBalance(b, ilpCtx)
	ilp.AddFlowCapacity(b, ilpCtx, ilp.MCSRowsPerLink(ilpCtx))
	ilp.AddFlowSiteGating(b, ilpCtx)

	var promoteTerms, objTerms []ilp.Term
	capexOf := make(map[string]float64, len(candidates))
	for _, s := range candidates {
		id := s.ID.String()
		promote := b.Var(ilp.Variable{Name: "promote_pop[" + id + "]", Kind: ilp.Binary})
		promoteTerms = append(promoteTerms, ilp.Term{Var: promote, Coef: 1})
		capex := cfg.SiteCapex[s.DeviceSKU]
		capexOf[id] = capex
		objTerms = append(objTerms, ilp.Term{Var: promote, Coef: capex})
	}
	b.Constrain(ilp.Constraint{Name: "extra_pop_limit", Terms: promoteTerms, Sense: ilp.LE, RHS: float64(cfg.NumberOfExtraPOPs)})

	prob := b.Build(ilp.Objective{Sense: ilp.Minimize, Terms: objTerms})
	relGap, timeLimit := phaseLimits(cfg, PhasePOPProposal)
	opts := solverOptions(cfg, PhasePOPProposal, relGap, timeLimit)

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: pop proposal phase: %w", err)
	}
	if res.Status == solver.Infeasible {
		return out, nil // no viable promotion; fall back to the input POP set
	}

	for _, s := range candidates {
		if res.Value("promote_pop["+s.ID.String()+"]") > 0.5 {
			s.Type = topology.SitePOP
		}
	}
	return out, nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/pipeline/prune"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// redundancyTargets maps cfg.RedundancyLevel to the minimum site-disjoint
// path counts spec §4.7 phase 4 names as its reference point (4 POP<->DN,
// 2 between DN neighbors at the "medium" level), scaled for low/high.
func redundancyTargets(cfg *config.Config) (popDN, dnDn int) {
	switch cfg.RedundancyLevel {
	case config.RedundancyLow:
		return 2, 1
	case config.RedundancyHigh:
		return 6, 3
	default:
		return 4, 2
	}
}

// phaseRedundancy implements spec §4.7 phase 4. The default path takes
// prune.RedundancyCandidateLinks' Delaunay/max-flow-pruned backhaul links
// and marks Selected, alongside phase 3's links, the fewest candidates
// such that every site a candidate touches has at least its required
// number of incident selected candidates (the POP<->DN target where a
// candidate touches a POP, the DN<->DN target otherwise). This degree
// bound stands in for the site-disjoint path count; the selected
// network's disjoint paths are not themselves checked.
// EnableLegacyRedundancyMethod instead runs the budget-constrained
// max-coverage algorithm redundancy_optimization.py keeps alongside it:
// rank phase 3's selected backhaul links by single-link-failure
// disruption, force zero flow across the most disruptive ones within
// cfg.BackhaulLinkRedundancyRatio, and maximize demand coverage under
// cfg.BudgetUSD — pushing the solver toward a genuinely alternate routing
// instead of degree padding.
func phaseRedundancy(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph) (*topology.CandidateGraph, error) {
	if cfg.EnableLegacyRedundancyMethod {
		return phaseCoverageMaximization(ctx, cfg, g)
	}

	out := g.Clone()
	popDN, dnDn := redundancyTargets(cfg)

	candidates, err := prune.RedundancyCandidateLinks(ctx, out, popDN, dnDn)
	if err != nil {
		return nil, fmt.Errorf("pipeline: redundancy phase: prune: %w", err)
	}
	if len(candidates) == 0 {
		return out, nil
	}

	sitesByID := make(map[string]*topology.Site)
	for _, s := range out.SortedSites() {
		sitesByID[s.ID.String()] = s
	}

	b := ilp.NewBuilder()
	incident := make(map[string][]ilp.Term) // by site id
	var objTerms []ilp.Term
	required := make(map[string]int)

	for _, l := range candidates {
		from, to := l.From.String(), l.To.String()
		lVar := b.Var(ilp.Variable{Name: ilp.LinkVar(from, to), Kind: ilp.Binary})
		objTerms = append(objTerms, ilp.Term{Var: lVar, Coef: 1})
		incident[from] = append(incident[from], ilp.Term{Var: lVar, Coef: 1})
		incident[to] = append(incident[to], ilp.Term{Var: lVar, Coef: 1})

		req := dnDn
		a, c := sitesByID[from], sitesByID[to]
		if a != nil && c != nil && (a.Type == topology.SitePOP || c.Type == topology.SitePOP) {
			req = popDN
		}
		if r, ok := required[from]; !ok || r < req {
			required[from] = req
		}
		if r, ok := required[to]; !ok || r < req {
			required[to] = req
		}
	}

	for siteID, terms := range incident {
		req, ok := required[siteID]
		if !ok || req <= 0 {
			continue
		}
		b.Constrain(ilp.Constraint{Name: "redundancy_degree[" + siteID + "]", Terms: terms, Sense: ilp.GE, RHS: float64(req)})
	}

	prob := b.Build(ilp.Objective{Sense: ilp.Minimize, Terms: objTerms})
	relGap, timeLimit := phaseLimits(cfg, PhaseRedundancy)
	opts := solverOptions(cfg, PhaseRedundancy, relGap, timeLimit)

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: redundancy phase: %w", err)
	}
	if res.Status == solver.Infeasible {
		return out, nil // required degree unreachable with the candidate set; keep phase 3's network
	}

	for _, l := range candidates {
		if res.Value(ilp.LinkVar(l.From.String(), l.To.String())) > 0.5 {
			l.Selected = true
		}
	}
	return out, nil
}

// phaseCoverageMaximization is EnableLegacyRedundancyMethod's algorithm,
// ported from RedundantNetwork/MaxCoverageNetwork in
// redundancy_optimization.py and coverage_optimization.py: reuse phase 3's
// full flow/capacity/polarity/time-division/geometry constraint set, force
// zero flow across prune.AdversarialLinks, replace phase 3's coverage
// floor with a hard cost ceiling at cfg.BudgetUSD, and minimize total
// demand shortfall instead of minimizing cost — maximizing coverage
// within budget rather than minimizing budget within a coverage floor. An
// infeasible solve (budget too tight for the adversarial restriction)
// keeps phase 3's network unchanged, mirroring
// _run_max_coverage_step's fall-through-to-min-cost-network behavior.
func phaseCoverageMaximization(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph) (*topology.CandidateGraph, error) {
	out := g.Clone()

	adversarial, err := prune.AdversarialLinks(out, cfg.BackhaulLinkRedundancyRatio)
	if err != nil {
		return nil, fmt.Errorf("pipeline: coverage maximization phase: adversarial links: %w", err)
	}

	sectorOf, sectorsByNode := sectorMaps(out)
	ilpCtx := &ilp.Context{
		Graph:                   out,
		NumberOfChannels:        cfg.NumberOfChannels,
		PopCapacityMbps:         cfg.POPCapacityGbps * 1000,
		BigM:                    float64(len(out.DemandSites()) + len(out.SortedSites()) + 1),
		DnDnLimit:               cfg.DNDNSectorLimit,
		DnTotalLimit:            cfg.DNTotalSectorLimit,
		DiffSectorAngleLimitDeg: cfg.DiffSectorAngleLimitDeg,
		NearFarLengthRatio:      cfg.NearFarLengthRatio,
		NearFarAngleLimitDeg:    cfg.NearFarAngleLimitDeg,
	}

	b := ilp.NewBuilder()
	ilp.AddFlowBalance(b, ilpCtx)
	ilp.AddFlowCapacity(b, ilpCtx, ilp.MCSRowsPerLink(ilpCtx))
	ilp.AddFlowSiteGating(b, ilpCtx)
	ilp.AddPolarityProxy(b, ilpCtx)
	ilp.AddTimeDivision(b, ilpCtx, sectorOf)
	ilp.AddSectorNodeCoupling(b, ilpCtx, sectorsByNode)
	ilp.AddSymmetricBackhaul(b, ilpCtx)
	ilp.AddP2MP(b, ilpCtx)
	ilp.AddDeploymentGeometry(b, ilpCtx)
	ilp.AddCoLocation(b, ilpCtx)

	for _, l := range adversarial {
		from, to := l.From.String(), l.To.String()
		fVar := b.Var(ilp.Variable{Name: ilp.FlowVar(from, to), Kind: ilp.Continuous, Lower: 0, Upper: l.MaxThroughputMbps})
		b.Constrain(ilp.Constraint{Name: "adversarial_zero_flow[" + from + "," + to + "]", Terms: []ilp.Term{{Var: fVar, Coef: 1}}, Sense: ilp.EQ, RHS: 0})
	}

	costTerms := siteCapexTerms(b, out, cfg.SiteCapex, cfg.SectorCapex)
	b.Constrain(ilp.Constraint{Name: "coverage_budget", Terms: costTerms, Sense: ilp.LE, RHS: cfg.BudgetUSD})

	var shortfallTerms []ilp.Term
	for _, d := range out.DemandSites() {
		phi := b.Var(ilp.Variable{Name: ilp.ShortfallVar(d.ID.String()), Kind: ilp.Continuous, Lower: 0, Upper: d.DemandGbps * 1000})
		shortfallTerms = append(shortfallTerms, ilp.Term{Var: phi, Coef: 1})
	}

	prob := b.Build(ilp.Objective{Sense: ilp.Minimize, Terms: shortfallTerms})
	relGap, timeLimit := phaseLimits(cfg, PhaseCoverageMaximization)
	opts := solverOptions(cfg, PhaseCoverageMaximization, relGap, timeLimit)

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: coverage maximization phase: %w", err)
	}
	if res.Status == solver.Infeasible {
		return out, nil // budget too tight under the adversarial restriction; keep phase 3's network
	}

	applyMinCostResult(out, res)
	return out, nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/planererrors"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// sectorMaps builds the two lookup tables AddTimeDivision and
// AddSectorNodeCoupling need: sectorOf keyed by sector id string, and
// sectorsByNode grouping sectors that must share a selection decision.
// The candidate graph models one sector per physical boresight slot
// without a separate multi-node index, so the grouping key used here is
// the owning site's id — every sector OrientSectors assigned to a site
// couples together, which is exact for single-node devices (CN, and any
// DN site with MaxNodesPerSite == 1) and an approximation for a
// multi-node DN site, where it over-couples sectors that a real multi-
// node deployment would let activate independently.
func sectorMaps(g *topology.CandidateGraph) (map[string]*topology.Sector, map[string][]*topology.Sector) {
	sectorOf := make(map[string]*topology.Sector)
	sectorsByNode := make(map[string][]*topology.Sector)
	for _, s := range g.SortedSectors() {
		sectorOf[s.ID.String()] = s
		key := s.SiteID.String()
		sectorsByNode[key] = append(sectorsByNode[key], s)
	}
	return sectorOf, sectorsByNode
}

// totalDemandGbps sums every demand site's requested throughput, used to
// turn phase 3's shortfall total into the coverage fraction gamma gates.
func totalDemandGbps(g *topology.CandidateGraph) float64 {
	total := 0.0
	for _, d := range g.DemandSites() {
		total += d.DemandGbps
	}
	return total
}

// siteCapexTerms and linkCapexTerms add every selection variable's cost
// contribution to objTerms, for the CAPEX-minimizing objective phase 3
// and phase 4 share.
func siteCapexTerms(b *ilp.Builder, g *topology.CandidateGraph, siteCapex, sectorCapex map[string]float64) []ilp.Term {
	var terms []ilp.Term
	for _, s := range g.SortedSites() {
		sVar := b.Var(ilp.Variable{Name: ilp.SiteVar(s.ID.String()), Kind: ilp.Binary})
		terms = append(terms, ilp.Term{Var: sVar, Coef: siteCapex[s.DeviceSKU]})
	}
	for _, sec := range g.SortedSectors() {
		site, ok := g.Site(sec.SiteID)
		if !ok {
			continue
		}
		for _, c := range []int{0} {
			sigma := b.Var(ilp.Variable{Name: ilp.SectorVar(sec.SiteID.String(), sec.NodeIndex, c), Kind: ilp.Binary})
			terms = append(terms, ilp.Term{Var: sigma, Coef: sectorCapex[site.DeviceSKU]})
		}
	}
	return terms
}

// phaseMinCostBase implements spec §4.7 phase 3: minimize total site and
// sector CAPEX subject to the full site/link/polarity/time-division/P2MP/
// geometry/co-location constraint set, relaxing the demand-coverage floor
// through schedule's steps until a feasible solve is found. Returns the
// graph with Site.Selected, Site.Polarity, Sector.Active, and
// Link.Selected populated from the winning step's solution.
func phaseMinCostBase(ctx context.Context, cfg *config.Config, g *topology.CandidateGraph, schedule GammaSchedule) (*topology.CandidateGraph, error) {
	out := g.Clone()
	out.PopulateReciprocalSectors()
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

	demandTotal := totalDemandGbps(out)
	relGap, timeLimit := phaseLimits(cfg, PhaseMinCostBase)
	opts := solverOptions(cfg, PhaseMinCostBase, relGap, timeLimit)
	a := solver.Adapter{}

	for _, gamma := range schedule.Steps {
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

		var shortfallTerms []ilp.Term
		for _, d := range out.DemandSites() {
			phi := b.Var(ilp.Variable{Name: ilp.ShortfallVar(d.ID.String()), Kind: ilp.Continuous, Lower: 0, Upper: d.DemandGbps * 1000})
			shortfallTerms = append(shortfallTerms, ilp.Term{Var: phi, Coef: 1})
		}
		if demandTotal > 0 {
			b.Constrain(ilp.Constraint{Name: "coverage_floor", Terms: shortfallTerms, Sense: ilp.LE, RHS: (1 - gamma) * demandTotal * 1000})
		}

		objTerms := siteCapexTerms(b, out, cfg.SiteCapex, cfg.SectorCapex)
		prob := b.Build(ilp.Objective{Sense: ilp.Minimize, Terms: objTerms})

		res, err := a.Solve(ctx, a.Build(prob), opts)
		if err != nil {
			return nil, fmt.Errorf("pipeline: min cost base phase (gamma=%.2f): %w", gamma, err)
		}
		if res.Status == solver.Infeasible {
			continue
		}

		applyMinCostResult(out, res)
		return out, nil
	}
	return nil, &planererrors.Infeasible{Phase: string(PhaseMinCostBase), Gamma: 0}
}

func applyMinCostResult(g *topology.CandidateGraph, res *solver.Result) {
	for _, s := range g.SortedSites() {
		id := s.ID.String()
		s.Selected = res.Value(ilp.SiteVar(id)) > 0.5
		s.Polarity = 0
		if res.Value(ilp.PolarityVar(id)) > 0.5 {
			s.Polarity = 1
		}
	}
	for _, sec := range g.SortedSectors() {
		sec.Active = res.Value(ilp.SectorVar(sec.SiteID.String(), sec.NodeIndex, 0)) > 0.5
	}
	for _, l := range g.Links() {
		from, to := l.From.String(), l.To.String()
		l.FlowMbps = res.Value(ilp.FlowVar(from, to))
		if !l.Backhaul {
			// A demand access link has no LinkVar in this phase's model (see
			// AddFlowCapacity/AddTimeDivision/AddPolarityProxy): it stays
			// selected exactly as AttachDemand left it.
			continue
		}
		l.Selected = res.Value(ilp.LinkVar(from, to)) > 0.5
	}
}

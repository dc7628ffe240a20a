// Package flowanalyzer implements spec §4.8's Flow Analyzer: an LP over
// the final selected network that maximizes the common per-demand-site
// throughput β, under a uniform time-division-share assumption and the
// configured routing filter.
package flowanalyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/lvlath-labs/terramesh/core"
	"github.com/lvlath-labs/terramesh/dijkstra"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/solver"
	"github.com/lvlath-labs/terramesh/topology"
)

// RoutingFilter selects how flow is attributed to candidate paths.
type RoutingFilter int

const (
	ShortestPath RoutingFilter = iota
	MCSCostPath
	DPAPath
)

// Result is the Flow Analyzer's output: the common throughput β and
// per-link utilization (flow ÷ capacity) for the final selected network.
type Result struct {
	BetaMbps        float64
	LinkUtilization map[string]float64 // keyed by link id string
	PerDemandMbps   map[string]float64 // 0 for disconnected demand sites
}

// betaVar is the shared slack variable every connected demand site's
// achieved throughput is pinned to, so maximizing it maximizes the
// common minimum per spec §4.8.
const betaVar = "beta"

// Run solves the max-min LP over g's selected links only (Link.Selected
// == true), bounding each link's flow by its MaxThroughputMbps, or by 0
// where the configured routing filter excludes the link, and returns the
// achieved β plus per-link utilization.
func Run(ctx context.Context, g *topology.CandidateGraph, routing RoutingFilter, opts solver.Options) (*Result, error) {
	b := ilp.NewBuilder()

	selectedLinks := selectedLinksOnly(g)
	allowed, err := routingAllowedLinks(g, selectedLinks, routing)
	if err != nil {
		return nil, fmt.Errorf("flowanalyzer: routing filter: %w", err)
	}

	byFrom := make(map[string][]*topology.Link)
	byTo := make(map[string][]*topology.Link)
	for _, l := range selectedLinks {
		from, to := l.From.String(), l.To.String()
		upper := l.MaxThroughputMbps
		if allowed != nil && !allowed[l.ID.String()] {
			upper = 0
		}
		b.Var(ilp.Variable{Name: ilp.FlowVar(from, to), Kind: ilp.Continuous, Lower: 0, Upper: upper})
		byFrom[from] = append(byFrom[from], l)
		byTo[to] = append(byTo[to], l)
	}

	demandSites := g.DemandSites()
	connected := make(map[string]bool, len(demandSites))
	anyConnected := false
	for _, d := range demandSites {
		c := hasIncomingFlow(byTo, d)
		connected[d.ID.String()] = c
		anyConnected = anyConnected || c
	}
	if !anyConnected {
		// Nothing for beta to be pinned to: it would otherwise maximize
		// to its upper bound with no constraint holding it back.
		return &Result{LinkUtilization: map[string]float64{}, PerDemandMbps: perDemandZero(demandSites)}, nil
	}

	betaID := b.Var(ilp.Variable{Name: betaVar, Kind: ilp.Continuous, Lower: 0, Upper: 1e9})

	for _, s := range g.SortedSites() {
		id := s.ID.String()
		if s.Type == topology.SitePOP || s.Type == topology.SiteCN {
			continue
		}
		var terms []ilp.Term
		for _, l := range byFrom[id] {
			terms = append(terms, ilp.Term{Var: ilp.FlowVar(l.From.String(), l.To.String()), Coef: -1})
		}
		for _, l := range byTo[id] {
			terms = append(terms, ilp.Term{Var: ilp.FlowVar(l.From.String(), l.To.String()), Coef: 1})
		}
		if len(terms) > 0 {
			b.Constrain(ilp.Constraint{Name: "flowanalyzer_balance[" + id + "]", Terms: terms, Sense: ilp.EQ, RHS: 0})
		}
	}

	for _, d := range demandSites {
		id := d.ID.String()
		if !connected[id] {
			continue
		}
		var terms []ilp.Term
		for _, l := range byTo[id] {
			terms = append(terms, ilp.Term{Var: ilp.FlowVar(l.From.String(), l.To.String()), Coef: 1})
		}
		terms = append(terms, ilp.Term{Var: betaID, Coef: -1})
		b.Constrain(ilp.Constraint{Name: "flowanalyzer_beta[" + id + "]", Terms: terms, Sense: ilp.EQ, RHS: 0})
	}

	prob := b.Build(ilp.Objective{Sense: ilp.Maximize, Terms: []ilp.Term{{Var: betaID, Coef: 1}}})

	a := solver.Adapter{}
	res, err := a.Solve(ctx, a.Build(prob), opts)
	if err != nil {
		return nil, fmt.Errorf("flowanalyzer: solve: %w", err)
	}
	if res.Status == solver.Infeasible {
		return &Result{LinkUtilization: map[string]float64{}, PerDemandMbps: perDemandZero(demandSites)}, nil
	}

	util := make(map[string]float64, len(selectedLinks))
	for _, l := range selectedLinks {
		if l.MaxThroughputMbps <= 0 {
			continue
		}
		f := res.Value(ilp.FlowVar(l.From.String(), l.To.String()))
		util[l.ID.String()] = f / l.MaxThroughputMbps
	}

	perDemand := perDemandZero(demandSites)
	for _, d := range demandSites {
		if connected[d.ID.String()] {
			perDemand[d.ID.String()] = res.Value(betaVar)
		}
	}

	return &Result{BetaMbps: res.Value(betaVar), LinkUtilization: util, PerDemandMbps: perDemand}, nil
}

// routingAllowedLinks implements spec §4.8's "honor routing filter"
// requirement: DPAPath (dynamic path allocation) leaves every selected
// link available to the max-min LP, exactly today's unrestricted
// multi-path behavior. ShortestPath and MCSCostPath instead restrict
// flow to the union of every POP's shortest-path tree over the selected
// network, computed with dijkstra.Dijkstra — unit edge weight for
// ShortestPath (minimum hop count), inverse-throughput weight for
// MCSCostPath (prefer the strongest MCS class along the way). Returns
// nil for DPAPath, meaning "no restriction".
func routingAllowedLinks(g *topology.CandidateGraph, selected []*topology.Link, filter RoutingFilter) (map[string]bool, error) {
	if filter == DPAPath {
		return nil, nil
	}

	weighted := core.NewMixedGraph(core.WithWeighted())
	for _, l := range selected {
		w := int64(1)
		if filter == MCSCostPath {
			w = mcsCostWeight(l)
		}
		if _, err := weighted.AddEdge(l.From.String(), l.To.String(), w, core.WithEdgeDirected(true)); err != nil {
			return nil, fmt.Errorf("build routing graph: %w", err)
		}
	}

	allowed := make(map[string]bool, len(selected))
	byEndpoints := make(map[[2]string]*topology.Link, len(selected))
	for _, l := range selected {
		byEndpoints[[2]string{l.From.String(), l.To.String()}] = l
	}

	for _, s := range g.SortedSites() {
		if s.Type != topology.SitePOP {
			continue
		}
		source := s.ID.String()
		_, prev, err := dijkstra.Dijkstra(weighted, dijkstra.Source(source), dijkstra.WithReturnPath())
		if err != nil {
			continue // POP has no outgoing selected links: nothing to route from it.
		}
		for v, u := range prev {
			if l, ok := byEndpoints[[2]string{u, v}]; ok {
				allowed[l.ID.String()] = true
			}
		}
	}
	return allowed, nil
}

// mcsCostWeight inverts a link's throughput into a positive integer
// dijkstra cost, so the shortest path by cumulative weight is the path
// favoring the highest-throughput (best MCS class) links.
func mcsCostWeight(l *topology.Link) int64 {
	if l.MaxThroughputMbps <= 0 {
		return 1_000_000
	}
	w := int64(1_000_000 / l.MaxThroughputMbps)
	if w < 1 {
		return 1
	}
	return w
}

func selectedLinksOnly(g *topology.CandidateGraph) []*topology.Link {
	var out []*topology.Link
	for _, l := range g.Links() {
		if l.Selected {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func hasIncomingFlow(byTo map[string][]*topology.Link, d *topology.DemandSite) bool {
	return len(byTo[d.ID.String()]) > 0
}

func perDemandZero(demandSites []*topology.DemandSite) map[string]float64 {
	out := make(map[string]float64, len(demandSites))
	for _, d := range demandSites {
		out[d.ID.String()] = 0
	}
	return out
}

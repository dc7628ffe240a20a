// Package prune accelerates the redundancy phase (spec §4.7 phase 4) by
// shrinking the candidate link set before it reaches the MILP: a Delaunay
// triangulation restricts consideration to geometrically local pairs, and
// a max-flow site-disjoint-path check keeps only links that contribute to
// at least one of the redundant paths the phase actually needs.
package prune

import (
	"context"
	"errors"
	"fmt"
	"sort"

	delaunay "github.com/fogleman/delaunay"

	"github.com/lvlath-labs/terramesh/bfs"
	"github.com/lvlath-labs/terramesh/core"
	"github.com/lvlath-labs/terramesh/flow"
	"github.com/lvlath-labs/terramesh/topology"
)

// DelaunayEdges returns the set of site-id pairs connected by an edge in
// the 2D Delaunay triangulation of every site's horizontal position,
// sorted for deterministic iteration. Two candidate links sharing a
// triangulation edge are "geometrically local"; a redundancy search can
// safely skip a link neither of whose endpoints appear together here.
func DelaunayEdges(g *topology.CandidateGraph) (map[[2]string]bool, error) {
	sites := g.SortedSites()
	if len(sites) < 3 {
		return nil, nil
	}

	points := make([]delaunay.Point, len(sites))
	index := make([]string, len(sites))
	for i, s := range sites {
		points[i] = delaunay.Point{X: s.Position.X, Y: s.Position.Y}
		index[i] = s.ID.String()
	}

	tri, err := delaunay.Triangulate(points)
	if err != nil {
		return nil, fmt.Errorf("prune: triangulate: %w", err)
	}

	edges := make(map[[2]string]bool)
	for i := 0; i < len(tri.Triangles); i += 3 {
		a, b, c := tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]
		addEdge(edges, index[a], index[b])
		addEdge(edges, index[b], index[c])
		addEdge(edges, index[c], index[a])
	}
	return edges, nil
}

func addEdge(edges map[[2]string]bool, a, b string) {
	if a > b {
		a, b = b, a
	}
	edges[[2]string{a, b}] = true
}

// SiteDisjointPaths reports the maximum number of vertex-disjoint paths
// between from and to in g's candidate graph, via Dinic's max-flow on a
// split-vertex construction: every site v becomes v_in --1--> v_out, with
// every original edge (u,w) routed u_out --1--> w_in. Unit capacity on
// the split edge forces any two flow paths through v to be the same
// path, and unit capacity on the link edges makes a direct from->to link
// count as one path, i.e. max-flow equals the count of vertex-disjoint
// paths.
func SiteDisjointPaths(ctx context.Context, g *topology.CandidateGraph, from, to string) (int, error) {
	split := core.NewMixedGraph(core.WithWeighted())

	ensure := func(id string) (string, string) {
		inID, outID := id+"_in", id+"_out"
		_ = split.AddVertex(inID)
		_ = split.AddVertex(outID)
		return inID, outID
	}

	for _, s := range g.SortedSites() {
		inID, outID := ensure(s.ID.String())
		if _, err := split.AddEdge(inID, outID, 1, core.WithEdgeDirected(true)); err != nil {
			return 0, fmt.Errorf("prune: split vertex %s: %w", s.ID, err)
		}
	}
	for _, l := range g.Links() {
		_, fromOut := ensure(l.From.String())
		toIn, _ := ensure(l.To.String())
		if _, err := split.AddEdge(fromOut, toIn, 1, core.WithEdgeDirected(true)); err != nil {
			return 0, fmt.Errorf("prune: split edge %s->%s: %w", l.From, l.To, err)
		}
	}

	sourceOut := from + "_out"
	sinkIn := to + "_in"
	maxFlow, _, err := flow.Dinic(split, sourceOut, sinkIn, flow.FlowOptions{Ctx: ctx})
	if err != nil {
		return 0, fmt.Errorf("prune: max flow %s->%s: %w", from, to, err)
	}
	return int(maxFlow), nil
}

// ReachableDemandSites returns the ids of every demand site reachable from
// at least one POP over g's full link set (access links included), via
// bfs.BFS run once per POP. A demand site absent from the result can never
// become connected regardless of what phase 2's MILP decides — spec §4.8
// explicitly allows a disconnected demand site to end up with β_i = 0, so
// phase 2 skips generating a connected-indicator constraint for it rather
// than spending solver time proving what the graph's topology already
// rules out.
func ReachableDemandSites(g *topology.CandidateGraph) (map[string]bool, error) {
	return reachableDemandSitesOverLinks(g, g.Links())
}

// reachableDemandSitesOverLinks is ReachableDemandSites restricted to an
// arbitrary link subset, so AdversarialLinks can ask "what does removing
// this link disconnect" without touching g itself.
func reachableDemandSitesOverLinks(g *topology.CandidateGraph, links []*topology.Link) (map[string]bool, error) {
	walkable := core.NewMixedGraph()
	for _, l := range links {
		if _, err := walkable.AddEdge(l.From.String(), l.To.String(), 0, core.WithEdgeDirected(true)); err != nil {
			return nil, fmt.Errorf("prune: build reachability graph: %w", err)
		}
	}

	reachable := make(map[string]bool)
	for _, s := range g.SortedSites() {
		if s.Type != topology.SitePOP {
			continue
		}
		result, err := bfs.BFS(walkable, s.ID.String())
		if err != nil {
			if errors.Is(err, bfs.ErrStartVertexNotFound) {
				continue // POP has no outgoing candidate links at all.
			}
			return nil, fmt.Errorf("prune: bfs from %s: %w", s.ID, err)
		}
		for id := range result.Depth {
			reachable[id] = true
		}
	}
	return reachable, nil
}

// RedundancyCandidateLinks returns the subset of g's backhaul links to
// keep for the redundancy phase's MILP: every link whose endpoints share
// a Delaunay edge, further filtered to POP<->DN pairs with at least
// popDNDisjointPaths site-disjoint paths and DN<->DN pairs within a
// hop-count-limited neighborhood with at least dnDnDisjointPaths.
func RedundancyCandidateLinks(ctx context.Context, g *topology.CandidateGraph, popDNDisjointPaths, dnDnDisjointPaths int) ([]*topology.Link, error) {
	delaunayEdges, err := DelaunayEdges(g)
	if err != nil {
		return nil, err
	}

	sitesByID := make(map[string]*topology.Site)
	for _, s := range g.SortedSites() {
		sitesByID[s.ID.String()] = s
	}

	var kept []*topology.Link
	checked := make(map[[2]string]int) // memoize disjoint-path counts per unordered pair

	for _, l := range g.Links() {
		if !l.Backhaul {
			continue
		}
		from, to := l.From.String(), l.To.String()
		key := [2]string{from, to}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if delaunayEdges != nil && !delaunayEdges[key] {
			continue
		}

		required := dnDnDisjointPaths
		a, b := sitesByID[from], sitesByID[to]
		if a != nil && b != nil && (a.Type == topology.SitePOP || b.Type == topology.SitePOP) {
			required = popDNDisjointPaths
		}

		paths, ok := checked[key]
		if !ok {
			paths, err = SiteDisjointPaths(ctx, g, from, to)
			if err != nil {
				return nil, err
			}
			checked[key] = paths
		}
		if paths >= required {
			kept = append(kept, l)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].ID.String() < kept[j].ID.String() })
	return kept, nil
}

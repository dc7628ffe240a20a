// SPDX-License-Identifier: MIT

package core

// NewMixedGraph allocates a Graph with per-edge Directed overrides enabled
// (WithEdgeDirected on AddEdge), which the planner relies on to mix a
// directed backhaul mesh with directed one-way demand access edges in a
// single adjacency structure.
func NewMixedGraph(opts ...GraphOption) *Graph {
	mixed := make([]GraphOption, 0, len(opts)+1)
	mixed = append(mixed, WithMixedEdges())
	mixed = append(mixed, opts...)
	return NewGraph(mixed...)
}

// Weighted reports whether AddEdge accepts non-zero weight. The planner
// always builds weighted graphs (throughput/hop-count as weight); the
// unweighted case exists only for bfs.BFS's reachability walks, which
// reject weighted graphs outright.
func (g *Graph) Weighted() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.weighted
}

// Directed reports the default orientation applied to new edges absent a
// per-edge override.
func (g *Graph) Directed() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.directed
}

// Looped reports whether self-loops are permitted. The planner never
// needs a site linked to itself, so every graph it builds leaves this off.
func (g *Graph) Looped() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.allowLoops
}

// Multigraph reports whether parallel edges between the same pair of
// sites are permitted.
func (g *Graph) Multigraph() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.allowMulti
}

// MixedEdges reports whether AddEdge's WithEdgeDirected override is
// accepted. topology.CandidateGraph always builds via NewMixedGraph, so
// this is true for every graph the planner constructs.
func (g *Graph) MixedEdges() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.allowMixed
}

// Stats snapshots configuration flags and catalog sizes. Vertex/edge
// counts are taken under separate locks to avoid holding both at once;
// the two phases may observe slightly different generations under
// concurrent mutation, which is acceptable for a diagnostics summary.
func (g *Graph) Stats() *GraphStats {
	g.muVert.RLock()
	stats := GraphStats{
		DirectedDefault: g.directed,
		Weighted:        g.weighted,
		AllowsMulti:     g.allowMulti,
		AllowsLoops:     g.allowLoops,
		MixedMode:       g.allowMixed,
		VertexCount:     len(g.vertices),
	}
	g.muVert.RUnlock()

	g.muEdgeAdj.RLock()
	stats.EdgeCount = len(g.edges)
	for _, e := range g.edges {
		if e.Directed {
			stats.DirectedEdgeCount++
		} else {
			stats.UndirectedEdgeCount++
		}
	}
	g.muEdgeAdj.RUnlock()

	return &stats
}

// SPDX-License-Identifier: MIT

// Package dijkstra computes single-source shortest paths on a weighted
// core.Graph. pipeline/flowanalyzer runs it once per POP over the
// selected links to build the shortest-path trees that its
// ShortestPath and MCSCostPath routing filters restrict flow to;
// InfEdgeThreshold lets a caller treat a link as a wall without
// removing it from the graph.
package dijkstra

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/lvlath-labs/terramesh/core"
)

// Dijkstra computes shortest distances from Options.Source to every
// other vertex in g, which must be weighted and free of negative
// weights (checked by an upfront O(E) scan). With WithReturnPath, it
// also returns the predecessor map needed to reconstruct any shortest
// path.
func Dijkstra(g *core.Graph, opts ...Option) (map[string]int64, map[string]string, error) {
	cfg := DefaultOptions("")
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}

	if cfg.Source == "" {
		return nil, nil, ErrEmptySource
	}

	if g == nil {
		return nil, nil, ErrNilGraph
	}

	if !g.Weighted() {
		return nil, nil, ErrUnweightedGraph
	}

	if !g.HasVertex(cfg.Source) {
		return nil, nil, ErrVertexNotFound
	}

	// Fail fast on negative weights before doing any real work.
	var e *core.Edge
	for _, e = range g.Edges() {
		if e.Weight < 0 {
			return nil, nil, fmt.Errorf("%w: edge %s→%s weight=%d", ErrNegativeWeight, e.From, e.To, e.Weight)
		}
	}

	V := len(g.Vertices())

	dist := make(map[string]int64, V)

	var prev map[string]string
	if cfg.ReturnPath || cfg.MemoryMode == MemoryModeFull {
		prev = make(map[string]string, V)
	} else {
		prev = nil
	}

	visited := make(map[string]bool, V)

	pq := make(nodePQ, 0, V)

	r := &runner{
		g:       g,
		options: cfg,
		dist:    dist,
		prev:    prev,
		visited: visited,
		pq:      pq,
	}

	r.init()
	if err := r.process(); err != nil {
		return nil, nil, err
	}

	if !cfg.ReturnPath {
		return r.dist, nil, nil
	}

	return r.dist, r.prev, nil
}

// runner holds the mutable state for a single Dijkstra execution.
type runner struct {
	g       *core.Graph
	options Options
	dist    map[string]int64
	prev    map[string]string
	visited map[string]bool
	pq      nodePQ
}

// init sets dist[v]=+∞ for all v (0 for Source), clears visited, and
// seeds the heap with Source.
func (r *runner) init() {
	vertices := r.g.Vertices()

	for _, v := range vertices {
		r.dist[v] = math.MaxInt64
		r.visited[v] = false
		if r.prev != nil {
			r.prev[v] = ""
		}
	}

	r.dist[r.options.Source] = 0

	heap.Init(&r.pq)

	heap.Push(&r.pq, &nodeItem{
		id:   r.options.Source,
		dist: 0,
	})
}

// process repeatedly extracts the minimum-distance vertex and relaxes
// its outgoing edges, stopping when the heap empties or the minimum
// distance in it exceeds MaxDistance.
func (r *runner) process() error {
	cfg := r.options
	var u string
	var d int64
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u = item.id
		d = item.dist

		if r.visited[u] {
			continue
		}

		if d > cfg.MaxDistance {
			break
		}

		r.visited[u] = true

		if err := r.relax(u); err != nil {
			return err
		}
	}

	return nil
}

// relax updates dist/prev for u's outgoing edges and pushes any
// improved distance onto the heap (lazy decrease-key: stale entries
// are dropped in process via the visited check rather than removed).
func (r *runner) relax(u string) error {
	neighbors, err := r.g.Neighbors(u)
	if err != nil {
		return fmt.Errorf("dijkstra: failed to get neighbors of %q: %w", u, err)
	}

	var e *core.Edge
	var v string
	var w int64
	var newDist int64
	for _, e = range neighbors {
		// A directed edge only relaxes in its own direction; core.Neighbors
		// already excludes these, this guard covers any future relaxation.
		if e.Directed && e.From != u {
			continue
		}

		v = e.To
		w = e.Weight

		if w >= r.options.InfEdgeThreshold {
			continue
		}

		if w < 0 {
			return fmt.Errorf("%w: edge %s→%s weight=%d", ErrNegativeWeight, u, v, w)
		}

		newDist = r.dist[u] + w

		if newDist > r.options.MaxDistance {
			continue
		}

		if newDist >= r.dist[v] {
			continue
		}

		r.dist[v] = newDist

		if r.prev != nil {
			r.prev[v] = u
		}

		heap.Push(&r.pq, &nodeItem{
			id:   v,
			dist: newDist,
		})
	}

	return nil
}

// nodeItem is a (vertex, distance-from-source) pair stored in the heap.
type nodeItem struct {
	id   string
	dist int64
}

// nodePQ is a min-heap of *nodeItem ordered by dist ascending.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}

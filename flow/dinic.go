// SPDX-License-Identifier: MIT

package flow

import (
	"context"
	"fmt"
	"math"

	"github.com/lvlath-labs/terramesh/core"
)

// Dinic computes the maximum flow from source to sink in g (level-graph
// BFS plus DFS blocking flow), returning the flow value and a residual
// graph preserving g's configuration flags. pipeline/prune runs this
// between a POP and a DN to bound site-disjoint path count before
// committing the pair to the candidate link set.
func Dinic(
	g *core.Graph,
	source, sink string,
	opts FlowOptions,
) (maxFlow float64, residualGraph *core.Graph, err error) {
	opts.normalize()
	ctx := opts.Ctx

	if !g.HasVertex(source) {
		return 0, nil, ErrSourceNotFound
	}
	if !g.HasVertex(sink) {
		return 0, nil, ErrSinkNotFound
	}

	capMap, err := buildCapMap(g, opts)
	if err != nil {
		return 0, nil, err
	}

	augmentCount := 0
	for {
		if err = ctx.Err(); err != nil {
			return maxFlow, nil, err
		}

		// Level graph: BFS distance from source.
		level := make(map[string]int, len(capMap))
		for u := range capMap {
			level[u] = -1
		}
		queue := []string{source}
		level[source] = 0
		for i := 0; i < len(queue); i++ {
			u := queue[i]
			for v, capUV := range capMap[u] {
				if capUV > 0 && level[v] < 0 {
					level[v] = level[u] + 1
					queue = append(queue, v)
				}
			}
		}
		if level[sink] < 0 {
			break
		}

		// next[u] restricts the DFS to edges advancing exactly one level.
		next := make(map[string][]string, len(capMap))
		for u, nbrs := range capMap {
			for v, capUV := range nbrs {
				if capUV > 0 && level[v] == level[u]+1 {
					next[u] = append(next[u], v)
				}
			}
		}

		// Blocking flow: push until the level graph is saturated.
		iter := make(map[string]int, len(next))
		for {
			if err = ctx.Err(); err != nil {
				return maxFlow, nil, err
			}
			pushed := dfsDinicPush(ctx, capMap, next, iter, source, sink, math.MaxInt64)
			if pushed == 0 {
				break
			}
			maxFlow += pushed
			augmentCount++
			if opts.Verbose {
				fmt.Printf("Dinic: pushed %g, total %g\n", pushed, maxFlow)
			}
			if opts.LevelRebuildInterval > 0 && augmentCount%opts.LevelRebuildInterval == 0 {
				break
			}
		}
	}

	residualGraph, err = buildCoreResidualFromCapMap(capMap, g, opts)
	if err != nil {
		return maxFlow, nil, err
	}

	return maxFlow, residualGraph, nil
}

// dfsDinicPush pushes flow along the level graph starting at u, updating
// capMap in place, and returns the amount actually sent.
func dfsDinicPush(
	ctx context.Context,
	capMap map[string]map[string]float64,
	next map[string][]string,
	iter map[string]int,
	u, sink string,
	available float64,
) float64 {
	if err := ctx.Err(); err != nil {
		return 0
	}
	if u == sink {
		return available
	}
	for i := iter[u]; i < len(next[u]); i++ {
		iter[u] = i + 1
		v := next[u][i]
		capUV := capMap[u][v]
		if capUV <= 0 {
			continue
		}
		send := available
		if capUV < send {
			send = capUV
		}
		if send == 0 {
			continue
		}
		pushed := dfsDinicPush(ctx, capMap, next, iter, v, sink, send)
		if pushed > 0 {
			capMap[u][v] -= pushed
			capMap[v][u] += pushed

			return pushed
		}
	}

	return 0
}

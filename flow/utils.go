// SPDX-License-Identifier: MIT

package flow

import (
	"context"
	"math"

	"github.com/lvlath-labs/terramesh/core"
)

// buildCapMap aggregates g's edges into capMap[u][v] = total capacity
// u→v, summing parallel edges and dropping self-loops and any entry
// left at or below opts.Epsilon. Returns an error on a negative-weight
// edge or on context cancellation.
func buildCapMap(g *core.Graph, opts FlowOptions) (map[string]map[string]float64, error) {
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vertices := g.Vertices()
	capMap := make(map[string]map[string]float64, len(vertices))
	for _, u := range vertices {
		capMap[u] = make(map[string]float64)
	}

	for _, u := range vertices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		neighbors, err := g.Neighbors(u)
		if err != nil {
			return nil, err
		}

		for _, e := range neighbors {
			if e.From == e.To {
				continue
			}
			c := float64(e.Weight)
			if c < -opts.Epsilon {
				return nil, EdgeError{From: e.From, To: e.To, Cap: c}
			}
			capMap[u][e.To] += c
		}

		for v, total := range capMap[u] {
			if total <= opts.Epsilon {
				delete(capMap[u], v)
			}
		}
	}

	return capMap, nil
}

// buildCoreResidualFromCapMap rebuilds a *core.Graph from capMap,
// inheriting g's configuration flags via CloneEmpty. Residual
// capacities are integral by construction (every push moves a whole
// unit of the original integer edge weight), so the float64→int64
// conversion rounds only to absorb accumulated floating-point error.
func buildCoreResidualFromCapMap(
	capMap map[string]map[string]float64,
	g *core.Graph,
	opts FlowOptions,
) (*core.Graph, error) {
	residual := g.CloneEmpty()

	for u, inner := range capMap {
		for v, capUV := range inner {
			if capUV > opts.Epsilon {
				if _, err := residual.AddEdge(u, v, int64(math.Round(capUV))); err != nil {
					return nil, err
				}
			}
		}
	}

	return residual, nil
}

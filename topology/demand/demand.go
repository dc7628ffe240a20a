// Package demand computes demand-site placements for the three models
// spec §4.4 step 5 names: CN, uniform, and manual. It knows nothing about
// topology.Site — it takes and returns plain coordinate/id structs, the
// same pattern los.SiteInfo uses to keep geo free of a topology
// dependency, so topology can import demand without a cycle.
package demand

import (
	"math"
	"sort"
)

// Candidate is a minimal view of a site eligible to receive demand.
type Candidate struct {
	ID                  string
	X, Y                float64
	IsCN                bool
	IsDN                bool
	NumberOfSubscribers int
}

// Placement is a synthetic demand sink at (X,Y) connected to the listed
// candidate ids, sorted for deterministic emission.
type Placement struct {
	ID          string // caller re-derives a content-addressed id from X,Y; this is a human label
	X, Y        float64
	DemandGbps  float64
	ConnectedTo []string
}

// CN attaches one demand site per CN, with demand multiplicity
// max(1, NumberOfSubscribers) scaled by perSubscriberGbps.
func CN(candidates []Candidate, perSubscriberGbps float64) []Placement {
	var out []Placement
	for _, c := range candidates {
		if !c.IsCN {
			continue
		}
		n := c.NumberOfSubscribers
		if n < 1 {
			n = 1
		}
		out = append(out, Placement{
			ID:          "cn-demand-" + c.ID,
			X:           c.X,
			Y:           c.Y,
			DemandGbps:  float64(n) * perSubscriberGbps,
			ConnectedTo: []string{c.ID},
		})
	}
	sortPlacements(out)
	return out
}

// Uniform lays a grid of demand sites with spacing S over the boundary's
// axis-aligned bounding box, connecting every DN/CN within
// connectionRadius. Cells with no candidate within radius are dropped
// (spec names no fallback for those).
func Uniform(candidates []Candidate, minX, minY, maxX, maxY, spacing, demandPerCellGbps, connectionRadius float64) []Placement {
	if spacing <= 0 || maxX < minX || maxY < minY {
		return nil
	}
	var out []Placement
	for y := minY; y <= maxY; y += spacing {
		for x := minX; x <= maxX; x += spacing {
			connected := connectedWithin(candidates, x, y, connectionRadius)
			if len(connected) == 0 {
				continue
			}
			out = append(out, Placement{
				ID:          "uniform-demand",
				X:           x,
				Y:           y,
				DemandGbps:  demandPerCellGbps,
				ConnectedTo: connected,
			})
		}
	}
	sortPlacements(out)
	return out
}

// Manual places one demand site per user-provided point, each carrying
// its own demand and connected by the same radius rule as Uniform.
type ManualPoint struct {
	X, Y, DemandGbps float64
}

func Manual(points []ManualPoint, candidates []Candidate, connectionRadius float64) []Placement {
	var out []Placement
	for _, p := range points {
		connected := connectedWithin(candidates, p.X, p.Y, connectionRadius)
		if len(connected) == 0 {
			continue
		}
		out = append(out, Placement{
			ID:          "manual-demand",
			X:           p.X,
			Y:           p.Y,
			DemandGbps:  p.DemandGbps,
			ConnectedTo: connected,
		})
	}
	sortPlacements(out)
	return out
}

func connectedWithin(candidates []Candidate, x, y, radius float64) []string {
	var ids []string
	for _, c := range candidates {
		if !c.IsCN && !c.IsDN {
			continue
		}
		dx, dy := c.X-x, c.Y-y
		if math.Sqrt(dx*dx+dy*dy) <= radius {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func sortPlacements(p []Placement) {
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
}

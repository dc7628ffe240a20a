package topology

import (
	"math"
	"sort"
)

// OrientSectors implements spec §4.4 step 4: for every site whose device
// is registered, partition its outgoing candidate links across
// SectorsPerNode boresights so that the summed angular deviation of every
// link from its assigned sector's boresight is minimized, with backhaul
// links weighted extraWeight times more heavily than access links. Links
// whose deviation from the best-fit boresight still exceeds half the
// device's scan range are dropped — the device cannot physically reach
// them.
//
// Boresight search is a coarse rotation sweep (1-degree steps) rather than
// a closed-form fit: spec leaves the exact search method open, and a sweep
// keeps the result deterministic and simple to reason about.
func (cg *CandidateGraph) OrientSectors(extraWeightBackhaul float64) {
	linksBySite := make(map[ID][]*Link)
	for _, l := range cg.Links() {
		linksBySite[l.From] = append(linksBySite[l.From], l)
	}

	for _, site := range cg.SortedSites() {
		dev, ok := cg.devices[site.DeviceSKU]
		if !ok || dev.Sector.SectorsPerNode <= 0 {
			continue
		}
		links := linksBySite[site.ID]
		if len(links) == 0 {
			continue
		}

		angles := make([]float64, len(links))
		weights := make([]float64, len(links))
		for i, l := range links {
			angles[i] = l.AzimuthDeg
			weights[i] = 1
			if l.Backhaul {
				weights[i] = extraWeightBackhaul
			}
		}

		sectorsPerNode := dev.Sector.SectorsPerNode
		arc := 360.0 / float64(sectorsPerNode)
		boresights := bestBoresights(angles, weights, sectorsPerNode, arc)

		halfScan := dev.Sector.ScanRangeDeg / 2
		assigned := make([]int, len(links))
		for i := range assigned {
			assigned[i] = -1
		}
		for i, a := range angles {
			best, bestDev := -1, math.Inf(1)
			for s, b := range boresights {
				d := angularDeviation(a, b)
				if d < bestDev {
					bestDev, best = d, s
				}
			}
			if bestDev <= halfScan {
				assigned[i] = best
			}
		}

		for i, l := range links {
			if assigned[i] < 0 {
				delete(cg.links, l.ID)
				continue
			}
			sec := cg.sectorFor(site, assigned[i], boresights[assigned[i]])
			l.FromSector = sec.ID
		}
	}
}

// bestBoresights sweeps candidate boresight offsets in 1-degree steps and
// returns the n evenly spaced (360/n apart) boresights, rotated by the
// offset that minimizes total weighted angular deviation across all links.
func bestBoresights(angles, weights []float64, n int, arc float64) []float64 {
	bestOffset, bestCost := 0.0, math.Inf(1)
	for offsetDeg := 0.0; offsetDeg < arc; offsetDeg++ {
		cost := 0.0
		for i, a := range angles {
			minDev := math.Inf(1)
			for s := 0; s < n; s++ {
				b := math.Mod(offsetDeg+arc*float64(s), 360)
				if d := angularDeviation(a, b); d < minDev {
					minDev = d
				}
			}
			cost += minDev * weights[i]
		}
		if cost < bestCost {
			bestCost, bestOffset = cost, offsetDeg
		}
	}
	out := make([]float64, n)
	for s := 0; s < n; s++ {
		out[s] = math.Mod(bestOffset+arc*float64(s), 360)
	}
	return out
}

func angularDeviation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func (cg *CandidateGraph) sectorFor(site *Site, nodeIndex int, boresight float64) *Sector {
	id := ComputeSectorID(site.ID, nodeIndex, 0)
	if s, ok := cg.sectors[id]; ok {
		return s
	}
	s := &Sector{ID: id, SiteID: site.ID, NodeIndex: nodeIndex, Position: 0, BoresightDeg: boresight}
	cg.sectors[id] = s
	return s
}

// PopulateReciprocalSectors fills in every link's ToSector from its
// reverse link's FromSector (backhaul links exist in both directions per
// spec §9's two-directed-edges model, so the reverse link's own sector
// assignment tells us which sector receives on this link's "to" side).
// A link whose reverse has no counterpart, or whose reverse was itself
// dropped by OrientSectors for exceeding the device's scan range, is left
// with a zero ToSector and excluded from sector-coupling constraints.
func (cg *CandidateGraph) PopulateReciprocalSectors() {
	byPair := make(map[[2]ID]*Link, len(cg.links))
	for _, l := range cg.links {
		byPair[[2]ID{l.From, l.To}] = l
	}
	for _, l := range cg.links {
		if rev, ok := byPair[[2]ID{l.To, l.From}]; ok {
			l.ToSector = rev.FromSector
		}
	}
}

// SortedSectors returns every sector sorted by id.
func (cg *CandidateGraph) SortedSectors() []*Sector {
	out := make([]*Sector, 0, len(cg.sectors))
	for _, s := range cg.sectors {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

package topology

import (
	"sort"

	"github.com/lvlath-labs/terramesh/los"
)

// SiteDetectionRule selects which point(s) of a building spec §4.4 step 2
// proposes as candidate sites.
type SiteDetectionRule int

const (
	// DetectRooftop proposes each building's highest point — the
	// conventional DN mounting location.
	DetectRooftop SiteDetectionRule = iota
	// DetectCentroid proposes each building's footprint centroid — a CN
	// mounting location approximation when no rooftop access exists.
	DetectCentroid
	// DetectCorners proposes every footprint corner whose interior angle
	// is at or below maxAngleDeg: sharp corners give the widest field of
	// view for a sectorized radio.
	DetectCorners
)

// DetectSites implements spec §4.4 step 2: generate RawSite proposals from
// every building idx knows about, one per rule, deduplicated by the same
// (location, type, device) key IngestSites uses so a building proposed by
// two rules at the same point collapses to one site.
func DetectSites(idx los.BuildingIndex, rules []SiteDetectionRule, t SiteType, deviceSKU string, maxCornerAngleDeg float64) []RawSite {
	ids := idx.BuildingIDs()
	sort.Strings(ids)

	seen := make(map[ID]struct{})
	var out []RawSite
	add := func(raw RawSite) {
		id := ComputeSiteID(raw.Position, raw.Type, raw.DeviceSKU)
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, raw)
	}

	for _, bid := range ids {
		for _, rule := range rules {
			switch rule {
			case DetectRooftop:
				if p, ok := idx.HighestPoint(bid); ok {
					add(RawSite{Position: p, Type: t, BuildingID: bid, DeviceSKU: deviceSKU})
				}
			case DetectCentroid:
				if p, ok := idx.Centroid(bid); ok {
					add(RawSite{Position: p, Type: t, BuildingID: bid, DeviceSKU: deviceSKU})
				}
			case DetectCorners:
				for _, p := range idx.QualifyingCorners(bid, maxCornerAngleDeg) {
					add(RawSite{Position: p, Type: t, BuildingID: bid, DeviceSKU: deviceSKU})
				}
			}
		}
	}
	return out
}

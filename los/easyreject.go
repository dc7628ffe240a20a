package los

import (
	"math"

	"github.com/lvlath-labs/terramesh/geo"
)

// easyReject evaluates spec §4.2's five preconditions in order; the first
// hit rejects with no DSM iteration (testable property 2, "easy-reject
// purity"). rejected is true and reason is non-empty when a precondition
// fired; rejected is false when the pair passed every precondition and
// the caller should proceed to the geometric model.
func easyReject(a, b SiteInfo, boundary BoundaryPolygon, opts Options) (reason string, rejected bool) {
	seg := geo.Segment3D{A: a.Position, B: b.Position}

	// 1. Horizontal distance = 0 (same lat/lon).
	if seg.HorizontalLengthSq() == 0 {
		return "zero_horizontal_distance", true
	}

	// 2. |elevation angle| > user limit.
	if opts.MaxElevationAngleDeg < 90 {
		horizontal := math.Sqrt(seg.HorizontalLengthSq())
		elevationDeg := math.Abs(math.Atan2(seg.DeltaZ(), horizontal)) * 180 / math.Pi
		if elevationDeg > opts.MaxElevationAngleDeg {
			return "elevation_angle_exceeded", true
		}
	}

	// 3. Both sites share the same building-id.
	if a.BuildingID != "" && a.BuildingID == b.BuildingID {
		return "same_building", true
	}

	// 4. 3D distance > max or < min LOS distance.
	dist3D := seg.Length3D()
	if opts.MaxLOSDistanceMeters > 0 && dist3D > opts.MaxLOSDistanceMeters {
		return "distance_exceeds_max", true
	}
	if dist3D < opts.MinLOSDistanceMeters {
		return "distance_below_min", true
	}

	// 5. The segment's 2D projection intersects any exclusion polygon.
	if boundary != nil && boundary.Intersects(a.Position.X, a.Position.Y, b.Position.X, b.Position.Y) {
		return "exclusion_polygon_intersection", true
	}

	return "", false
}

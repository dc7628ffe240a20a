package los

import (
	"math"

	"github.com/lvlath-labs/terramesh/geo"
)

// validateCylindrical implements spec §4.2's cylindrical model: a
// uniform-radius tube of Fresnel radius R around the 3D segment.
//
// For each candidate DSM cell within R of the segment's footprint, it
// computes the 3D distance from the terrain column under that cell (the
// vertical ray from the surface down into solid ground) to the segment
// axis, tracks the minimum over all cells, and rejects if that minimum is
// below R. Confidence is the minimum distance as a fraction of R.
func validateCylindrical(seg geo.Segment3D, dsm geo.DSM, fresnelRadiusMeters float64) (confidence float64, blocked bool) {
	if fresnelRadiusMeters <= 0 {
		return 1, false
	}
	minD := math.Inf(1)

	it := geo.CellsNearSegment(seg, fresnelRadiusMeters, dsm)
	for {
		cell, ok := it.Next()
		if !ok {
			break
		}
		d, valid := cellDistanceToAxis(seg, cell)
		if valid && d < minD {
			minD = d
		}
	}

	if math.IsInf(minD, 1) {
		return 1, false
	}
	confidence = minD / fresnelRadiusMeters
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence, minD < fresnelRadiusMeters
}

// cellDistanceToAxis implements spec §4.2 steps 1-3 for a single cell:
// the shortest distance between the terrain column under the cell and
// the segment's 3D axis, or (false) if the cell's horizontal position
// falls outside the segment and so does not obstruct.
func cellDistanceToAxis(seg geo.Segment3D, cell geo.Cell) (float64, bool) {
	p, q, d2D := geo.AxisToVerticalRay(seg, cell.CenterX, cell.CenterY, cell.Elevation)

	if q >= 0 {
		if p < 0 || p > 1 {
			return 0, false
		}
		return d2D, true
	}

	// q < 0: the obstruction top sits below the direct line at its foot;
	// use the point-to-line distance from the obstruction top instead.
	top := geo.Point3D{X: cell.CenterX, Y: cell.CenterY, Z: cell.Elevation}
	d3, p3 := geo.PointToLineDistance3D(seg, top)
	if p3 < 0 || p3 > 1 {
		return 0, false
	}
	return d3, true
}

package los

import (
	"math"

	"github.com/lvlath-labs/terramesh/geo"
)

// FresnelRadiusMeters returns F₁ = 8.656·√(D_km/f_GHz), the first Fresnel
// zone radius, per the GLOSSARY definition.
func FresnelRadiusMeters(distanceMeters, freqGHz float64) float64 {
	if distanceMeters <= 0 || freqGHz <= 0 {
		return 0
	}
	distanceKm := distanceMeters / 1000.0
	return 8.656 * math.Sqrt(distanceKm/freqGHz)
}

// ellipsoidGeometry bundles the parameters spec §4.2's ellipsoidal model
// derives once per segment: azimuth A, semi-major a, semi-minor b=c=F1,
// and the elevation angle B used to rotate into the spheroid's own frame.
type ellipsoidGeometry struct {
	midX, midY, midZ float64
	azimuthRad       float64 // A
	elevationRad     float64 // B
	a, b             float64
}

func newEllipsoidGeometry(seg geo.Segment3D, freqGHz float64) ellipsoidGeometry {
	dx, dy, dz := seg.DeltaX(), seg.DeltaY(), seg.DeltaZ()
	horizDist := math.Sqrt(dx*dx + dy*dy)
	dist3D := seg.Length3D()

	return ellipsoidGeometry{
		midX:         (seg.A.X + seg.B.X) / 2,
		midY:         (seg.A.Y + seg.B.Y) / 2,
		midZ:         (seg.A.Z + seg.B.Z) / 2,
		azimuthRad:   math.Atan2(dy, dx),
		elevationRad: math.Atan2(dz, horizDist),
		a:            dist3D / 2,
		b:            FresnelRadiusMeters(dist3D, freqGHz),
	}
}

// inside2DEllipse implements spec §4.2 step 1's pre-filter:
//
//	((Δx·cosA + Δy·sinA)/a)² + ((Δx·sinA − Δy·cosA)/b)² ≤ 1
//
// k2D is the left-hand side (0 at the ellipsoid's axis, 1 at its 2D
// boundary), reused both as the filter and as the ellipsoidal confidence
// fallback metric.
func (g ellipsoidGeometry) inside2DEllipse(cellX, cellY float64) (k2D float64, inside bool) {
	dx, dy := cellX-g.midX, cellY-g.midY
	cosA, sinA := math.Cos(g.azimuthRad), math.Sin(g.azimuthRad)
	u := (dx*cosA + dy*sinA) / g.a
	v := (dx*sinA - dy*cosA) / g.b
	k2D = math.Sqrt(u*u + v*v)
	return k2D, k2D <= 1
}

// intersectVerticalLine solves spec §4.2 step 2's quadratic in z for the
// 3D ellipsoid's intersection with the vertical line through (cellX,
// cellY), returning the lower and upper roots (world z) and whether a
// real intersection exists.
func (g ellipsoidGeometry) intersectVerticalLine(cellX, cellY float64) (lower, upper float64, ok bool) {
	dx, dy := cellX-g.midX, cellY-g.midY
	cosA, sinA := math.Cos(g.azimuthRad), math.Sin(g.azimuthRad)
	x1 := dx*cosA + dy*sinA
	y1 := dx*sinA - dy*cosA

	cosB, sinB := math.Cos(g.elevationRad), math.Sin(g.elevationRad)
	a2, b2 := g.a*g.a, g.b*g.b
	if a2 == 0 || b2 == 0 {
		return 0, 0, false
	}

	cCoef := sinB*sinB/a2 + cosB*cosB/b2
	bCoef := 2 * x1 * sinB * cosB * (1/a2 - 1/b2)
	c0 := x1*x1*cosB*cosB/a2 + y1*y1/b2 + x1*x1*sinB*sinB/b2 - 1

	disc := bCoef*bCoef - 4*cCoef*c0
	if disc < 0 || cCoef == 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	z1 := (-bCoef - sq) / (2 * cCoef)
	z2 := (-bCoef + sq) / (2 * cCoef)
	if z1 > z2 {
		z1, z2 = z2, z1
	}
	return z1 + g.midZ, z2 + g.midZ, true
}

// validateEllipsoidal implements spec §4.2's ellipsoidal model.
//
// A cell obstructs when its surface height reaches or exceeds the upper
// root of the 3D ellipsoid quadratic at its horizontal position; once
// that holds, the solid terrain column beneath it fills every concentric
// spheroid whose 2D horizontal shadow contains that position, down to
// the one whose shadow boundary passes exactly through it. That
// boundary-touching scale is k2D, the same ratio the 2D pre-filter
// already computes — so an obstructing cell's contribution to confidence
// is k2D regardless of its exact height, and the "max top-view plane"
// fallback (the quadratic has no real root despite passing the 2D
// pre-filter) contributes the same k2D on the conservative assumption
// that the cell may still obstruct.
func validateEllipsoidal(seg geo.Segment3D, dsm geo.DSM, freqGHz float64) (confidence float64, blocked bool) {
	g := newEllipsoidGeometry(seg, freqGHz)
	if g.a == 0 || g.b == 0 {
		return 1, false
	}

	minK := math.Inf(1)
	anyObstruction := false

	it := geo.CellsNearSegment(seg, g.b, dsm)
	for {
		cell, ok := it.Next()
		if !ok {
			break
		}
		k2D, inside := g.inside2DEllipse(cell.CenterX, cell.CenterY)
		if !inside {
			continue
		}

		_, upper, hit := g.intersectVerticalLine(cell.CenterX, cell.CenterY)
		if hit && cell.Elevation < upper {
			continue
		}

		anyObstruction = true
		if k2D < minK {
			minK = k2D
		}
	}

	if !anyObstruction || math.IsInf(minK, 1) {
		return 1, false
	}
	if minK > 1 {
		minK = 1
	}
	if minK < 0 {
		minK = 0
	}
	return minK, false
}

// Package geo provides the 3D line-segment geometry and raster-cell
// iteration the LOS validator builds obstruction checks on top of.
//
// It deliberately knows nothing about geographic projections: callers hand
// it points in a local planar coordinate system (meters in X/Y, meters of
// elevation in Z). Converting from WGS-84 longitude/latitude to that local
// system is a raster/file-I/O concern out of scope for this package.
package geo

import "math"

// Point3D is a point in a local planar coordinate system: X and Y in
// meters (horizontal), Z in meters (elevation).
type Point3D struct {
	X, Y, Z float64
}

// Segment3D is the 3D line segment joining two sites, A and B.
type Segment3D struct {
	A, B Point3D
}

// DeltaX, DeltaY, DeltaZ return the per-axis extents of the segment.
func (s Segment3D) DeltaX() float64 { return s.B.X - s.A.X }
func (s Segment3D) DeltaY() float64 { return s.B.Y - s.A.Y }
func (s Segment3D) DeltaZ() float64 { return s.B.Z - s.A.Z }

// HorizontalLengthSq returns the squared horizontal (2D) length of the
// segment. Used to detect zero horizontal extent (spec §4.2 easy-reject 1)
// without a sqrt.
func (s Segment3D) HorizontalLengthSq() float64 {
	dx, dy := s.DeltaX(), s.DeltaY()
	return dx*dx + dy*dy
}

// Length3D returns the 3D Euclidean length of the segment.
func (s Segment3D) Length3D() float64 {
	dx, dy, dz := s.DeltaX(), s.DeltaY(), s.DeltaZ()
	return nonNegativeSqrt(dx*dx + dy*dy + dz*dz)
}

// nonNegativeSqrt treats any underflow that drives v slightly below zero
// as exactly zero, per the "underflow must be treated as zero" failure
// semantics in spec §4.2.
func nonNegativeSqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// PointAt evaluates the segment at parameter p: p=0 is A, p=1 is B.
// p is not clamped; callers that need a point strictly on the segment
// must clamp it themselves.
func (s Segment3D) PointAt(p float64) Point3D {
	return Point3D{
		X: s.A.X + p*s.DeltaX(),
		Y: s.A.Y + p*s.DeltaY(),
		Z: s.A.Z + p*s.DeltaZ(),
	}
}

// Cell is a single DSM grid cell yielded by CellsNearSegment.
type Cell struct {
	// IX, IY are the cell's grid indices (column, row).
	IX, IY int
	// CenterX, CenterY are the cell center's planar coordinates.
	CenterX, CenterY float64
	// Elevation is the surface height stored at this cell.
	Elevation float64
}

// DSM is the read-only raster surface the LOS engine iterates over.
// Implementations own tile loading/caching; geo only ever reads.
type DSM interface {
	// CellSize returns the grid spacing Δ in meters.
	CellSize() float64
	// Bounds returns the raster's planar extent [minX,maxX] x [minY,maxY].
	Bounds() (minX, minY, maxX, maxY float64)
	// ElevationAt returns the surface elevation at grid indices (ix,iy) and
	// whether that cell exists within the raster.
	ElevationAt(ix, iy int) (float64, bool)
	// CellCenter returns the planar coordinates of the center of cell (ix,iy).
	CellCenter(ix, iy int) (x, y float64)
	// IndexOf returns the grid indices containing the planar point (x,y).
	IndexOf(x, y float64) (ix, iy int)
}

// Package los validates line-of-sight between site pairs: cylindrical and
// ellipsoidal Fresnel-zone obstruction checks, easy-reject preconditions,
// and confidence-level computation, per spec §4.2.
package los

import "github.com/lvlath-labs/terramesh/geo"

// Model selects which geometric obstruction model Validate uses.
type Model int

const (
	ModelCylindrical Model = iota
	ModelEllipsoidal
)

// SiteInfo is the minimal per-site data the LOS validator needs: its
// position and building membership. It deliberately does not import the
// topology package's richer Site type, to keep los free of a dependency
// on the package that itself depends on los.
type SiteInfo struct {
	ID         string
	Position   geo.Point3D
	BuildingID string // empty means "no building"
}

// BoundaryPolygon reports whether a 2D segment's horizontal projection
// intersects an exclusion polygon (easy-reject precondition 5).
// Implementations own whatever polygon representation they parse from
// KML/shapefile input; los only ever calls Intersects.
type BoundaryPolygon interface {
	Intersects(ax, ay, bx, by float64) bool
}

// NoExclusionZones is a BoundaryPolygon that never excludes anything,
// for callers with no exclusion polygons configured.
type NoExclusionZones struct{}

func (NoExclusionZones) Intersects(ax, ay, bx, by float64) bool { return false }

// BuildingIndex resolves building outlines for automatic site detection:
// the highest point, centroid, and qualifying corners (interior angle at
// or below a threshold) of every building footprint it holds. Consumers
// own whatever shapefile/KML representation they parse; los and
// topology/sitedetect only ever call these three accessors.
type BuildingIndex interface {
	// BuildingIDs returns every known building's stable identifier, in a
	// deterministic (e.g. sorted) order.
	BuildingIDs() []string
	// HighestPoint returns the building's tallest point.
	HighestPoint(buildingID string) (geo.Point3D, bool)
	// Centroid returns the building footprint's centroid, at ground height.
	Centroid(buildingID string) (geo.Point3D, bool)
	// QualifyingCorners returns the footprint's corners whose interior
	// angle is at or below maxAngleDeg.
	QualifyingCorners(buildingID string, maxAngleDeg float64) []geo.Point3D
}

// Options configures a single LOS validation run.
type Options struct {
	Model                Model
	FresnelRadiusMeters  float64
	ConfidenceThreshold  float64
	MaxElevationAngleDeg float64 // 90 disables the check
	MinLOSDistanceMeters float64
	MaxLOSDistanceMeters float64
	CarrierFrequencyGHz  float64
}

// Result is the outcome of validating one ordered site pair.
type Result struct {
	SiteA, SiteB string
	Accepted     bool
	Confidence   float64
	// RejectReason is set only when Accepted is false and a named
	// easy-reject precondition fired; empty for a geometric rejection.
	RejectReason string
}

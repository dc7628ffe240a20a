package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvlath-labs/terramesh/geo"
)

func TestPerpendicularDistance2D_OnLine(t *testing.T) {
	d := geo.PerpendicularDistance2D(5, 0, 0, 0, 10, 0)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestPerpendicularDistance2D_OffLine(t *testing.T) {
	d := geo.PerpendicularDistance2D(5, 3, 0, 0, 10, 0)
	assert.InDelta(t, 3, d, 1e-9)
}

func TestProjectionParam2D_Midpoint(t *testing.T) {
	p := geo.ProjectionParam2D(5, 0, 0, 0, 10, 0)
	assert.InDelta(t, 0.5, p, 1e-9)
}

func TestPointToSegmentDistance2D_ClampsBeyondEndpoints(t *testing.T) {
	d := geo.PointToSegmentDistance2D(-5, 0, 0, 0, 10, 0)
	assert.InDelta(t, 5, d, 1e-9)
}

func TestAxisToVerticalRay_Midpoint(t *testing.T) {
	seg := geo.Segment3D{A: geo.Point3D{X: 0, Y: 0, Z: 0}, B: geo.Point3D{X: 10, Y: 0, Z: 10}}
	p, q, d := geo.AxisToVerticalRay(seg, 5, 0, 6)
	assert.InDelta(t, 0.5, p, 1e-9)
	assert.InDelta(t, 1, q, 1e-9) // segment height at p=0.5 is 5; surface 6 is 1m above
	assert.InDelta(t, 0, d, 1e-9)
}

func TestSegment3D_ZeroHorizontalExtent(t *testing.T) {
	seg := geo.Segment3D{A: geo.Point3D{X: 1, Y: 1, Z: 0}, B: geo.Point3D{X: 1, Y: 1, Z: 50}}
	assert.Equal(t, float64(0), seg.HorizontalLengthSq())
}

package los_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/los"
)

func baseOptions() los.Options {
	return los.Options{
		Model:                los.ModelCylindrical,
		FresnelRadiusMeters:  5,
		ConfidenceThreshold:  0.75,
		MaxElevationAngleDeg: 25,
		MinLOSDistanceMeters: 10,
		MaxLOSDistanceMeters: 10000,
		CarrierFrequencyGHz:  60,
	}
}

func TestValidate_ZeroHorizontalDistanceRejects(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 0, Y: 0, Z: 20}}
	dsm := newGridDSM(1, 10, 10, 0)

	res := los.Validate(a, b, dsm, los.NoExclusionZones{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "zero_horizontal_distance", res.RejectReason)
}

func TestValidate_ElevationAngleExceededRejects(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 10, Y: 0, Z: 1000}}
	dsm := newGridDSM(1, 10, 10, 0)

	res := los.Validate(a, b, dsm, los.NoExclusionZones{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "elevation_angle_exceeded", res.RejectReason)
}

func TestValidate_SameBuildingRejects(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}, BuildingID: "bldg-1"}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 50, Y: 0, Z: 10}, BuildingID: "bldg-1"}
	dsm := newGridDSM(1, 10, 10, 0)

	res := los.Validate(a, b, dsm, los.NoExclusionZones{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "same_building", res.RejectReason)
}

func TestValidate_DistanceOutsideRangeRejects(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 5, Y: 0, Z: 10}}
	dsm := newGridDSM(1, 10, 10, 0)

	res := los.Validate(a, b, dsm, los.NoExclusionZones{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "distance_below_min", res.RejectReason)

	far := los.SiteInfo{ID: "far", Position: geo.Point3D{X: 20000, Y: 0, Z: 10}}
	res = los.Validate(a, far, dsm, los.NoExclusionZones{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "distance_exceeds_max", res.RejectReason)
}

// blockingBoundary always reports an intersection, for exercising
// easy-reject precondition 5 without a real polygon parser.
type blockingBoundary struct{}

func (blockingBoundary) Intersects(ax, ay, bx, by float64) bool { return true }

func TestValidate_ExclusionPolygonRejects(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 100, Y: 0, Z: 10}}
	dsm := newGridDSM(1, 10, 10, 0)

	res := los.Validate(a, b, dsm, blockingBoundary{}, baseOptions())
	assert.False(t, res.Accepted)
	assert.Equal(t, "exclusion_polygon_intersection", res.RejectReason)
}

// TestValidate_EasyRejectPurity checks that a pair rejected by an
// easy-reject precondition never touches the DSM: a DSM that panics on
// any access must not cause Validate to panic when the pair is
// rejectable on distance alone.
func TestValidate_EasyRejectPurity(t *testing.T) {
	a := los.SiteInfo{ID: "a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
	b := los.SiteInfo{ID: "b", Position: geo.Point3D{X: 1, Y: 0, Z: 10}}

	res := los.Validate(a, b, panicDSM{}, los.NoExclusionZones{}, baseOptions())
	assert.Equal(t, "distance_below_min", res.RejectReason)
}

type panicDSM struct{}

func (panicDSM) CellSize() float64                             { panic("must not be called") }
func (panicDSM) Bounds() (float64, float64, float64, float64)  { panic("must not be called") }
func (panicDSM) ElevationAt(ix, iy int) (float64, bool)        { panic("must not be called") }
func (panicDSM) CellCenter(ix, iy int) (float64, float64)      { panic("must not be called") }
func (panicDSM) IndexOf(x, y float64) (int, int)                { panic("must not be called") }

func TestValidateAll_MergesDeterministicallyAcrossWorkers(t *testing.T) {
	dsm := newGridDSM(1, 200, 200, 0)
	opts := baseOptions()

	var pairs []los.Pair
	for i := 0; i < 20; i++ {
		a := los.SiteInfo{ID: "site-a", Position: geo.Point3D{X: 0, Y: 0, Z: 10}}
		b := los.SiteInfo{ID: "site-b-" + string(rune('a'+i)), Position: geo.Point3D{X: 100 + float64(i), Y: 0, Z: 10}}
		pairs = append(pairs, los.Pair{A: a, B: b})
	}

	got1, err := los.ValidateAll(context.Background(), pairs, dsm, los.NoExclusionZones{}, opts, 4)
	require.NoError(t, err)
	got2, err := los.ValidateAll(context.Background(), pairs, dsm, los.NoExclusionZones{}, opts, 1)
	require.NoError(t, err)

	require.Len(t, got1, len(pairs))
	assert.Equal(t, got2, got1)
}

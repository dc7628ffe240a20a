package topology_test

import "math"

// flatDSM is a DSM with uniform elevation everywhere within generous
// bounds, enough clearance below any line height used in these tests that
// no LOS obstruction ever fires; these tests exercise graph assembly, not
// the LOS model itself (covered by package los).
type flatDSM struct {
	elevation float64
}

func (f flatDSM) CellSize() float64 { return 1 }
func (f flatDSM) Bounds() (minX, minY, maxX, maxY float64) {
	return -1e6, -1e6, 1e6, 1e6
}
func (f flatDSM) ElevationAt(ix, iy int) (float64, bool) { return f.elevation, true }
func (f flatDSM) CellCenter(ix, iy int) (x, y float64) {
	return float64(ix) + 0.5, float64(iy) + 0.5
}
func (f flatDSM) IndexOf(x, y float64) (ix, iy int) {
	return int(math.Floor(x)), int(math.Floor(y))
}

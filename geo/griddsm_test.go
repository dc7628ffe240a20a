package geo_test

import "github.com/lvlath-labs/terramesh/geo"

// gridDSM is a minimal in-memory geo.DSM backed by a dense [][]float64,
// used by tests in this package.
type gridDSM struct {
	cellSize   float64
	originX    float64
	originY    float64
	elevations [][]float64 // elevations[row][col], row = y index, col = x index
}

func newGridDSM(cellSize float64, rows, cols int, fill float64) *gridDSM {
	elev := make([][]float64, rows)
	for r := range elev {
		elev[r] = make([]float64, cols)
		for c := range elev[r] {
			elev[r][c] = fill
		}
	}
	return &gridDSM{cellSize: cellSize, elevations: elev}
}

func (g *gridDSM) CellSize() float64 { return g.cellSize }

func (g *gridDSM) Bounds() (minX, minY, maxX, maxY float64) {
	rows := len(g.elevations)
	cols := 0
	if rows > 0 {
		cols = len(g.elevations[0])
	}
	return g.originX, g.originY, g.originX + float64(cols)*g.cellSize, g.originY + float64(rows)*g.cellSize
}

func (g *gridDSM) ElevationAt(ix, iy int) (float64, bool) {
	if iy < 0 || iy >= len(g.elevations) {
		return 0, false
	}
	row := g.elevations[iy]
	if ix < 0 || ix >= len(row) {
		return 0, false
	}
	return row[ix], true
}

func (g *gridDSM) CellCenter(ix, iy int) (x, y float64) {
	return g.originX + (float64(ix)+0.5)*g.cellSize, g.originY + (float64(iy)+0.5)*g.cellSize
}

func (g *gridDSM) IndexOf(x, y float64) (ix, iy int) {
	ix = int((x - g.originX) / g.cellSize)
	iy = int((y - g.originY) / g.cellSize)
	return ix, iy
}

func (g *gridDSM) set(ix, iy int, h float64) {
	g.elevations[iy][ix] = h
}

var _ geo.DSM = (*gridDSM)(nil)

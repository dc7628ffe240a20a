package geo

// CellIterator lazily yields the DSM cells within radius r of a link's
// horizontal footprint, in deterministic scanline order (row-major, rows
// increasing then columns increasing within a row).
//
// It is a pull iterator rather than a channel pipeline: a caller that
// stops early (e.g. the cylindrical LOS validator as soon as it finds an
// obstruction) never leaves a goroutine blocked on a send.
type CellIterator struct {
	seg    Segment3D
	dsm    DSM
	radius float64

	minIX, maxIX int
	minIY, maxIY int
	curIX, curIY int
	started      bool
	done         bool
}

// CellsNearSegment returns a CellIterator over the axis-aligned bounding
// window enclosing seg's horizontal projection, expanded by radius r, per
// spec §4.1's "cells touching a link" contract.
//
// If seg has zero horizontal extent, the returned iterator yields nothing:
// the easy-reject for same lat/lon handles that case before any geometry
// work, per spec §4.2.
func CellsNearSegment(seg Segment3D, radius float64, dsm DSM) *CellIterator {
	it := &CellIterator{seg: seg, dsm: dsm, radius: radius}

	if seg.HorizontalLengthSq() == 0 {
		it.done = true
		return it
	}

	minX, minY, maxX, maxY := boundingWindow(seg, radius)
	dMinX, dMinY, dMaxX, dMaxY := dsm.Bounds()
	if minX < dMinX {
		minX = dMinX
	}
	if minY < dMinY {
		minY = dMinY
	}
	if maxX > dMaxX {
		maxX = dMaxX
	}
	if maxY > dMaxY {
		maxY = dMaxY
	}
	if minX > maxX || minY > maxY {
		it.done = true
		return it
	}

	it.minIX, it.minIY = dsm.IndexOf(minX, minY)
	it.maxIX, it.maxIY = dsm.IndexOf(maxX, maxY)
	if it.maxIX < it.minIX || it.maxIY < it.minIY {
		it.done = true
	}
	return it
}

// boundingWindow returns the planar bounding box enclosing seg's
// horizontal projection, expanded by radius r on every side.
func boundingWindow(seg Segment3D, r float64) (minX, minY, maxX, maxY float64) {
	minX, maxX = seg.A.X, seg.B.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY = seg.A.Y, seg.B.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return minX - r, minY - r, maxX + r, maxY + r
}

// Next advances the iterator and reports whether a cell was produced.
// Cells outside the DSM, or farther than the configured radius from the
// clamped 2D segment, are skipped transparently.
func (it *CellIterator) Next() (Cell, bool) {
	if it.done {
		return Cell{}, false
	}
	if !it.started {
		it.started = true
		it.curIX, it.curIY = it.minIX, it.minIY
	} else {
		it.advance()
	}

	for !it.done {
		ix, iy := it.curIX, it.curIY
		elev, ok := it.dsm.ElevationAt(ix, iy)
		if !ok {
			it.advance()
			continue
		}
		cx, cy := it.dsm.CellCenter(ix, iy)
		d := PointToSegmentDistance2D(cx, cy, it.seg.A.X, it.seg.A.Y, it.seg.B.X, it.seg.B.Y)
		if d > it.radius {
			it.advance()
			continue
		}

		cell := Cell{IX: ix, IY: iy, CenterX: cx, CenterY: cy, Elevation: elev}
		it.advance()
		return cell, true
	}
	return Cell{}, false
}

// advance moves to the next grid index in row-major scanline order,
// marking the iterator done once the window is exhausted.
func (it *CellIterator) advance() {
	it.curIX++
	if it.curIX > it.maxIX {
		it.curIX = it.minIX
		it.curIY++
		if it.curIY > it.maxIY {
			it.done = true
		}
	}
}

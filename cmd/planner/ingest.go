package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/planererrors"
	"github.com/lvlath-labs/terramesh/topology"
)

// loadSites reads the flat site list spec §6 names: one row per site,
// columns x,y,z,type,device_sku,number_of_subscribers. device_sku may be
// blank, meaning "expand to one copy per compatible device" per
// topology.IngestSites.
func loadSites(path string) ([]topology.RawSite, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var out []topology.RawSite
	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if len(row) < 5 {
			return nil, &planererrors.DataError{Source: path, Reason: fmt.Sprintf("row %d: expected at least 5 columns", i+1)}
		}
		x, errX := strconv.ParseFloat(row[0], 64)
		y, errY := strconv.ParseFloat(row[1], 64)
		z, errZ := strconv.ParseFloat(row[2], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, &planererrors.DataError{Source: path, Reason: fmt.Sprintf("row %d: malformed coordinates", i+1)}
		}
		t, err := parseSiteType(row[3])
		if err != nil {
			return nil, &planererrors.DataError{Source: path, Reason: fmt.Sprintf("row %d: %v", i+1, err)}
		}
		var subs int
		if len(row) > 5 && row[5] != "" {
			subs, _ = strconv.Atoi(row[5])
		}
		out = append(out, topology.RawSite{
			Position:            geo.Point3D{X: x, Y: y, Z: z},
			Type:                t,
			DeviceSKU:           strings.TrimSpace(row[4]),
			NumberOfSubscribers: subs,
		})
	}
	if len(out) == 0 {
		return nil, &planererrors.DataError{Source: path, Reason: "no sites"}
	}
	return out, nil
}

func parseSiteType(s string) (topology.SiteType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "POP":
		return topology.SitePOP, nil
	case "DN":
		return topology.SiteDN, nil
	case "CN":
		return topology.SiteCN, nil
	default:
		return 0, fmt.Errorf("unrecognized site type %q", s)
	}
}

// gridDSM is a dense raster backing geo.DSM, parsed from a CSV whose
// first row is "cell_size,origin_x,origin_y" and every following row is
// one raster row of elevation values.
type gridDSM struct {
	cellSize, originX, originY float64
	elevations                 [][]float64
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
	return int((x - g.originX) / g.cellSize), int((y - g.originY) / g.cellSize)
}

func loadDSM(path string) (*gridDSM, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, &planererrors.DataError{Source: path, Reason: "raster has no rows"}
	}
	header := rows[0]
	if len(header) < 3 {
		return nil, &planererrors.DataError{Source: path, Reason: "raster header requires cell_size,origin_x,origin_y"}
	}
	cellSize, err1 := strconv.ParseFloat(header[0], 64)
	originX, err2 := strconv.ParseFloat(header[1], 64)
	originY, err3 := strconv.ParseFloat(header[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || cellSize <= 0 {
		return nil, &planererrors.DataError{Source: path, Reason: "malformed raster header"}
	}

	elev := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		vals := make([]float64, len(row))
		for c, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &planererrors.DataError{Source: path, Reason: fmt.Sprintf("raster row %d col %d: %v", i+1, c, err)}
			}
			vals[c] = v
		}
		elev = append(elev, vals)
	}
	return &gridDSM{cellSize: cellSize, originX: originX, originY: originY, elevations: elev}, nil
}

// boundaryPolygon implements los.BoundaryPolygon over an orb.Ring loaded
// from a CSV of x,y vertices, testing segment-vs-edge intersection
// directly rather than pulling in orb's planar helpers, which assume
// geographic (lon/lat) rather than the local planar coordinates los uses.
type boundaryPolygon struct {
	ring orb.Ring
}

func (b boundaryPolygon) Intersects(ax, ay, bx, by float64) bool {
	if len(b.ring) < 2 {
		return false
	}
	for i := 0; i < len(b.ring); i++ {
		p1 := b.ring[i]
		p2 := b.ring[(i+1)%len(b.ring)]
		if segmentsIntersect(ax, ay, bx, by, p1[0], p1[1], p2[0], p2[1]) {
			return true
		}
	}
	return false
}

func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func loadBoundary(path string) (boundaryPolygon, error) {
	rows, err := readCSV(path)
	if err != nil {
		return boundaryPolygon{}, err
	}
	ring := make(orb.Ring, 0, len(rows))
	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		if len(row) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(row[0], 64)
		y, errY := strconv.ParseFloat(row[1], 64)
		if errX != nil || errY != nil {
			return boundaryPolygon{}, &planererrors.DataError{Source: path, Reason: fmt.Sprintf("row %d: malformed vertex", i+1)}
		}
		ring = append(ring, orb.Point{x, y})
	}
	if len(ring) == 0 {
		return boundaryPolygon{}, &planererrors.DataError{Source: path, Reason: "empty boundary"}
	}
	return boundaryPolygon{ring: ring}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &planererrors.DataError{Source: path, Reason: "unreadable: " + err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &planererrors.DataError{Source: path, Reason: "malformed csv: " + err.Error()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(row[0], 64)
	return err != nil
}

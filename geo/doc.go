// See types.go for the core geometric types and the DSM seam, distance.go
// for the point/line/segment math the LOS validator builds obstruction
// checks on top of, and iterator.go for the lazy raster-cell walk over a
// link's footprint.
package geo

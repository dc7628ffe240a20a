package topology_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/los"
	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/topology"
)

func TestOrientSectors_DropsLinksBeyondScanRange(t *testing.T) {
	cg := topology.NewCandidateGraph(nil)
	cg.RegisterDevice(topology.Device{
		SKU: "dn-narrow", Type: topology.SiteDN,
		Sector: topology.SectorProfile{ScanRangeDeg: 60, SectorsPerNode: 1, BoresightGainDB: 30, TxPowerDBm: 20},
	})
	require.NoError(t, cg.IngestSites([]topology.RawSite{
		{Position: geo.Point3D{X: 0, Y: 0, Z: 20}, Type: topology.SiteDN, DeviceSKU: "dn-narrow"},
		{Position: geo.Point3D{X: 100, Y: 0, Z: 20}, Type: topology.SiteDN, DeviceSKU: "dn-narrow"},  // east, azimuth 0
		{Position: geo.Point3D{X: 0, Y: 100, Z: 20}, Type: topology.SiteDN, DeviceSKU: "dn-narrow"},  // north, azimuth 90
		{Position: geo.Point3D{X: 0, Y: -100, Z: 20}, Type: topology.SiteDN, DeviceSKU: "dn-narrow"}, // south, azimuth -90
	}))

	dsm := flatDSM{elevation: 0}
	mcsTables := map[string]radio.MCSTable{"dn-narrow": sampleMCSTable()}
	opts := los.Options{Model: los.ModelCylindrical, FresnelRadiusMeters: 2, ConfidenceThreshold: 0.5, MaxElevationAngleDeg: 90, MaxLOSDistanceMeters: 10000, CarrierFrequencyGHz: 60}
	require.NoError(t, cg.BuildLinks(context.Background(), dsm, los.NoExclusionZones{}, opts,
		topology.RadioParams{FreqGHz: 60}, mcsTables, 10000, 1))

	before := len(cg.Links())
	cg.OrientSectors(1.0)
	after := len(cg.Links())

	assert.Less(t, after, before, "a single 60-degree sector cannot cover all three directions")
	for _, l := range cg.Links() {
		assert.False(t, l.FromSector.IsZero())
	}
}

func TestOrientSectors_NoDeviceLeavesLinksUntouched(t *testing.T) {
	cg := topology.NewCandidateGraph(nil)
	require.NoError(t, cg.IngestSites([]topology.RawSite{
		{Position: geo.Point3D{X: 0, Y: 0, Z: 20}, Type: topology.SiteDN},
		{Position: geo.Point3D{X: 100, Y: 0, Z: 20}, Type: topology.SiteDN},
	}))
	dsm := flatDSM{elevation: 0}
	opts := los.Options{Model: los.ModelCylindrical, FresnelRadiusMeters: 2, ConfidenceThreshold: 0.5, MaxElevationAngleDeg: 90, MaxLOSDistanceMeters: 10000, CarrierFrequencyGHz: 60}
	require.NoError(t, cg.BuildLinks(context.Background(), dsm, los.NoExclusionZones{}, opts,
		topology.RadioParams{FreqGHz: 60}, map[string]radio.MCSTable{}, 10000, 1))

	before := len(cg.Links())
	cg.OrientSectors(1.0)
	assert.Equal(t, before, len(cg.Links()))
}

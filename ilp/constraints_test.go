package ilp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/ilp"
	"github.com/lvlath-labs/terramesh/los"
	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/topology"
	"github.com/lvlath-labs/terramesh/topology/demand"
)

type flatDSM struct{ elevation float64 }

func (f flatDSM) CellSize() float64                      { return 1 }
func (f flatDSM) Bounds() (float64, float64, float64, float64) { return -1e6, -1e6, 1e6, 1e6 }
func (f flatDSM) ElevationAt(ix, iy int) (float64, bool) { return f.elevation, true }
func (f flatDSM) CellCenter(ix, iy int) (float64, float64) {
	return float64(ix) + 0.5, float64(iy) + 0.5
}
func (f flatDSM) IndexOf(x, y float64) (int, int) { return int(x), int(y) }

func buildTwoSiteGraph(t *testing.T) *topology.CandidateGraph {
	t.Helper()
	cg := topology.NewCandidateGraph(nil)
	cg.RegisterDevice(topology.Device{
		SKU: "pop-1", Type: topology.SitePOP,
		Sector: topology.SectorProfile{ScanRangeDeg: 360, SectorsPerNode: 4, BoresightGainDB: 30, TxPowerDBm: 20},
	})
	cg.RegisterDevice(topology.Device{
		SKU: "dn-1", Type: topology.SiteDN,
		Sector: topology.SectorProfile{ScanRangeDeg: 360, SectorsPerNode: 4, BoresightGainDB: 30, TxPowerDBm: 20},
	})
	require.NoError(t, cg.IngestSites([]topology.RawSite{
		{Position: geo.Point3D{X: 0, Y: 0, Z: 20}, Type: topology.SitePOP, DeviceSKU: "pop-1"},
		{Position: geo.Point3D{X: 100, Y: 0, Z: 20}, Type: topology.SiteDN, DeviceSKU: "dn-1"},
	}))

	opts := los.Options{Model: los.ModelCylindrical, FresnelRadiusMeters: 2, ConfidenceThreshold: 0.5, MaxElevationAngleDeg: 90, MaxLOSDistanceMeters: 10000, CarrierFrequencyGHz: 60}
	mcsTables := map[string]radio.MCSTable{
		"pop-1": radio.SliceMCSTable{{MCS: 1, SNRThresholdDB: -5, ThroughputMbps: 1800}},
		"dn-1":  radio.SliceMCSTable{{MCS: 1, SNRThresholdDB: -5, ThroughputMbps: 1800}},
	}
	require.NoError(t, cg.BuildLinks(context.Background(), flatDSM{elevation: 0}, los.NoExclusionZones{}, opts,
		topology.RadioParams{FreqGHz: 60, ThermalNoisePowerDBm: -80, NoiseFigureDB: 6}, mcsTables, 10000, 1))
	cg.OrientSectors(1.0)
	return cg
}

func TestAddFlowBalance_EmitsRowsForEveryLinkedSite(t *testing.T) {
	cg := buildTwoSiteGraph(t)

	b := ilp.NewBuilder()
	ctx := &ilp.Context{Graph: cg, PopCapacityMbps: 10000, BigM: 1e6}
	ilp.AddFlowBalance(b, ctx)
	prob := b.Build(ilp.Objective{})
	assert.NotEmpty(t, prob.Constraints)
}

func TestAddP2MP_LimitsDnSectorFanout(t *testing.T) {
	cg := buildTwoSiteGraph(t)
	b := ilp.NewBuilder()
	ctx := &ilp.Context{Graph: cg, DnDnLimit: 2, DnTotalLimit: 15}
	ilp.AddP2MP(b, ctx)
	prob := b.Build(ilp.Objective{})
	assert.NotEmpty(t, prob.Constraints)
	for _, c := range prob.Constraints {
		assert.Contains(t, []ilp.Sense{ilp.LE}, c.Sense)
	}
}

func TestAddSymmetricBackhaul_EmitsOneConstraintPerUndirectedPair(t *testing.T) {
	cg := buildTwoSiteGraph(t)
	b := ilp.NewBuilder()
	ctx := &ilp.Context{Graph: cg}
	ilp.AddSymmetricBackhaul(b, ctx)
	prob := b.Build(ilp.Objective{})
	assert.Len(t, prob.Constraints, 1) // one POP<->DN pair, two directed links
}

func variableNames(prob ilp.Problem) []string {
	names := make([]string, len(prob.Variables))
	for i, v := range prob.Variables {
		names[i] = v.Name
	}
	return names
}

// TestAddTimeDivision_SkipsDemandAccessLinks covers the fix for a latent
// modeling gap: a demand access link has no airtime to schedule, so it
// must not pick up a LinkVar/TauVar from this family the way a real
// backhaul link does.
func TestAddTimeDivision_SkipsDemandAccessLinks(t *testing.T) {
	cg := buildTwoSiteGraph(t)
	dn := cg.SortedSites()[0]
	for _, s := range cg.SortedSites() {
		if s.Type == topology.SiteDN {
			dn = s
		}
	}
	cg.AttachDemand([]demand.Placement{
		{ID: "demand-1", X: dn.Position.X, Y: dn.Position.Y, DemandGbps: 0.1, ConnectedTo: []string{dn.ID.String()}},
	})
	demandID := cg.DemandSites()[0].ID.String()

	b := ilp.NewBuilder()
	ctx := &ilp.Context{Graph: cg}
	sectorOf := map[string]*topology.Sector{}
	ilp.AddTimeDivision(b, ctx, sectorOf)
	prob := b.Build(ilp.Objective{})

	for _, l := range cg.Links() {
		if l.Backhaul {
			continue
		}
		assert.NotContains(t, variableNames(prob), ilp.LinkVar(l.From.String(), l.To.String()))
	}
	assert.NotContains(t, variableNames(prob), ilp.PolarityVar(demandID))
}

// TestAddPolarityProxy_SkipsDemandAccessLinks mirrors the AddTimeDivision
// case: a demand site has no polarity, so it must never pick up a
// PolarityVar from this family.
func TestAddPolarityProxy_SkipsDemandAccessLinks(t *testing.T) {
	cg := buildTwoSiteGraph(t)
	dn := cg.SortedSites()[0]
	for _, s := range cg.SortedSites() {
		if s.Type == topology.SiteDN {
			dn = s
		}
	}
	cg.AttachDemand([]demand.Placement{
		{ID: "demand-1", X: dn.Position.X, Y: dn.Position.Y, DemandGbps: 0.1, ConnectedTo: []string{dn.ID.String()}},
	})
	demandID := cg.DemandSites()[0].ID.String()

	b := ilp.NewBuilder()
	ctx := &ilp.Context{Graph: cg}
	ilp.AddPolarityProxy(b, ctx)
	prob := b.Build(ilp.Objective{})

	assert.NotContains(t, variableNames(prob), ilp.PolarityVar(demandID))
}

func TestBuilder_Build_IsDeterministicAcrossInsertionOrder(t *testing.T) {
	cg := buildTwoSiteGraph(t)

	b1 := ilp.NewBuilder()
	ctx1 := &ilp.Context{Graph: cg, PopCapacityMbps: 10000, BigM: 1e6, DnDnLimit: 2, DnTotalLimit: 15}
	ilp.AddFlowBalance(b1, ctx1)
	ilp.AddP2MP(b1, ctx1)
	p1 := b1.Build(ilp.Objective{})

	b2 := ilp.NewBuilder()
	ctx2 := &ilp.Context{Graph: cg, PopCapacityMbps: 10000, BigM: 1e6, DnDnLimit: 2, DnTotalLimit: 15}
	ilp.AddP2MP(b2, ctx2)
	ilp.AddFlowBalance(b2, ctx2)
	p2 := b2.Build(ilp.Objective{})

	require.Equal(t, len(p1.Variables), len(p2.Variables))
	for i := range p1.Variables {
		assert.Equal(t, p1.Variables[i].Name, p2.Variables[i].Name)
	}
}

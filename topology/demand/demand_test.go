package demand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvlath-labs/terramesh/topology/demand"
)

func TestCN_MultiplicityIsMaxOneSubscribers(t *testing.T) {
	candidates := []demand.Candidate{
		{ID: "cn-1", X: 0, Y: 0, IsCN: true, NumberOfSubscribers: 0},
		{ID: "cn-2", X: 1, Y: 1, IsCN: true, NumberOfSubscribers: 4},
		{ID: "dn-1", X: 2, Y: 2, IsDN: true},
	}

	out := demand.CN(candidates, 0.2)
	assert.Len(t, out, 2)

	byConn := map[string]float64{}
	for _, p := range out {
		byConn[p.ConnectedTo[0]] = p.DemandGbps
	}
	assert.InDelta(t, 0.2, byConn["cn-1"], 1e-9) // max(1,0) subscribers
	assert.InDelta(t, 0.8, byConn["cn-2"], 1e-9) // 4 subscribers
}

func TestUniform_DropsCellsWithNoNearbyCandidate(t *testing.T) {
	candidates := []demand.Candidate{
		{ID: "dn-1", X: 0, Y: 0, IsDN: true},
	}
	out := demand.Uniform(candidates, -5, -5, 5, 5, 5, 1.0, 1.0)
	for _, p := range out {
		assert.NotEmpty(t, p.ConnectedTo)
	}
	assert.NotEmpty(t, out)
}

func TestManual_ConnectsWithinRadiusOnly(t *testing.T) {
	candidates := []demand.Candidate{
		{ID: "cn-1", X: 0, Y: 0, IsCN: true},
		{ID: "cn-2", X: 100, Y: 100, IsCN: true},
	}
	points := []demand.ManualPoint{{X: 1, Y: 1, DemandGbps: 2}}

	out := demand.Manual(points, candidates, 5)
	assert.Len(t, out, 1)
	assert.Equal(t, []string{"cn-1"}, out[0].ConnectedTo)
}

func TestManual_DropsPointsWithNoConnection(t *testing.T) {
	candidates := []demand.Candidate{{ID: "cn-1", X: 0, Y: 0, IsCN: true}}
	points := []demand.ManualPoint{{X: 1000, Y: 1000, DemandGbps: 2}}

	out := demand.Manual(points, candidates, 5)
	assert.Empty(t, out)
}

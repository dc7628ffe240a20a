package topology

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/lvlath-labs/terramesh/core"
	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/los"
	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/topology/demand"
)

// CandidateGraph is the directed multigraph spec §3 names: sites (the
// super-source is not a vertex here; ilp.AddFlowBalance models it as a
// per-POP supply bound) and links, deterministically
// ordered. It wraps a core.Graph for adjacency bookkeeping — the same
// storage the teacher's algorithm packages (flow, bfs, dijkstra) operate
// on directly — and keeps richer domain records in side tables keyed by ID.
type CandidateGraph struct {
	g *core.Graph
	log *logrus.Logger

	sites   map[ID]*Site
	devices map[string]*Device // by SKU
	sectors map[ID]*Sector
	links   map[ID]*Link
	demand  map[ID]*DemandSite
}

// NewCandidateGraph returns an empty graph ready for ingestion. log may be
// nil, in which case a silent logger is used.
func NewCandidateGraph(log *logrus.Logger) *CandidateGraph {
	if log == nil {
		log = logrus.New()
		log.SetOutput(logrusDiscard{})
	}
	return &CandidateGraph{
		g:       core.NewMixedGraph(core.WithWeighted()),
		log:     log,
		sites:   make(map[ID]*Site),
		devices: make(map[string]*Device),
		sectors: make(map[ID]*Sector),
		links:   make(map[ID]*Link),
		demand:  make(map[ID]*DemandSite),
	}
}

// Clone returns a deep copy, so the pipeline can hand each phase its own
// mutable Topology and never mutate a prior phase's snapshot in place —
// the copy-on-phase-boundary model spec §9's "global state" note
// prescribes.
func (cg *CandidateGraph) Clone() *CandidateGraph {
	out := &CandidateGraph{
		g:       cg.g.Clone(),
		log:     cg.log,
		sites:   make(map[ID]*Site, len(cg.sites)),
		devices: make(map[string]*Device, len(cg.devices)),
		sectors: make(map[ID]*Sector, len(cg.sectors)),
		links:   make(map[ID]*Link, len(cg.links)),
		demand:  make(map[ID]*DemandSite, len(cg.demand)),
	}
	for id, s := range cg.sites {
		cp := *s
		out.sites[id] = &cp
	}
	for sku, d := range cg.devices {
		cp := *d
		out.devices[sku] = &cp
	}
	for id, s := range cg.sectors {
		cp := *s
		out.sectors[id] = &cp
	}
	for id, l := range cg.links {
		cp := *l
		out.links[id] = &cp
	}
	for id, d := range cg.demand {
		cp := *d
		cp.ConnectedTo = append([]ID(nil), d.ConnectedTo...)
		out.demand[id] = &cp
	}
	return out
}

type logrusDiscard struct{}

func (logrusDiscard) Write(p []byte) (int, error) { return len(p), nil }

// RegisterDevice makes d available for site expansion.
func (cg *CandidateGraph) RegisterDevice(d Device) { cg.devices[d.SKU] = &d }

// RawSite is a user-supplied input row, prior to id assignment and device
// expansion (spec §4.4 step 1).
type RawSite struct {
	Position            geo.Point3D
	Type                SiteType
	BuildingID          string
	DeviceSKU           string // empty means "expand to one copy per compatible device"
	NumberOfSubscribers int
}

// IngestSites implements spec §4.4 step 1: for each site with no
// device-SKU, instantiate one copy per compatible (same-type) device;
// assign stable content-addressed ids; reject co-located duplicates
// (same location+type+device) per spec §3's Site invariant.
func (cg *CandidateGraph) IngestSites(raw []RawSite) error {
	seen := make(map[ID]struct{})

	add := func(s Site) error {
		s.ID = ComputeSiteID(s.Position, s.Type, s.DeviceSKU)
		if _, dup := seen[s.ID]; dup {
			return nil // identical location+type+device: dedupe silently, not an error
		}
		seen[s.ID] = struct{}{}
		cg.sites[s.ID] = &s
		return cg.g.AddVertex(s.ID.String())
	}

	for _, r := range raw {
		if r.DeviceSKU != "" {
			if err := add(Site{
				Position: r.Position, Type: r.Type, BuildingID: r.BuildingID,
				DeviceSKU: r.DeviceSKU, NumberOfSubscribers: r.NumberOfSubscribers,
			}); err != nil {
				return fmt.Errorf("topology: ingest site: %w", err)
			}
			continue
		}

		compatible := cg.devicesForType(r.Type)
		if len(compatible) == 0 {
			if err := add(Site{Position: r.Position, Type: r.Type, BuildingID: r.BuildingID, NumberOfSubscribers: r.NumberOfSubscribers}); err != nil {
				return fmt.Errorf("topology: ingest site: %w", err)
			}
			continue
		}
		for _, sku := range compatible {
			if err := add(Site{
				Position: r.Position, Type: r.Type, BuildingID: r.BuildingID,
				DeviceSKU: sku, NumberOfSubscribers: r.NumberOfSubscribers,
			}); err != nil {
				return fmt.Errorf("topology: ingest site: %w", err)
			}
		}
	}
	return nil
}

func (cg *CandidateGraph) devicesForType(t SiteType) []string {
	var skus []string
	for sku, d := range cg.devices {
		if d.Type == t {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	return skus
}

// SortedSites returns every site sorted by id, the deterministic order
// spec §3 requires for variable/constraint emission.
func (cg *CandidateGraph) SortedSites() []*Site {
	out := make([]*Site, 0, len(cg.sites))
	for _, s := range cg.sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Site looks up a site by id.
func (cg *CandidateGraph) Site(id ID) (*Site, bool) { s, ok := cg.sites[id]; return s, ok }

// Device looks up a registered device by SKU, for packages (ilp) that need
// a link's transmitting device's MCS table without re-deriving it.
func (cg *CandidateGraph) Device(sku string) (*Device, bool) { d, ok := cg.devices[sku]; return d, ok }

// Links returns every link sorted by id.
func (cg *CandidateGraph) Links() []*Link {
	out := make([]*Link, 0, len(cg.links))
	for _, l := range cg.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// DemandSites returns every demand site sorted by id.
func (cg *CandidateGraph) DemandSites() []*DemandSite {
	out := make([]*DemandSite, 0, len(cg.demand))
	for _, d := range cg.demand {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Underlying exposes the core.Graph storing site adjacency, for packages
// (pipeline, pipeline/prune) that need bfs/dijkstra/flow over it directly.
func (cg *CandidateGraph) Underlying() *core.Graph { return cg.g }

// RadioParams are the link-budget constants shared by every pair in a
// BuildLinks call: carrier frequency, thermal noise, rain rate, and the
// gaseous/atmospheric attenuation constant GAL.
type RadioParams struct {
	FreqGHz              float64
	ThermalNoisePowerDBm float64
	NoiseFigureDB        float64
	RainRateMMPerHour    float64
	GALDB                float64
}

// BuildLinks implements spec §4.4 step 3: for every ordered pair of sites
// within maxLOSDistance, invoke the LOS validator (C2), and for accepted
// pairs compute a Link with the radio model's (C3) derived attributes.
//
// mcsTables supplies each device SKU's MCS table; a pair whose SNR
// qualifies for no row is retained at zero throughput per spec §7's
// NumericalWarning (never dropped, never returned as an error).
func (cg *CandidateGraph) BuildLinks(ctx context.Context, dsm geo.DSM, boundary los.BoundaryPolygon, losOpts los.Options, rp RadioParams, mcsTables map[string]radio.MCSTable, maxLOSDistance float64, workers int) error {
	sites := cg.SortedSites()

	infoOf := func(s *Site) los.SiteInfo {
		return los.SiteInfo{ID: s.ID.String(), Position: s.Position, BuildingID: s.BuildingID}
	}

	var pairs []los.Pair
	byID := make(map[string]*Site, len(sites))
	for _, s := range sites {
		byID[s.ID.String()] = s
	}
	for _, a := range sites {
		for _, b := range sites {
			if a.ID == b.ID {
				continue
			}
			d := geo.Segment3D{A: a.Position, B: b.Position}.Length3D()
			if maxLOSDistance > 0 && d > maxLOSDistance {
				continue
			}
			pairs = append(pairs, los.Pair{A: infoOf(a), B: infoOf(b)})
		}
	}

	results, err := los.ValidateAll(ctx, pairs, dsm, boundary, losOpts, workers)
	if err != nil {
		return fmt.Errorf("topology: build links: %w", err)
	}

	for _, res := range results {
		if !res.Accepted {
			continue
		}
		from, to := byID[res.SiteA], byID[res.SiteB]
		if from == nil || to == nil {
			continue
		}
		link := cg.buildLink(from, to, res.Confidence, rp, mcsTables)
		cg.links[link.ID] = link
		if _, err := cg.g.AddEdge(from.ID.String(), to.ID.String(), int64(math.Round(link.MaxThroughputMbps)), core.WithEdgeDirected(true)); err != nil {
			cg.log.WithError(err).Warnf("topology: skipping duplicate link %s->%s", from.ID, to.ID)
		}
	}
	return nil
}

func (cg *CandidateGraph) buildLink(from, to *Site, confidence float64, rp RadioParams, mcsTables map[string]radio.MCSTable) *Link {
	seg := geo.Segment3D{A: from.Position, B: to.Position}
	distance := seg.Length3D()
	horiz := math.Sqrt(seg.HorizontalLengthSq())
	azimuth := math.Atan2(seg.DeltaY(), seg.DeltaX()) * 180 / math.Pi
	elevation := math.Atan2(seg.DeltaZ(), horiz) * 180 / math.Pi

	fromDev, toDev := cg.devices[from.DeviceSKU], cg.devices[to.DeviceSKU]
	var txGain, rxGain float64
	if fromDev != nil {
		txGain = fromDev.Sector.BoresightGainDB
	}
	if toDev != nil {
		rxGain = toDev.Sector.BoresightGainDB
	}

	in := radio.LinkBudgetInputs{
		TxPowerDBm: deviceTxPower(fromDev),
		TxLossDB:   deviceTxLoss(fromDev),
		TxGainDB:   txGain,
		FSPLDB:     radio.FSPLDB(distance, rp.FreqGHz),
		GALDB:      rp.GALDB,
		RainLossDB: radio.RainAttenuationDB(rp.RainRateMMPerHour, distance),
		RxGainDB:   rxGain,
		RxLossDB:   deviceRxLoss(toDev),
	}
	rsl := radio.RSLDBm(in)
	snr := radio.SNRDB(rsl, rp.ThermalNoisePowerDBm, rp.NoiseFigureDB)

	var throughput float64
	if table, ok := mcsTables[from.DeviceSKU]; ok {
		if row, classified := radio.MCSClassify(table, snr); classified {
			throughput = row.ThroughputMbps
		}
	}

	link := &Link{
		ID:                ComputeLinkID(from.ID, to.ID),
		From:              from.ID,
		To:                to.ID,
		DistanceMeters:    distance,
		AzimuthDeg:        azimuth,
		ElevationDeg:      elevation,
		RSLDBm:            rsl,
		SNRDB:             snr,
		MaxThroughputMbps: throughput,
		Confidence:        confidence,
		Backhaul:          isBackhaulPair(from.Type, to.Type),
	}
	return link
}

func isBackhaulPair(a, b SiteType) bool {
	isNode := func(t SiteType) bool { return t == SitePOP || t == SiteDN }
	return isNode(a) && isNode(b)
}

func deviceTxPower(d *Device) float64 {
	if d == nil {
		return 0
	}
	return d.Sector.TxPowerDBm
}
func deviceTxLoss(d *Device) float64 {
	if d == nil {
		return 0
	}
	return d.Sector.TxLossDB
}
func deviceRxLoss(d *Device) float64 {
	if d == nil {
		return 0
	}
	return d.Sector.RxLossDB
}

// accessLinkThroughputMbps bounds a demand site's synthetic last-mile
// access edge. It is deliberately far above any backhaul link's capacity:
// the access hop from a CN/DN site to its attached demand sink is outside
// the LOS/radio model (spec §4.4 step 5 is a coordinate/id computation,
// not a link budget), so the edge exists only to let flow balance reach
// the demand vertex — the real bottleneck is always upstream, in the
// backhaul mesh AddFlowCapacity already constrains.
const accessLinkThroughputMbps = 1e7

// AttachDemand implements spec §4.4 step 5 by delegating placement math
// to the topology/demand package, converting its plain coordinate results
// back into content-addressed DemandSite records, and wiring one access
// link per connected candidate site so the flow balance constraint family
// has an edge to carry demand onto the vertex AddFlowBalance nets φ at.
func (cg *CandidateGraph) AttachDemand(placements []demand.Placement) {
	for _, p := range placements {
		pos := geo.Point3D{X: p.X, Y: p.Y}
		d := &DemandSite{
			ID:         ComputeDemandID(pos),
			Position:   pos,
			DemandGbps: p.DemandGbps,
		}
		for _, cid := range p.ConnectedTo {
			s := cg.siteByIDString(cid)
			if s == nil {
				continue
			}
			d.ConnectedTo = append(d.ConnectedTo, s.ID)

			link := &Link{
				ID:                ComputeLinkID(s.ID, d.ID),
				From:              s.ID,
				To:                d.ID,
				MaxThroughputMbps: accessLinkThroughputMbps,
				Confidence:        1,
				// A demand access link isn't a radio deployment decision,
				// so it carries no Link.Selected variable of its own in
				// the MILP (see AddFlowCapacity) and is unconditionally
				// available once its connected site exists.
				Selected: true,
			}
			cg.links[link.ID] = link
			if _, err := cg.g.AddEdge(s.ID.String(), d.ID.String(), int64(accessLinkThroughputMbps), core.WithEdgeDirected(true)); err != nil {
				cg.log.WithError(err).Warnf("topology: skipping duplicate demand access link %s->%s", s.ID, d.ID)
			}
		}
		d.ConnectedTo = SortedIDs(d.ConnectedTo)
		cg.demand[d.ID] = d
	}
}

func (cg *CandidateGraph) siteByIDString(idStr string) *Site {
	for id, s := range cg.sites {
		if id.String() == idStr {
			return s
		}
	}
	return nil
}

// DemandCandidates converts every ingested CN/DN site into a
// demand.Candidate, for callers building the input to demand.CN/Uniform/Manual.
func (cg *CandidateGraph) DemandCandidates() []demand.Candidate {
	var out []demand.Candidate
	for _, s := range cg.SortedSites() {
		if s.Type != SiteCN && s.Type != SiteDN {
			continue
		}
		out = append(out, demand.Candidate{
			ID:                  s.ID.String(),
			X:                   s.Position.X,
			Y:                   s.Position.Y,
			IsCN:                s.Type == SiteCN,
			IsDN:                s.Type == SiteDN,
			NumberOfSubscribers: s.NumberOfSubscribers,
		})
	}
	return out
}

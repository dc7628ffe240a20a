// Package topology holds the candidate-graph data model: sites, devices,
// sectors, links, and demand sites, assembled deterministically from user
// input plus C2 (los) and C3 (radio) per spec §4.4. Stable entity ids are
// content-addressed MD5 digests of an entity's defining attributes, so the
// same input always produces the same graph regardless of ingestion order.
package topology

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/lvlath-labs/terramesh/geo"
	"github.com/lvlath-labs/terramesh/radio"
)

// ID is a 16-byte MD5 digest uniquely identifying a Site, Sector, or Link.
type ID [16]byte

// String renders ID as a lowercase hex string, for logs, CSV output, and
// use as a core.Graph vertex/edge key.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether id is the zero value (never a valid content hash).
func (id ID) IsZero() bool { return id == ID{} }

func hashID(parts ...string) ID {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator so ("ab","c") != ("a","bc")
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// SiteType classifies a Site's role in the mesh.
type SiteType int

const (
	SitePOP SiteType = iota
	SiteDN
	SiteCN
	SiteDemand
)

func (t SiteType) String() string {
	switch t {
	case SitePOP:
		return "POP"
	case SiteDN:
		return "DN"
	case SiteCN:
		return "CN"
	case SiteDemand:
		return "DEMAND"
	default:
		return "UNKNOWN"
	}
}

// AntennaPattern is topology's own angle-to-loss lookup interface
// (LossDB). It is not an alias of radio.AntennaPattern, whose method is
// GainAt, and topology declares no ScanPattern counterpart.
type AntennaPattern = interface {
	LossDB(angleDeg float64) float64
}

// SectorProfile is the per-device radio hardware profile spec §3 names:
// scan range, sectors per node, boresight gain, Tx/Rx bounds, losses.
type SectorProfile struct {
	ScanRangeDeg    float64
	SectorsPerNode  int
	BoresightGainDB float64
	TxPowerDBm      float64
	RxPowerDBm      float64
	TxLossDB        float64
	RxLossDB        float64
	DiversityGainDB float64
}

// Device is a hardware profile: POP, DN or CN, with its cost and sector layout.
// CN devices always have exactly one node per site (spec §3 invariant).
type Device struct {
	SKU             string
	Type            SiteType // SitePOP, SiteDN or SiteCN
	NodeCAPEX       float64
	MaxNodesPerSite int
	Sector          SectorProfile

	// MCSTable is this device's modulation-and-coding table, consulted by
	// BuildLinks for per-link classification and retained here so later
	// pipeline phases can re-derive every candidate MCS row for a link
	// without threading the table through each phase call separately.
	MCSTable radio.MCSTable
}

// Site is a geographic installation point. BuildingID and DeviceSKU are
// optional; NumberOfSubscribers applies only to CN sites.
type Site struct {
	ID                  ID
	Position            geo.Point3D // X=longitude, Y=latitude, Z=altitude in the caller's projection
	Type                SiteType
	BuildingID          string
	DeviceSKU           string
	NumberOfSubscribers int

	// Selected and Polarity are populated by the pipeline once a phase's
	// solve has run; both are zero-valued on a freshly built candidate
	// graph.
	Selected bool
	Polarity int // 0 or 1; meaningful only for POP/DN sites
}

// ComputeSiteID derives a Site's stable id from (longitude, latitude,
// altitude, type, device-SKU) per spec §5.
func ComputeSiteID(pos geo.Point3D, t SiteType, deviceSKU string) ID {
	return hashID(
		fmt.Sprintf("%.9f", pos.X),
		fmt.Sprintf("%.9f", pos.Y),
		fmt.Sprintf("%.9f", pos.Z),
		t.String(),
		deviceSKU,
	)
}

// Node is one physical radio unit at a Site; a Site may host several
// Nodes, each with one or more Sectors covering complementary arcs.
type Node struct {
	Index int
}

// Sector is a realized radio aperture on a Site's Node, oriented at
// BoresightDeg (0-360, in Link.AzimuthDeg's frame: counter-clockwise
// from the +X axis).
type Sector struct {
	ID           ID
	SiteID       ID
	NodeIndex    int
	Position     int // position of this sector within its node (0-based)
	BoresightDeg float64

	Active  bool
	Channel int
}

// ComputeSectorID derives a Sector's stable id from its owning site,
// node index, and position, per spec §3's deterministic ordering key.
func ComputeSectorID(siteID ID, nodeIndex, position int) ID {
	return hashID(siteID.String(), fmt.Sprintf("%d", nodeIndex), fmt.Sprintf("%d", position))
}

// Link is a directed radio connection between two sites.
type Link struct {
	ID               ID
	From, To         ID
	FromSector       ID
	ToSector         ID
	DistanceMeters   float64
	AzimuthDeg       float64
	ElevationDeg     float64
	RSLDBm           float64
	SNRDB            float64
	MaxThroughputMbps float64
	Confidence       float64
	Backhaul         bool // both endpoints are POP or DN sites; must be selected symmetrically

	// Selected, Channel, ActiveMCS, and FlowMbps are populated by the
	// pipeline: Selected by the base-network and redundancy phases (and by
	// AttachDemand for access links), Channel and ActiveMCS by interference
	// minimization, FlowMbps by the base-network solve and flow analysis.
	Selected  bool
	Channel   int
	ActiveMCS int
	FlowMbps  float64
}

// ComputeLinkID derives a Link's stable id from its ordered endpoint ids.
func ComputeLinkID(from, to ID) ID {
	return hashID(from.String(), to.String())
}

// DemandSite is a synthetic sink carrying scalar demand (Gbps), attached
// to one or more CN/DN sites within a connection radius.
type DemandSite struct {
	ID          ID
	Position    geo.Point3D
	DemandGbps  float64
	ConnectedTo []ID // sorted, deterministic

	// Shortfall and AchievedGbps are populated once the base-network and
	// flow-analysis phases have run.
	Shortfall    float64
	AchievedGbps float64
}

// ComputeDemandID derives a DemandSite's stable id from its position.
func ComputeDemandID(pos geo.Point3D) ID {
	return hashID(fmt.Sprintf("%.9f", pos.X), fmt.Sprintf("%.9f", pos.Y), fmt.Sprintf("%.9f", pos.Z))
}

// SortedIDs returns ids sorted by their hex string, the canonical
// deterministic order used for variable/constraint emission (spec §5).
func SortedIDs(ids []ID) []ID {
	out := make([]ID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

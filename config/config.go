// Package config loads and validates the planner's flat configuration
// surface from a TOML document into a fully typed struct.
//
// Per the design note "dynamic typing of config" (spec §9), there is no
// map[string]interface{} surface reachable from the core packages: every
// recognized option has a field here, and any key present in the source
// document that this struct does not recognize is a ConfigError, not a
// silently-ignored default.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lvlath-labs/terramesh/planererrors"
)

// LOSModel selects which geometric obstruction model the LOS validator uses.
type LOSModel string

const (
	LOSModelCylindrical LOSModel = "cylindrical"
	LOSModelEllipsoidal LOSModel = "ellipsoidal"
)

// RedundancyLevel bounds per-hop capacity during the redundancy phase.
type RedundancyLevel string

const (
	RedundancyLow    RedundancyLevel = "low"
	RedundancyMedium RedundancyLevel = "medium"
	RedundancyHigh   RedundancyLevel = "high"
)

// RoutingFilter selects how the Flow Analyzer attributes flow to paths.
type RoutingFilter string

const (
	RoutingShortestPath  RoutingFilter = "shortest_path"
	RoutingMCSCostPath   RoutingFilter = "mcs_cost_path"
	RoutingDPAPath       RoutingFilter = "dpa_path"
)

// DemandModel selects which demand-site placement strategy is active.
type DemandModel string

const (
	DemandModelCN      DemandModel = "cn"
	DemandModelUniform DemandModel = "uniform"
	DemandModelManual  DemandModel = "manual"
)

// PhaseLimits bounds a single solver invocation, per spec §4.6 / §6.
type PhaseLimits struct {
	RelGap         float64 `toml:"rel_gap"`
	MaxTimeMinutes float64 `toml:"max_time_minutes"`
}

// MCSRowSpec is one row of a device's MCS table, as read from TOML.
type MCSRowSpec struct {
	MCS            int     `toml:"mcs"`
	SNRThresholdDB float64 `toml:"snr_threshold_db"`
	ThroughputMbps float64 `toml:"throughput_mbps"`
	TxBackoffDB    float64 `toml:"tx_backoff_db"`
}

// DeviceSpec is a hardware profile entry in the device catalog, per spec
// §3's Device type: a SKU, its site type, CAPEX, node count, sector
// profile, and MCS table. site_type is "POP", "DN", or "CN".
type DeviceSpec struct {
	SKU             string       `toml:"sku"`
	SiteType        string       `toml:"site_type"`
	NodeCAPEX       float64      `toml:"node_capex"`
	SectorCAPEX     float64      `toml:"sector_capex"`
	MaxNodesPerSite int          `toml:"max_nodes_per_site"`
	ScanRangeDeg    float64      `toml:"scan_range_deg"`
	SectorsPerNode  int          `toml:"sectors_per_node"`
	BoresightGainDB float64      `toml:"boresight_gain_db"`
	TxPowerDBm      float64      `toml:"tx_power_dbm"`
	RxPowerDBm      float64      `toml:"rx_power_dbm"`
	TxLossDB        float64      `toml:"tx_loss_db"`
	RxLossDB        float64      `toml:"rx_loss_db"`
	DiversityGainDB float64      `toml:"diversity_gain_db"`
	MCSTable        []MCSRowSpec `toml:"mcs_table"`
}

// Config is the planner's entire recognized configuration surface (spec §6).
type Config struct {
	// Inputs
	BoundaryPolygonPath string   `toml:"boundary_polygon_path"`
	DSMPath              string  `toml:"dsm_path"`
	DTMPath              string  `toml:"dtm_path"`
	DHMPath               string `toml:"dhm_path"`
	SitesPath             string `toml:"sites_path"`
	BuildingOutlinesPath  string `toml:"building_outlines_path"`
	CandidateTopologyPath string `toml:"candidate_topology_path"`
	BaseTopologyPath      string `toml:"base_topology_path"`

	// LOS model
	LOSModel             LOSModel `toml:"los_model"`
	FresnelRadiusMeters  float64  `toml:"fresnel_radius_meters"`
	ConfidenceThreshold  float64  `toml:"confidence_threshold"`
	MaxElevationAngleDeg float64  `toml:"max_elevation_angle_deg"`
	MinLOSDistanceMeters float64  `toml:"min_los_distance_meters"`
	MaxLOSDistanceMeters float64  `toml:"max_los_distance_meters"`

	// Radio
	CarrierFrequencyGHz float64 `toml:"carrier_frequency_ghz"`
	NoiseFigureDB       float64 `toml:"noise_figure_db"`
	ThermalNoisePowerDBm float64 `toml:"thermal_noise_power_dbm"`
	RainRateMMPerHour   float64 `toml:"rain_rate_mm_per_hour"`
	LinkAvailabilityPct float64 `toml:"link_availability_pct"`

	// CAPEX / budget
	SiteCapex   map[string]float64 `toml:"site_capex"`
	SectorCapex map[string]float64 `toml:"sector_capex"`
	BudgetUSD   float64            `toml:"budget_usd"`

	// Device catalog: per-device-SKU radio hardware profiles (spec §3
	// Device, §6 "per-device radio parameters"). SiteCapex/SectorCapex
	// above still drive the optimization objective; Devices supplies the
	// physical profile (sector geometry, MCS table) a SKU expands to.
	Devices []DeviceSpec `toml:"devices"`

	// Demand model
	DemandModel                DemandModel `toml:"demand_model"`
	UniformDemandGbps           float64    `toml:"uniform_demand_gbps"`
	UniformDemandSpacingMeters  float64    `toml:"uniform_demand_spacing_meters"`
	DemandConnectionRadiusMeters float64   `toml:"demand_connection_radius_meters"`
	PerCNDemandGbps             float64    `toml:"per_cn_demand_gbps"`

	// Network sizing / P2MP
	POPCapacityGbps         float64 `toml:"pop_capacity_gbps"`
	NumberOfExtraPOPs       int     `toml:"number_of_extra_pops"`
	DNDNSectorLimit         int     `toml:"dn_dn_sector_limit"`
	DNTotalSectorLimit      int     `toml:"dn_total_sector_limit"`
	DiffSectorAngleLimitDeg float64 `toml:"diff_sector_angle_limit_deg"`
	NearFarLengthRatio      float64 `toml:"near_far_length_ratio"`
	NearFarAngleLimitDeg    float64 `toml:"near_far_angle_limit_deg"`
	OversubscriptionRatio   float64 `toml:"oversubscription_ratio"`
	NumberOfChannels        int     `toml:"number_of_channels"`

	MaximizeCommonBandwidth      bool `toml:"maximize_common_bandwidth"`
	AlwaysActivePOPs              bool `toml:"always_active_pops"`
	EnableLegacyRedundancyMethod  bool `toml:"enable_legacy_redundancy_method"`
	RedundancyLevel               RedundancyLevel `toml:"redundancy_level"`
	BackhaulLinkRedundancyRatio   float64         `toml:"backhaul_link_redundancy_ratio"`
	AutomaticSiteDetection         bool           `toml:"automatic_site_detection"`
	CornerAngleThresholdDeg       float64         `toml:"corner_angle_threshold_deg"`

	// Per-phase solver limits, keyed by phase name.
	PhaseLimits map[string]PhaseLimits `toml:"phase_limits"`

	TopologyRouting RoutingFilter `toml:"topology_routing"`

	// Availability simulation
	AvailabilitySimulationEnabled bool `toml:"availability_simulation_enabled"`
	AvailabilitySimulationRuns    int  `toml:"availability_simulation_runs"`

	// Solver
	SolverThreadCount int  `toml:"solver_thread_count"`
	SolverDebugMode   bool `toml:"solver_debug_mode"`
	SolverDebugDir    string `toml:"solver_debug_dir"`

	// Logging
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// recognizedTopLevelKeys returns the set of toml tag names declared on
// Config's fields, used to detect unrecognized top-level keys.
func recognizedTopLevelKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("toml")
		tag, _, _ = strings.Cut(tag, ",")
		if tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}

// Load decodes a TOML configuration file into a Config, rejecting any
// top-level key that Config does not recognize.
//
// The unknown-key check decodes the document twice: once into a primitive
// map to enumerate the keys actually present, and once into the typed
// struct to obtain values. This is the only way to detect "reasonable
// sounding but unrecognized" keys with BurntSushi/toml, which otherwise
// silently ignores fields it cannot map.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &planererrors.DataError{Source: path, Reason: "configuration file not found"}
	}

	var raw map[string]toml.Primitive
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, &planererrors.ConfigError{Field: path, Reason: fmt.Sprintf("malformed TOML: %v", err)}
	}

	recognized := recognizedTopLevelKeys()
	var unknown []string
	for k := range raw {
		if _, ok := recognized[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return nil, &planererrors.ConfigError{
			Field:  strings.Join(unknown, ", "),
			Reason: "unrecognized configuration key",
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, &planererrors.ConfigError{Field: path, Reason: fmt.Sprintf("failed to decode: %v", err)}
	}

	if err := cfg.applyDefaultsAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaultsAndValidate fills in documented defaults for omitted fields
// and rejects contradictory combinations (§7 ConfigError).
func (c *Config) applyDefaultsAndValidate() error {
	if c.LOSModel == "" {
		c.LOSModel = LOSModelCylindrical
	}
	if c.MaxElevationAngleDeg == 0 {
		c.MaxElevationAngleDeg = 25.0
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = 0.75
	}
	if c.DNDNSectorLimit == 0 {
		c.DNDNSectorLimit = 2
	}
	if c.DNTotalSectorLimit == 0 {
		c.DNTotalSectorLimit = 15
	}
	if c.NumberOfChannels == 0 {
		c.NumberOfChannels = 1
	}
	if c.SolverThreadCount == 0 {
		c.SolverThreadCount = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DemandModel == "" {
		c.DemandModel = DemandModelCN
	}
	if c.TopologyRouting == "" {
		c.TopologyRouting = RoutingShortestPath
	}
	if c.RedundancyLevel == "" {
		c.RedundancyLevel = RedundancyMedium
	}

	if c.BaseTopologyPath != "" && c.AutomaticSiteDetection {
		return &planererrors.ConfigError{
			Field:  "base_topology_path, automatic_site_detection",
			Reason: "a base topology together with automatic site detection is contradictory",
		}
	}
	if c.SitesPath == "" && c.CandidateTopologyPath == "" && c.BaseTopologyPath == "" {
		return &planererrors.ConfigError{Field: "sites_path", Reason: "at least one of sites_path, candidate_topology_path, base_topology_path is required"}
	}
	if c.LOSModel != LOSModelCylindrical && c.LOSModel != LOSModelEllipsoidal {
		return &planererrors.ConfigError{Field: "los_model", Reason: fmt.Sprintf("unrecognized LOS model %q", c.LOSModel)}
	}
	for _, d := range c.Devices {
		switch d.SiteType {
		case "POP", "DN", "CN":
		default:
			return &planererrors.ConfigError{Field: "devices." + d.SKU + ".site_type", Reason: fmt.Sprintf("unrecognized device site type %q", d.SiteType)}
		}
	}
	return nil
}

// DeviceBySKU returns the device catalog entry with the given SKU, or
// reports a ConfigError naming the unrecognized SKU — the check spec §7
// names for "unrecognized device-SKU on a site".
func (c *Config) DeviceBySKU(sku string) (*DeviceSpec, error) {
	for i := range c.Devices {
		if c.Devices[i].SKU == sku {
			return &c.Devices[i], nil
		}
	}
	return nil, &planererrors.ConfigError{Field: "devices", Reason: fmt.Sprintf("unrecognized device SKU %q", sku)}
}

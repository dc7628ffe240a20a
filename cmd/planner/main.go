// Command planner runs the full site-ingestion-through-flow-analysis
// pipeline spec §4 describes over a TOML configuration file, and writes
// the resulting topology as CSV reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lvlath-labs/terramesh/config"
	"github.com/lvlath-labs/terramesh/los"
	"github.com/lvlath-labs/terramesh/pipeline"
	"github.com/lvlath-labs/terramesh/planererrors"
	"github.com/lvlath-labs/terramesh/radio"
	"github.com/lvlath-labs/terramesh/report"
	"github.com/lvlath-labs/terramesh/topology"
	"github.com/lvlath-labs/terramesh/topology/demand"
)

func main() {
	configPath := flag.String("config", "planner.toml", "path to the planner's TOML configuration file")
	outDir := flag.String("out", "out", "directory to write sites.csv, links.csv, and summary.csv into")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("planner: loading configuration")
	}
	configureLogging(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, *outDir); err != nil {
		log.WithError(err).Fatal("planner: run failed")
	}
}

// configureLogging sets the logger's level from cfg.LogLevel and, when
// cfg.LogFile is set, sends output to a rotating lumberjack writer in
// place of stderr.
func configureLogging(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
}

// run ingests sites, the DSM, and the boundary polygon, assembles the
// candidate graph, places demand, executes the optimization pipeline, and
// writes out the resulting reports.
func run(ctx context.Context, log *logrus.Logger, cfg *config.Config, outDir string) error {
	if cfg.AutomaticSiteDetection {
		return &planererrors.ConfigError{Field: "automatic_site_detection", Reason: "no building-outline source is wired into this command; supply sites_path instead"}
	}
	if cfg.SitesPath == "" {
		return &planererrors.ConfigError{Field: "sites_path", Reason: "this command requires an explicit site list"}
	}

	rawSites, err := loadSites(cfg.SitesPath)
	if err != nil {
		return err
	}
	dsm, err := loadDSM(cfg.DSMPath)
	if err != nil {
		return err
	}
	boundary, err := resolveBoundary(cfg.BoundaryPolygonPath)
	if err != nil {
		return err
	}
	if len(cfg.Devices) == 0 {
		return &planererrors.DataError{Source: "devices", Reason: "no devices configured"}
	}

	log.WithFields(logrus.Fields{"sites": len(rawSites), "devices": len(cfg.Devices)}).Info("planner: ingested inputs")

	cg := topology.NewCandidateGraph(log)
	mcsTables := make(map[string]radio.MCSTable, len(cfg.Devices))
	for _, d := range cfg.Devices {
		dev, table, err := toTopologyDevice(d)
		if err != nil {
			return err
		}
		cg.RegisterDevice(dev)
		mcsTables[d.SKU] = table
	}
	if err := validateDeviceSKUs(rawSites, cfg.Devices); err != nil {
		return err
	}

	if err := cg.IngestSites(rawSites); err != nil {
		return fmt.Errorf("planner: ingest sites: %w", err)
	}

	losOpts := los.Options{
		Model:                losModel(cfg.LOSModel),
		FresnelRadiusMeters:  cfg.FresnelRadiusMeters,
		ConfidenceThreshold:  cfg.ConfidenceThreshold,
		MaxElevationAngleDeg: cfg.MaxElevationAngleDeg,
		MinLOSDistanceMeters: cfg.MinLOSDistanceMeters,
		MaxLOSDistanceMeters: cfg.MaxLOSDistanceMeters,
		CarrierFrequencyGHz:  cfg.CarrierFrequencyGHz,
	}
	radioParams := topology.RadioParams{
		FreqGHz:              cfg.CarrierFrequencyGHz,
		ThermalNoisePowerDBm: cfg.ThermalNoisePowerDBm,
		NoiseFigureDB:        cfg.NoiseFigureDB,
		RainRateMMPerHour:    cfg.RainRateMMPerHour,
	}

	log.Info("planner: building candidate links")
	if err := cg.BuildLinks(ctx, dsm, boundary, losOpts, radioParams, mcsTables, cfg.MaxLOSDistanceMeters, cfg.SolverThreadCount); err != nil {
		return fmt.Errorf("planner: build links: %w", err)
	}
	cg.OrientSectors(1.0)
	cg.PopulateReciprocalSectors()

	placements, err := placeDemand(cg, cfg)
	if err != nil {
		return err
	}
	cg.AttachDemand(placements)
	log.WithField("demand_sites", len(placements)).Info("planner: placed demand")

	log.Info("planner: running optimization pipeline")
	result, err := pipeline.Run(ctx, cfg, cg)
	if err != nil {
		return fmt.Errorf("planner: pipeline: %w", err)
	}

	if err := report.WriteAll(outDir, result); err != nil {
		return fmt.Errorf("planner: write reports: %w", err)
	}
	log.WithFields(logrus.Fields{"run_id": result.RunID, "out": outDir, "common_throughput_mbps": result.Flow.BetaMbps}).Info("planner: done")
	return nil
}

func resolveBoundary(path string) (los.BoundaryPolygon, error) {
	if path == "" {
		return los.NoExclusionZones{}, nil
	}
	return loadBoundary(path)
}

func losModel(m config.LOSModel) los.Model {
	if m == config.LOSModelEllipsoidal {
		return los.ModelEllipsoidal
	}
	return los.ModelCylindrical
}

func toTopologyDevice(d config.DeviceSpec) (topology.Device, radio.MCSTable, error) {
	t, err := parseSiteType(d.SiteType)
	if err != nil {
		return topology.Device{}, nil, &planererrors.ConfigError{Field: "devices." + d.SKU + ".site_type", Reason: err.Error()}
	}
	rows := make(radio.SliceMCSTable, len(d.MCSTable))
	for i, r := range d.MCSTable {
		rows[i] = radio.MCSRow{MCS: r.MCS, SNRThresholdDB: r.SNRThresholdDB, ThroughputMbps: r.ThroughputMbps, TxBackoffDB: r.TxBackoffDB}
	}
	maxNodes := d.MaxNodesPerSite
	if t == topology.SiteCN {
		maxNodes = 1 // spec §3 Device invariant: CN devices always have exactly one node per site
	}
	dev := topology.Device{
		SKU:             d.SKU,
		Type:            t,
		NodeCAPEX:       d.NodeCAPEX,
		MaxNodesPerSite: maxNodes,
		Sector: topology.SectorProfile{
			ScanRangeDeg:    d.ScanRangeDeg,
			SectorsPerNode:  d.SectorsPerNode,
			BoresightGainDB: d.BoresightGainDB,
			TxPowerDBm:      d.TxPowerDBm,
			RxPowerDBm:      d.RxPowerDBm,
			TxLossDB:        d.TxLossDB,
			RxLossDB:        d.RxLossDB,
			DiversityGainDB: d.DiversityGainDB,
		},
		MCSTable: rows,
	}
	return dev, rows, nil
}

func validateDeviceSKUs(sites []topology.RawSite, devices []config.DeviceSpec) error {
	known := make(map[string]bool, len(devices))
	for _, d := range devices {
		known[d.SKU] = true
	}
	for _, s := range sites {
		if s.DeviceSKU != "" && !known[s.DeviceSKU] {
			return &planererrors.ConfigError{Field: "sites_path", Reason: fmt.Sprintf("unrecognized device SKU %q", s.DeviceSKU)}
		}
	}
	return nil
}

// placeDemand runs the demand model cfg.DemandModel selects over the
// graph's DN/CN candidates, per spec §4.4 step 5.
func placeDemand(cg *topology.CandidateGraph, cfg *config.Config) ([]demand.Placement, error) {
	candidates := cg.DemandCandidates()
	switch cfg.DemandModel {
	case config.DemandModelUniform:
		minX, minY, maxX, maxY := uniformBounds(candidates)
		return demand.Uniform(candidates, minX, minY, maxX, maxY, cfg.UniformDemandSpacingMeters, cfg.UniformDemandGbps, cfg.DemandConnectionRadiusMeters), nil
	case config.DemandModelManual:
		return nil, &planererrors.ConfigError{Field: "demand_model", Reason: "manual demand points have no file source wired into this command"}
	default:
		return demand.CN(candidates, cfg.PerCNDemandGbps), nil
	}
}

func uniformBounds(candidates []demand.Candidate) (minX, minY, maxX, maxY float64) {
	if len(candidates) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = candidates[0].X, candidates[0].Y
	maxX, maxY = minX, minY
	for _, c := range candidates[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return minX, minY, maxX, maxY
}

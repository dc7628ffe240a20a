// Package report renders a planner Run's output topology to the flat
// per-site and per-link CSV files spec §6 names as the planner's outputs,
// using the standard library's encoding/csv — no example repo in this
// corpus pulls in a third-party CSV library, so this is one of the few
// components that stays on the standard library by design, not oversight.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/lvlath-labs/terramesh/pipeline"
	"github.com/lvlath-labs/terramesh/topology"
)

// WriteSiteCSV writes one row per site: id, type, position, selection and
// polarity decisions, and (for demand sites) achieved throughput and
// shortfall.
func WriteSiteCSV(path string, g *topology.CandidateGraph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create site csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"id", "type", "x", "y", "z", "device_sku", "selected", "polarity"}); err != nil {
		return err
	}
	for _, s := range g.SortedSites() {
		row := []string{
			s.ID.String(),
			s.Type.String(),
			strconv.FormatFloat(s.Position.X, 'f', 6, 64),
			strconv.FormatFloat(s.Position.Y, 'f', 6, 64),
			strconv.FormatFloat(s.Position.Z, 'f', 2, 64),
			s.DeviceSKU,
			strconv.FormatBool(s.Selected),
			strconv.Itoa(s.Polarity),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("report: write site row %s: %w", s.ID, err)
		}
	}

	if err := w.Write([]string{}); err != nil {
		return err
	}
	if err := w.Write([]string{"demand_id", "x", "y", "demand_gbps", "achieved_gbps", "shortfall_gbps"}); err != nil {
		return err
	}
	for _, d := range g.DemandSites() {
		row := []string{
			d.ID.String(),
			strconv.FormatFloat(d.Position.X, 'f', 6, 64),
			strconv.FormatFloat(d.Position.Y, 'f', 6, 64),
			strconv.FormatFloat(d.DemandGbps, 'f', 4, 64),
			strconv.FormatFloat(d.AchievedGbps, 'f', 4, 64),
			strconv.FormatFloat(d.Shortfall, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("report: write demand row %s: %w", d.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteLinkCSV writes one row per link: id, endpoints, geometry, link
// budget, selection/channel/MCS decisions, and achieved flow.
func WriteLinkCSV(path string, g *topology.CandidateGraph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create link csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"id", "from", "to", "distance_m", "azimuth_deg", "elevation_deg",
		"rsl_dbm", "snr_db", "max_throughput_mbps", "confidence", "backhaul",
		"selected", "channel", "active_mcs", "flow_mbps",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, l := range g.Links() {
		row := []string{
			l.ID.String(),
			l.From.String(),
			l.To.String(),
			strconv.FormatFloat(l.DistanceMeters, 'f', 2, 64),
			strconv.FormatFloat(l.AzimuthDeg, 'f', 2, 64),
			strconv.FormatFloat(l.ElevationDeg, 'f', 2, 64),
			strconv.FormatFloat(l.RSLDBm, 'f', 2, 64),
			strconv.FormatFloat(l.SNRDB, 'f', 2, 64),
			strconv.FormatFloat(l.MaxThroughputMbps, 'f', 2, 64),
			strconv.FormatFloat(l.Confidence, 'f', 4, 64),
			strconv.FormatBool(l.Backhaul),
			strconv.FormatBool(l.Selected),
			strconv.Itoa(l.Channel),
			strconv.Itoa(l.ActiveMCS),
			strconv.FormatFloat(l.FlowMbps, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("report: write link row %s: %w", l.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteAll writes both CSV reports plus a one-line summary of the Flow
// Analyzer's achieved common throughput, for callers that just want the
// whole pipeline.Report persisted under one directory with a fixed
// naming scheme.
func WriteAll(dir string, r *pipeline.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: mkdir %s: %w", dir, err)
	}
	if err := WriteSiteCSV(dir+"/sites.csv", r.Topology); err != nil {
		return err
	}
	if err := WriteLinkCSV(dir+"/links.csv", r.Topology); err != nil {
		return err
	}
	return writeSummary(dir+"/summary.csv", r)
}

func writeSummary(path string, r *pipeline.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	if err := w.Write([]string{"run_id", r.RunID}); err != nil {
		return err
	}
	beta := 0.0
	if r.Flow != nil {
		beta = r.Flow.BetaMbps
	}
	if err := w.Write([]string{"common_throughput_mbps", strconv.FormatFloat(beta, 'f', 4, 64)}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

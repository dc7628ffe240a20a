// Package radio computes the 60GHz link budget (RSL, path loss, SNR),
// classifies links into MCS classes, and values pairwise interference
// contributions, per spec §4.3.
//
// Antenna gain curves, scan-loss curves, and MCS tables are consumed
// through small interfaces rather than owned file formats: callers supply
// them (typically loaded from a device profile), and this package only
// ever reads through the interface.
package radio

// AntennaPattern maps an off-boresight angle (degrees, 0 = boresight) to
// a gain value in dB. Implementations typically interpolate a table.
type AntennaPattern interface {
	GainAt(angleDeg float64) float64
}

// ScanPattern maps a sector scan angle (degrees from the sector's nominal
// center) to a loss value in dB.
type ScanPattern interface {
	LossAt(scanAngleDeg float64) float64
}

// MCSRow is one row of an MCS table: the class index, its minimum SNR
// threshold in dB, its throughput in Mbps, and the Tx power backoff that
// class requires.
type MCSRow struct {
	MCS            int
	SNRThresholdDB float64
	ThroughputMbps float64
	TxBackoffDB    float64
}

// MCSTable exposes a device's MCS rows. Rows need not be pre-sorted;
// MCSClassify sorts a local copy by SNRThresholdDB ascending.
type MCSTable interface {
	Rows() []MCSRow
}

// SliceMCSTable is the simplest MCSTable: a literal slice of rows.
type SliceMCSTable []MCSRow

func (s SliceMCSTable) Rows() []MCSRow { return []MCSRow(s) }

// LinkBudgetInputs are the per-ordered-pair quantities spec §4.3's RSL
// formula combines. Losses and the path-loss terms (FSPL/GAL/rain) are
// expressed in dB, gains in dB, and Tx power in dBm.
type LinkBudgetInputs struct {
	TxPowerDBm float64 // P_tx_i
	TxLossDB   float64 // L_tx_i
	TxGainDB   float64 // G_tx(θ_ij): antenna gain at the Tx deviation angle, minus scan loss
	FSPLDB     float64
	GALDB      float64
	RainLossDB float64
	RxGainDB   float64 // G_rx(θ_ji)
	RxLossDB   float64 // L_rx_j
}

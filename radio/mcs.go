package radio

import "sort"

// MCSClassify returns the highest MCS row whose SNR threshold is ≤ snrDB,
// per spec §4.3 ("per-link max MCS is the highest row of the MCS table
// with SNR_col ≤ SNR").
//
// Open question resolution (spec §9): when snrDB lands exactly on a
// row's threshold, that row is eligible (the comparison is ≤, not <), so
// ties naturally admit the higher-throughput class — the highest
// qualifying row is always picked, and among rows with identical
// thresholds the one with the greatest throughput wins.
//
// ok is false only if no row qualifies (snrDB below every threshold);
// the caller is expected to treat that as spec §7's NumericalWarning:
// retain the link at zero capacity rather than dropping it.
func MCSClassify(table MCSTable, snrDB float64) (MCSRow, bool) {
	rows := append([]MCSRow(nil), table.Rows()...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SNRThresholdDB != rows[j].SNRThresholdDB {
			return rows[i].SNRThresholdDB < rows[j].SNRThresholdDB
		}
		return rows[i].ThroughputMbps < rows[j].ThroughputMbps
	})

	best, found := MCSRow{}, false
	for _, r := range rows {
		if r.SNRThresholdDB > snrDB {
			break
		}
		if !found || r.ThroughputMbps >= best.ThroughputMbps {
			best, found = r, true
		}
	}
	return best, found
}

// MaxLinkLengthMeters derives the maximum link length for which the link
// budget still clears the minimum MCS row's SNR threshold, by inverting
// RSL→MCS: holding every other term in in fixed, it binary-searches the
// distance at which SNR crosses minMCS.SNRThresholdDB.
//
// in.FSPLDB, in.RainLossDB are overwritten during the search; callers
// should not rely on their input values.
func MaxLinkLengthMeters(in LinkBudgetInputs, freqGHz, rainRateMMPerHour, thermalNoisePowerDBm, noiseFigureDB float64, minMCS MCSRow) float64 {
	const maxSearchMeters = 20000.0
	feasible := func(distanceMeters float64) bool {
		in.FSPLDB = FSPLDB(distanceMeters, freqGHz)
		in.RainLossDB = RainAttenuationDB(rainRateMMPerHour, distanceMeters)
		rsl := RSLDBm(in)
		snr := SNRDB(rsl, thermalNoisePowerDBm, noiseFigureDB)
		return snr >= minMCS.SNRThresholdDB
	}

	if !feasible(1.0) {
		return 0
	}
	lo, hi := 1.0, maxSearchMeters
	if feasible(hi) {
		return hi
	}
	for i := 0; i < 64 && hi-lo > 1e-3; i++ {
		mid := (lo + hi) / 2
		if feasible(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

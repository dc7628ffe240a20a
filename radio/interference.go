package radio

import "math"

// DBmToMilliwatts converts a dBm power/level value to milliwatts.
func DBmToMilliwatts(dBm float64) float64 {
	return math.Pow(10, dBm/10)
}

// MilliwattsToDBm converts a milliwatt power value to dBm. Returns -Inf
// for a non-positive input, which callers should never act on since a
// real interference contribution is always a positive power.
func MilliwattsToDBm(mw float64) float64 {
	if mw <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(mw)
}

// PairwiseInterferenceMW values the worst-case (max Tx power) interference
// contribution I_{k,l→i,j} in milliwatts that link (k,l)'s transmitter
// imposes on link (i,j)'s receiver, per spec §4.3's RSL formula evaluated
// at the interferer's maximum transmit power.
//
// Eligibility (site k has LOS to site j, sector-equality between the two
// links' endpoints) is a topology-graph concern, not a radio-physics one,
// and is decided by the caller before this is invoked; a caller that
// determines the pair is ineligible should simply store 0, not call this.
func PairwiseInterferenceMW(in LinkBudgetInputs) float64 {
	return DBmToMilliwatts(RSLDBm(in))
}

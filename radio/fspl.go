package radio

import "math"

// FSPLDB returns the free-space path loss in dB for a link of the given
// distance (meters) at the given carrier frequency (GHz), using the
// standard far-field formula:
//
//	FSPL_dB = 20·log10(d_km) + 20·log10(f_GHz) + 92.45
func FSPLDB(distanceMeters, freqGHz float64) float64 {
	if distanceMeters <= 0 || freqGHz <= 0 {
		return 0
	}
	distanceKm := distanceMeters / 1000.0
	return 20*math.Log10(distanceKm) + 20*math.Log10(freqGHz) + 92.45
}

// RainAttenuationDB estimates rain loss in dB using a simplified
// power-law model (specific attenuation γ = k·R^α, integrated over the
// link's 3D length). The detailed ITU-R P.838 coefficient derivation is
// external per spec §1; this uses fixed 60GHz-band coefficients
// (k≈1.2, α≈1.0) as a linear-in-rate, linear-in-distance approximation
// adequate for the optimizer's relative comparisons.
func RainAttenuationDB(rainRateMMPerHour, distanceMeters float64) float64 {
	if rainRateMMPerHour <= 0 || distanceMeters <= 0 {
		return 0
	}
	const k, alpha = 1.2, 1.0
	specificAttenuationDBPerKm := k * math.Pow(rainRateMMPerHour, alpha)
	return specificAttenuationDBPerKm * (distanceMeters / 1000.0)
}

// RSLDBm computes the received signal level per spec §4.3:
//
//	RSL = P_tx − L_tx + G_tx(θ) − (FSPL + GAL + rain) + G_rx(θ') − L_rx
func RSLDBm(in LinkBudgetInputs) float64 {
	return in.TxPowerDBm - in.TxLossDB + in.TxGainDB -
		(in.FSPLDB + in.GALDB + in.RainLossDB) +
		in.RxGainDB - in.RxLossDB
}

// SNRDB computes SNR = RSL − N_p − NF, where N_p is the thermal noise
// power (dBm) and NF is the receiver noise figure (dB).
func SNRDB(rslDBm, thermalNoisePowerDBm, noiseFigureDB float64) float64 {
	return rslDBm - thermalNoisePowerDBm - noiseFigureDB
}

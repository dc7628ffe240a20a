// See fspl.go for the free-space path loss / RSL / SNR formulas, mcs.go
// for MCS classification and max-link-length derivation, and
// interference.go for the pairwise interference value used by the ILP's
// SINR/MCS classification constraints.
package radio

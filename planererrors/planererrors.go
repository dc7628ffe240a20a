// Package planererrors defines the fatal and typed error kinds produced by
// the planner's configuration, data-loading, and optimization stages.
//
// GeometryDegenerate and NumericalWarning from the error-handling design are
// deliberately not exported types here: degenerate geometry is caught by
// the LOS easy-reject preconditions before it can surface, and a numerical
// warning becomes a zero-capacity retained Link plus a logged message, never
// a returned error.
package planererrors

import "fmt"

// ConfigError reports a fatal problem in the planner configuration: an
// unrecognized device SKU, a missing required file, or contradictory
// options (e.g. a base topology supplied together with automatic site
// detection). Callers branch on it with errors.As.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Reason)
}

// DataError reports a fatal problem with input data: an unreadable raster,
// an empty boundary polygon, or a site list with no usable devices.
type DataError struct {
	Source string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error: %s: %s", e.Source, e.Reason)
}

// Infeasible reports that an optimization phase could not satisfy its
// constraints even after every relaxation available to it was exhausted.
type Infeasible struct {
	Phase string
	Gamma float64
}

func (e *Infeasible) Error() string {
	if e.Gamma != 0 {
		return fmt.Sprintf("infeasible: phase %q at gamma=%.4f", e.Phase, e.Gamma)
	}
	return fmt.Sprintf("infeasible: phase %q", e.Phase)
}

// SolverTimeout reports that a solver invocation exceeded its time limit.
// Per the error-handling design this is treated as Infeasible by callers:
// if HasBestKnown is true the pipeline may continue with the best-known
// solution; otherwise it behaves exactly like Infeasible for the phase.
type SolverTimeout struct {
	Phase        string
	HasBestKnown bool
}

func (e *SolverTimeout) Error() string {
	return fmt.Sprintf("solver timeout: phase %q (best-known solution available: %t)", e.Phase, e.HasBestKnown)
}

// AsInfeasible converts a SolverTimeout without a best-known solution into
// an Infeasible for the same phase, per the propagation policy in §7.
func (e *SolverTimeout) AsInfeasible() *Infeasible {
	return &Infeasible{Phase: e.Phase}
}

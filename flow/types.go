// SPDX-License-Identifier: MIT

package flow

import (
	"context"
	"fmt"
)

// ErrSourceNotFound is returned when the specified source vertex is missing.
var ErrSourceNotFound = fmt.Errorf("flow: %w", errSourceNotFound)
var errSourceNotFound = fmt.Errorf("source vertex not found")

// ErrSinkNotFound is returned when the specified sink vertex is missing.
var ErrSinkNotFound = fmt.Errorf("flow: %w", errSinkNotFound)
var errSinkNotFound = fmt.Errorf("sink vertex not found")

// EdgeError is returned when an edge has a negative capacity.
type EdgeError struct {
	From, To string
	Cap      float64
}

func (e EdgeError) Error() string {
	return fmt.Sprintf("flow: negative capacity on edge %q→%q: %g", e.From, e.To, e.Cap)
}

// FlowOptions configures Dinic.
type FlowOptions struct {
	// Epsilon treats capacities at or below it as zero. Default 1e-9.
	Epsilon float64
	// Verbose logs each augmentation.
	Verbose bool
	// LevelRebuildInterval rebuilds the level graph every N augmentations.
	LevelRebuildInterval int
	// Ctx cancels a running Dinic call; nil means context.Background().
	Ctx context.Context
}

// DefaultOptions returns a FlowOptions with every field at its Dinic
// default (no verbose logging, rebuild every augmentation, background
// context, epsilon 1e-9).
func DefaultOptions() FlowOptions {
	opts := FlowOptions{}
	opts.normalize()
	return opts
}

// normalize fills in Ctx, Epsilon, and LevelRebuildInterval defaults in
// place, so Dinic and buildCapMap can assume every field is usable.
func (o *FlowOptions) normalize() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Epsilon <= 0 {
		o.Epsilon = 1e-9
	}
	if o.LevelRebuildInterval <= 0 {
		o.LevelRebuildInterval = 1
	}
}

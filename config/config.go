// Package config loads engine tuning parameters for the routing core:
// profile period, bucket count, BPR coefficients, interval-minima arity,
// metric count, the customization worker-pool size, and the selected
// potential family. Loading via koanf (Load) is optional sugar; every
// engine component also accepts this struct built directly, so library
// callers never need koanf (SPEC_FULL §A.2).
package config

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/tdcch/potential"
)

// ErrInvalid wraps any single field-validation failure from Validate.
var ErrInvalid = errors.New("config: invalid value")

// Engine holds every tunable the CCH/capacity engine reads at startup.
type Engine struct {
	Period uint32 `koanf:"period"` // profile period, milliseconds

	Buckets  uint32  `koanf:"buckets"` // capacity bucket count per edge
	BPRAlpha float64 `koanf:"bpr_alpha"`
	BPRBeta  float64 `koanf:"bpr_beta"`

	IntervalK uint32 `koanf:"interval_k"` // interval-minima customizer arity
	Metrics   uint32 `koanf:"metrics"`    // number of multi-metric time windows

	CustomizationWorkers int `koanf:"customization_workers"`

	Potential potential.Family `koanf:"potential"`
}

// Validate rejects tunables that would make downstream construction
// (capacity.NewEdge, customization.NewIntervalMinimaCustomizer,
// customization.DefaultWorkerLimit-style pools) ill-defined.
func (e Engine) Validate() error {
	if e.Period == 0 {
		return fmt.Errorf("%w: period must be > 0", ErrInvalid)
	}
	if e.Buckets == 0 {
		return fmt.Errorf("%w: buckets must be > 0", ErrInvalid)
	}
	if e.BPRAlpha < 0 {
		return fmt.Errorf("%w: bpr_alpha must be >= 0", ErrInvalid)
	}
	if e.BPRBeta <= 0 {
		return fmt.Errorf("%w: bpr_beta must be > 0", ErrInvalid)
	}
	if e.IntervalK == 0 {
		return fmt.Errorf("%w: interval_k must be > 0", ErrInvalid)
	}
	if e.CustomizationWorkers <= 0 {
		return fmt.Errorf("%w: customization_workers must be > 0", ErrInvalid)
	}
	switch e.Potential {
	case potential.FamilyZero, potential.FamilyCorridor, potential.FamilyMultiMetric:
	default:
		return fmt.Errorf("%w: unknown potential family %d", ErrInvalid, e.Potential)
	}
	if e.Potential == potential.FamilyMultiMetric && e.Metrics == 0 {
		return fmt.Errorf("%w: metrics must be > 0 when potential=multi_metric", ErrInvalid)
	}
	return nil
}

// Defaults returns the engine's out-of-the-box tuning, matching the
// commonly used road-network customization presets (a one-day period
// split into 24 one-hour buckets, standard BPR coefficients).
func Defaults() Engine {
	return Engine{
		Period:               24 * 60 * 60 * 1000,
		Buckets:              24,
		BPRAlpha:             0.15,
		BPRBeta:              4,
		IntervalK:            24,
		Metrics:              4,
		CustomizationWorkers: 32,
		Potential:            potential.FamilyCorridor,
	}
}

// Package metrics wraps prometheus counters/histograms behind a small
// Reporter interface, so the capacity server takes metrics as an
// injected collaborator rather than reaching for a global registry
// (SPEC_FULL §A.3, grounded on
// Hola-to-network_logistics_problem/pkg/metrics).
package metrics

import "time"

// Reporter receives the events the capacity server (C9) produces over
// the lifetime of a query or a customization run.
type Reporter interface {
	// QueryCompleted records one query's outcome and latency.
	QueryCompleted(found bool, pathLen int, latency time.Duration)

	// FlowDeposited records one flow-unit deposit into an edge bucket.
	FlowDeposited()

	// CustomizationRun records one bounded-recustomization pass.
	CustomizationRun(duration time.Duration)

	// StalenessDetected records a query boundary where result_invalid
	// or update_valid went false, triggering re-customization (spec §4.7).
	StalenessDetected()
}

// NopReporter discards every event; it is the Reporter's zero value so
// metrics stay opt-in (SPEC_FULL §A.3).
type NopReporter struct{}

func (NopReporter) QueryCompleted(bool, int, time.Duration) {}
func (NopReporter) FlowDeposited()                          {}
func (NopReporter) CustomizationRun(time.Duration)          {}
func (NopReporter) StalenessDetected()                      {}

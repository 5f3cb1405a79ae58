// Package potential implements the admissible lower-bound heuristics (C7)
// that guide the A* search in package astar: the corridor lower-bound
// potential, the multi-metric potential, and a trivial zero potential
// (spec §4.5). All three are feasible by construction, since they are
// built exclusively from customized *lower bounds* ((lo, hi).Lo, or a
// metric's own .Lo component): potential(v) never exceeds the true
// remaining distance from v to the query target.
package potential

import "github.com/katalvlaran/tdcch/graph"

// Family tags which concrete potential a config selects (spec §9: tagged
// concrete variants, not an open-ended plugin registry). Each Family value
// corresponds to exactly one constructor in this package.
type Family int

const (
	FamilyZero Family = iota
	FamilyCorridor
	FamilyMultiMetric
)

// Potential is initialized once per query (source, target, departure) and
// then consulted repeatedly, once per node the search settles.
type Potential interface {
	// Init prepares the potential for a query from source to target
	// departing at departure. Returns false if the potential can prove
	// up front that target is unreachable from source, or (MultiMetric)
	// if no metric window covers departure. astar does not call Init;
	// its init-time infeasibility check compares At(source) against the
	// caller's UpperBound.
	Init(source, target graph.NodeID, departure uint32) (feasible bool, err error)

	// At returns a lower bound on the remaining travel time from v to
	// the query's target, given a current time estimate at v. ok is
	// false when v has been proven unreachable from the target side, or
	// (MultiMetric) when no metric window covers tEstimate; astar prunes
	// v in either case.
	At(v graph.NodeID, tEstimate uint32) (lowerBound uint32, ok bool)
}

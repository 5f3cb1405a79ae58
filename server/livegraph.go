package server

import (
	"github.com/katalvlaran/tdcch/capacity"
	"github.com/katalvlaran/tdcch/customization"
	"github.com/katalvlaran/tdcch/graph"
)

// liveProfiles adapts the server's live, capacity-mutated per-arc PLFs
// to astar.ProfileSource, so A* always evaluates the edge the way it
// stands after the most recent flow deposit (spec §4.6).
type liveProfiles struct {
	edges []*capacity.Edge
}

func (p liveProfiles) Evaluate(e graph.EdgeID, t uint32) uint32 {
	return p.edges[e].Profile().Evaluate(t)
}

// graphIntervalSeed seeds an IntervalMinimaCustomizer straight from the
// static graph's free-flow times: with no deposited flow yet, every
// bucket starts equal to free-flow, so the initial K-interval vector for
// every arc is just free-flow repeated K times (spec §4.3's customizer
// input is always a per-arc sampled profile; at cold start that profile
// is the constant free-flow PLF).
type graphIntervalSeed struct {
	g *graph.Graph
}

func (s graphIntervalSeed) Vector(e graph.EdgeID, k int) customization.IntervalVector {
	ff := s.g.FreeFlow(e)
	mins := make([]uint32, k)
	for i := range mins {
		mins[i] = ff
	}
	return customization.IntervalVector{
		Mins:  mins,
		Bound: customization.ScalarBound{Lo: ff, Hi: ff},
	}
}

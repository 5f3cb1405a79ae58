package astar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tdcch/graph"
	"github.com/katalvlaran/tdcch/potential"
)

func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	cols := graph.Columns{
		FirstOut:    []uint32{0, 1, 2, 2},
		Head:        []uint32{1, 2},
		TravelTime:  []uint32{5, 7},
		GeoDistance: []uint32{1, 1},
		Capacity:    []uint32{10, 10},
	}
	g, err := graph.New(cols, true)
	require.NoError(t, err)
	return g
}

// constProfiles evaluates every arc's travel time as a fixed, time-
// independent weight keyed by EdgeID, for tests that don't need a real
// capacity-backed PLF.
type constProfiles map[graph.EdgeID]uint32

func (c constProfiles) Evaluate(e graph.EdgeID, _ uint32) uint32 { return c[e] }

func TestQuery_FindsShortestPathAlongLine(t *testing.T) {
	g := lineGraph(t)
	profiles := constProfiles{0: 5, 1: 7}
	s := NewSearcher(g)

	var zero potential.Zero
	res, err := s.Query(g, profiles, zero, nil, graph.NodeID(0), graph.NodeID(2), 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, uint32(12), res.Arrival)
	require.Equal(t, []graph.EdgeID{0, 1}, res.Path)
	require.Equal(t, []uint32{0, 5}, res.EntryTimes)
}

func TestQuery_SelfQueryIsZeroLength(t *testing.T) {
	g := lineGraph(t)
	profiles := constProfiles{0: 5, 1: 7}
	s := NewSearcher(g)

	var zero potential.Zero
	res, err := s.Query(g, profiles, zero, nil, graph.NodeID(1), graph.NodeID(1), 100)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, uint32(100), res.Arrival)
	require.Empty(t, res.Path)
}

func TestQuery_UnreachableTargetReportsNotFound(t *testing.T) {
	g := lineGraph(t)
	profiles := constProfiles{0: 5, 1: 7}
	s := NewSearcher(g)

	var zero potential.Zero
	// Node 2 has no outgoing arcs; querying from it to node 0 cannot settle.
	res, err := s.Query(g, profiles, zero, nil, graph.NodeID(2), graph.NodeID(0), 0)
	require.NoError(t, err)
	require.False(t, res.Found)
}

func TestQuery_ReusesScratchAcrossGenerations(t *testing.T) {
	g := lineGraph(t)
	profiles := constProfiles{0: 5, 1: 7}
	s := NewSearcher(g)

	var zero potential.Zero
	_, err := s.Query(g, profiles, zero, nil, graph.NodeID(0), graph.NodeID(1), 0)
	require.NoError(t, err)
	res, err := s.Query(g, profiles, zero, nil, graph.NodeID(0), graph.NodeID(2), 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, uint32(12), res.Arrival)
}

// constUpperBound reports a fixed upper bound for every node, for the
// init-time feasibility check.
type constUpperBound uint32

func (b constUpperBound) At(graph.NodeID) (uint32, bool) { return uint32(b), true }

// overshootPotential always reports a potential far larger than any real
// upper bound, so the init-time check rejects it.
type overshootPotential struct{}

func (overshootPotential) Init(_, _ graph.NodeID, _ uint32) (bool, error) { return true, nil }
func (overshootPotential) At(graph.NodeID, uint32) (uint32, bool)        { return 1_000_000, true }

func TestQuery_RejectsInfeasiblePotential(t *testing.T) {
	g := lineGraph(t)
	profiles := constProfiles{0: 5, 1: 7}
	s := NewSearcher(g)

	_, err := s.Query(g, profiles, overshootPotential{}, constUpperBound(100), graph.NodeID(0), graph.NodeID(2), 0)
	require.ErrorIs(t, err, ErrPotentialInfeasible)
}

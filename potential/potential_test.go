package potential

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/elimtree"
	"github.com/katalvlaran/tdcch/graph"
)

type staticMetric map[uint32]elimtree.Bound

func (m staticMetric) Up(e uint32) elimtree.Bound   { return m[e] }
func (m staticMetric) Down(e uint32) elimtree.Bound { return m[e] }

func lineGraph(t *testing.T) *cch.CCH {
	t.Helper()
	cols := graph.Columns{
		FirstOut:    []uint32{0, 1, 3, 4},
		Head:        []uint32{1, 0, 2, 1},
		TravelTime:  []uint32{100, 100, 200, 200},
		GeoDistance: []uint32{1, 1, 2, 2},
		Capacity:    []uint32{10, 10, 10, 10},
	}
	g, err := graph.New(cols, true)
	require.NoError(t, err)
	c, err := cch.Build(g, []uint32{0, 1, 2})
	require.NoError(t, err)
	return c
}

func TestZero_AlwaysAdmissibleAndFeasible(t *testing.T) {
	var z Zero
	ok, err := z.Init(graph.NodeID(0), graph.NodeID(2), 0)
	require.NoError(t, err)
	require.True(t, ok)

	bound, ok := z.At(graph.NodeID(1), 500)
	require.True(t, ok)
	require.Equal(t, uint32(0), bound)
}

func TestCorridorLowerBound_BoundsRemainingDistance(t *testing.T) {
	c := lineGraph(t)
	metric := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}
	s := elimtree.NewSearcher(c)
	cp := NewCorridorLowerBound(s, metric)

	ok, err := cp.Init(graph.NodeID(0), graph.NodeID(2), 0)
	require.NoError(t, err)
	require.True(t, ok)

	bound, ok := cp.At(graph.NodeID(0), 0)
	require.True(t, ok)
	require.Equal(t, uint32(12), bound)

	bound, ok = cp.At(graph.NodeID(1), 0)
	require.True(t, ok)
	require.Equal(t, uint32(7), bound)

	bound, ok = cp.At(graph.NodeID(2), 0)
	require.True(t, ok)
	require.Equal(t, uint32(0), bound)
}

func TestMultiMetric_SelectsWindowByEstimatedTime(t *testing.T) {
	c := lineGraph(t)
	const period = 1000
	day := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}
	night := staticMetric{0: {Lo: 1, Hi: 1}, 1: {Lo: 1, Hi: 1}}
	s := elimtree.NewSearcher(c)
	mm := NewMultiMetric(s, period, []MetricEntry{
		{Start: 0, End: 500, Metric: day},
		{Start: 500, End: 0, Metric: night}, // wraps: [500, period) U [0, 0) == [500, 1000)
	})

	ok, err := mm.Init(graph.NodeID(0), graph.NodeID(2), 100)
	require.NoError(t, err)
	require.True(t, ok)

	bound, ok := mm.At(graph.NodeID(0), 100)
	require.True(t, ok)
	require.Equal(t, uint32(12), bound)

	bound, ok = mm.At(graph.NodeID(0), 600)
	require.True(t, ok)
	require.Equal(t, uint32(2), bound)
}

func TestMultiMetric_NoCoveringWindowIsInfeasible(t *testing.T) {
	c := lineGraph(t)
	const period = 1000
	day := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}
	s := elimtree.NewSearcher(c)
	mm := NewMultiMetric(s, period, []MetricEntry{{Start: 0, End: 500, Metric: day}})

	ok, err := mm.Init(graph.NodeID(0), graph.NodeID(2), 600)
	require.NoError(t, err)
	require.False(t, ok)
}

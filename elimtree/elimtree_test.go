package elimtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/graph"
)

type staticMetric map[uint32]Bound

func (m staticMetric) Up(e uint32) Bound   { return m[e] }
func (m staticMetric) Down(e uint32) Bound { return m[e] }

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

func TestQuery_SumsAlongLinePath(t *testing.T) {
	c := lineGraph(t)
	metric := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}

	s := NewSearcher(c)
	b, ok := s.Query(metric, graph.NodeID(0), graph.NodeID(2))
	require.True(t, ok)
	require.Equal(t, Bound{Lo: 12, Hi: 12}, b)
}

func TestQuery_SelfIsZero(t *testing.T) {
	c := lineGraph(t)
	metric := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}

	s := NewSearcher(c)
	b, ok := s.Query(metric, graph.NodeID(1), graph.NodeID(1))
	require.True(t, ok)
	require.Equal(t, Bound{Lo: 0, Hi: 0}, b)
}

func TestQuery_ReusesScratchAcrossGenerations(t *testing.T) {
	c := lineGraph(t)
	metric := staticMetric{0: {Lo: 5, Hi: 5}, 1: {Lo: 7, Hi: 7}}

	s := NewSearcher(c)
	_, _ = s.Query(metric, graph.NodeID(0), graph.NodeID(1))
	b, ok := s.Query(metric, graph.NodeID(0), graph.NodeID(2))
	require.True(t, ok)
	require.Equal(t, Bound{Lo: 12, Hi: 12}, b)
}

func disconnectedGraph(t *testing.T) *cch.CCH {
	t.Helper()
	cols := graph.Columns{
		FirstOut:    []uint32{0, 1, 2, 3, 4},
		Head:        []uint32{1, 0, 3, 2},
		TravelTime:  []uint32{3, 3, 4, 4},
		GeoDistance: []uint32{1, 1, 1, 1},
		Capacity:    []uint32{10, 10, 10, 10},
	}
	g, err := graph.New(cols, true)
	require.NoError(t, err)
	c, err := cch.Build(g, []uint32{0, 1, 2, 3})
	require.NoError(t, err)
	return c
}

func TestQuery_UnreachableAcrossComponents(t *testing.T) {
	c := disconnectedGraph(t)
	metric := staticMetric{0: {Lo: 3, Hi: 3}, 1: {Lo: 4, Hi: 4}}

	s := NewSearcher(c)
	_, ok := s.Query(metric, graph.NodeID(0), graph.NodeID(2))
	require.False(t, ok)
}

package ioformat

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/customization"
	"github.com/katalvlaran/tdcch/graph"
)

// openTriangle builds 0<->1 (w=5) and 0<->2 (w=7) with no direct 1<->2
// arc, so contracting rank 0 introduces one shortcut whose customized
// weight must derive from both legs (5+7=12).
func openTriangle(t *testing.T) *graph.Graph {
	t.Helper()
	cols := graph.Columns{
		FirstOut:    []uint32{0, 2, 3, 4},
		Head:        []uint32{1, 2, 0, 0},
		TravelTime:  []uint32{5, 7, 5, 7},
		GeoDistance: []uint32{1, 1, 1, 1},
		Capacity:    []uint32{10, 10, 10, 10},
	}
	g, err := graph.New(cols, true)
	require.NoError(t, err)
	return g
}

type staticScalarSeed struct{ g *graph.Graph }

func (s staticScalarSeed) Bound(e graph.EdgeID) customization.ScalarBound {
	w := s.g.FreeFlow(e)
	return customization.ScalarBound{Lo: w, Hi: w}
}

type staticIntervalSeed struct{ g *graph.Graph }

func (s staticIntervalSeed) Vector(e graph.EdgeID, k int) customization.IntervalVector {
	w := s.g.FreeFlow(e)
	mins := make([]uint32, k)
	for i := range mins {
		mins[i] = w
	}
	return customization.IntervalVector{Mins: mins, Bound: customization.ScalarBound{Lo: w, Hi: w}}
}

func TestOrder_RoundTrips(t *testing.T) {
	order := []uint32{0, 1, 2}
	var buf bytes.Buffer
	require.NoError(t, EncodeOrder(&buf, order))

	got, err := DecodeOrder(&buf)
	require.NoError(t, err)
	require.Equal(t, order, got)
}

func TestDecodeOrder_RejectsBadMagic(t *testing.T) {
	_, err := DecodeOrder(bytes.NewReader([]byte("XXXX\x01\x00")))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestScalarBounds_RoundTripMatchesOriginal(t *testing.T) {
	g := openTriangle(t)
	order := []uint32{0, 1, 2}
	c, err := cch.Build(g, order)
	require.NoError(t, err)

	sc := customization.NewScalarCustomizer(c, staticScalarSeed{g})
	require.NoError(t, sc.Customize(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, EncodeScalarBounds(&buf, sc, c.NumUpEdges()))

	got, err := DecodeScalarBounds(&buf)
	require.NoError(t, err)

	for e := 0; e < c.NumUpEdges(); e++ {
		require.Equal(t, sc.Up(uint32(e)), got.Up(uint32(e)))
		require.Equal(t, sc.Down(uint32(e)), got.Down(uint32(e)))
	}
}

func TestIntervalVectors_RoundTripMatchesOriginal(t *testing.T) {
	g := openTriangle(t)
	order := []uint32{0, 1, 2}
	c, err := cch.Build(g, order)
	require.NoError(t, err)

	ic, err := customization.NewIntervalMinimaCustomizer(c, 4, staticIntervalSeed{g})
	require.NoError(t, err)
	require.NoError(t, ic.Customize(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, EncodeIntervalVectors(&buf, ic, c.NumUpEdges()))

	got, err := DecodeIntervalVectors(&buf)
	require.NoError(t, err)
	require.Equal(t, 4, got.K)
	for e := 0; e < c.NumUpEdges(); e++ {
		require.Equal(t, ic.Up(uint32(e)), got.Up[e])
		require.Equal(t, ic.Down(uint32(e)), got.Down[e])
	}
}

package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsFIFOViolation(t *testing.T) {
	_, err := New(10, []Breakpoint{{0, 4}, {2, 6}, {4, 8}, {6, 1}, {8, 2}, {10, 4}})
	require.ErrorIs(t, err, ErrFIFOViolation)
}

func TestEvaluate_Interpolates(t *testing.T) {
	f, err := New(10, []Breakpoint{{0, 4}, {2, 6}, {10, 4}})
	require.NoError(t, err)
	require.Equal(t, uint32(4), f.Evaluate(0))
	require.Equal(t, uint32(5), f.Evaluate(1))
	require.Equal(t, uint32(6), f.Evaluate(2))
	// periodic reduction
	require.Equal(t, f.Evaluate(0), f.Evaluate(10))
	require.Equal(t, f.Evaluate(1), f.Evaluate(11))
}

func TestIntervalMin_NoWrapAndWrap(t *testing.T) {
	f, err := New(10, []Breakpoint{{0, 4}, {2, 6}, {4, 8}, {6, 7}, {8, 5}, {10, 4}})
	require.NoError(t, err)
	require.Equal(t, uint32(4), f.IntervalMin(0, 2))
	require.Equal(t, uint32(5), f.IntervalMin(6, 10))
	// wraparound: [8,10) union [0,2) -> min(5, 6_at8.. ,4)
	got := f.IntervalMin(8, 2)
	require.Equal(t, uint32(4), got)
}

func TestBoundsCached(t *testing.T) {
	f, err := New(10, []Breakpoint{{0, 4}, {2, 6}, {4, 8}, {6, 7}, {8, 5}, {10, 4}})
	require.NoError(t, err)
	require.Equal(t, uint32(4), f.LowerBound())
	require.Equal(t, uint32(8), f.UpperBound())
}

// TestFIFORepairScenario exercises spec §8 scenario S2: raising the
// breakpoint feeding the sweep to 11 and sweeping forward must restore
// slope >= -1 everywhere, matching the worked example's output array.
func TestFIFORepairScenario(t *testing.T) {
	bps := []Breakpoint{{0, 4}, {2, 11}, {4, 8}, {6, 3}, {8, 2}, {10, 4}}
	repaired := repairFIFOInPlace(append([]Breakpoint(nil), bps...), 10)
	want := []Breakpoint{{0, 4}, {2, 11}, {4, 9}, {6, 7}, {8, 5}, {10, 4}}
	require.Equal(t, want, repaired)
	for i := 1; i < len(repaired); i++ {
		dt := int64(repaired[i].At) - int64(repaired[i-1].At)
		dv := int64(repaired[i].Val) - int64(repaired[i-1].Val)
		require.GreaterOrEqual(t, dv, -dt)
	}
}

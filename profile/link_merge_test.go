package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLink_ConstantProfiles(t *testing.T) {
	f := Constant(100, 20)
	g := Constant(100, 30)
	linked := Link(f, g, nil)
	require.Equal(t, uint32(50), linked.Evaluate(0))
	require.Equal(t, uint32(50), linked.Evaluate(42))
	require.Equal(t, uint32(50), linked.LowerBound())
	require.Equal(t, uint32(50), linked.UpperBound())
}

func TestLink_VaryingFeeder(t *testing.T) {
	// Slopes of exactly +-1 avoid integer-rounding artifacts in this check.
	f, err := New(100, []Breakpoint{{0, 10}, {50, 60}, {100, 10}})
	require.NoError(t, err)
	g := Constant(100, 5)
	linked := Link(f, g, nil)
	// Link of anything with a constant just adds the constant everywhere.
	for _, tq := range []uint32{0, 10, 50, 75, 99} {
		require.Equal(t, f.Evaluate(tq)+5, linked.Evaluate(tq), "t=%d", tq)
	}
}

func TestLink_RespectsScratchReuse(t *testing.T) {
	var scratch LinkScratch
	f := Constant(100, 10)
	g := Constant(100, 20)
	a := Link(f, g, &scratch)
	b := Link(f, g, &scratch)
	require.Equal(t, a.Evaluate(0), b.Evaluate(0))
}

func TestMerge_PointwiseMinimum(t *testing.T) {
	f, err := New(100, []Breakpoint{{0, 10}, {50, 50}, {100, 10}})
	require.NoError(t, err)
	g, err := New(100, []Breakpoint{{0, 30}, {50, 20}, {100, 30}})
	require.NoError(t, err)

	merged, _ := Merge(f, g)
	for _, tq := range []uint32{0, 10, 25, 50, 75, 99} {
		want := f.Evaluate(tq)
		if gv := g.Evaluate(tq); gv < want {
			want = gv
		}
		require.Equal(t, want, merged.Evaluate(tq), "t=%d", tq)
	}
}

func TestMerge_DominanceFlags(t *testing.T) {
	f := Constant(100, 5)
	g := Constant(100, 50)
	_, dominant := Merge(f, g)
	for _, d := range dominant {
		require.True(t, d, "f is uniformly smaller, must dominate everywhere")
	}
}

func TestIntervalMinTree_MatchesBruteForce(t *testing.T) {
	samples := []uint32{7, 3, 9, 1, 8, 2, 6, 4} // K=8
	tree, err := BuildIntervalMinTree(samples)
	require.NoError(t, err)

	brute := func(i, j int) uint32 {
		k := len(samples)
		min := samples[i]
		idx := i
		for idx != j {
			idx = (idx + 1) % k
			if samples[idx] < min {
				min = samples[idx]
			}
		}
		return min
	}

	for i := 0; i < len(samples); i++ {
		for j := 0; j < len(samples); j++ {
			require.Equal(t, brute(i, j), tree.Query(i, j), "i=%d j=%d", i, j)
		}
	}
}

func TestIntervalMinTree_RejectsNonPowerOfTwo(t *testing.T) {
	_, err := BuildIntervalMinTree([]uint32{1, 2, 3})
	require.ErrorIs(t, err, ErrNotPowerOfTwo)
}

package capacity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const period = 86400000

// TestS1_SingleEdgeEvaluation exercises spec §8 scenario S1.
func TestS1_SingleEdgeEvaluation(t *testing.T) {
	e, err := NewEdge(60000, 10, period, 1, DefaultBPR())
	require.NoError(t, err)
	require.Equal(t, uint32(60000), e.Profile().Evaluate(0))

	_, newVal, err := e.Deposit(0)
	require.NoError(t, err)
	require.Equal(t, uint32(60001), newVal)
	require.Equal(t, uint32(60001), e.Profile().Evaluate(0))
}

func TestBucketIndex(t *testing.T) {
	idx, err := BucketIndex(0, 24, 24)
	require.NoError(t, err)
	require.Equal(t, uint32(0), idx)

	idx, err = BucketIndex(23, 24, 24)
	require.NoError(t, err)
	require.Equal(t, uint32(23), idx)

	idx, err = BucketIndex(25, 24, 24) // reduces mod period first
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx)

	_, err = BucketIndex(0, 24, 0)
	require.ErrorIs(t, err, ErrZeroBuckets)
}

func TestBuckets_DepositAndFlowAt(t *testing.T) {
	var b Buckets
	require.True(t, b.Unused())
	require.Equal(t, uint32(1), b.Deposit(5))
	require.Equal(t, uint32(2), b.Deposit(5))
	require.Equal(t, uint32(1), b.Deposit(2))
	require.False(t, b.Unused())
	require.Equal(t, uint32(2), b.FlowAt(5))
	require.Equal(t, uint32(1), b.FlowAt(2))
	require.Equal(t, uint32(0), b.FlowAt(9))

	b.Reset()
	require.True(t, b.Unused())
	require.Equal(t, uint32(0), b.FlowAt(5))
}

// TestFIFOPreservedUnderRepeatedDeposits exercises spec §8 property 1:
// after any sequence of updates, the edge profile stays FIFO and closed.
func TestFIFOPreservedUnderRepeatedDeposits(t *testing.T) {
	e, err := NewEdge(1000, 2, 240, 24, DefaultBPR())
	require.NoError(t, err)

	deposits := []uint32{0, 0, 0, 100, 100, 100, 100, 239, 50, 10}
	for _, t0 := range deposits {
		_, _, derr := e.Deposit(t0)
		require.NoError(t, derr)
	}

	bps := e.Profile().Breakpoints()
	require.Equal(t, bps[0].Val, bps[len(bps)-1].Val)
	for i := 1; i < len(bps); i++ {
		dt := int64(bps[i].At) - int64(bps[i-1].At)
		dv := int64(bps[i].Val) - int64(bps[i-1].Val)
		require.GreaterOrEqual(t, dv, -dt, "slope below -1 between breakpoints %d,%d", i-1, i)
	}
}

func TestReset_RestoresFreeFlow(t *testing.T) {
	e, err := NewEdge(500, 1, 100, 10, DefaultBPR())
	require.NoError(t, err)
	_, _, err = e.Deposit(5)
	require.NoError(t, err)
	require.NotEqual(t, uint32(500), e.Profile().Evaluate(5))

	e.Reset()
	require.Equal(t, uint32(500), e.Profile().Evaluate(5))
	require.True(t, e.Buckets().Unused())
}

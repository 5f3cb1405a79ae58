package capacity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBPR_MatchesReferenceFormula(t *testing.T) {
	f := BPR(0.15, 4)
	require.Equal(t, uint32(60001), f(60000, 10, 1))
	require.Equal(t, uint32(60000), f(60000, 10, 0))
}

func TestBPR_ClampsToAtLeastOne(t *testing.T) {
	f := BPR(0.15, 4)
	require.GreaterOrEqual(t, f(0, 1, 100), uint32(1))
}

func TestBPRSpeed_ClampsToAtLeastOne(t *testing.T) {
	f := BPRSpeed()
	require.Equal(t, uint32(30), f(60, 2, 2)) // ratio=1 -> speed=60/2=30
	require.GreaterOrEqual(t, f(0, 1, 1000), uint32(1))
}

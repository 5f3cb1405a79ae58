// Package capacity implements the capacity-bucketed edge model (C3) and
// the FIFO-preserving profile updater (C10): per-edge time-bucketed flow
// counters, a pluggable congestion function, and the derived periodic
// travel-time profile that is regenerated after every flow deposit.
package capacity

import (
	"errors"
	"fmt"
	"sort"
)

// ErrZeroBuckets indicates B < 1.
var ErrZeroBuckets = errors.New("capacity: number of buckets must be >= 1")

// Buckets holds per-edge time-bucketed flow counters (spec §3
// CapacityBuckets). It starts Unused (no flow deposited) and switches to
// Used on the first deposit, allocating lazily; at most B entries, always
// kept sorted by bucket index for O(log B) lookup.
type Buckets struct {
	used    bool
	indices []uint32
	flow    []uint32
}

// Unused reports whether no flow has been deposited on this edge yet.
func (b *Buckets) Unused() bool { return !b.used }

// FlowAt returns the current flow count for bucket idx (0 if never
// touched).
func (b *Buckets) FlowAt(idx uint32) uint32 {
	if !b.used {
		return 0
	}
	i := sort.Search(len(b.indices), func(i int) bool { return b.indices[i] >= idx })
	if i < len(b.indices) && b.indices[i] == idx {
		return b.flow[i]
	}
	return 0
}

// Deposit increments the flow counter for bucket idx by one and returns
// the new count. Allocates storage for idx on first use.
func (b *Buckets) Deposit(idx uint32) uint32 {
	b.used = true
	i := sort.Search(len(b.indices), func(i int) bool { return b.indices[i] >= idx })
	if i < len(b.indices) && b.indices[i] == idx {
		b.flow[i]++
		return b.flow[i]
	}
	b.indices = append(b.indices, 0)
	b.flow = append(b.flow, 0)
	copy(b.indices[i+1:], b.indices[i:])
	copy(b.flow[i+1:], b.flow[i:])
	b.indices[i] = idx
	b.flow[i] = 1
	return 1
}

// Reset clears all deposited flow, returning the bucket set to Unused.
func (b *Buckets) Reset() {
	b.used = false
	b.indices = b.indices[:0]
	b.flow = b.flow[:0]
}

// BucketIndex maps a departure time (already reduced mod period) to its
// bucket, per spec §3: floor(t * B / period).
func BucketIndex(t, period, numBuckets uint32) (uint32, error) {
	if numBuckets < 1 {
		return 0, ErrZeroBuckets
	}
	if period == 0 {
		return 0, fmt.Errorf("%w: period is zero", ErrZeroBuckets)
	}
	return uint32((uint64(t%period) * uint64(numBuckets)) / uint64(period)), nil
}

package capacity

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/tdcch/profile"
)

// ErrNegativeResult indicates a CongestionFunc returned a negative travel
// time — a bug in the supplied function, since congestion results must be
// clamped to [1, +Inf) per spec §4.2.
var ErrNegativeResult = errors.New("capacity: congestion function returned a negative value")

// Edge is the mutable, capacity-aware counterpart to a graph.Edge: its
// immutable attributes (free-flow time, capacity) come from the static
// graph, while Buckets and the derived PLF are mutated as queries deposit
// flow (spec §3, §4.2).
type Edge struct {
	freeFlow   uint32
	capPerB    uint32
	period     uint32
	numBuckets uint32
	congestion CongestionFunc

	buckets Buckets
	vals    []uint32 // len numBuckets; vals[i] is the travel time for bucket i
	prof    profile.PLF
}

// NewEdge creates a capacity-aware edge starting at free-flow (no flow
// deposited yet).
func NewEdge(freeFlow, capacityPerBucket, period, numBuckets uint32, congestion CongestionFunc) (*Edge, error) {
	if numBuckets < 1 {
		return nil, ErrZeroBuckets
	}
	if congestion == nil {
		congestion = DefaultBPR()
	}
	e := &Edge{
		freeFlow:   freeFlow,
		capPerB:    capacityPerBucket,
		period:     period,
		numBuckets: numBuckets,
		congestion: congestion,
		vals:       make([]uint32, numBuckets),
	}
	for i := range e.vals {
		e.vals[i] = freeFlow
	}
	e.prof = profile.Constant(period, freeFlow)
	return e, nil
}

// Profile returns the edge's current derived travel-time profile.
func (e *Edge) Profile() profile.PLF { return e.prof }

// Buckets exposes the underlying flow counters (read-only use expected;
// mutate only through Deposit).
func (e *Edge) Buckets() *Buckets { return &e.buckets }

// step is the uniform bucket width in ms.
func (e *Edge) step() uint32 { return e.period / e.numBuckets }

// boundary returns the departure time at the start of bucket i.
func (e *Edge) boundary(i uint32) uint32 { return i * e.step() }

// Deposit records one flow unit entering this edge at departure time t,
// regenerates the affected bucket's travel time via the congestion
// function, and repairs FIFO by sweeping forward from that bucket (spec
// §4.2, §4.3 C10). A recomputed value below the bucket's current value
// (which an earlier forward repair may have raised) leaves the bucket
// unchanged. Returns the bucket index and the value the bucket holds
// afterwards.
func (e *Edge) Deposit(t uint32) (bucketIdx uint32, newVal uint32, err error) {
	bucketIdx, err = BucketIndex(t, e.period, e.numBuckets)
	if err != nil {
		return 0, 0, err
	}
	used := e.buckets.Deposit(bucketIdx)
	newVal = e.congestion(e.freeFlow, e.capPerB, used)
	if int32(newVal) < 0 {
		return 0, 0, fmt.Errorf("%w: bucket %d", ErrNegativeResult, bucketIdx)
	}
	if newVal < 1 {
		newVal = 1
	}
	if newVal > e.vals[bucketIdx] {
		e.vals[bucketIdx] = newVal
		e.repairForward(bucketIdx)
	} else {
		newVal = e.vals[bucketIdx]
	}
	e.rebuildProfile()
	return bucketIdx, newVal, nil
}

// repairForward sweeps bucket values forward from the just-updated bucket
// b, raising each successor's value only as far as needed to keep
// slope >= -1 (spec §4.2): if val[i] < val[i-1] - step, val[i] :=
// val[i-1] - step. Since all B gaps (including the wraparound from bucket
// B-1 back to bucket 0) are equal to step, this is exact. The sweep stops
// as soon as the invariant holds naturally, wrapping at most once.
func (e *Edge) repairForward(b uint32) {
	step := int64(e.step())
	n := e.numBuckets
	prev := b
	for k := uint32(1); k <= n; k++ {
		cur := (b + k) % n
		minVal := int64(e.vals[prev]) - step
		if minVal < 1 {
			minVal = 1
		}
		if int64(e.vals[cur]) >= minVal {
			break // invariant holds naturally; sweep complete
		}
		e.vals[cur] = uint32(minVal)
		prev = cur
	}
}

// rebuildProfile reconstructs the PLF from the current bucket values.
func (e *Edge) rebuildProfile() {
	step := e.step()
	bps := make([]profile.Breakpoint, 0, e.numBuckets+1)
	for i := uint32(0); i < e.numBuckets; i++ {
		bps = append(bps, profile.Breakpoint{At: i * step, Val: e.vals[i]})
	}
	bps = append(bps, profile.Breakpoint{At: e.period, Val: e.vals[0]})
	prof, perr := profile.New(e.period, bps)
	if perr != nil {
		// A malformed sweep should be unreachable given repairForward's
		// invariant, but never serve a PLF that fails FIFO (spec §7: no
		// query is ever answered with a known-wrong distance).
		panic(fmt.Sprintf("capacity: rebuilt profile violates FIFO: %v", perr))
	}
	e.prof = prof
}

// Reset clears all deposited flow and restores the free-flow profile.
func (e *Edge) Reset() {
	e.buckets.Reset()
	for i := range e.vals {
		e.vals[i] = e.freeFlow
	}
	e.prof = profile.Constant(e.period, e.freeFlow)
}

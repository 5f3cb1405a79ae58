package capacity

import "math"

// CongestionFunc maps (free-flow travel time, bucket capacity, flow used)
// to a bucket-local travel time, per spec §4.2. Implementations must
// clamp the result to [1, +Inf); a negative result is a bug in the
// implementation, never a legitimate outcome.
type CongestionFunc func(freeFlow, capacityPerBucket, used uint32) uint32

// BPR returns the Bureau-of-Public-Roads congestion function:
//
//	travel = free_flow * (1 + alpha * (used/capacity)^beta)
//
// The reference parameterization is alpha=0.15, beta=4 (spec §4.2).
func BPR(alpha, beta float64) CongestionFunc {
	return func(freeFlow, capacityPerBucket, used uint32) uint32 {
		if capacityPerBucket == 0 {
			capacityPerBucket = 1
		}
		ratio := float64(used) / float64(capacityPerBucket)
		factor := 1 + alpha*math.Pow(ratio, beta)
		travel := math.Round(float64(freeFlow) * factor)
		if travel < 1 {
			travel = 1
		}
		if travel > math.MaxUint32 {
			travel = math.MaxUint32
		}
		return uint32(travel)
	}
}

// DefaultBPR is the reference BPR curve used throughout the spec's worked
// examples (alpha=0.15, beta=4, spec §4.2 and scenario S1).
func DefaultBPR() CongestionFunc { return BPR(0.15, 4) }

// BPRSpeed returns the BPR speed-counterpart congestion function:
//
//	speed = free_flow_speed / (1 + (used/capacity)^2)
//
// Here freeFlow is interpreted as a speed rather than a travel time; the
// caller is responsible for keeping edge semantics consistent (an edge
// uses either the travel-time or the speed variant, never both).
func BPRSpeed() CongestionFunc {
	return func(freeFlowSpeed, capacityPerBucket, used uint32) uint32 {
		if capacityPerBucket == 0 {
			capacityPerBucket = 1
		}
		ratio := float64(used) / float64(capacityPerBucket)
		speed := float64(freeFlowSpeed) / (1 + ratio*ratio)
		if speed < 1 {
			speed = 1
		}
		return uint32(math.Round(speed))
	}
}

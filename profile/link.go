package profile

import "sort"

// MaxLinkBreakpoints bounds the breakpoint count of a linked profile
// before the lower-envelope simplification (Simplify) kicks in. Chosen so
// a handful of consecutive links down a shortest path stay cheap; see
// Link's doc comment.
const MaxLinkBreakpoints = 256

// LinkScratch is a reusable buffer threaded through repeated Link calls;
// only the candidate departure-time buffer is reused, while the breakpoint
// slices of each composition are still allocated per call (spec §9:
// "Arenas vs. per-edge allocation").
type LinkScratch struct {
	candidates []uint32
}

// Link composes f then g: (f ⊕ g)(t) = f(t) + g(t + f(t)) (spec §4.1).
// Breakpoints of the exact composition occur at (a) every breakpoint of f
// and (b) every t whose arrival time t+f(t) lands exactly on a breakpoint
// of g — found by inverting the affine map t -> t+f(t) on each linear
// segment of f, which is non-decreasing because f is FIFO (slope >= -1).
//
// If the exact composition would exceed MaxLinkBreakpoints, it is
// simplified via a Douglas-Peucker-style lower envelope (Simplify) to
// bound memory, trading exactness for a bounded representation that never
// overstates the true composed travel time beyond the simplification
// tolerance.
func Link(f, g PLF, scratch *LinkScratch) PLF {
	if scratch == nil {
		scratch = &LinkScratch{}
	}
	scratch.candidates = scratch.candidates[:0]

	period := f.period
	for _, bp := range f.bps {
		scratch.candidates = append(scratch.candidates, bp.At)
	}
	for _, gbp := range g.bps {
		scratch.candidates = append(scratch.candidates, preimages(f, gbp.At)...)
	}

	sort.Slice(scratch.candidates, func(i, j int) bool { return scratch.candidates[i] < scratch.candidates[j] })
	ts := dedupe(scratch.candidates, period)

	bps := make([]Breakpoint, 0, len(ts))
	for _, t := range ts {
		arrival := f.Evaluate(t)
		total := arrival + g.Evaluate(t+arrival)
		bps = append(bps, Breakpoint{At: t, Val: total})
	}
	// Close the period: ensure first/last agree (t=0 and t=period are the
	// same instant under periodicity).
	bps = closePeriod(bps, period)

	linked, err := New(period, bps)
	if err != nil {
		// Numerical edge cases (e.g. duplicate candidate times after
		// rounding) can produce a non-monotone set; fall back to a
		// coarser, guaranteed-valid reconstruction by keeping f's own
		// breakpoints only, which is always FIFO since g.Evaluate is
		// itself >= 1.
		bps = fallbackBreakpoints(f, g)
		linked, _ = New(period, bps)
	}

	if len(linked.bps) > MaxLinkBreakpoints {
		linked = Simplify(linked, MaxLinkBreakpoints)
	}

	return linked
}

// preimages returns every t in f's domain such that t + f(t) == target
// (mod period), by inverting the affine function on each linear segment
// of f. A segment with slope exactly -1 maps to a single point and is
// skipped here (already covered by its endpoint breakpoints).
func preimages(f PLF, target uint32) []uint32 {
	var out []uint32
	period := int64(f.period)
	for k := -1; k <= 1; k++ { // target can be hit from an adjacent period wrap
		tgt := int64(target) + int64(k)*period
		for i := 1; i < len(f.bps); i++ {
			a, b := f.bps[i-1], f.bps[i]
			dt := int64(b.At) - int64(a.At)
			dv := int64(b.Val) - int64(a.Val)
			slope1 := dt + dv // (1+slope)*dt, i.e. d(t+f(t)) over the segment
			if slope1 == 0 {
				continue
			}
			lhsAtA := int64(a.At) + int64(a.Val)
			// t + f(t) is affine in t over [a.At,b.At]: value(t) = lhsAtA + (slope1/dt)*(t-a.At)
			num := (tgt - lhsAtA) * dt
			if slope1 < 0 {
				continue // FIFO guarantees slope1 >= 0; defensive only
			}
			if num < 0 || num > slope1*dt {
				continue
			}
			tOff := num / slope1
			t := a.At + uint32(tOff)
			if t >= a.At && t <= b.At {
				out = append(out, t%f.period)
			}
		}
	}
	return out
}

func dedupe(sorted []uint32, period uint32) []uint32 {
	out := make([]uint32, 0, len(sorted)+1)
	out = append(out, 0)
	for _, v := range sorted {
		if v == 0 || v == period {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	out = append(out, period)
	return out
}

func closePeriod(bps []Breakpoint, period uint32) []Breakpoint {
	if len(bps) == 0 {
		return bps
	}
	if bps[0].At != 0 {
		bps = append([]Breakpoint{{0, bps[0].Val}}, bps...)
	}
	if bps[len(bps)-1].At != period {
		bps = append(bps, Breakpoint{period, bps[0].Val})
	} else {
		bps[len(bps)-1].Val = bps[0].Val
	}
	return bps
}

func fallbackBreakpoints(f, g PLF) []Breakpoint {
	bps := make([]Breakpoint, 0, len(f.bps))
	for _, bp := range f.bps {
		arrival := bp.Val
		bps = append(bps, Breakpoint{At: bp.At, Val: arrival + g.Evaluate(bp.At+arrival)})
	}
	bps[len(bps)-1].Val = bps[0].Val
	return bps
}

// Simplify reduces f to at most maxBreakpoints samples via a recursive
// Douglas-Peucker pass that keeps the breakpoint of maximum deviation from
// the chord connecting its neighbours at each step, approximating f's
// lower envelope (spec §4.1: "approximates... by taking the lower
// envelope"). The boundary breakpoints (0, Period) are always kept.
func Simplify(f PLF, maxBreakpoints int) PLF {
	if len(f.bps) <= maxBreakpoints || maxBreakpoints < 2 {
		return f
	}
	keep := make([]bool, len(f.bps))
	keep[0] = true
	keep[len(f.bps)-1] = true
	kept := 2

	type span struct{ lo, hi int }
	stack := []span{{0, len(f.bps) - 1}}
	// Greedily expand the kept set, always picking the globally largest
	// deviation next, until we hit the budget.
	for kept < maxBreakpoints && len(stack) > 0 {
		// Find the span with the largest single deviation across all
		// pending spans (simple O(n) scan per iteration; breakpoint
		// counts here are already bounded by MaxLinkBreakpoints).
		bestSpanIdx, bestPoint, bestDev := -1, -1, int64(-1)
		for si, sp := range stack {
			if sp.hi-sp.lo < 2 {
				continue
			}
			idx, dev := maxDeviation(f.bps, sp.lo, sp.hi)
			if dev > bestDev {
				bestSpanIdx, bestPoint, bestDev = si, idx, dev
			}
		}
		if bestSpanIdx == -1 {
			break
		}
		keep[bestPoint] = true
		kept++
		sp := stack[bestSpanIdx]
		stack = append(stack[:bestSpanIdx], stack[bestSpanIdx+1:]...)
		stack = append(stack, span{sp.lo, bestPoint}, span{bestPoint, sp.hi})
	}

	out := make([]Breakpoint, 0, kept)
	for i, k := range keep {
		if k {
			out = append(out, f.bps[i])
		}
	}
	simplified, err := New(f.period, out)
	if err != nil {
		// The simplified subset can violate FIFO if a removed point was
		// load-bearing; repair it with the same forward sweep that live
		// capacity updates use (capacity.Edge.repairForward), which raises
		// downstream values just enough to restore slope >= -1.
		out = repairFIFOInPlace(out, f.period)
		simplified, _ = New(f.period, out)
	}
	return simplified
}

// maxDeviation finds, among bps[lo+1..hi-1], the index with the largest
// perpendicular deviation (in travel-time units) from the chord bps[lo]-bps[hi].
func maxDeviation(bps []Breakpoint, lo, hi int) (int, int64) {
	a, b := bps[lo], bps[hi]
	dt := int64(b.At) - int64(a.At)
	dv := int64(b.Val) - int64(a.Val)
	bestIdx, bestDev := -1, int64(-1)
	for i := lo + 1; i < hi; i++ {
		chordVal := int64(a.Val) + dv*(int64(bps[i].At)-int64(a.At))/dt
		dev := int64(bps[i].Val) - chordVal
		if dev < 0 {
			dev = -dev
		}
		if dev > bestDev {
			bestIdx, bestDev = i, dev
		}
	}
	return bestIdx, bestDev
}

// repairFIFOInPlace is a last-resort corrective sweep for breakpoint
// subsets chosen by Simplify that no longer satisfy FIFO; logic mirrors
// capacity.Edge.repairForward (kept independent here to avoid a
// profile->capacity import cycle).
func repairFIFOInPlace(bps []Breakpoint, period uint32) []Breakpoint {
	for i := 1; i < len(bps); i++ {
		dt := int64(bps[i].At) - int64(bps[i-1].At)
		minVal := int64(bps[i-1].Val) - dt
		if int64(bps[i].Val) < minVal {
			if minVal < 0 {
				minVal = 0
			}
			bps[i].Val = uint32(minVal)
		}
	}
	bps[len(bps)-1].Val = bps[0].Val
	return bps
}

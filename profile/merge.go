package profile

// Merge returns the pointwise minimum of f and g, used to combine
// alternative path profiles (spec §4.1). Alongside the merged PLF it
// returns, for each resulting breakpoint, whether f (true) or g (false)
// attained the minimum there — callers use this to decide which path to
// keep on ties-breaking downstream.
func Merge(f, g PLF) (PLF, []bool) {
	period := f.period
	ts := unionTimes(f, g)

	type sample struct {
		t         uint32
		val       uint32
		fDominant bool
	}
	raw := make([]sample, 0, len(ts)*2)
	for i := 0; i < len(ts); i++ {
		t := ts[i]
		fv := f.Evaluate(t)
		gv := g.Evaluate(t)
		if fv <= gv {
			raw = append(raw, sample{t, fv, true})
		} else {
			raw = append(raw, sample{t, gv, false})
		}
		if i+1 < len(ts) {
			if cross, ok := crossing(f, g, t, ts[i+1]); ok {
				fv = f.Evaluate(cross)
				gv = g.Evaluate(cross)
				dom := fv <= gv
				val := fv
				if !dom {
					val = gv
				}
				raw = append(raw, sample{cross, val, dom})
			}
		}
	}

	bps := make([]Breakpoint, 0, len(raw))
	dominant := make([]bool, 0, len(raw))
	for _, s := range raw {
		bps = append(bps, Breakpoint{At: s.t, Val: s.val})
		dominant = append(dominant, s.fDominant)
	}
	bps[len(bps)-1].Val = bps[0].Val

	merged, err := New(period, bps)
	if err != nil {
		bps = repairFIFOInPlace(bps, period)
		merged, _ = New(period, bps)
	}
	return merged, dominant
}

// unionTimes returns the sorted, deduplicated union of f's and g's
// breakpoint times, always including 0 and Period.
func unionTimes(f, g PLF) []uint32 {
	seen := make(map[uint32]struct{}, len(f.bps)+len(g.bps))
	var out []uint32
	add := func(t uint32) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, bp := range f.bps {
		add(bp.At)
	}
	for _, bp := range g.bps {
		add(bp.At)
	}
	sortUint32(out)
	return out
}

func sortUint32(s []uint32) {
	// Small helper to avoid importing sort in two files for one call site.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// crossing finds the exact point in (a,b) where the linear segments of f
// and g cross, if the dominant function switches between a and b. Both f
// and g are linear on [a,b] because a and b are consecutive points in the
// union of both breakpoint sets.
func crossing(f, g PLF, a, b uint32) (uint32, bool) {
	fa, fb := int64(f.Evaluate(a)), int64(f.Evaluate(b))
	ga, gb := int64(g.Evaluate(a)), int64(g.Evaluate(b))
	da := fa - ga
	db := fb - gb
	if da == 0 || db == 0 || (da > 0) == (db > 0) {
		return 0, false // no sign change strictly inside (a,b)
	}
	// Linear interpolation for the zero of (f-g) between a and b.
	span := int64(b) - int64(a)
	t := int64(a) + span*da/(da-db)
	if t <= int64(a) || t >= int64(b) {
		return 0, false
	}
	return uint32(t), true
}

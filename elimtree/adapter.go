package elimtree

import "github.com/katalvlaran/tdcch/customization"

// IntervalScalarView adapts an IntervalMinimaCustomizer to Metric using
// its scalar (lo, hi) fallback bound, so the same elimination-tree
// search serves both weight algebras without duplicating the walk.
type IntervalScalarView struct {
	IC *customization.IntervalMinimaCustomizer
}

func (v IntervalScalarView) Up(e uint32) Bound   { return v.IC.Up(e).Bound }
func (v IntervalScalarView) Down(e uint32) Bound { return v.IC.Down(e).Bound }

package potential

import (
	"github.com/katalvlaran/tdcch/elimtree"
	"github.com/katalvlaran/tdcch/graph"
)

// CorridorLowerBound is the elimination-tree-derived potential (spec
// §4.5 step 1): the target-side corridor is implicit in the metric's own
// customized bounds, so evaluating it for a node v is exactly the same
// bidirectional elimination-tree search used for the direct s→t bracket
// (C6), just run with v standing in for the query source and the stored
// query target held fixed.
//
// This trades the spec's per-rank bound cache (amortized across every
// node the search settles) for a fresh O(tree height) walk per At call,
// reusing elimtree.Searcher's own generation-stamped scratch so no walk
// allocates. The simpler form is still exactly admissible, since it is
// the identical search whose bracket property spec §4.4 already proves;
// see DESIGN.md for why the cache was dropped.
type CorridorLowerBound struct {
	searcher *elimtree.Searcher
	metric   elimtree.Metric
	target   graph.NodeID
}

// NewCorridorLowerBound builds a corridor potential over one CCH's
// elimination-tree search, driven by metric (typically the interval-
// minima customizer's scalar view, via elimtree.IntervalScalarView).
func NewCorridorLowerBound(searcher *elimtree.Searcher, metric elimtree.Metric) *CorridorLowerBound {
	return &CorridorLowerBound{searcher: searcher, metric: metric}
}

func (c *CorridorLowerBound) Init(source, target graph.NodeID, _ uint32) (bool, error) {
	c.target = target
	_, ok := c.searcher.Query(c.metric, source, target)
	return ok, nil
}

func (c *CorridorLowerBound) At(v graph.NodeID, _ uint32) (uint32, bool) {
	b, ok := c.searcher.Query(c.metric, v, c.target)
	if !ok {
		return 0, false
	}
	return b.Lo, true
}

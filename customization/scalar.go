package customization

import (
	"context"
	"math"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/graph"
)

// ScalarBound is a (lo, hi) travel-time pair: a lower bound usable as an
// admissible A* potential metric, and an upper bound usable as a
// feasibility check (spec §4.3, §4.5).
type ScalarBound struct {
	Lo, Hi uint32
}

const infBound = math.MaxUint32

// ScalarSeed supplies the original graph's per-arc (lo, hi) bound; a
// typical source is min/max free-flow travel time across the day, or a
// coarser corridor bound derived offline.
type ScalarSeed interface {
	Bound(e graph.EdgeID) ScalarBound
}

// ScalarCustomizer produces the (lo, hi) metric consumed by the corridor
// potential (C7) and the elimination-tree search (C6).
type ScalarCustomizer struct {
	c    *cch.CCH
	up   []ScalarBound
	down []ScalarBound
}

// NewScalarCustomizer seeds up/down bounds from seed for every CCH edge
// backed by a direct original arc, leaving pure shortcuts at +Inf until
// Customize runs.
func NewScalarCustomizer(c *cch.CCH, seed ScalarSeed) *ScalarCustomizer {
	n := c.NumUpEdges()
	sc := &ScalarCustomizer{
		c:    c,
		up:   make([]ScalarBound, n),
		down: make([]ScalarBound, n),
	}
	for e := 0; e < n; e++ {
		sc.up[e] = ScalarBound{Lo: infBound, Hi: infBound}
		sc.down[e] = ScalarBound{Lo: infBound, Hi: infBound}
		if a, ok := c.OrigUpArc(uint32(e)); ok {
			sc.up[e] = seed.Bound(a)
		}
		if a, ok := c.OrigDownArc(uint32(e)); ok {
			sc.down[e] = seed.Bound(a)
		}
	}
	return sc
}

// Up returns the current up-direction bound for CCH edge e.
func (sc *ScalarCustomizer) Up(e uint32) ScalarBound { return sc.up[e] }

// Down returns the current down-direction bound for CCH edge e.
func (sc *ScalarCustomizer) Down(e uint32) ScalarBound { return sc.down[e] }

// Customize relaxes every shortcut against its lower-triangle edges until
// all bounds are tight (a single ascending-rank, level-parallel pass
// suffices; spec §4.3).
func (sc *ScalarCustomizer) Customize(ctx context.Context) error {
	return runLevels(ctx, sc.c, DefaultWorkerLimit, func(tr cch.Triangle) error {
		vx := sc.up[tr.DownEdge]   // v -> x
		xv := sc.down[tr.DownEdge] // x -> v
		vy := sc.up[tr.UpEdge]     // v -> y
		yv := sc.down[tr.UpEdge]   // y -> v

		atomicMinUint32(&sc.up[tr.Shortcut].Lo, addSat(xv.Lo, vy.Lo))
		atomicMinUint32(&sc.up[tr.Shortcut].Hi, addSat(xv.Hi, vy.Hi))
		atomicMinUint32(&sc.down[tr.Shortcut].Lo, addSat(yv.Lo, vx.Lo))
		atomicMinUint32(&sc.down[tr.Shortcut].Hi, addSat(yv.Hi, vx.Hi))
		return nil
	})
}

// addSat adds a and b, saturating at infBound instead of overflowing.
func addSat(a, b uint32) uint32 {
	if a >= infBound || b >= infBound {
		return infBound
	}
	sum := uint64(a) + uint64(b)
	if sum >= infBound {
		return infBound
	}
	return uint32(sum)
}

package customization

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/graph"
)

// ErrBadK indicates a non-positive interval count.
var ErrBadK = errors.New("customization: K must be positive")

// IntervalVector holds K per-interval minimum travel times, one per
// equal-width slice of the period, plus the scalar (lo, hi) pair used for
// feasibility and as a fallback when finer resolution is unavailable.
type IntervalVector struct {
	Mins  []uint32 // len K
	Bound ScalarBound
}

// IntervalSeed supplies the original graph's per-arc interval vector.
type IntervalSeed interface {
	Vector(e graph.EdgeID, k int) IntervalVector
}

// IntervalMinimaCustomizer produces the K-bucket corridor metric used by
// the potential's first pass (spec §4.3, §4.5).
type IntervalMinimaCustomizer struct {
	c *cch.CCH
	k int

	up   []IntervalVector
	down []IntervalVector
}

// NewIntervalMinimaCustomizer seeds K-wide interval vectors for every CCH
// edge backed by a direct original arc.
func NewIntervalMinimaCustomizer(c *cch.CCH, k int, seed IntervalSeed) (*IntervalMinimaCustomizer, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadK, k)
	}
	n := c.NumUpEdges()
	ic := &IntervalMinimaCustomizer{c: c, k: k, up: make([]IntervalVector, n), down: make([]IntervalVector, n)}
	for e := 0; e < n; e++ {
		ic.up[e] = infVector(k)
		ic.down[e] = infVector(k)
		if a, ok := c.OrigUpArc(uint32(e)); ok {
			ic.up[e] = seed.Vector(a, k)
		}
		if a, ok := c.OrigDownArc(uint32(e)); ok {
			ic.down[e] = seed.Vector(a, k)
		}
	}
	return ic, nil
}

func infVector(k int) IntervalVector {
	mins := make([]uint32, k)
	for i := range mins {
		mins[i] = infBound
	}
	return IntervalVector{Mins: mins, Bound: ScalarBound{Lo: infBound, Hi: infBound}}
}

// K returns the configured interval count.
func (ic *IntervalMinimaCustomizer) K() int { return ic.k }

// Up returns the current up-direction interval vector for CCH edge e.
func (ic *IntervalMinimaCustomizer) Up(e uint32) IntervalVector { return ic.up[e] }

// Down returns the current down-direction interval vector for CCH edge e.
func (ic *IntervalMinimaCustomizer) Down(e uint32) IntervalVector { return ic.down[e] }

// Customize relaxes every shortcut's K minima and scalar bound
// componentwise against its lower-triangle edges.
func (ic *IntervalMinimaCustomizer) Customize(ctx context.Context) error {
	return runLevels(ctx, ic.c, DefaultWorkerLimit, func(tr cch.Triangle) error {
		vx, xv := ic.up[tr.DownEdge], ic.down[tr.DownEdge]
		vy, yv := ic.up[tr.UpEdge], ic.down[tr.UpEdge]

		for i := 0; i < ic.k; i++ {
			atomicMinUint32(&ic.up[tr.Shortcut].Mins[i], addSat(xv.Mins[i], vy.Mins[i]))
			atomicMinUint32(&ic.down[tr.Shortcut].Mins[i], addSat(yv.Mins[i], vx.Mins[i]))
		}
		atomicMinUint32(&ic.up[tr.Shortcut].Bound.Lo, addSat(xv.Bound.Lo, vy.Bound.Lo))
		atomicMinUint32(&ic.up[tr.Shortcut].Bound.Hi, addSat(xv.Bound.Hi, vy.Bound.Hi))
		atomicMinUint32(&ic.down[tr.Shortcut].Bound.Lo, addSat(yv.Bound.Lo, vx.Bound.Lo))
		atomicMinUint32(&ic.down[tr.Shortcut].Bound.Hi, addSat(yv.Bound.Hi, vx.Bound.Hi))
		return nil
	})
}

package customization

import (
	"context"
	"sync"

	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/graph"
	"github.com/katalvlaran/tdcch/profile"
)

// ProfileSeed supplies the original graph's per-arc exact periodic PLF.
type ProfileSeed interface {
	Profile(e graph.EdgeID) profile.PLF
}

// profileEdge is one direction's customization state for a CCH edge.
type profileEdge struct {
	prof      profile.PLF
	hasDirect bool
	required  bool

	hasWon      bool   // whether any triangle's candidate ever won the merge
	wonDownEdge uint32 // the down[] component of that winning candidate
	wonUpEdge   uint32 // the up[] component of that winning candidate
}

// ProfileCustomizer produces the exact periodic-PLF metric (spec §4.3,
// "PTV mode"), tracking a required flag per shortcut so path
// reconstruction can skip shortcuts that are never optimal anywhere in
// the period.
type ProfileCustomizer struct {
	c *cch.CCH

	up   []profileEdge
	down []profileEdge

	muUp   []sync.Mutex
	muDown []sync.Mutex
}

// NewProfileCustomizer seeds exact PLFs for every CCH edge backed by a
// direct original arc; pure shortcuts start at the (period-wide) sentinel
// infinite-travel-time constant profile and acquire real weight only as
// triangles relax into them.
func NewProfileCustomizer(c *cch.CCH, period uint32, seed ProfileSeed) *ProfileCustomizer {
	n := c.NumUpEdges()
	pc := &ProfileCustomizer{
		c:      c,
		up:     make([]profileEdge, n),
		down:   make([]profileEdge, n),
		muUp:   make([]sync.Mutex, n),
		muDown: make([]sync.Mutex, n),
	}
	sentinel := profile.Constant(period, infBound)
	for e := 0; e < n; e++ {
		pc.up[e] = profileEdge{prof: sentinel, required: true}
		pc.down[e] = profileEdge{prof: sentinel, required: true}
		if a, ok := c.OrigUpArc(uint32(e)); ok {
			pc.up[e] = profileEdge{prof: seed.Profile(a), hasDirect: true, required: true}
		}
		if a, ok := c.OrigDownArc(uint32(e)); ok {
			pc.down[e] = profileEdge{prof: seed.Profile(a), hasDirect: true, required: true}
		}
	}
	return pc
}

// Up returns the current up-direction PLF for CCH edge e.
func (pc *ProfileCustomizer) Up(e uint32) profile.PLF { return pc.up[e].prof }

// Down returns the current down-direction PLF for CCH edge e.
func (pc *ProfileCustomizer) Down(e uint32) profile.PLF { return pc.down[e].prof }

// Required reports whether CCH edge e's up (resp. down) direction is
// still needed for correct path unpacking.
func (pc *ProfileCustomizer) UpRequired(e uint32) bool   { return pc.up[e].required }
func (pc *ProfileCustomizer) DownRequired(e uint32) bool { return pc.down[e].required }

// Customize relaxes every shortcut's PLF via link-then-merge against its
// lower-triangle edges, then sweeps once more to propagate the required
// flag (spec §4.3): a shortcut with no direct backing edge is required
// only if the triangle that actually won the merge has both of its own
// edges required.
func (pc *ProfileCustomizer) Customize(ctx context.Context) error {
	if err := runLevels(ctx, pc.c, DefaultWorkerLimit, func(tr cch.Triangle) error {
		upCandidate := profile.Link(pc.down[tr.DownEdge].prof, pc.up[tr.UpEdge].prof, &profile.LinkScratch{})
		downCandidate := profile.Link(pc.down[tr.UpEdge].prof, pc.up[tr.DownEdge].prof, &profile.LinkScratch{})

		pc.muUp[tr.Shortcut].Lock()
		merged, dominant := profile.Merge(pc.up[tr.Shortcut].prof, upCandidate)
		pc.up[tr.Shortcut].prof = merged
		if candidateWon(dominant) {
			pc.up[tr.Shortcut].hasWon = true
			pc.up[tr.Shortcut].wonDownEdge = tr.DownEdge
			pc.up[tr.Shortcut].wonUpEdge = tr.UpEdge
		}
		pc.muUp[tr.Shortcut].Unlock()

		pc.muDown[tr.Shortcut].Lock()
		merged, dominant = profile.Merge(pc.down[tr.Shortcut].prof, downCandidate)
		pc.down[tr.Shortcut].prof = merged
		if candidateWon(dominant) {
			pc.down[tr.Shortcut].hasWon = true
			pc.down[tr.Shortcut].wonDownEdge = tr.UpEdge
			pc.down[tr.Shortcut].wonUpEdge = tr.DownEdge
		}
		pc.muDown[tr.Shortcut].Unlock()
		return nil
	}); err != nil {
		return err
	}
	pc.propagateRequired()
	return nil
}

// candidateWon reports whether the second argument to Merge (the
// triangle's candidate profile) attained the minimum anywhere.
func candidateWon(dominant []bool) bool {
	for _, d := range dominant {
		if !d {
			return true
		}
	}
	return false
}

// propagateRequired resolves required flags in ascending edge-id order.
// This is safe in one pass because a shortcut's winning triangle always
// names components whose source rank is strictly lower than the
// shortcut's own source rank, and the up-edge CSR assigns ids in
// ascending-rank-of-source-endpoint order — so every dependency an edge
// references has already been finalized by the time that edge is
// processed.
func (pc *ProfileCustomizer) propagateRequired() {
	for e := range pc.up {
		pc.up[e].required = pc.directionRequired(pc.up[e])
		pc.down[e].required = pc.directionRequired(pc.down[e])
	}
}

func (pc *ProfileCustomizer) directionRequired(pe profileEdge) bool {
	if pe.hasDirect {
		return true
	}
	if !pe.hasWon {
		return false
	}
	return pc.down[pe.wonDownEdge].required && pc.up[pe.wonUpEdge].required
}

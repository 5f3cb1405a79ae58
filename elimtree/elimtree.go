// Package elimtree implements the bidirectional elimination-tree search
// (C6): given a source and target rank, walk each one's path to the
// elimination-tree root, relaxing up-edges along the way, and return a
// (lo, hi) bracket on the true departure-time-independent distance
// (spec §4.4). This is the building block the corridor and multi-metric
// potentials (C7) run on every At call to obtain admissible bounds.
package elimtree

import (
	"github.com/katalvlaran/tdcch/cch"
	"github.com/katalvlaran/tdcch/customization"
	"github.com/katalvlaran/tdcch/graph"
)

// Bound is the shared (lo, hi) scalar pair type, identical in shape to
// customization.ScalarBound so every weight algebra can feed this search
// without a conversion step.
type Bound = customization.ScalarBound

var infinite = Bound{Lo: ^uint32(0), Hi: ^uint32(0)}

// Metric supplies the (lo, hi) weight of a CCH up-edge in each direction;
// ScalarCustomizer and IntervalMinimaCustomizer's scalar fallback both
// implement this.
type Metric interface {
	Up(e uint32) Bound
	Down(e uint32) Bound
}

// Searcher runs repeated elimination-tree queries against one CCH,
// reusing its distance scratch across calls via a generation counter so
// a query never allocates on the happy path after the first (spec §5
// "Dijkstra scratch... reused across queries via timestamp-based
// invalidation").
type Searcher struct {
	c *cch.CCH

	fwDist []Bound
	bwDist []Bound
	fwGen  []uint32
	bwGen  []uint32
	gen    uint32

	fwPath []uint32
	bwPath []uint32
}

// NewSearcher allocates scratch sized to c's rank count.
func NewSearcher(c *cch.CCH) *Searcher {
	n := c.NumRanks()
	return &Searcher{
		c:      c,
		fwDist: make([]Bound, n),
		bwDist: make([]Bound, n),
		fwGen:  make([]uint32, n),
		bwGen:  make([]uint32, n),
	}
}

// Query returns the (lo, hi) bracket on the distance from source to
// target, or ok=false if the search never found a meeting point (spec
// §4.4 "or None if it stayed (Inf, Inf)").
func (s *Searcher) Query(metric Metric, source, target graph.NodeID) (bound Bound, ok bool) {
	s.gen++
	rs := s.c.RankOf(source)
	rt := s.c.RankOf(target)

	s.bwPath = s.walkUpBackward(rt, metric, s.bwPath[:0])

	tentative := infinite
	s.fwPath = s.fwPath[:0]
	x := rs
	s.setDist(s.fwDist, s.fwGen, x, Bound{0, 0})
	for {
		s.fwPath = append(s.fwPath, x)
		cur := s.fwDist[x]

		if s.bwGen[x] == s.gen {
			tentative = meet(tentative, cur, s.bwDist[x])
		}
		if cur.Lo <= tentative.Hi {
			lo, hi := s.c.Up(x)
			for e := lo; e < hi; e++ {
				y := s.c.UpHead(e)
				w := metric.Up(e)
				cand := add(cur, w)
				if s.fwGen[y] != s.gen {
					s.setDist(s.fwDist, s.fwGen, y, cand)
				} else {
					s.fwDist[y] = componentMin(s.fwDist[y], cand)
				}
			}
		}

		p, has := s.c.Parent(x)
		if !has {
			break
		}
		x = p
	}

	if tentative == infinite {
		return Bound{}, false
	}
	return tentative, true
}

// walkUpBackward runs the target-side tree walk, relaxing with
// metric.Down: the path from an ancestor back down to the target
// accumulates down-direction weight at each up-edge (spec §4.4).
func (s *Searcher) walkUpBackward(start uint32, metric Metric, path []uint32) []uint32 {
	dist, gen := s.bwDist, s.bwGen
	x := start
	s.setDist(dist, gen, x, Bound{0, 0})
	for {
		path = append(path, x)
		cur := dist[x]
		lo, hi := s.c.Up(x)
		for e := lo; e < hi; e++ {
			y := s.c.UpHead(e)
			cand := add(cur, metric.Down(e))
			if gen[y] != s.gen {
				s.setDist(dist, gen, y, cand)
			} else {
				dist[y] = componentMin(dist[y], cand)
			}
		}
		p, has := s.c.Parent(x)
		if !has {
			break
		}
		x = p
	}
	return path
}

func (s *Searcher) setDist(dist []Bound, gen []uint32, r uint32, b Bound) {
	if gen[r] == s.gen {
		dist[r] = componentMin(dist[r], b)
		return
	}
	dist[r] = b
	gen[r] = s.gen
}

func componentMin(a, b Bound) Bound {
	lo, hi := a.Lo, a.Hi
	if b.Lo < lo {
		lo = b.Lo
	}
	if b.Hi < hi {
		hi = b.Hi
	}
	return Bound{Lo: lo, Hi: hi}
}

func meet(tentative, fw, bw Bound) Bound {
	return componentMin(tentative, add(fw, bw))
}

// add adds two bounds componentwise, saturating instead of overflowing.
func add(a, b Bound) Bound {
	return Bound{Lo: addSat(a.Lo, b.Lo), Hi: addSat(a.Hi, b.Hi)}
}

func addSat(a, b uint32) uint32 {
	const inf = ^uint32(0)
	if a >= inf || b >= inf {
		return inf
	}
	sum := uint64(a) + uint64(b)
	if sum >= uint64(inf) {
		return inf
	}
	return uint32(sum)
}

// Package cch implements the Customizable Contraction Hierarchy build
// (C4): metric-independent contraction over a caller-supplied node order,
// producing an upward/downward rank graph, an elimination tree, and the
// lower-triangle table that the customization package (C5) relaxes.
//
// The node order itself is accepted as input (spec §1: the ordering
// algorithm is an external collaborator, out of scope here).
package cch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/tdcch/graph"
)

// Sentinel errors.
var (
	// ErrBadOrder indicates order is not a permutation of 0..N-1.
	ErrBadOrder = errors.New("cch: order is not a valid permutation")
)

// Triangle is one lower-triangle relaxation task produced by contraction:
// pivot V (the lowest-ranked node of the three) together with the two
// up-edges (V,X) and (V,Y), X<Y, and the shortcut edge (X,Y) they bound
// (spec §4.3). EdgeIDs index into the CCH's single up-edge table; the
// corresponding down-direction weight of the same logical edge is stored
// in parallel down-weight arrays by customizers, keyed by the same id.
type Triangle struct {
	V        uint32
	DownEdge uint32 // up-edge id of (V,X); read as down-direction X->V
	UpEdge   uint32 // up-edge id of (V,Y); read as up-direction V->Y
	Shortcut uint32 // up-edge id of (X,Y)
}

// CCH is the immutable contraction result.
type CCH struct {
	n int

	order  []uint32 // order[rank] = original node id
	rankOf []uint32 // rankOf[node] = rank

	// up-edge table: edge e connects lowerRank[e] -> higherRank[e].
	upFirstOut []uint32 // CSR by lower rank, len n+1
	upHead     []uint32 // len numEdges, the higher-rank endpoint

	downFirstOut []uint32 // CSR by higher rank, len n+1
	downHead     []uint32 // the lower-rank endpoint
	downEdge     []uint32 // maps a down-CSR slot back to its up-edge id

	parent []int32  // elimination tree parent by rank, -1 for root
	level  []uint32 // height from leaves; same level => parallel-safe

	triangles []Triangle

	// origUp/origDown map an up-edge id to the original graph.EdgeID that
	// directly realizes that direction, or math.MaxUint32 if no direct
	// arc exists (pure shortcut, starts at +Inf until customized).
	origUp   []uint32
	origDown []uint32
}

const noEdge = ^uint32(0)

// NumRanks returns N.
func (c *CCH) NumRanks() int { return c.n }

// NumUpEdges returns the size of the shared up/down edge table.
func (c *CCH) NumUpEdges() int { return len(c.upHead) }

// RankOf returns the rank assigned to original node id v.
func (c *CCH) RankOf(v graph.NodeID) uint32 { return c.rankOf[v] }

// NodeAt returns the original node id at rank r.
func (c *CCH) NodeAt(r uint32) graph.NodeID { return graph.NodeID(c.order[r]) }

// Parent returns the elimination-tree parent rank of r, or (0, false) if r
// is a root.
func (c *CCH) Parent(r uint32) (uint32, bool) {
	p := c.parent[r]
	if p < 0 {
		return 0, false
	}
	return uint32(p), true
}

// Level returns r's elimination-tree level (height from leaves); nodes
// sharing a level have no ancestor-descendant relationship and may be
// customized in parallel (spec §4.3 "Triangle parallelism").
func (c *CCH) Level(r uint32) uint32 { return c.level[r] }

// MaxLevel returns the highest level value present.
func (c *CCH) MaxLevel() uint32 {
	var m uint32
	for _, l := range c.level {
		if l > m {
			m = l
		}
	}
	return m
}

// RanksAtLevel returns every rank at the given elimination-tree level.
func (c *CCH) RanksAtLevel(level uint32) []uint32 {
	var out []uint32
	for r, l := range c.level {
		if l == level {
			out = append(out, uint32(r))
		}
	}
	return out
}

// Up returns the up-edge id range [lo,hi) for rank r's higher neighbors.
func (c *CCH) Up(r uint32) (lo, hi uint32) { return c.upFirstOut[r], c.upFirstOut[r+1] }

// UpHead returns the higher-rank endpoint of up-edge e.
func (c *CCH) UpHead(e uint32) uint32 { return c.upHead[e] }

// Down returns the down-CSR slot range [lo,hi) for rank r's lower
// neighbors.
func (c *CCH) Down(r uint32) (lo, hi uint32) { return c.downFirstOut[r], c.downFirstOut[r+1] }

// DownHead returns the lower-rank endpoint at down-CSR slot k.
func (c *CCH) DownHead(k uint32) uint32 { return c.downHead[k] }

// DownToUpEdge maps a down-CSR slot back to the shared up-edge id.
func (c *CCH) DownToUpEdge(k uint32) uint32 { return c.downEdge[k] }

// Triangles returns every lower-triangle relaxation task, grouped
// implicitly by ascending pivot V (customizers should process them in
// that order; see Level for the parallel-safe grouping).
func (c *CCH) Triangles() []Triangle { return c.triangles }

// OrigUpArc looks up the original graph arc, if any, that directly
// realizes up-edge e in the given direction. ok is false for a pure
// shortcut with no direct arc in that direction.
func (c *CCH) OrigUpArc(e uint32) (graph.EdgeID, bool) {
	v := c.origUp[e]
	if v == noEdge {
		return 0, false
	}
	return graph.EdgeID(v), true
}

// OrigDownArc is the down-direction counterpart of OrigUpArc.
func (c *CCH) OrigDownArc(e uint32) (graph.EdgeID, bool) {
	v := c.origDown[e]
	if v == noEdge {
		return 0, false
	}
	return graph.EdgeID(v), true
}

// Build contracts g under the given node order (order[i] = original node
// with rank i), producing the up/down CSR, elimination tree, levels, and
// lower-triangle table (spec §4.3 "Contraction").
func Build(g *graph.Graph, order []uint32) (*CCH, error) {
	n := g.NumNodes()
	if len(order) != n {
		return nil, fmt.Errorf("%w: len=%d want=%d", ErrBadOrder, len(order), n)
	}
	rankOf := make([]uint32, n)
	seen := make([]bool, n)
	for r, v := range order {
		if int(v) >= n || seen[v] {
			return nil, ErrBadOrder
		}
		seen[v] = true
		rankOf[v] = uint32(r)
	}

	// adjSet[r] holds, during contraction, every rank adjacent to rank r
	// discovered so far (both original arcs and shortcuts), independent
	// of direction; this is the chordal completion under construction.
	adjSet := make([]map[uint32]struct{}, n)
	for r := range adjSet {
		adjSet[r] = make(map[uint32]struct{})
	}
	addAdj := func(a, b uint32) {
		adjSet[a][b] = struct{}{}
		adjSet[b][a] = struct{}{}
	}

	// origArc[arcKey{a, b}] remembers a direct original arc a->b (by rank) so
	// customization can seed weights; direction matters (a->b vs b->a are
	// tracked separately).
	type arcKey struct{ from, to uint32 }
	origArc := make(map[arcKey]graph.EdgeID)

	for v := 0; v < n; v++ {
		lo, hi := g.Out(graph.NodeID(v))
		rv := rankOf[v]
		for a := lo; a < hi; a++ {
			h := g.Head(a)
			rh := rankOf[h]
			if rv == rh {
				continue // self-loop in rank space, ignore for topology
			}
			addAdj(rv, rh)
			origArc[arcKey{rv, rh}] = a
		}
	}

	upNeighbors := make([][]uint32, n)
	parent := make([]int32, n)

	// Ascending-rank elimination: each rank v's final set of higher
	// neighbors is known only once every lower rank has been eliminated,
	// because eliminating v may introduce a shortcut between two of its
	// higher neighbors (fill-in), which a later rank x<y must see in its
	// own adjacency before it is itself eliminated. Processing v in
	// ascending order guarantees adjSet[x] is complete by the time the
	// loop reaches x.
	for v := 0; v < n; v++ {
		var higher []uint32
		for nb := range adjSet[v] {
			if nb > uint32(v) {
				higher = append(higher, nb)
			}
		}
		sort.Slice(higher, func(i, j int) bool { return higher[i] < higher[j] })

		for i := 0; i < len(higher); i++ {
			for j := i + 1; j < len(higher); j++ {
				addAdj(higher[i], higher[j])
			}
		}
		upNeighbors[v] = higher
		if len(higher) == 0 {
			parent[v] = -1
		} else {
			parent[v] = int32(higher[0]) // lowest-ranked higher neighbor
		}
	}

	// Build the up-edge CSR now that every rank's final higher-neighbor
	// set is known, then resolve triangle edge ids and original-arc
	// mappings against it.
	upFirstOut := make([]uint32, n+1)
	for v := 0; v < n; v++ {
		upFirstOut[v+1] = upFirstOut[v] + uint32(len(upNeighbors[v]))
	}
	total := upFirstOut[n]
	upHead := make([]uint32, total)
	edgeIndex := make([]map[uint32]uint32, n) // lowerRank -> (higherRank -> edge id)
	for v := 0; v < n; v++ {
		edgeIndex[v] = make(map[uint32]uint32, len(upNeighbors[v]))
		base := upFirstOut[v]
		for i, h := range upNeighbors[v] {
			upHead[base+uint32(i)] = h
			edgeIndex[v][h] = base + uint32(i)
		}
	}

	origUp := make([]uint32, total)
	origDown := make([]uint32, total)
	for i := range origUp {
		origUp[i] = noEdge
		origDown[i] = noEdge
	}
	for v := 0; v < n; v++ {
		for _, h := range upNeighbors[v] {
			eid := edgeIndex[v][h]
			if a, ok := origArc[arcKey{uint32(v), h}]; ok {
				origUp[eid] = uint32(a)
			}
			if a, ok := origArc[arcKey{h, uint32(v)}]; ok {
				origDown[eid] = uint32(a)
			}
		}
	}

	var triangles []Triangle
	for v := 0; v < n; v++ {
		higher := upNeighbors[v]
		for i := 0; i < len(higher); i++ {
			for j := i + 1; j < len(higher); j++ {
				x, y := higher[i], higher[j]
				shortcut, ok := edgeIndex[x][y]
				if !ok {
					continue // should not happen; defensive
				}
				triangles = append(triangles, Triangle{
					V:        uint32(v),
					DownEdge: edgeIndex[v][x],
					UpEdge:   edgeIndex[v][y],
					Shortcut: shortcut,
				})
			}
		}
	}

	c := &CCH{
		n:          n,
		order:      append([]uint32(nil), order...),
		rankOf:     rankOf,
		upFirstOut: upFirstOut,
		upHead:     upHead,
		parent:     parent,
		triangles:  triangles,
		origUp:     origUp,
		origDown:   origDown,
	}
	c.buildDownCSR()
	c.computeLevels()
	return c, nil
}

func (c *CCH) buildDownCSR() {
	n := c.n
	m := len(c.upHead)
	c.downFirstOut = make([]uint32, n+1)
	for e := 0; e < m; e++ {
		c.downFirstOut[c.upHead[e]+1]++
	}
	for v := 0; v < n; v++ {
		c.downFirstOut[v+1] += c.downFirstOut[v]
	}
	c.downHead = make([]uint32, m)
	c.downEdge = make([]uint32, m)
	cursor := append([]uint32(nil), c.downFirstOut...)
	for v := 0; v < n; v++ {
		lo, hi := c.Up(uint32(v))
		for e := lo; e < hi; e++ {
			h := c.upHead[e]
			pos := cursor[h]
			cursor[h]++
			c.downHead[pos] = uint32(v)
			c.downEdge[pos] = e
		}
	}
}

// computeLevels assigns each rank its elimination-tree height from
// leaves: leaves get 0, and a node's level is 1+max(children's levels).
// Ranks are processed ascending, which is always a valid post-order for
// this forest because parent rank > child rank.
func (c *CCH) computeLevels() {
	c.level = make([]uint32, c.n)
	for v := 0; v < c.n; v++ {
		p, ok := c.Parent(uint32(v))
		if !ok {
			continue
		}
		if c.level[v]+1 > c.level[p] {
			c.level[p] = c.level[v] + 1
		}
	}
}

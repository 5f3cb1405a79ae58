// Package astar implements the potential-guided time-dependent search
// (C8): a priority-queue Dijkstra over the live, capacity-customized
// graph, ordered by tentative_arrival(v) + potential(v) instead of plain
// arrival time (spec §4.6). Edge relaxation evaluates each arc's live
// PLF at the current arrival time (`arrival' = arrival +
// edge.profile.evaluate(arrival)`), so the search is exact for the true
// FIFO time-dependent shortest path whenever the guiding potential is a
// lower bound (spec §4.5's feasibility condition).
package astar

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/katalvlaran/tdcch/graph"
	"github.com/katalvlaran/tdcch/potential"
)

// ErrPotentialInfeasible is returned when the potential at the query's
// source strictly exceeds a known upper bound at init time (spec §7):
// the caller must trigger re-customization before retrying.
var ErrPotentialInfeasible = errors.New("astar: potential at source exceeds known upper bound")

const noEdge = graph.EdgeID(^uint32(0))
const infTime = ^uint32(0)

// ProfileSource evaluates the live travel time of arc e departing at
// time t. The capacity server's live graph (capacity.Edge per arc)
// implements this.
type ProfileSource interface {
	Evaluate(e graph.EdgeID, t uint32) uint32
}

// UpperBound supplies a known-safe upper bound on the remaining distance
// from v, used only for the init-time feasibility check against the
// potential (spec §7 PotentialInfeasible). A nil UpperBound skips the
// check entirely.
type UpperBound interface {
	At(v graph.NodeID) (bound uint32, ok bool)
}

// Result is the outcome of one query (spec §6 "QueryResult{distance,
// path, entry_times}").
type Result struct {
	Found      bool
	Arrival    uint32
	Path       []graph.EdgeID
	EntryTimes []uint32
}

// Searcher reuses its distance/predecessor scratch across queries via a
// generation counter (spec §5: "Dijkstra scratch... reused across
// queries via timestamp-based invalidation... allocation-free per-query
// amortized O(1) reset"), the same pattern elimtree.Searcher already
// applies to its own scratch arrays.
type Searcher struct {
	dist       []uint32
	gen        []uint32
	settledGen []uint32
	predNode   []graph.NodeID
	predEdge   []graph.EdgeID
	curGen     uint32
	pq         nodeHeap
}

// NewSearcher allocates scratch sized to g's node count.
func NewSearcher(g *graph.Graph) *Searcher {
	n := g.NumNodes()
	return &Searcher{
		dist:       make([]uint32, n),
		gen:        make([]uint32, n),
		settledGen: make([]uint32, n),
		predNode:   make([]graph.NodeID, n),
		predEdge:   make([]graph.EdgeID, n),
	}
}

// Query runs one potential-guided search from source to target departing
// at departure. pot must already be Init'd for (source, target,
// departure) by the caller (the potential owns its own search-side
// scratch, e.g. elimtree.Searcher, and Init is where that work happens).
// ub may be nil to skip the infeasibility check.
func (s *Searcher) Query(g *graph.Graph, profiles ProfileSource, pot potential.Potential, ub UpperBound, source, target graph.NodeID, departure uint32) (Result, error) {
	if ub != nil {
		if bound, ok := ub.At(source); ok {
			if p, pok := pot.At(source, departure); pok && p > bound {
				return Result{}, fmt.Errorf("%w: potential=%d upper_bound=%d", ErrPotentialInfeasible, p, bound)
			}
		}
	}

	s.curGen++
	s.pq = s.pq[:0]

	s.setArrival(source, departure, source, noEdge)
	heap.Push(&s.pq, nodeItem{node: source, key: s.priority(source, departure, pot)})

	for s.pq.Len() > 0 {
		top := heap.Pop(&s.pq).(nodeItem)
		u := top.node

		// Lazy-decrease-key: a node may be pushed more than once as its
		// arrival improves. Its first pop carries the minimal key, so
		// every later pop of the same node this generation is stale.
		if s.settledGen[u] == s.curGen {
			continue
		}
		s.settledGen[u] = s.curGen
		arrival := s.dist[u]

		if u == target {
			return s.extractResult(source, target, arrival), nil
		}

		lo, hi := g.Out(u)
		for e := lo; e < hi; e++ {
			v := g.Head(e)
			newArrival := arrival + profiles.Evaluate(e, arrival)
			if s.gen[v] == s.curGen && newArrival >= s.dist[v] {
				continue
			}
			p, ok := pot.At(v, newArrival)
			if !ok {
				continue
			}
			s.setArrival(v, newArrival, u, e)
			heap.Push(&s.pq, nodeItem{node: v, key: addSat(newArrival, p)})
		}
	}

	return Result{Found: false}, nil
}

func (s *Searcher) priority(v graph.NodeID, arrival uint32, pot potential.Potential) uint32 {
	p, ok := pot.At(v, arrival)
	if !ok {
		return infTime
	}
	return addSat(arrival, p)
}

func (s *Searcher) setArrival(v graph.NodeID, arrival uint32, predNode graph.NodeID, predEdge graph.EdgeID) {
	s.dist[v] = arrival
	s.gen[v] = s.curGen
	s.predNode[v] = predNode
	s.predEdge[v] = predEdge
}

func (s *Searcher) extractResult(source, target graph.NodeID, arrival uint32) Result {
	var path []graph.EdgeID
	var entryTimes []uint32
	v := target
	for v != source {
		u := s.predNode[v]
		entryTimes = append(entryTimes, s.dist[u])
		path = append(path, s.predEdge[v])
		v = u
	}
	reverseEdges(path)
	reverseTimes(entryTimes)
	return Result{Found: true, Arrival: arrival, Path: path, EntryTimes: entryTimes}
}

func reverseEdges(p []graph.EdgeID) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

func reverseTimes(t []uint32) {
	for i, j := 0, len(t)-1; i < j; i, j = i+1, j-1 {
		t[i], t[j] = t[j], t[i]
	}
}

func addSat(a, b uint32) uint32 {
	if a >= infTime || b >= infTime {
		return infTime
	}
	sum := uint64(a) + uint64(b)
	if sum >= uint64(infTime) {
		return infTime
	}
	return uint32(sum)
}

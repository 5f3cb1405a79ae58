package astar

import "github.com/katalvlaran/tdcch/graph"

// nodeItem is one priority-queue entry: a node and its
// arrival+potential key at push time (spec §4.6's ordering key).
type nodeItem struct {
	node graph.NodeID
	key  uint32
}

// nodeHeap is a container/heap.Interface min-heap of nodeItem, ordered by
// key ascending. Values, not pointers, since nodeItem is two words and
// copying it is cheaper than chasing another allocation per push.
type nodeHeap []nodeItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].key < h[j].key }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(nodeItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

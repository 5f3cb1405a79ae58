package potential

import "github.com/katalvlaran/tdcch/graph"

// Zero is the trivially admissible potential: it never lower-bounds
// anything tighter than 0, degrading A* to a plain time-dependent
// Dijkstra. Useful as a baseline for correctness tests and as the
// fallback family when no CCH customization is available for the
// requested departure.
type Zero struct{}

func (Zero) Init(_, _ graph.NodeID, _ uint32) (bool, error) { return true, nil }

func (Zero) At(graph.NodeID, uint32) (uint32, bool) { return 0, true }

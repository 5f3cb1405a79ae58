// Package customization implements CCH metric customization (C5): given a
// metric on the original graph, compute shortcut weights by lower-triangle
// relaxation, in one of three weight algebras (spec §4.3):
//
//   - ScalarCustomizer: a (lo, hi) travel-time pair per edge.
//   - IntervalMinimaCustomizer: K per-interval minima plus a scalar pair.
//   - ProfileCustomizer: an exact periodic PLF with dominated-shortcut
//     pruning via a per-edge "required" flag.
//
// All three share the same traversal: process ranks ascending, and for
// each [cch.Triangle] relax the shortcut from its two lower-triangle
// edges. Triangles whose pivot shares an elimination-tree level have no
// data dependency on each other and are relaxed concurrently (spec §4.3
// "Triangle parallelism"), bounded by a worker-pool limit mirroring the
// errgroup pattern used elsewhere in this codebase for fan-out work.
package customization

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/tdcch/cch"
)

// DefaultWorkerLimit bounds the number of triangles relaxed concurrently
// within one elimination-tree level.
const DefaultWorkerLimit = 32

// runLevels drives c's ascending-rank, level-parallel traversal, invoking
// relax for every triangle. Triangles at the same level run concurrently;
// levels themselves are strictly ordered since a later level may depend on
// an earlier one's result.
func runLevels(ctx context.Context, c *cch.CCH, workerLimit int, relax func(cch.Triangle) error) error {
	if workerLimit <= 0 {
		workerLimit = DefaultWorkerLimit
	}
	byLevel := make(map[uint32][]cch.Triangle)
	for _, tr := range c.Triangles() {
		lvl := c.Level(tr.V)
		byLevel[lvl] = append(byLevel[lvl], tr)
	}
	for lvl := uint32(0); lvl <= c.MaxLevel(); lvl++ {
		tris := byLevel[lvl]
		if len(tris) == 0 {
			continue
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workerLimit)
		for _, tr := range tris {
			tr := tr
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				return relax(tr)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

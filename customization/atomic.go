package customization

import "sync/atomic"

// atomicMinUint32 stores min(*addr, val) into *addr, safe for concurrent
// callers. Triangles sharing an elimination-tree level never touch the
// same original edge, but two distinct pivots can legitimately target the
// same shortcut (x, y) when x and y have more than one common lower
// neighbor, so shortcut slots need this.
func atomicMinUint32(addr *uint32, val uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if val >= old {
			return
		}
		if atomic.CompareAndSwapUint32(addr, old, val) {
			return
		}
	}
}

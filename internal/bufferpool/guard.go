package bufferpool

// Guard is a scoped pin: acquired by Acquire, released by exactly one call
// to Release (directly or via defer), so early returns and errors on any
// call path cannot leak a pin. A leaked pin permanently wedges its frame
// and will fail Shutdown with ErrPoolHasPinnedPages.
type Guard struct {
	pool     *Pool
	pageNum  uint32
	frame    *Frame
	released bool
}

// Acquire pins pageNum and returns a Guard wrapping it.
func Acquire(p *Pool, pageNum uint32) (*Guard, error) {
	f, err := p.Pin(pageNum)
	if err != nil {
		return nil, err
	}
	return &Guard{pool: p, pageNum: pageNum, frame: f}, nil
}

// Frame returns the pinned frame.
func (g *Guard) Frame() *Frame { return g.frame }

// Release unpins the frame, marking it dirty if dirty is true. It is safe
// to call more than once; only the first call has effect, so `defer
// g.Release(false)` followed by an explicit `g.Release(true)` on the
// success path behaves correctly.
func (g *Guard) Release(dirty bool) error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	return g.pool.Unpin(g.pageNum, dirty)
}

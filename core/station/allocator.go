package station

// allocator hands out nodes and keeps deleted ones on a free list, chained
// through their right pointer.
type allocator struct {
	free  *node
	idle  int // nodes on the free list
	live  int // nodes handed out and not yet returned
	limit int
}

func (a *allocator) get(s Station) (*node, error) {
	if a.limit > 0 && a.live >= a.limit {
		return nil, ErrAllocation
	}
	a.live++
	if a.free == nil {
		return &node{station: s}, nil
	}
	p := a.free
	a.free = p.right
	a.idle--
	p.station = s
	p.balance = 0
	p.left = nil
	p.right = nil
	return p, nil
}

func (a *allocator) put(p *node) {
	p.station = Station{}
	p.balance = 0
	p.left = nil
	p.right = a.free
	a.free = p
	a.idle++
	a.live--
}

// reset forgets live nodes and drops the free list.
func (a *allocator) reset() {
	a.free = nil
	a.idle = 0
	a.live = 0
}

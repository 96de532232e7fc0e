package station

// InsertOrMerge adds s to the tree. When a station with the same ID already
// exists its load is increased by s.Load and its capacity replaced by
// s.Capacity if that is positive; no node is created in that case.
//
// created reports whether a new station was added. On ErrAllocation the tree
// is left exactly as it was.
func (t *Tree) InsertOrMerge(s Station) (created bool, err error) {
	before := t.alloc.live
	root, _, err := t.insert(t.root, s)
	if err != nil {
		return false, err
	}
	t.root = root
	return t.alloc.live > before, nil
}

// insert returns the new subtree root and whether the subtree grew.
// Balance factors are only touched on the way back up, after the leaf has
// been allocated, so a failed allocation leaves no trace.
func (t *Tree) insert(p *node, s Station) (*node, bool, error) {
	if p == nil {
		n, err := t.alloc.get(s)
		if err != nil {
			return nil, false, err
		}
		return n, true, nil
	}
	switch {
	case s.ID < p.station.ID:
		left, grew, err := t.insert(p.left, s)
		if err != nil {
			return p, false, err
		}
		p.left = left
		if !grew {
			return p, false, nil
		}
		p, grew = grown(p, -1)
		return p, grew, nil
	case s.ID > p.station.ID:
		right, grew, err := t.insert(p.right, s)
		if err != nil {
			return p, false, err
		}
		p.right = right
		if !grew {
			return p, false, nil
		}
		p, grew = grown(p, +1)
		return p, grew, nil
	default:
		p.station.Load += s.Load
		if s.Capacity > 0 {
			p.station.Capacity = s.Capacity
		}
		return p, false, nil
	}
}

// grown applies the growth of one child (-1 left, +1 right). A rotation
// after an insertion always brings the subtree back to its former height.
func grown(p *node, delta int) (*node, bool) {
	p.balance += delta
	switch p.balance {
	case 0:
		return p, false
	case -1, 1:
		return p, true
	}
	return rebalance(p), false
}

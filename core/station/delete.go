package station

// Delete removes the station stored under id and returns it. Deleting an
// absent ID leaves the tree untouched and returns false.
func (t *Tree) Delete(id int32) (Station, bool) {
	root, removed, found, _ := t.delete(t.root, id)
	if !found {
		return Station{}, false
	}
	t.root = root
	return removed, true
}

// delete returns the new subtree root, the removed station, whether it was
// found and whether the subtree shrank.
func (t *Tree) delete(p *node, id int32) (*node, Station, bool, bool) {
	if p == nil {
		return nil, Station{}, false, false
	}
	var (
		removed Station
		found   bool
		shrunk  bool
	)
	switch {
	case id < p.station.ID:
		p.left, removed, found, shrunk = t.delete(p.left, id)
		if shrunk {
			p, shrunk = shrank(p, +1)
		}
	case id > p.station.ID:
		p.right, removed, found, shrunk = t.delete(p.right, id)
		if shrunk {
			p, shrunk = shrank(p, -1)
		}
	default:
		removed, found = p.station, true
		if p.right == nil {
			q := p.left
			t.alloc.put(p)
			return q, removed, true, true
		}
		if p.left == nil {
			q := p.right
			t.alloc.put(p)
			return q, removed, true, true
		}
		// splice out the successor first, then take over its data
		var succ *node
		p.right, succ, shrunk = removeMin(p.right)
		p.station = succ.station
		t.alloc.put(succ)
		if shrunk {
			p, shrunk = shrank(p, -1)
		}
	}
	return p, removed, found, shrunk
}

// removeMin detaches the node with the smallest ID from the non-empty
// subtree p. It returns the new subtree root, the detached node and whether
// the subtree shrank.
func removeMin(p *node) (*node, *node, bool) {
	if p.left == nil {
		q := p.right
		p.right = nil
		return q, p, true
	}
	var (
		least  *node
		shrunk bool
	)
	p.left, least, shrunk = removeMin(p.left)
	if shrunk {
		p, shrunk = shrank(p, +1)
	}
	return p, least, shrunk
}

// shrank applies the shrinking of one child (+1 left, -1 right). Unlike
// insertion, a rotation does not always absorb the change: the subtree is
// shorter exactly when its new root ends up balanced.
func shrank(p *node, delta int) (*node, bool) {
	p.balance += delta
	if p.balance >= 2 || p.balance <= -2 {
		p = rebalance(p)
	}
	return p, p.balance == 0
}

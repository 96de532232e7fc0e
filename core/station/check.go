package station

import "fmt"

// Check walks the whole tree, recomputing every height, and verifies the
// ordering of IDs, that each stored balance factor equals the recomputed one
// and lies in [-1, 1], and that the node count matches Len.
func (t *Tree) Check() error {
	n, _, err := check(t.root, nil, nil)
	if err != nil {
		return err
	}
	if n != t.Len() {
		return fmt.Errorf("%w: counted %d stations, tracked %d", ErrCorrupt, n, t.Len())
	}
	return nil
}

func check(p *node, lo, hi *int32) (count, h int, err error) {
	if p == nil {
		return 0, -1, nil
	}
	id := p.station.ID
	if lo != nil && id <= *lo {
		return 0, 0, fmt.Errorf("%w: station %d not above %d", ErrCorrupt, id, *lo)
	}
	if hi != nil && id >= *hi {
		return 0, 0, fmt.Errorf("%w: station %d not below %d", ErrCorrupt, id, *hi)
	}
	nl, hl, err := check(p.left, lo, &id)
	if err != nil {
		return 0, 0, err
	}
	nr, hr, err := check(p.right, &id, hi)
	if err != nil {
		return 0, 0, err
	}
	if want := hr - hl; p.balance != want {
		return 0, 0, fmt.Errorf("%w: station %d balance %d, heights give %d", ErrCorrupt, id, p.balance, want)
	}
	if p.balance < -1 || p.balance > 1 {
		return 0, 0, fmt.Errorf("%w: station %d out of balance (%d)", ErrCorrupt, id, p.balance)
	}
	return nl + nr + 1, 1 + max(hl, hr), nil
}

package station

import "iter"

// All yields the stations in ascending ID order. The tree must not be
// modified while the sequence is being consumed.
func (t *Tree) All() iter.Seq[Station] {
	return func(yield func(Station) bool) {
		walk(t.root, yield)
	}
}

func walk(p *node, yield func(Station) bool) bool {
	if p == nil {
		return true
	}
	return walk(p.left, yield) && yield(p.station) && walk(p.right, yield)
}

// Stations returns a copy of every station in ascending ID order.
func (t *Tree) Stations() []Station {
	out := make([]Station, 0, t.Len())
	for s := range t.All() {
		out = append(out, s)
	}
	return out
}

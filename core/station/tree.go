package station

import "errors"

var (
	// ErrAllocation is returned when no node can be obtained for a new station.
	ErrAllocation = errors.New("station: node allocation failed")
	// ErrCorrupt is wrapped by Check when an invariant does not hold.
	ErrCorrupt = errors.New("station: corrupt tree")
)

// Station is the aggregate kept for one station.
type Station struct {
	ID       int32 `json:"station_id"`
	Capacity int64 `json:"capacity"`
	Load     int64 `json:"load"`
}

type node struct {
	station Station
	balance int
	left    *node
	right   *node
}

// Tree holds the stations ordered by ID.
type Tree struct {
	root  *node
	alloc allocator
}

// Option configures a Tree.
type Option func(*Tree)

// WithMaxStations caps the number of live stations. Inserting a new station
// beyond the cap fails with ErrAllocation. Zero means no cap.
func WithMaxStations(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.alloc.limit = n
		}
	}
}

// NewTree returns an empty tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Len returns the number of stations in the tree.
func (t *Tree) Len() int { return t.alloc.live }

// IsEmpty reports whether the tree holds no station.
func (t *Tree) IsEmpty() bool { return t.root == nil }

// Height returns the height of the tree in edges, -1 for an empty tree.
func (t *Tree) Height() int { return height(t.root) }

func height(p *node) int {
	if p == nil {
		return -1
	}
	return 1 + max(height(p.left), height(p.right))
}

// Get returns the station stored under id.
func (t *Tree) Get(id int32) (Station, bool) {
	p := t.root
	for p != nil {
		switch {
		case id < p.station.ID:
			p = p.left
		case id > p.station.ID:
			p = p.right
		default:
			return p.station, true
		}
	}
	return Station{}, false
}

// Clear releases every node. Calling it on an empty tree is a no-op.
func (t *Tree) Clear() {
	release(t.root)
	t.root = nil
	t.alloc.reset()
}

// post-order unlink so no node keeps a subtree reachable
func release(p *node) {
	if p == nil {
		return
	}
	release(p.left)
	release(p.right)
	p.left = nil
	p.right = nil
}

// Package station keeps per-station aggregates in an AVL tree keyed by the
// station identifier.
//
// Every node carries a balance factor (height of the right subtree minus
// height of the left one). Insert and delete walk down recursively and
// return the new subtree root together with a flag telling the parent whether
// the subtree height changed; rotations correct the balance factors of the
// nodes they move in constant time.
//
// A Tree is not safe for concurrent use. Callers sharing one tree between
// goroutines must serialize access themselves.
package station

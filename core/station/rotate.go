package station

// Rotations relink the three nodes involved and derive the new balance
// factors from the old ones:
//
//	left:  a' = a - 1 - max(p, 0)   p' = p - 1 + min(a', 0)
//	right: a' = a + 1 - min(p, 0)   p' = p + 1 + max(a', 0)
//
// where a is the rotated node and p the pivot promoted in its place. The
// formulas hold for any starting balance, including the ±2 produced halfway
// through a double rotation.

func rotateLeft(a *node) *node {
	p := a.right
	a.right = p.left
	p.left = a
	a.balance = a.balance - 1 - max(p.balance, 0)
	p.balance = p.balance - 1 + min(a.balance, 0)
	return p
}

func rotateRight(a *node) *node {
	p := a.left
	a.left = p.right
	p.right = a
	a.balance = a.balance + 1 - min(p.balance, 0)
	p.balance = p.balance + 1 + max(a.balance, 0)
	return p
}

// right-heavy node whose right child leans left
func doubleRotateLeft(a *node) *node {
	a.right = rotateRight(a.right)
	return rotateLeft(a)
}

// left-heavy node whose left child leans right
func doubleRotateRight(a *node) *node {
	a.left = rotateLeft(a.left)
	return rotateRight(a)
}

// rebalance restores a node whose balance reached ±2 and returns the new
// subtree root. Other nodes are returned unchanged.
func rebalance(p *node) *node {
	switch {
	case p.balance >= 2:
		if p.right.balance >= 0 {
			return rotateLeft(p)
		}
		return doubleRotateLeft(p)
	case p.balance <= -2:
		if p.left.balance <= 0 {
			return rotateRight(p)
		}
		return doubleRotateRight(p)
	}
	return p
}

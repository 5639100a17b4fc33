// Package index holds the in-memory index: a map from key to on-disk
// coordinates (and optionally the cached value), ordered by insertion so
// iteration matches the order keys were first set.
//
// The ordering structure is a red-black tree keyed by a monotonically
// increasing insertion sequence number, paired with a hash map from string
// key to tree node for O(1) has/get/delete. This mirrors the shape the
// teacher's own store combines (a hash map plus an ordered tree), just with
// the tree's sort key swapped from a synthetic record key to insertion
// order.
package index

import "github.com/jkasperson/blockkv/internal/kvvalue"

type color bool

const (
	black, red color = true, false
)

// Entry holds a live key's on-disk coordinates and, depending on the
// store's caching mode, either its materialized value or the sub-offset
// and length needed to read it back from the block.
type Entry struct {
	Offset int64
	Size   uint64

	Cached bool
	Value  kvvalue.Value

	ValueOffset int64
	ValueLen    int
}

// node is a tree element: ordered by seq, carrying the live key/entry pair.
type node struct {
	seq   uint64
	key   string
	entry Entry

	color  color
	left   *node
	right  *node
	parent *node
}

type tree struct {
	root *node
	size int
}

func (t *tree) insert(n *node) {
	if t.root == nil {
		n.color = black
		t.root = n
		t.size++
		return
	}

	cur := t.root
	for {
		switch {
		case n.seq < cur.seq:
			if cur.left == nil {
				cur.left = n
				n.parent = cur
				t.insertCase1(n)
				t.size++
				return
			}
			cur = cur.left
		case n.seq > cur.seq:
			if cur.right == nil {
				cur.right = n
				n.parent = cur
				t.insertCase1(n)
				t.size++
				return
			}
			cur = cur.right
		default:
			// seq collision is a programmer error: sequence numbers are
			// assigned once per insert and never reused.
			panic("index: duplicate sequence number")
		}
	}
}

// remove unlinks n from the tree. When n has two children, its content is
// swapped with its in-order predecessor and that predecessor's node object
// is the one actually unlinked; in that case remove returns the node whose
// identity now holds a different key (movedNode) and the key it holds
// (movedKey), so the caller's key->node map can be repointed at it. The
// caller must not read n's fields after calling remove: if a swap
// happened, n's content has already changed to movedKey's old data.
func (t *tree) remove(n *node) (movedNode *node, movedKey string) {
	if n.left != nil && n.right != nil {
		replacement := maximumNode(n.left)
		movedNode, movedKey = n, replacement.key
		n.seq, replacement.seq = replacement.seq, n.seq
		n.key, replacement.key = replacement.key, n.key
		n.entry, replacement.entry = replacement.entry, n.entry
		n = replacement
	}

	var child *node
	if n.left == nil || n.right == nil {
		if n.right == nil {
			child = n.left
		} else {
			child = n.right
		}
		if n.color == black {
			n.color = nodeColor(child)
			t.deleteCase1(n)
		}
		t.replaceNode(n, child)
		if n.parent == nil && child != nil {
			child.color = black
		}
	}

	t.size--
	return movedNode, movedKey
}

func (t *tree) clear() {
	t.root = nil
	t.size = 0
}

func minimumNode(n *node) *node {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func maximumNode(n *node) *node {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

func nodeColor(n *node) color {
	if n == nil {
		return black
	}
	return n.color
}

func (n *node) grandparent() *node {
	if n != nil && n.parent != nil {
		return n.parent.parent
	}
	return nil
}

func (n *node) sibling() *node {
	if n == nil || n.parent == nil {
		return nil
	}
	if n == n.parent.left {
		return n.parent.right
	}
	return n.parent.left
}

func (n *node) uncle() *node {
	if n == nil || n.parent == nil || n.parent.parent == nil {
		return nil
	}
	return n.parent.sibling()
}

func (t *tree) rotateLeft(n *node) {
	right := n.right
	t.replaceNode(n, right)
	n.right = right.left
	if right.left != nil {
		right.left.parent = n
	}
	right.left = n
	n.parent = right
}

func (t *tree) rotateRight(n *node) {
	left := n.left
	t.replaceNode(n, left)
	n.left = left.right
	if left.right != nil {
		left.right.parent = n
	}
	left.right = n
	n.parent = left
}

func (t *tree) replaceNode(old, new *node) {
	if old.parent == nil {
		t.root = new
	} else if old == old.parent.left {
		old.parent.left = new
	} else {
		old.parent.right = new
	}
	if new != nil {
		new.parent = old.parent
	}
}

func (t *tree) insertCase1(n *node) {
	if n.parent == nil {
		n.color = black
	} else {
		t.insertCase2(n)
	}
}

func (t *tree) insertCase2(n *node) {
	if nodeColor(n.parent) == black {
		return
	}
	t.insertCase3(n)
}

func (t *tree) insertCase3(n *node) {
	uncle := n.uncle()
	if nodeColor(uncle) == red {
		n.parent.color = black
		uncle.color = black
		n.grandparent().color = red
		t.insertCase1(n.grandparent())
	} else {
		t.insertCase4(n)
	}
}

func (t *tree) insertCase4(n *node) {
	grandparent := n.grandparent()
	if n == n.parent.right && n.parent == grandparent.left {
		t.rotateLeft(n.parent)
		n = n.left
	} else if n == n.parent.left && n.parent == grandparent.right {
		t.rotateRight(n.parent)
		n = n.right
	}
	t.insertCase5(n)
}

func (t *tree) insertCase5(n *node) {
	n.parent.color = black
	grandparent := n.grandparent()
	grandparent.color = red
	if n == n.parent.left && n.parent == grandparent.left {
		t.rotateRight(grandparent)
	} else if n == n.parent.right && n.parent == grandparent.right {
		t.rotateLeft(grandparent)
	}
}

func (t *tree) deleteCase1(n *node) {
	if n.parent == nil {
		return
	}
	t.deleteCase2(n)
}

func (t *tree) deleteCase2(n *node) {
	sibling := n.sibling()
	if nodeColor(sibling) == red {
		n.parent.color = red
		sibling.color = black
		if n == n.parent.left {
			t.rotateLeft(n.parent)
		} else {
			t.rotateRight(n.parent)
		}
	}
	t.deleteCase3(n)
}

func (t *tree) deleteCase3(n *node) {
	sibling := n.sibling()
	if nodeColor(n.parent) == black && nodeColor(sibling) == black &&
		nodeColor(sibling.left) == black && nodeColor(sibling.right) == black {
		sibling.color = red
		t.deleteCase1(n.parent)
	} else {
		t.deleteCase4(n)
	}
}

func (t *tree) deleteCase4(n *node) {
	sibling := n.sibling()
	if nodeColor(n.parent) == red && nodeColor(sibling) == black &&
		nodeColor(sibling.left) == black && nodeColor(sibling.right) == black {
		sibling.color = red
		n.parent.color = black
	} else {
		t.deleteCase5(n)
	}
}

func (t *tree) deleteCase5(n *node) {
	sibling := n.sibling()
	if n == n.parent.left && nodeColor(sibling) == black &&
		nodeColor(sibling.left) == red && nodeColor(sibling.right) == black {
		sibling.color = red
		sibling.left.color = black
		t.rotateRight(sibling)
	} else if n == n.parent.right && nodeColor(sibling) == black &&
		nodeColor(sibling.right) == red && nodeColor(sibling.left) == black {
		sibling.color = red
		sibling.right.color = black
		t.rotateLeft(sibling)
	}
	t.deleteCase6(n)
}

func (t *tree) deleteCase6(n *node) {
	sibling := n.sibling()
	sibling.color = nodeColor(n.parent)
	n.parent.color = black
	if n == n.parent.left && nodeColor(sibling.right) == red {
		sibling.right.color = black
		t.rotateLeft(n.parent)
	} else if nodeColor(sibling.left) == red {
		sibling.left.color = black
		t.rotateRight(n.parent)
	}
}

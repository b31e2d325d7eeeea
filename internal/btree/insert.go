package btree

import (
	"sort"

	"github.com/relstore/engine/internal/record"
)

// InsertKey inserts key → rid. An already-present key is a no-op: the
// original rid is preserved.
func (t *Tree) InsertKey(key int32, rid record.RID) error {
	leaf := t.descendToLeaf(key)
	for _, k := range leaf.keys {
		if k == key {
			return nil
		}
	}

	if leaf.numKeys() < t.order {
		pos := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] >= key })
		leaf.keys = append(leaf.keys, 0)
		copy(leaf.keys[pos+1:], leaf.keys[pos:])
		leaf.keys[pos] = key
		leaf.rids = append(leaf.rids, record.RID{})
		copy(leaf.rids[pos+1:], leaf.rids[pos:])
		leaf.rids[pos] = rid
		t.entries++
		return nil
	}

	t.splitLeaf(leaf, key, rid)
	t.entries++
	return nil
}

// splitLeaf implements the spec's overflow procedure: merge the new entry
// into a temp sorted array, split at splitPos, link the new leaf into the
// chain, and propagate the new leaf's first key up to the parent.
func (t *Tree) splitLeaf(old *node, key int32, rid record.RID) {
	order := t.order
	tempKeys := make([]int32, 0, order+1)
	tempRids := make([]record.RID, 0, order+1)
	inserted := false
	for i, k := range old.keys {
		if !inserted && key < k {
			tempKeys = append(tempKeys, key)
			tempRids = append(tempRids, rid)
			inserted = true
		}
		tempKeys = append(tempKeys, k)
		tempRids = append(tempRids, old.rids[i])
	}
	if !inserted {
		tempKeys = append(tempKeys, key)
		tempRids = append(tempRids, rid)
	}

	pos := splitPos(order)
	newLeafID := t.newLeaf()
	newLeafNode := t.nodes[newLeafID]

	old.keys = append([]int32{}, tempKeys[:pos]...)
	old.rids = append([]record.RID{}, tempRids[:pos]...)
	newLeafNode.keys = append([]int32{}, tempKeys[pos:]...)
	newLeafNode.rids = append([]record.RID{}, tempRids[pos:]...)

	newLeafNode.next = old.next
	old.next = newLeafNode.id

	t.insertParent(old, newLeafNode, newLeafNode.keys[0])
}

// insertParent installs new as a sibling of old, under their shared parent,
// separated by sepKey. If old has no parent, a new root is allocated. If
// the parent overflows as a result, it is split by the same procedure,
// promoting its median key.
func (t *Tree) insertParent(old, newNode *node, sepKey int32) {
	if old.parent == noParent {
		rootID := t.newInternal()
		root := t.nodes[rootID]
		root.children = []NodeID{old.id, newNode.id}
		root.keys = []int32{sepKey}
		old.parent = rootID
		newNode.parent = rootID
		t.root = rootID
		return
	}

	parent := t.nodes[old.parent]
	idx := childIndex(parent, old.id)

	parent.children = append(parent.children, noParent)
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = newNode.id

	parent.keys = append(parent.keys, 0)
	copy(parent.keys[idx+1:], parent.keys[idx:])
	parent.keys[idx] = sepKey

	newNode.parent = old.parent

	if parent.numKeys() == t.order {
		t.splitInternal(parent)
	}
}

// splitInternal splits an overflowing internal node: the key at order/2 is
// promoted (removed from both halves, not copied), the keys and children
// right of it move to a new right node whose children are reparented. With
// an odd order both halves keep the same number of keys; with an even
// order the left half keeps one key more than the right.
func (t *Tree) splitInternal(n *node) {
	order := t.order
	medianIdx := order / 2
	promoted := n.keys[medianIdx]

	rightKeys := append([]int32{}, n.keys[medianIdx+1:]...)
	rightChildren := append([]NodeID{}, n.children[medianIdx+1:]...)

	n.keys = append([]int32{}, n.keys[:medianIdx]...)
	n.children = append([]NodeID{}, n.children[:medianIdx+1]...)

	newRightID := t.newInternal()
	newRight := t.nodes[newRightID]
	newRight.keys = rightKeys
	newRight.children = rightChildren
	for _, c := range rightChildren {
		t.nodes[c].parent = newRightID
	}

	t.insertParent(n, newRight, promoted)
}

func childIndex(parent *node, child NodeID) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	return -1
}

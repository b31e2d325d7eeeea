package btree

import "github.com/relstore/engine/internal/record"

// DeleteKey removes key from the tree. ErrKeyNotFound if it is absent.
func (t *Tree) DeleteKey(key int32) error {
	leaf := t.descendToLeaf(key)
	idx := -1
	for i, k := range leaf.keys {
		if k == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrKeyNotFound
	}

	wasFirst := idx == 0
	leaf.keys = append(leaf.keys[:idx], leaf.keys[idx+1:]...)
	leaf.rids = append(leaf.rids[:idx], leaf.rids[idx+1:]...)
	t.entries--

	if wasFirst && len(leaf.keys) > 0 {
		t.fixSeparators(leaf, key, leaf.keys[0])
	}

	if leaf.parent != noParent && leaf.numKeys() < underflowThreshold(t.order) {
		t.fixLeafUnderflow(leaf)
	}

	t.collapseRootIfNeeded()
	return nil
}

// fixSeparators walks up the parent chain from n, replacing any separator
// key equal to oldKey with newKey. Triggered when a deleted key was the
// first key of its leaf.
func (t *Tree) fixSeparators(n *node, oldKey, newKey int32) {
	cur := n
	for cur.parent != noParent {
		parent := t.nodes[cur.parent]
		for i := range parent.keys {
			if parent.keys[i] == oldKey {
				parent.keys[i] = newKey
			}
		}
		cur = parent
	}
}

// fixLeafUnderflow applies the spec's two remedies in order: redistribute
// from the left sibling if it can spare an entry, else merge with it. A
// leaf with no left sibling (it is its parent's first child) is left
// underfull; the source only documents a left-sibling remedy.
func (t *Tree) fixLeafUnderflow(leaf *node) {
	parent := t.nodes[leaf.parent]
	idx := childIndex(parent, leaf.id)
	if idx == 0 {
		return
	}
	left := t.nodes[parent.children[idx-1]]
	threshold := underflowThreshold(t.order)

	if left.numKeys() > threshold && left.numKeys() < t.order {
		last := left.numKeys() - 1
		movedKey, movedRid := left.keys[last], left.rids[last]
		left.keys = left.keys[:last]
		left.rids = left.rids[:last]

		leaf.keys = append([]int32{movedKey}, leaf.keys...)
		leaf.rids = append([]record.RID{movedRid}, leaf.rids...)
		parent.keys[idx-1] = leaf.keys[0]
		return
	}

	left.keys = append(left.keys, leaf.keys...)
	left.rids = append(left.rids, leaf.rids...)
	left.next = leaf.next
	delete(t.nodes, leaf.id)

	parent.keys = append(parent.keys[:idx-1], parent.keys[idx:]...)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	t.fixInternalUnderflow(parent)
}

// fixInternalUnderflow mirrors fixLeafUnderflow for an internal node that
// lost a child to a merge: merge with its own left sibling (promoting the
// separator key down into the merged node) if it is now underfull,
// recursing toward the root.
func (t *Tree) fixInternalUnderflow(n *node) {
	if n.parent == noParent {
		return
	}
	if n.numKeys() >= underflowThreshold(t.order) {
		return
	}

	parent := t.nodes[n.parent]
	idx := childIndex(parent, n.id)
	if idx == 0 {
		return
	}
	left := t.nodes[parent.children[idx-1]]
	sep := parent.keys[idx-1]

	left.keys = append(left.keys, sep)
	left.keys = append(left.keys, n.keys...)
	left.children = append(left.children, n.children...)
	for _, c := range n.children {
		t.nodes[c].parent = left.id
	}
	delete(t.nodes, n.id)

	parent.keys = append(parent.keys[:idx-1], parent.keys[idx:]...)
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	t.fixInternalUnderflow(parent)
}

// collapseRootIfNeeded replaces an internal root that has been whittled
// down to a single child with that child, shortening the tree by one
// level.
func (t *Tree) collapseRootIfNeeded() {
	root := t.nodes[t.root]
	if !root.isLeaf() && root.numKeys() == 0 && len(root.children) == 1 {
		only := root.children[0]
		t.nodes[only].parent = noParent
		delete(t.nodes, root.id)
		t.root = only
	}
}

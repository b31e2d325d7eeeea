package btree

import "github.com/relstore/engine/internal/record"

// NodeID is an arena index. Modeling the node graph as a map keyed by
// NodeID (rather than live pointers) turns the parent/child cycle into
// plain integer references, so nothing here needs a weak pointer.
type NodeID int

// noParent marks a node with no parent (the root).
const noParent NodeID = -1

// nodeKind discriminates a node's payload: LEAF owns keys/rids/next,
// INTERNAL owns keys/children. newLeaf creates LEAF nodes; newInternal
// creates INTERNAL nodes during parent propagation, at the point they are
// given children. A node's kind never changes after creation.
type nodeKind int

const (
	leafKind nodeKind = iota
	internalKind
)

type node struct {
	id     NodeID
	kind   nodeKind
	parent NodeID

	keys []int32

	// leaf-only
	rids []record.RID
	next NodeID // next leaf in chain, noParent if none

	// internal-only
	children []NodeID
}

func (n *node) numKeys() int { return len(n.keys) }

func (n *node) isLeaf() bool { return n.kind == leafKind }

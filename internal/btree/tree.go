// Package btree implements an in-memory B+-tree index over integer keys,
// mapping each to a record identifier. The node graph (parent/child links,
// the leaf chain) lives entirely in memory; only a small header page
// persists across a close/reopen, by design (see Tree's doc comment).
package btree

import (
	"log/slog"
	"math"

	"github.com/relstore/engine/internal/bufferpool"
	"github.com/relstore/engine/internal/pagefile"
	"github.com/relstore/engine/internal/record"
)

const headerPoolCapacity = 2

// Tree is an open B+-tree index handle. Its node graph is purely in-memory
// and owned by the handle; closing and reopening the same backing file
// leaves the header's historical counters on disk but starts with a fresh,
// empty root. Only currentBlock is read back into the handle, so
// GetNumEntries counts just the entries inserted since the reopen, and
// CloseBtree rewrites the header with those counts. That asymmetry is
// intentional, not a bug: see DESIGN.md.
type Tree struct {
	name  string
	order int

	pool *bufferpool.Pool
	file pagefile.File

	root    NodeID
	nodes   map[NodeID]*node
	nextID  NodeID
	entries int

	currentBlock uint32
}

// underflowThreshold is ceil(order/2), the minimum key count a non-root
// leaf must hold before it is considered underfull.
func underflowThreshold(order int) int {
	return int(math.Ceil(float64(order) / 2))
}

// splitPos is 1 + ceil(order/2): the number of entries the left half of a
// split keeps.
func splitPos(order int) int {
	return 1 + underflowThreshold(order)
}

// CreateBtree creates a fresh, empty index file. keyType is always
// KeyTypeInt; the parameter exists because the on-disk header reserves a
// tag field for a future wider key type.
func CreateBtree(name string, keyType KeyType, order int) error {
	if order < 2 {
		return ErrInvalidOrder
	}
	if err := pagefile.Create(name, pagefile.DefaultPageSize); err != nil {
		return ErrCreateTreeFailed
	}
	f, err := pagefile.Open(name, pagefile.DefaultPageSize)
	if err != nil {
		return ErrCreateTreeFailed
	}
	defer f.Close()

	h := indexHeader{
		currentBlock: 1,
		nodeCount:    1,
		numEntries:   0,
		rootKey:      0,
		rootBlock:    0,
		order:        uint32(order),
		keyType:      keyType,
	}
	buf := make([]byte, pagefile.DefaultPageSize)
	copy(buf, encodeHeader(h))
	if err := f.WriteBlock(0, buf); err != nil {
		return ErrCreateTreeFailed
	}
	return nil
}

// OpenBtree opens an existing index file and boots an in-memory root leaf.
// Nodes are not persisted, so the reopened tree is empty even when the
// header on disk still reports entries from an earlier session.
func OpenBtree(name string) (*Tree, error) {
	file, err := pagefile.Open(name, pagefile.DefaultPageSize)
	if err != nil {
		return nil, ErrTreeNotFound
	}

	pool, err := bufferpool.Init(file, headerPoolCapacity, bufferpool.FIFO)
	if err != nil {
		file.Close()
		return nil, err
	}

	frame, err := pool.Pin(0)
	if err != nil {
		file.Close()
		return nil, err
	}
	h := decodeHeader(frame.Bytes())
	if err := pool.Unpin(0, false); err != nil {
		file.Close()
		return nil, err
	}

	t := &Tree{
		name:         name,
		order:        int(h.order),
		pool:         pool,
		file:         file,
		nodes:        make(map[NodeID]*node),
		currentBlock: h.currentBlock,
	}
	t.root = t.newLeaf()
	slog.Debug("btree: open", "name", name, "order", t.order, "historicalEntries", h.numEntries)
	return t, nil
}

// CloseBtree rewrites the header with the tree's current counters and
// shuts its buffer pool down. Individual nodes are discarded, not
// persisted.
func (t *Tree) CloseBtree() error {
	frame, err := t.pool.Pin(0)
	if err != nil {
		return err
	}
	h := indexHeader{
		currentBlock: t.currentBlock,
		nodeCount:    uint32(len(t.nodes)),
		numEntries:   uint32(t.entries),
		rootKey:      0,
		rootBlock:    uint32(t.root),
		order:        uint32(t.order),
		keyType:      KeyTypeInt,
	}
	copy(frame.Bytes(), encodeHeader(h))
	if err := t.pool.Unpin(0, true); err != nil {
		return err
	}
	if err := bufferpool.FlushAll(t.pool); err != nil {
		return err
	}
	if err := bufferpool.Shutdown(t.pool); err != nil {
		return err
	}
	return t.file.Close()
}

// DeleteBtree removes an index's backing file entirely.
func DeleteBtree(name string) error {
	return pagefile.Destroy(name)
}

// GetNumNodes returns the number of live in-memory nodes.
func (t *Tree) GetNumNodes() int { return len(t.nodes) }

// GetNumEntries returns the number of keys stored in the tree.
func (t *Tree) GetNumEntries() int { return t.entries }

// GetKeyType is always KeyTypeInt for this implementation.
func (t *Tree) GetKeyType() KeyType { return KeyTypeInt }

func (t *Tree) newLeaf() NodeID {
	id := t.nextID
	t.nextID++
	t.currentBlock++
	t.nodes[id] = &node{id: id, kind: leafKind, parent: noParent, next: noParent}
	return id
}

func (t *Tree) newInternal() NodeID {
	id := t.nextID
	t.nextID++
	t.currentBlock++
	t.nodes[id] = &node{id: id, kind: internalKind, parent: noParent}
	return id
}

// descendToLeaf walks from the root to the leaf that would hold key: at
// each internal node, the first child i with key < keys[i] is taken;
// otherwise the last child. Equal keys therefore always land to the
// right of a separator.
func (t *Tree) descendToLeaf(key int32) *node {
	n := t.nodes[t.root]
	for !n.isLeaf() {
		i := 0
		for i < n.numKeys() && key >= n.keys[i] {
			i++
		}
		n = t.nodes[n.children[i]]
	}
	return n
}

// FindKey returns the record identifier stored for key, or ErrKeyNotFound.
func (t *Tree) FindKey(key int32) (record.RID, error) {
	leaf := t.descendToLeaf(key)
	for i, k := range leaf.keys {
		if k == key {
			return leaf.rids[i], nil
		}
	}
	return record.RID{}, ErrKeyNotFound
}

func (t *Tree) leftmostLeaf() *node {
	n := t.nodes[t.root]
	for !n.isLeaf() {
		n = t.nodes[n.children[0]]
	}
	return n
}

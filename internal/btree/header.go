package btree

import "github.com/relstore/engine/internal/alias/bx"

// KeyType names the on-disk key encoding. This implementation only ever
// stores INT, but the header reserves a tag field so a future key type can
// widen without a format break.
type KeyType uint32

const KeyTypeInt KeyType = 0

// headerSize is currentBlock|nodeCount|numEntries|rootKey|rootBlock|order,
// each a little-endian uint32, per the index header's bit-exact layout.
const headerSize = 4 * 6

type indexHeader struct {
	currentBlock uint32
	nodeCount    uint32
	numEntries   uint32
	rootKey      uint32
	rootBlock    uint32
	order        uint32
	keyType      KeyType
}

func encodeHeader(h indexHeader) []byte {
	buf := make([]byte, headerSize+4)
	bx.PutU32At(buf, 0, h.currentBlock)
	bx.PutU32At(buf, 4, h.nodeCount)
	bx.PutU32At(buf, 8, h.numEntries)
	bx.PutU32At(buf, 12, h.rootKey)
	bx.PutU32At(buf, 16, h.rootBlock)
	bx.PutU32At(buf, 20, h.order)
	bx.PutU32At(buf, 24, uint32(h.keyType))
	return buf
}

func decodeHeader(buf []byte) indexHeader {
	return indexHeader{
		currentBlock: bx.U32At(buf, 0),
		nodeCount:    bx.U32At(buf, 4),
		numEntries:   bx.U32At(buf, 8),
		rootKey:      bx.U32At(buf, 12),
		rootBlock:    bx.U32At(buf, 16),
		order:        bx.U32At(buf, 20),
		keyType:      KeyType(bx.U32At(buf, 24)),
	}
}

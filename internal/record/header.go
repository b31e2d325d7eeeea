package record

import "github.com/relstore/engine/internal/alias/bx"

// headerFixedSize is numTuples|numPages|freePage|numAttr|keySize, each a
// little-endian uint32, per the spec's bit-exact table header layout.
const headerFixedSize = 4 * 5

type tableHeader struct {
	numTuples uint32
	numPages  uint32
	freePage  uint32
	numAttr   uint32
	keySize   uint32 // fixed record width (status byte included)
	schema    Schema
}

func encodeHeader(h tableHeader) []byte {
	buf := make([]byte, headerFixedSize+h.schema.EncodedSize())
	bx.PutU32At(buf, 0, h.numTuples)
	bx.PutU32At(buf, 4, h.numPages)
	bx.PutU32At(buf, 8, h.freePage)
	bx.PutU32At(buf, 12, h.numAttr)
	bx.PutU32At(buf, 16, h.keySize)
	copy(buf[headerFixedSize:], h.schema.Encode())
	return buf
}

func decodeHeader(buf []byte) (tableHeader, error) {
	h := tableHeader{
		numTuples: bx.U32At(buf, 0),
		numPages:  bx.U32At(buf, 4),
		freePage:  bx.U32At(buf, 8),
		numAttr:   bx.U32At(buf, 12),
		keySize:   bx.U32At(buf, 16),
	}
	schema, err := DecodeSchema(buf[headerFixedSize:], int(h.numAttr))
	if err != nil {
		return tableHeader{}, err
	}
	h.schema = schema
	return h, nil
}

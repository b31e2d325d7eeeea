// stand for bytes helper
package bx

import "encoding/binary"

var LE = binary.LittleEndian

// --- LE: read/write ---
func U32(b []byte) uint32       { return LE.Uint32(b) }
func PutU32(b []byte, v uint32) { LE.PutUint32(b, v) }

// --- LE: At (offset) ---
func U32At(b []byte, off int) uint32       { return U32(b[off:]) }
func PutU32At(b []byte, off int, v uint32) { PutU32(b[off:], v) }

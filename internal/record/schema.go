package record

import (
	"fmt"

	"github.com/relstore/engine/internal/alias/bx"
)

// AttrType is one of the four value types a column can hold.
type AttrType uint32

const (
	TypeInt AttrType = iota
	TypeFloat
	TypeBool
	TypeString
)

func (t AttrType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Attribute is one ordered schema column: a name, a type, and (for STRING
// only) a fixed on-disk length.
type Attribute struct {
	Name   string
	Type   AttrType
	Length int // meaningful only when Type == TypeString
}

// Width returns the fixed number of bytes this attribute occupies in a
// record body.
func (a Attribute) Width() int {
	switch a.Type {
	case TypeInt, TypeFloat:
		return 4
	case TypeBool:
		return 1
	case TypeString:
		return a.Length
	default:
		return 0
	}
}

// nameFieldWidth is the fixed width of the on-disk attribute name field.
const nameFieldWidth = 10

// attrHeaderWidth is name(10) + dataType(4) + typeLength(4).
const attrHeaderWidth = nameFieldWidth + 4 + 4

// Schema is an ordered list of attributes.
type Schema struct {
	Attrs []Attribute
}

// RecordSize is the fixed total record width: one status byte plus the sum
// of every attribute's width.
func (s Schema) RecordSize() int {
	total := 1
	for _, a := range s.Attrs {
		total += a.Width()
	}
	return total
}

// EncodedSize is the number of bytes Schema.Encode produces.
func (s Schema) EncodedSize() int {
	return len(s.Attrs) * attrHeaderWidth
}

// Encode serializes the schema in the page-0 on-disk layout: per
// attribute, a 10-byte truncated/padded name, a 4-byte type tag and a
// 4-byte length.
func (s Schema) Encode() []byte {
	buf := make([]byte, s.EncodedSize())
	for i, a := range s.Attrs {
		off := i * attrHeaderWidth
		nameBytes := []byte(a.Name)
		if len(nameBytes) > nameFieldWidth {
			nameBytes = nameBytes[:nameFieldWidth]
		}
		copy(buf[off:off+nameFieldWidth], nameBytes)
		bx.PutU32At(buf, off+nameFieldWidth, uint32(a.Type))
		bx.PutU32At(buf, off+nameFieldWidth+4, uint32(a.Length))
	}
	return buf
}

// DecodeSchema parses numAttr attributes from buf, in the layout Encode
// produces.
func DecodeSchema(buf []byte, numAttr int) (Schema, error) {
	need := numAttr * attrHeaderWidth
	if len(buf) < need {
		return Schema{}, fmt.Errorf("record: schema buffer too small: have %d need %d", len(buf), need)
	}
	attrs := make([]Attribute, numAttr)
	for i := 0; i < numAttr; i++ {
		off := i * attrHeaderWidth
		nameRaw := buf[off : off+nameFieldWidth]
		end := len(nameRaw)
		for end > 0 && nameRaw[end-1] == 0 {
			end--
		}
		attrs[i] = Attribute{
			Name:   string(nameRaw[:end]),
			Type:   AttrType(bx.U32At(buf, off+nameFieldWidth)),
			Length: int(bx.U32At(buf, off+nameFieldWidth+4)),
		}
	}
	return Schema{Attrs: attrs}, nil
}

// AttrIndex returns the position of name in the schema, or -1.
func (s Schema) AttrIndex(name string) int {
	for i, a := range s.Attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

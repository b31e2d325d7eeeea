package record

import (
	"errors"
	"fmt"
	"math"

	"github.com/relstore/engine/internal/alias/bx"
)

// Status byte values for a slot.
const (
	StatusLive      byte = '*'
	StatusTombstone byte = '+'
	// Any other byte value (including the zero byte of a never-written
	// slot) means the slot has never held a record.
)

var (
	ErrAttrCountMismatch = errors.New("record: value count does not match schema")
	ErrUnsupportedType   = errors.New("record: unsupported attribute type")
	ErrStringTooLong     = errors.New("record: string value exceeds column length")
)

// RID identifies a record by (page, slot).
type RID struct {
	Page uint32
	Slot uint32
}

func (r RID) String() string { return fmt.Sprintf("(%d,%d)", r.Page, r.Slot) }

// Record is one tuple: an identity plus its schema-ordered values. Values
// hold int32, float32, bool or string depending on the schema's attribute
// types, in schema order.
type Record struct {
	ID     RID
	Values []any
}

// EncodeBody packs values into a schema-ordered, fixed-width byte string
// (the record body, i.e. everything after the status byte).
func EncodeBody(schema Schema, values []any) ([]byte, error) {
	if len(values) != len(schema.Attrs) {
		return nil, ErrAttrCountMismatch
	}
	body := make([]byte, schema.RecordSize()-1)
	off := 0
	for i, a := range schema.Attrs {
		w := a.Width()
		if err := encodeAttr(body[off:off+w], a, values[i]); err != nil {
			return nil, err
		}
		off += w
	}
	return body, nil
}

func encodeAttr(dst []byte, a Attribute, v any) error {
	switch a.Type {
	case TypeInt:
		iv, err := toInt32(v)
		if err != nil {
			return err
		}
		bx.PutU32(dst, uint32(iv))
		return nil
	case TypeFloat:
		fv, err := toFloat32(v)
		if err != nil {
			return err
		}
		bx.PutU32(dst, math.Float32bits(fv))
		return nil
	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("record: attribute %q: expected bool, got %T", a.Name, v)
		}
		if b {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
		return nil
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("record: attribute %q: expected string, got %T", a.Name, v)
		}
		if len(s) > a.Length {
			return fmt.Errorf("%w: attribute %q (%d > %d)", ErrStringTooLong, a.Name, len(s), a.Length)
		}
		for i := range dst {
			dst[i] = 0
		}
		copy(dst, s)
		return nil
	default:
		return ErrUnsupportedType
	}
}

// DecodeBody unpacks a fixed-width record body into schema-ordered values.
func DecodeBody(schema Schema, body []byte) ([]any, error) {
	if len(body) != schema.RecordSize()-1 {
		return nil, fmt.Errorf("record: body size %d != expected %d", len(body), schema.RecordSize()-1)
	}
	values := make([]any, len(schema.Attrs))
	off := 0
	for i, a := range schema.Attrs {
		w := a.Width()
		v, err := decodeAttr(body[off:off+w], a)
		if err != nil {
			return nil, err
		}
		values[i] = v
		off += w
	}
	return values, nil
}

func decodeAttr(src []byte, a Attribute) (any, error) {
	switch a.Type {
	case TypeInt:
		return int32(bx.U32(src)), nil
	case TypeFloat:
		return math.Float32frombits(bx.U32(src)), nil
	case TypeBool:
		return src[0] != 0, nil
	case TypeString:
		end := len(src)
		for end > 0 && src[end-1] == 0 {
			end--
		}
		return string(src[:end]), nil
	default:
		return nil, ErrUnsupportedType
	}
}

func toInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	case int64:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("record: expected int, got %T", v)
	}
}

func toFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("record: expected float, got %T", v)
	}
}

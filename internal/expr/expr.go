// Package expr is the expression-tree collaborator: a small predicate
// language evaluated over a (record, schema) pair, yielding a
// boolean-valued result. The scan iterator in internal/record is its sole
// consumer.
package expr

import (
	"errors"
	"fmt"

	"github.com/relstore/engine/internal/record"
)

var (
	ErrNoSuchAttribute = errors.New("expr: no such attribute")
	ErrTypeMismatch    = errors.New("expr: operand type mismatch")
	ErrNotBoolean      = errors.New("expr: expression did not evaluate to a boolean")
)

// Node is one node of a predicate expression tree. Const holds a literal
// value, AttrRef refers to a column of the record being evaluated by
// index, and Op applies an operator to its evaluated arguments. Eval is
// pure: it only ever returns a value, it never mutates a shared "result"
// location.
type Node interface {
	exprNode()
}

// Const is a literal value: int32, float32, bool or string.
type Const struct {
	Val any
}

func (*Const) exprNode() {}

// AttrRef refers to the attribute at Index in the schema the predicate is
// evaluated against.
type AttrRef struct {
	Index int
}

func (*AttrRef) exprNode() {}

// OpKind names an operator. OpEqual is the comparison the spec calls out
// explicitly (OP_COMP_EQUAL); the others are natural companions needed by
// any range-capable predicate.
type OpKind int

const (
	OpEqual OpKind = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpNot
)

// Op applies Kind to the evaluated result of each of Args.
type Op struct {
	Kind OpKind
	Args []Node
}

func (*Op) exprNode() {}

// Predicate adapts a Node into record.Predicate, the interface the scan
// iterator consumes, so internal/record never needs to import internal/expr
// (which itself imports internal/record for Record/Schema).
type Predicate struct {
	Root Node
}

// Eval satisfies record.Predicate.
func (p Predicate) Eval(rec record.Record, schema record.Schema) (bool, error) {
	return EvalBool(p.Root, rec, schema)
}

// Eval evaluates n against rec, whose values are schema-ordered per schema.
func Eval(n Node, rec record.Record, schema record.Schema) (any, error) {
	switch e := n.(type) {
	case *Const:
		return e.Val, nil

	case *AttrRef:
		if e.Index < 0 || e.Index >= len(rec.Values) {
			return nil, fmt.Errorf("%w: index %d", ErrNoSuchAttribute, e.Index)
		}
		return rec.Values[e.Index], nil

	case *Op:
		return evalOp(e, rec, schema)

	default:
		return nil, fmt.Errorf("expr: unknown node type %T", n)
	}
}

// EvalBool evaluates n and requires the result to be a bool, the shape the
// scan iterator's predicate must take.
func EvalBool(n Node, rec record.Record, schema record.Schema) (bool, error) {
	v, err := Eval(n, rec, schema)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return b, nil
}

func evalOp(o *Op, rec record.Record, schema record.Schema) (any, error) {
	switch o.Kind {
	case OpAnd, OpOr:
		if len(o.Args) == 0 {
			return nil, fmt.Errorf("expr: %v requires at least one argument", o.Kind)
		}
		acc := o.Kind == OpAnd
		for _, arg := range o.Args {
			v, err := EvalBool(arg, rec, schema)
			if err != nil {
				return nil, err
			}
			if o.Kind == OpAnd {
				acc = acc && v
			} else {
				acc = acc || v
			}
		}
		return acc, nil

	case OpNot:
		if len(o.Args) != 1 {
			return nil, errors.New("expr: NOT requires exactly one argument")
		}
		v, err := EvalBool(o.Args[0], rec, schema)
		if err != nil {
			return nil, err
		}
		return !v, nil

	default:
		if len(o.Args) != 2 {
			return nil, fmt.Errorf("expr: comparison requires two arguments")
		}
		left, err := Eval(o.Args[0], rec, schema)
		if err != nil {
			return nil, err
		}
		right, err := Eval(o.Args[1], rec, schema)
		if err != nil {
			return nil, err
		}
		return compare(o.Kind, left, right)
	}
}

func compare(kind OpKind, left, right any) (bool, error) {
	if kind == OpEqual || kind == OpNotEqual {
		eq := left == right
		if kind == OpNotEqual {
			eq = !eq
		}
		return eq, nil
	}

	switch l := left.(type) {
	case int32:
		r, ok := right.(int32)
		if !ok {
			return false, ErrTypeMismatch
		}
		return compareOrdered(kind, l, r), nil
	case float32:
		r, ok := right.(float32)
		if !ok {
			return false, ErrTypeMismatch
		}
		return compareOrdered(kind, l, r), nil
	case string:
		r, ok := right.(string)
		if !ok {
			return false, ErrTypeMismatch
		}
		return compareOrdered(kind, l, r), nil
	default:
		return false, fmt.Errorf("%w: %T is not orderable", ErrTypeMismatch, left)
	}
}

type ordered interface {
	int32 | float32 | string
}

func compareOrdered[T ordered](kind OpKind, l, r T) bool {
	switch kind {
	case OpLess:
		return l < r
	case OpLessEqual:
		return l <= r
	case OpGreater:
		return l > r
	case OpGreaterEqual:
		return l >= r
	default:
		return false
	}
}

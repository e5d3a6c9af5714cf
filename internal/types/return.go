package types

import (
	"errors"
	"fmt"
)

// ErrUnsupportedUnify is returned when two return types have no defined union.
var ErrUnsupportedUnify = errors.New("unifying differing return types is not supported")

// ReturnKind enumerates the shapes of a return type.
type ReturnKind uint8

const (
	// ReturnNever marks a path proven to recurse without producing a value.
	// It is the zero value and the identity of Unify.
	ReturnNever ReturnKind = iota
	ReturnVoid
	ReturnValue
)

// ReturnType is the aggregate return type of a call.
type ReturnType struct {
	Kind  ReturnKind `msgpack:"kind"`
	Value ValueType  `msgpack:"value,omitempty"`
}

var (
	Never = ReturnType{Kind: ReturnNever}
	Void  = ReturnType{Kind: ReturnVoid}
)

// Returns wraps a value type.
func Returns(t ValueType) ReturnType {
	return ReturnType{Kind: ReturnValue, Value: t}
}

func (r ReturnType) IsNever() bool { return r.Kind == ReturnNever }

func (r ReturnType) String() string {
	switch r.Kind {
	case ReturnVoid:
		return "Void"
	case ReturnValue:
		return "Value(" + r.Value.String() + ")"
	default:
		return "Never"
	}
}

// Unify computes the union of two return types.
func Unify(a, b ReturnType) (ReturnType, error) {
	switch {
	case a.Kind == ReturnNever:
		return b, nil
	case b.Kind == ReturnNever:
		return a, nil
	case a == b:
		return a, nil
	default:
		return ReturnType{}, fmt.Errorf("%w: %s and %s", ErrUnsupportedUnify, a, b)
	}
}

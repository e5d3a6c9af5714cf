package types

import (
	"fmt"

	"symbex/internal/ir"
)

// Kind enumerates all symbolic value kinds.
type Kind uint8

const (
	// KindAny is the polymorphic catch-all used when nothing more precise is
	// known. Every runtime value except the exotic primitives (Runtime,
	// Pointer, Word) can be viewed as Any.
	KindAny Kind = iota
	KindRuntime
	KindString
	KindExactString
	KindNumber
	KindExactInteger
	KindBoolean
	KindBool
	// KindPointer points to data of a fixed width, Pointer(16) -> i16*.
	KindPointer
	KindWord
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindRuntime:
		return "Runtime"
	case KindString:
		return "String"
	case KindExactString:
		return "ExactString"
	case KindNumber:
		return "Number"
	case KindExactInteger:
		return "ExactInteger"
	case KindBoolean:
		return "Boolean"
	case KindBool:
		return "Bool"
	case KindPointer:
		return "Pointer"
	case KindWord:
		return "Word"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ValueType is a compact, comparable descriptor of a symbolic value. Only
// the payload field matching Kind is meaningful; the others stay zero so
// that == is structural equality.
type ValueType struct {
	Kind  Kind          `msgpack:"kind"`
	Const ir.ConstantID `msgpack:"const,omitempty"` // ExactString
	Int   int64         `msgpack:"int,omitempty"`   // ExactInteger
	Bool  bool          `msgpack:"bool,omitempty"`  // Bool
	Width uint16        `msgpack:"width,omitempty"` // Pointer
}

var (
	Any     = ValueType{Kind: KindAny}
	Runtime = ValueType{Kind: KindRuntime}
	String  = ValueType{Kind: KindString}
	Number  = ValueType{Kind: KindNumber}
	Boolean = ValueType{Kind: KindBoolean}
	Word    = ValueType{Kind: KindWord}
)

func ExactString(c ir.ConstantID) ValueType { return ValueType{Kind: KindExactString, Const: c} }
func ExactInteger(n int64) ValueType        { return ValueType{Kind: KindExactInteger, Int: n} }
func Bool(b bool) ValueType                 { return ValueType{Kind: KindBool, Bool: b} }
func Pointer(width uint16) ValueType        { return ValueType{Kind: KindPointer, Width: width} }

func (t ValueType) String() string {
	switch t.Kind {
	case KindExactString:
		return fmt.Sprintf("ExactString(%s)", t.Const)
	case KindExactInteger:
		return fmt.Sprintf("ExactInteger(%d)", t.Int)
	case KindBool:
		return fmt.Sprintf("Bool(%t)", t.Bool)
	case KindPointer:
		return fmt.Sprintf("Pointer(%d)", t.Width)
	default:
		return t.Kind.String()
	}
}

// IsSimple reports whether the value is cheap enough to rebuild at any point
// that it is regenerated at its use instead of being passed around as data.
func (t ValueType) IsSimple() bool {
	switch t.Kind {
	case KindRuntime, KindExactInteger, KindBool, KindExactString:
		return true
	}
	return false
}

// IsConst reports whether the value is known exactly at compile time.
func (t ValueType) IsConst() bool {
	switch t.Kind {
	case KindExactInteger, KindExactString, KindBool:
		return true
	}
	return false
}

// FromFFI widens a foreign type into the symbolic lattice.
func FromFFI(t ir.FFIType) ValueType {
	switch t.Kind {
	case ir.FFIRuntime:
		return Runtime
	case ir.FFIPointer:
		return Pointer(t.Width)
	case ir.FFIWord:
		return Word
	case ir.FFIString:
		return String
	default:
		return Any
	}
}

// CanCoerce reports whether a value of type t may be passed where the
// foreign interface expects ffi.
func CanCoerce(t ValueType, ffi ir.FFIType) bool {
	switch ffi.Kind {
	case ir.FFIAny:
		switch t.Kind {
		case KindAny, KindString, KindExactString, KindNumber, KindExactInteger, KindBoolean, KindBool:
			return true
		}
	case ir.FFIRuntime:
		return t.Kind == KindRuntime
	case ir.FFIWord:
		return t.Kind == KindWord
	case ir.FFIString:
		return t.Kind == KindString || t.Kind == KindExactString
	case ir.FFIPointer:
		return t.Kind == KindPointer && t.Width == ffi.Width
	}
	return false
}

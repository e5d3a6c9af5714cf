package ir

import "fmt"

type FunctionID uint32
type ExternalFunctionID uint32
type BlockID uint32
type RegisterID uint32
type ConstantID uint32

func (id FunctionID) String() string         { return fmt.Sprintf("@%d", id) }
func (id ExternalFunctionID) String() string { return fmt.Sprintf("ext%d", id) }
func (id BlockID) String() string            { return fmt.Sprintf("bb%d", id) }
func (id RegisterID) String() string         { return fmt.Sprintf("%%%d", id) }
func (id ConstantID) String() string         { return fmt.Sprintf("c%d", id) }

// BlockRef identifies a block across the whole program. Block ids are
// scoped to their owning function.
type BlockRef struct {
	Func  FunctionID `msgpack:"func"`
	Block BlockID    `msgpack:"block"`
}

func (r BlockRef) String() string {
	return fmt.Sprintf("%s:%s", r.Func, r.Block)
}

// FFIKind enumerates the value kinds that cross the external function boundary.
type FFIKind uint8

const (
	FFIAny FFIKind = iota
	FFIRuntime
	FFIString
	FFIPointer
	FFIWord
)

// FFIType is a parameter or return type of an external function.
type FFIType struct {
	Kind  FFIKind `msgpack:"kind"`
	Width uint16  `msgpack:"width,omitempty"`
}

var (
	FFITypeAny     = FFIType{Kind: FFIAny}
	FFITypeRuntime = FFIType{Kind: FFIRuntime}
	FFITypeString  = FFIType{Kind: FFIString}
	FFITypeWord    = FFIType{Kind: FFIWord}
)

// FFIPointerOf returns a pointer to data of the given width in bits.
func FFIPointerOf(width uint16) FFIType {
	return FFIType{Kind: FFIPointer, Width: width}
}

func (t FFIType) String() string {
	switch t.Kind {
	case FFIAny:
		return "any"
	case FFIRuntime:
		return "runtime"
	case FFIString:
		return "string"
	case FFIPointer:
		return fmt.Sprintf("i%d*", t.Width)
	case FFIWord:
		return "word"
	default:
		return "unknown"
	}
}

// FFIReturn is the return type of an external function.
type FFIReturn struct {
	Void  bool    `msgpack:"void,omitempty"`
	Value FFIType `msgpack:"value"`
}

var FFIReturnVoid = FFIReturn{Void: true}

func FFIReturns(t FFIType) FFIReturn {
	return FFIReturn{Value: t}
}

func (r FFIReturn) String() string {
	if r.Void {
		return "void"
	}
	return r.Value.String()
}

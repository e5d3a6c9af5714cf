package ir

// InstrKind enumerates instruction kinds in the IR.
type InstrKind uint8

const (
	// InstrGetRuntime obtains the runtime handle.
	InstrGetRuntime InstrKind = iota
	// InstrMakeString materializes a string constant.
	InstrMakeString
	// InstrMakeInteger materializes an integer literal.
	InstrMakeInteger
	// InstrMakeBoolean materializes a boolean literal.
	InstrMakeBoolean
	// InstrCompareLessThan compares two operands.
	InstrCompareLessThan
	// InstrAdd adds two operands.
	InstrAdd
	// InstrNegate negates a boolean operand.
	InstrNegate
	// InstrCall calls an external or static function.
	InstrCall
)

func (k InstrKind) String() string {
	switch k {
	case InstrGetRuntime:
		return "GetRuntime"
	case InstrMakeString:
		return "MakeString"
	case InstrMakeInteger:
		return "MakeInteger"
	case InstrMakeBoolean:
		return "MakeBoolean"
	case InstrCompareLessThan:
		return "CompareLessThan"
	case InstrAdd:
		return "Add"
	case InstrNegate:
		return "Negate"
	case InstrCall:
		return "Call"
	default:
		return "Unknown"
	}
}

// Instr represents an IR instruction.
type Instr struct {
	Kind InstrKind `msgpack:"kind"`

	GetRuntime GetRuntimeInstr `msgpack:"get_runtime,omitempty"`
	MakeString MakeStringInstr `msgpack:"make_string,omitempty"`
	MakeInt    MakeIntInstr    `msgpack:"make_int,omitempty"`
	MakeBool   MakeBoolInstr   `msgpack:"make_bool,omitempty"`
	Binary     BinaryInstr     `msgpack:"binary,omitempty"`
	Negate     NegateInstr     `msgpack:"negate,omitempty"`
	Call       CallInstr       `msgpack:"call,omitempty"`
}

type GetRuntimeInstr struct {
	Dst RegisterID `msgpack:"dst"`
}

type MakeStringInstr struct {
	Dst   RegisterID `msgpack:"dst"`
	Const ConstantID `msgpack:"const"`
}

type MakeIntInstr struct {
	Dst   RegisterID `msgpack:"dst"`
	Value int64      `msgpack:"value"`
}

type MakeBoolInstr struct {
	Dst   RegisterID `msgpack:"dst"`
	Value bool       `msgpack:"value"`
}

// BinaryInstr is shared by CompareLessThan and Add.
type BinaryInstr struct {
	Dst RegisterID `msgpack:"dst"`
	LHS RegisterID `msgpack:"lhs"`
	RHS RegisterID `msgpack:"rhs"`
}

type NegateInstr struct {
	Dst     RegisterID `msgpack:"dst"`
	Operand RegisterID `msgpack:"operand"`
}

// CalleeKind distinguishes call target types.
type CalleeKind uint8

const (
	// CalleeExternal is a foreign function with a declared signature.
	CalleeExternal CalleeKind = iota
	// CalleeStatic is a function of the program.
	CalleeStatic
)

// Callee represents a call target.
type Callee struct {
	Kind     CalleeKind         `msgpack:"kind"`
	External ExternalFunctionID `msgpack:"external,omitempty"`
	Func     FunctionID         `msgpack:"func,omitempty"`
}

type CallInstr struct {
	HasDst bool         `msgpack:"has_dst,omitempty"`
	Dst    RegisterID   `msgpack:"dst,omitempty"`
	Callee Callee       `msgpack:"callee"`
	Args   []RegisterID `msgpack:"args"`
}

// Dst returns the register written by the instruction, if any.
func (in *Instr) Dst() (RegisterID, bool) {
	switch in.Kind {
	case InstrGetRuntime:
		return in.GetRuntime.Dst, true
	case InstrMakeString:
		return in.MakeString.Dst, true
	case InstrMakeInteger:
		return in.MakeInt.Dst, true
	case InstrMakeBoolean:
		return in.MakeBool.Dst, true
	case InstrCompareLessThan, InstrAdd:
		return in.Binary.Dst, true
	case InstrNegate:
		return in.Negate.Dst, true
	case InstrCall:
		return in.Call.Dst, in.Call.HasDst
	}
	return 0, false
}

// Uses returns the registers read by the instruction.
func (in *Instr) Uses() []RegisterID {
	switch in.Kind {
	case InstrCompareLessThan, InstrAdd:
		return []RegisterID{in.Binary.LHS, in.Binary.RHS}
	case InstrNegate:
		return []RegisterID{in.Negate.Operand}
	case InstrCall:
		return in.Call.Args
	}
	return nil
}

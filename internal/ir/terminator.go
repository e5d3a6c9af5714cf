package ir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermJump
	TermJumpIf
	TermReturn
)

func (k TermKind) String() string {
	switch k {
	case TermJump:
		return "jump"
	case TermJumpIf:
		return "jump_if"
	case TermReturn:
		return "return"
	default:
		return "none"
	}
}

type Terminator struct {
	Kind TermKind `msgpack:"kind"`

	Jump   JumpTerm   `msgpack:"jump,omitempty"`
	JumpIf JumpIfTerm `msgpack:"jump_if,omitempty"`
	Return ReturnTerm `msgpack:"return,omitempty"`
}

// BlockJump transfers control to a block of the same function, forwarding
// registers as the target's parameters.
type BlockJump struct {
	Target BlockID      `msgpack:"target"`
	Args   []RegisterID `msgpack:"args"`
}

type JumpTerm struct {
	To BlockJump `msgpack:"to"`
}

type JumpIfTerm struct {
	Cond RegisterID `msgpack:"cond"`
	Then BlockJump  `msgpack:"then"`
	Else BlockJump  `msgpack:"else"`
}

type ReturnTerm struct {
	HasValue bool       `msgpack:"has_value,omitempty"`
	Value    RegisterID `msgpack:"value,omitempty"`
}

// Targets returns the jumps of the terminator in then/else order.
func (t *Terminator) Targets() []BlockJump {
	switch t.Kind {
	case TermJump:
		return []BlockJump{t.Jump.To}
	case TermJumpIf:
		return []BlockJump{t.JumpIf.Then, t.JumpIf.Else}
	default:
		return nil
	}
}

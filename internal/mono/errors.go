package mono

import (
	"errors"
	"fmt"
	"strings"

	"symbex/internal/graph"
	"symbex/internal/types"
)

// ErrorKind separates bugs in the producer of the IR from problems in the
// program being specialized and from limits of the engine itself.
type ErrorKind uint8

const (
	// ErrRepresentation means the IR is malformed (arity, dangling ids).
	ErrRepresentation ErrorKind = iota + 1
	// ErrType means the program misuses a value.
	ErrType
	// ErrUnsupported means the engine has no rule for a shape.
	ErrUnsupported
	// ErrResource means a configured bound was hit.
	ErrResource
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRepresentation:
		return "representation"
	case ErrType:
		return "type"
	case ErrUnsupported:
		return "unsupported"
	case ErrResource:
		return "resource"
	default:
		return "unknown"
	}
}

// NoInstr marks an error raised outside any instruction (parameters, terminator).
const NoInstr = -1

// Error is a fatal specialization failure. Instr is the index of the
// failing instruction within the block of Key, or NoInstr.
type Error struct {
	Kind  ErrorKind
	Key   ExecKey
	Instr int
	Op    string
	Types []types.ValueType
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mono: %s error in %s", e.Kind, e.Key)
	if e.Instr != NoInstr {
		fmt.Fprintf(&b, " at instruction %d", e.Instr)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " (%s)", e.Op)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if len(e.Types) > 0 {
		parts := make([]string, len(e.Types))
		for i, t := range e.Types {
			parts[i] = t.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Classify reports the category of a specialization failure. The second
// result is false for errors that did not come from the engine.
func Classify(err error) (ErrorKind, bool) {
	if err == nil {
		return 0, false
	}
	var me *Error
	if errors.As(err, &me) {
		return me.Kind, true
	}
	switch {
	case errors.Is(err, graph.ErrCycle), errors.Is(err, graph.ErrBogus), errors.Is(err, types.ErrUnsupportedUnify):
		return ErrUnsupported, true
	case errors.Is(err, graph.ErrDepthExceeded):
		return ErrResource, true
	}
	return 0, false
}

func reprErr(key ExecKey, instr int, op, format string, args ...any) *Error {
	return &Error{Kind: ErrRepresentation, Key: key, Instr: instr, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func typeErr(key ExecKey, instr int, op, msg string, ts ...types.ValueType) *Error {
	return &Error{Kind: ErrType, Key: key, Instr: instr, Op: op, Msg: msg, Types: ts}
}

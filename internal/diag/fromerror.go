package diag

import (
	"errors"
	"fmt"
	"strings"

	"symbex/internal/mono"
)

var specCodes = map[mono.ErrorKind]Code{
	mono.ErrRepresentation: SpecRepresentation,
	mono.ErrType:           SpecType,
	mono.ErrUnsupported:    SpecUnsupported,
	mono.ErrResource:       SpecResource,
}

// FromError turns a failed specialization of file into a diagnostic. The
// stack comes from the engine that failed; each frame becomes a note,
// innermost first.
func FromError(file string, err error, stack []mono.StackFrame) Diagnostic {
	code := SpecInternal
	if kind, ok := mono.Classify(err); ok {
		code = specCodes[kind]
	}

	primary := FileLocation(file)
	msg := err.Error()
	var me *mono.Error
	if errors.As(err, &me) {
		primary = Location{File: file, Block: me.Key.String(), Instr: me.Instr}
		msg = engineMessage(me)
	} else if len(stack) > 0 {
		last := stack[len(stack)-1]
		primary = Location{File: file, Block: last.Block.String(), Instr: last.Instr}
	}

	d := NewError(code, primary, msg)
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		d = d.WithNote(Location{File: file, Block: f.Block.String(), Instr: f.Instr},
			fmt.Sprintf("while resolving call %s", f.Call))
	}
	return d
}

func engineMessage(e *mono.Error) string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if len(e.Types) > 0 {
		parts := make([]string, len(e.Types))
		for i, t := range e.Types {
			parts[i] = t.String()
		}
		fmt.Fprintf(&b, " (found %s)", strings.Join(parts, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// FromJoined reports every error joined into err as its own diagnostic.
// Validation collects its findings with errors.Join.
func FromJoined(file string, code Code, err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, NewError(code, FileLocation(file), e.Error()))
	}
	return out
}

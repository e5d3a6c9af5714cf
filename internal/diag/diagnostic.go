package diag

import (
	"fmt"
	"strings"
)

// NoInstr marks a location that does not point at an instruction.
const NoInstr = -1

// Location points into an IR program: a file, an explored block key and an
// optional instruction index. Any part may be empty.
type Location struct {
	File  string
	Block string
	Instr int
}

func (l Location) String() string {
	parts := make([]string, 0, 3)
	if l.File != "" {
		parts = append(parts, l.File)
	}
	if l.Block != "" {
		parts = append(parts, l.Block)
	}
	if l.Block != "" && l.Instr != NoInstr {
		parts = append(parts, fmt.Sprintf("#%d", l.Instr))
	}
	return strings.Join(parts, ":")
}

// FileLocation points at a whole file.
func FileLocation(file string) Location {
	return Location{File: file, Instr: NoInstr}
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

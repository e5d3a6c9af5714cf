package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Reading and checking IR programs
	IRInfo        Code = 1000
	IRDecode      Code = 1001
	IRInvalid     Code = 1002
	IRUnreachable Code = 1003
	IRRecursive   Code = 1004

	// Specialization failures, one per engine error category
	SpecInfo           Code = 2000
	SpecRepresentation Code = 2001
	SpecType           Code = 2002
	SpecUnsupported    Code = 2003
	SpecResource       Code = 2004
	SpecInternal       Code = 2005

	// Files and cache
	IOInfo         Code = 4000
	IOLoadFailed   Code = 4001
	IOWriteFailed  Code = 4002
	IOCacheCorrupt Code = 4003

	// Project manifest
	PrjInfo            Code = 5000
	PrjManifestInvalid Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:        "Unknown error",
		IRInfo:             "IR information",
		IRDecode:           "Cannot decode IR program",
		IRInvalid:          "Malformed IR program",
		IRUnreachable:      "Function is never called from the entrypoint",
		IRRecursive:        "Function takes part in recursion",
		SpecInfo:           "Specialization information",
		SpecRepresentation: "Malformed IR reached the specializer",
		SpecType:           "Type error",
		SpecUnsupported:    "Unsupported by the specializer",
		SpecResource:       "Specialization limit exceeded",
		SpecInternal:       "Internal specializer error",
		IOInfo:             "I/O information",
		IOLoadFailed:       "Cannot read input",
		IOWriteFailed:      "Cannot write output",
		IOCacheCorrupt:     "Corrupt cache entry",
		PrjInfo:            "Project information",
		PrjManifestInvalid: "Invalid symbex.toml",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SPC%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

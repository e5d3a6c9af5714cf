package ir

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Schema version of the encoded program - increment when Program changes shape.
const programSchemaVersion uint16 = 1

type encodedProgram struct {
	Schema  uint16
	Program *Program
}

// Encode writes p in the binary interchange format.
func Encode(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(&encodedProgram{Schema: programSchemaVersion, Program: p})
}

// Decode reads a program written by Encode.
func Decode(r io.Reader) (*Program, error) {
	var payload encodedProgram
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ir: decode program: %w", err)
	}
	if payload.Schema != programSchemaVersion {
		return nil, fmt.Errorf("ir: unsupported program schema %d (want %d)", payload.Schema, programSchemaVersion)
	}
	if payload.Program == nil {
		return nil, fmt.Errorf("ir: empty program payload")
	}
	return payload.Program, nil
}

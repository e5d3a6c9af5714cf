package mono

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"symbex/internal/ir"
	"symbex/internal/types"
)

const tableSchemaVersion uint16 = 1

// Table is the flat, serializable form of AnnotatedBlocks handed to the
// assembler.
type Table struct {
	Schema uint16       `msgpack:"schema"`
	Entry  SpecID       `msgpack:"entry"`
	Blocks []TableBlock `msgpack:"blocks"`
}

// TableBlock is one specialized block. Successors refer to other blocks
// of the same table.
type TableBlock struct {
	ID         SpecID            `msgpack:"id"`
	Origin     ir.BlockRef       `msgpack:"origin"`
	Args       []types.ValueType `msgpack:"args"`
	Body       *ir.Block         `msgpack:"body"`
	Registers  []RegisterType    `msgpack:"registers"`
	Branch     BranchKind        `msgpack:"branch"`
	Successors []SpecID          `msgpack:"successors"`
	Return     types.ReturnType  `msgpack:"return"`
	Evaluated  int               `msgpack:"evaluated"`
}

type RegisterType struct {
	Reg  ir.RegisterID   `msgpack:"reg"`
	Type types.ValueType `msgpack:"type"`
}

func (b *TableBlock) Unreachable() bool { return b.Branch == BranchUnreachable }

// Export flattens the blocks into a Table with registers sorted by id.
func (a *AnnotatedBlocks) Export() (*Table, error) {
	t := &Table{Schema: tableSchemaVersion, Entry: a.Entry, Blocks: make([]TableBlock, 0, len(a.blocks))}
	for _, b := range a.blocks {
		regs := make([]RegisterType, 0, len(b.Registers))
		for _, r := range slices.Sorted(maps.Keys(b.Registers)) {
			regs = append(regs, RegisterType{Reg: r, Type: b.Registers[r]})
		}
		succ := make([]SpecID, 0, len(b.Successors))
		for _, k := range b.Successors {
			id, ok := a.byKey[k.ID()]
			if !ok {
				return nil, fmt.Errorf("mono: export %s: successor %s was never specialized", b.ID, k)
			}
			succ = append(succ, id)
		}
		t.Blocks = append(t.Blocks, TableBlock{
			ID:         b.ID,
			Origin:     b.Key.Block,
			Args:       b.Key.Args,
			Body:       b.Block,
			Registers:  regs,
			Branch:     b.Branch,
			Successors: succ,
			Return:     b.Return,
			Evaluated:  b.Evaluated,
		})
	}
	return t, nil
}

// EncodeTable writes t as msgpack.
func EncodeTable(w io.Writer, t *Table) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(t)
}

// DecodeTable reads a table written by EncodeTable.
func DecodeTable(r io.Reader) (*Table, error) {
	var t Table
	if err := msgpack.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("mono: decode table: %w", err)
	}
	if t.Schema != tableSchemaVersion {
		return nil, fmt.Errorf("mono: unsupported table schema %d (want %d)", t.Schema, tableSchemaVersion)
	}
	return &t, nil
}

// DumpTable writes a human-readable listing of t.
func DumpTable(w io.Writer, t *Table) error {
	if w == nil || t == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "blocks=%d entry=%s\n", len(t.Blocks), t.Entry)
	for i := range t.Blocks {
		b := &t.Blocks[i]
		args := make([]string, len(b.Args))
		for j, a := range b.Args {
			args[j] = a.String()
		}
		fmt.Fprintf(&sb, "%s = %s(%s) -> %s\n", b.ID, b.Origin, strings.Join(args, ", "), b.Return)
		for _, r := range b.Registers {
			fmt.Fprintf(&sb, "  %s: %s\n", r.Reg, r.Type)
		}
		if b.Body != nil {
			for j := range b.Body.Instrs {
				marker := " "
				if j >= b.Evaluated {
					marker = "-"
				}
				fmt.Fprintf(&sb, "  %s %s\n", marker, ir.FormatInstr(&b.Body.Instrs[j]))
			}
		}
		switch {
		case b.Unreachable():
			sb.WriteString("    unreachable\n")
		case len(b.Successors) > 0:
			succ := make([]string, len(b.Successors))
			for j, s := range b.Successors {
				succ[j] = s.String()
			}
			fmt.Fprintf(&sb, "    %s %s\n", b.Branch, strings.Join(succ, ", "))
		default:
			fmt.Fprintf(&sb, "    %s\n", b.Branch)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

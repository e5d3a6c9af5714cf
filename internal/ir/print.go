package ir

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DumpProgram writes a human-readable representation of a program.
func DumpProgram(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	var sb strings.Builder

	if len(p.Constants) > 0 {
		fmt.Fprintf(&sb, "constants=%d\n", len(p.Constants))
		for _, id := range slices.Sorted(maps.Keys(p.Constants)) {
			c := p.Constants[id]
			fmt.Fprintf(&sb, "  %s %s = %s\n", id, c.Name, strconv.Quote(string(c.Payload)))
		}
	}
	if len(p.ExternalFunctions) > 0 {
		fmt.Fprintf(&sb, "externs=%d\n", len(p.ExternalFunctions))
		for _, id := range slices.Sorted(maps.Keys(p.ExternalFunctions)) {
			ext := p.ExternalFunctions[id]
			params := make([]string, len(ext.Params))
			for i, t := range ext.Params {
				params[i] = t.String()
			}
			fmt.Fprintf(&sb, "  %s %s(%s) -> %s\n", id, ext.Name, strings.Join(params, ", "), ext.Return)
		}
	}

	fmt.Fprintf(&sb, "funcs=%d entry=%s\n", len(p.Functions), p.Entrypoint)
	for _, id := range slices.Sorted(maps.Keys(p.Functions)) {
		fn := p.Functions[id]
		fmt.Fprintf(&sb, "fn %s %s entry=%s {\n", id, fn.Name, fn.Entry)
		for _, bid := range slices.Sorted(maps.Keys(fn.Blocks)) {
			DumpBlock(&sb, fn.Blocks[bid], "  ")
		}
		sb.WriteString("}\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpBlock writes one block, each line prefixed with indent.
func DumpBlock(sb *strings.Builder, bb *Block, indent string) {
	fmt.Fprintf(sb, "%s%s(%s):\n", indent, bb.ID, regList(bb.Params))
	for i := range bb.Instrs {
		fmt.Fprintf(sb, "%s  %s\n", indent, FormatInstr(&bb.Instrs[i]))
	}
	fmt.Fprintf(sb, "%s  %s\n", indent, FormatTerm(&bb.Term))
}

// FormatInstr renders a single instruction.
func FormatInstr(in *Instr) string {
	switch in.Kind {
	case InstrGetRuntime:
		return fmt.Sprintf("%s = GetRuntime", in.GetRuntime.Dst)
	case InstrMakeString:
		return fmt.Sprintf("%s = MakeString %s", in.MakeString.Dst, in.MakeString.Const)
	case InstrMakeInteger:
		return fmt.Sprintf("%s = MakeInteger %d", in.MakeInt.Dst, in.MakeInt.Value)
	case InstrMakeBoolean:
		return fmt.Sprintf("%s = MakeBoolean %t", in.MakeBool.Dst, in.MakeBool.Value)
	case InstrCompareLessThan, InstrAdd:
		return fmt.Sprintf("%s = %s %s, %s", in.Binary.Dst, in.Kind, in.Binary.LHS, in.Binary.RHS)
	case InstrNegate:
		return fmt.Sprintf("%s = Negate %s", in.Negate.Dst, in.Negate.Operand)
	case InstrCall:
		target := in.Call.Callee.Func.String()
		if in.Call.Callee.Kind == CalleeExternal {
			target = in.Call.Callee.External.String()
		}
		call := fmt.Sprintf("Call %s(%s)", target, regList(in.Call.Args))
		if in.Call.HasDst {
			return fmt.Sprintf("%s = %s", in.Call.Dst, call)
		}
		return call
	}
	return in.Kind.String()
}

// FormatTerm renders a terminator.
func FormatTerm(t *Terminator) string {
	switch t.Kind {
	case TermJump:
		return "Jump " + formatJump(t.Jump.To)
	case TermJumpIf:
		return fmt.Sprintf("JumpIf %s then %s else %s", t.JumpIf.Cond, formatJump(t.JumpIf.Then), formatJump(t.JumpIf.Else))
	case TermReturn:
		if t.Return.HasValue {
			return "Return " + t.Return.Value.String()
		}
		return "Return"
	}
	return "<unterminated>"
}

func formatJump(j BlockJump) string {
	return fmt.Sprintf("%s(%s)", j.Target, regList(j.Args))
}

func regList(regs []RegisterID) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

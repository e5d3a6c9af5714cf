package mono

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"symbex/internal/ir"
	"symbex/internal/types"
)

// ExecKey identifies one exploration: a block entered with a tuple of
// argument types.
type ExecKey struct {
	Block ir.BlockRef
	Args  []types.ValueType
}

// ArgsKey encodes an argument tuple field by field, so Go maps can key on
// it. Each argument is kind:const:int:bool:width; arguments are separated
// by ';'. The encoding is independent of how types are displayed.
type ArgsKey string

func argsKeyFromTypes(args []types.ValueType) ArgsKey {
	if len(args) == 0 {
		return ""
	}
	buf := make([]byte, 0, 16*len(args))
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ';')
		}
		buf = strconv.AppendUint(buf, uint64(arg.Kind), 10)
		buf = append(buf, ':')
		buf = strconv.AppendUint(buf, uint64(arg.Const), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, arg.Int, 10)
		buf = append(buf, ':')
		buf = strconv.AppendBool(buf, arg.Bool)
		buf = append(buf, ':')
		buf = strconv.AppendUint(buf, uint64(arg.Width), 10)
	}
	return ArgsKey(buf)
}

// Types decodes the tuple. It fails only on strings not produced by
// argsKeyFromTypes.
func (k ArgsKey) Types() ([]types.ValueType, error) {
	if k == "" {
		return nil, nil
	}
	parts := strings.Split(string(k), ";")
	out := make([]types.ValueType, len(parts))
	for i, part := range parts {
		f := strings.Split(part, ":")
		if len(f) != 5 {
			return nil, fmt.Errorf("mono: malformed argument key %q", part)
		}
		kind, err1 := strconv.ParseUint(f[0], 10, 8)
		cst, err2 := strconv.ParseUint(f[1], 10, 32)
		n, err3 := strconv.ParseInt(f[2], 10, 64)
		b, err4 := strconv.ParseBool(f[3])
		width, err5 := strconv.ParseUint(f[4], 10, 16)
		if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
			return nil, fmt.Errorf("mono: malformed argument key %q: %w", part, err)
		}
		out[i] = types.ValueType{
			Kind:  types.Kind(kind),
			Const: ir.ConstantID(cst),
			Int:   n,
			Bool:  b,
			Width: uint16(width),
		}
	}
	return out, nil
}

// KeyID is the comparable identity of an ExecKey.
type KeyID struct {
	Block ir.BlockRef
	Args  ArgsKey
}

func (k ExecKey) ID() KeyID {
	return KeyID{Block: k.Block, Args: argsKeyFromTypes(k.Args)}
}

func (k ExecKey) String() string {
	return k.Block.String() + "(" + renderArgs(k.Args) + ")"
}

func (id KeyID) String() string {
	args, err := id.Args.Types()
	if err != nil {
		return id.Block.String() + "(" + string(id.Args) + ")"
	}
	return ExecKey{Block: id.Block, Args: args}.String()
}

func renderArgs(args []types.ValueType) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.String())
	}
	return b.String()
}

func keyOf(block ir.BlockRef, args []types.ValueType) ExecKey {
	return ExecKey{Block: block, Args: args}
}

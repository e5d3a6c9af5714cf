package mono

import (
	"fmt"

	"fortio.org/safecast"

	"symbex/internal/ir"
	"symbex/internal/types"
)

// SpecID names one specialized block.
type SpecID uint32

func (id SpecID) String() string { return fmt.Sprintf("spec%d", id) }

// AnnotatedBlock is an original block paired with the types computed for
// one visit. The body is shared with the program and never rewritten.
type AnnotatedBlock struct {
	ID         SpecID
	Key        ExecKey
	Block      *ir.Block
	Registers  map[ir.RegisterID]types.ValueType
	Branch     BranchKind
	Successors []ExecKey
	Evaluated  int
	// Return is the aggregate return type of the call that visited the block.
	Return types.ReturnType
	Call   CallID
}

// AnnotatedBlocks is the materialized result of a run.
type AnnotatedBlocks struct {
	Entry  SpecID
	blocks []*AnnotatedBlock
	byKey  map[KeyID]SpecID
}

// Lookup maps an original block and argument tuple to its specialization.
func (a *AnnotatedBlocks) Lookup(block ir.BlockRef, args []types.ValueType) (SpecID, bool) {
	id, ok := a.byKey[keyOf(block, args).ID()]
	return id, ok
}

func (a *AnnotatedBlocks) Block(id SpecID) (*AnnotatedBlock, bool) {
	if int(id) >= len(a.blocks) {
		return nil, false
	}
	return a.blocks[id], true
}

func (a *AnnotatedBlocks) ReturnType(id SpecID) (types.ReturnType, bool) {
	b, ok := a.Block(id)
	if !ok {
		return types.ReturnType{}, false
	}
	return b.Return, true
}

// Blocks lists all specialized blocks in id order.
func (a *AnnotatedBlocks) Blocks() []*AnnotatedBlock {
	out := make([]*AnnotatedBlock, len(a.blocks))
	copy(out, a.blocks)
	return out
}

func (a *AnnotatedBlocks) Len() int { return len(a.blocks) }

// Extract materializes one annotated block per visited key. It may run
// once, after Run succeeded. A key visited by several calls keeps the
// visit of the call that was requested first.
func (e *Engine) Extract() (*AnnotatedBlocks, error) {
	if e.extracted {
		return nil, fmt.Errorf("mono: results already extracted")
	}
	resolved, err := e.graph.Drain()
	if err != nil {
		return nil, fmt.Errorf("mono: extract: %w", err)
	}
	e.extracted = true

	// The memo fixes the output order; the drained graph must agree with
	// it on every call.
	entries := e.memo.Entries()
	if resolved.Len() != len(entries) {
		return nil, fmt.Errorf("mono: extract: graph resolved %d calls, memo holds %d", resolved.Len(), len(entries))
	}
	out := &AnnotatedBlocks{byKey: make(map[KeyID]SpecID)}
	for _, entry := range entries {
		if entry.Status.Kind != StatusFinished {
			return nil, reprErr(entry.Key, NoInstr, "", "call never finished")
		}
		if call, ok := resolved.Get(entry.Key.ID()); !ok || call != entry.Status.Call {
			return nil, reprErr(entry.Key, NoInstr, "", "graph resolved %s, memo holds %s", call, entry.Status.Call)
		}
		fn, ok := e.typed.Get(entry.Status.Call)
		if !ok {
			return nil, reprErr(entry.Key, NoInstr, "", "%s has no typed function", entry.Status.Call)
		}
		for _, v := range fn.Visits {
			kid := v.Key.ID()
			if _, dup := out.byKey[kid]; dup {
				continue
			}
			blk, ok := e.prog.Block(v.Key.Block)
			if !ok {
				return nil, reprErr(v.Key, NoInstr, "", "block does not exist")
			}
			n, err := safecast.Conv[uint32](len(out.blocks))
			if err != nil {
				return nil, fmt.Errorf("mono: too many specialized blocks: %w", err)
			}
			id := SpecID(n)
			out.byKey[kid] = id
			out.blocks = append(out.blocks, &AnnotatedBlock{
				ID:         id,
				Key:        v.Key,
				Block:      blk,
				Registers:  v.Registers,
				Branch:     v.Branch,
				Successors: v.Successors,
				Evaluated:  v.Evaluated,
				Return:     fn.Return,
				Call:       entry.Status.Call,
			})
		}
	}

	entryID, ok := out.byKey[e.entry.ID()]
	if !ok {
		return nil, reprErr(e.entry, NoInstr, "", "entry block was never visited")
	}
	out.Entry = entryID
	return out, nil
}

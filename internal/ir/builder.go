package ir

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ProgramBuilder assembles an immutable Program. Builders are not safe for
// concurrent use.
type ProgramBuilder struct {
	entry    FunctionID
	hasEntry bool

	constants []*Constant
	externals []*ExternalFunction
	funcs     []*FunctionBuilder

	errs []error
}

// NewProgramBuilder creates an empty builder.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{}
}

func (b *ProgramBuilder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

func nextID[T ~uint32](b *ProgramBuilder, n int, what string) T {
	id, err := safecast.Conv[uint32](n)
	if err != nil {
		b.fail("ir: too many %s: %w", what, err)
		return 0
	}
	return T(id)
}

// Constant interns a raw constant payload.
func (b *ProgramBuilder) Constant(name string, payload []byte) ConstantID {
	id := nextID[ConstantID](b, len(b.constants), "constants")
	b.constants = append(b.constants, &Constant{Name: name, Payload: payload})
	return id
}

// StringConstant interns a UTF-8 string constant.
func (b *ProgramBuilder) StringConstant(name, value string) ConstantID {
	return b.Constant(name, []byte(value))
}

// ExternalFunction declares a foreign function.
func (b *ProgramBuilder) ExternalFunction(name string, ret FFIReturn, params ...FFIType) ExternalFunctionID {
	id := nextID[ExternalFunctionID](b, len(b.externals), "external functions")
	b.externals = append(b.externals, &ExternalFunction{
		Name:   name,
		Params: append([]FFIType(nil), params...),
		Return: ret,
	})
	return id
}

// Function starts a function with the given number of parameters. The
// parameters are the parameters of its entry block.
func (b *ProgramBuilder) Function(name string, params int) *FunctionBuilder {
	fb := &FunctionBuilder{
		prog: b,
		id:   nextID[FunctionID](b, len(b.funcs), "functions"),
		name: name,
	}
	b.funcs = append(b.funcs, fb)
	fb.Block(params)
	return fb
}

// Main starts the entrypoint function. Only one entrypoint may be declared.
func (b *ProgramBuilder) Main() *FunctionBuilder {
	if b.hasEntry {
		b.fail("ir: can only define one entrypoint function")
	}
	fb := b.Function("main", 0)
	b.entry = fb.id
	b.hasEntry = true
	return fb
}

// Build finishes the program. Every block must be terminated.
func (b *ProgramBuilder) Build() (*Program, error) {
	errs := append([]error(nil), b.errs...)
	if !b.hasEntry {
		errs = append(errs, errors.New("ir: expected an entrypoint function, declare one with Main"))
	}

	p := &Program{
		Entrypoint:        b.entry,
		Constants:         make(map[ConstantID]*Constant, len(b.constants)),
		ExternalFunctions: make(map[ExternalFunctionID]*ExternalFunction, len(b.externals)),
		Functions:         make(map[FunctionID]*Function, len(b.funcs)),
	}
	for i, c := range b.constants {
		p.Constants[nextID[ConstantID](b, i, "constants")] = c
	}
	for i, ext := range b.externals {
		p.ExternalFunctions[nextID[ExternalFunctionID](b, i, "external functions")] = ext
	}
	for _, fb := range b.funcs {
		fn := &Function{
			ID:     fb.id,
			Name:   fb.name,
			Blocks: make(map[BlockID]*Block, len(fb.blocks)),
		}
		for _, bb := range fb.blocks {
			if !bb.block.Terminated() {
				errs = append(errs, fmt.Errorf("ir: function %s: %s was never terminated", fb.name, bb.block.ID))
			}
			fn.Blocks[bb.block.ID] = bb.block
		}
		if len(fb.blocks) > 0 {
			fn.Entry = fb.blocks[0].block.ID
		}
		p.Functions[fb.id] = fn
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

// FunctionBuilder builds the blocks of one function.
type FunctionBuilder struct {
	prog    *ProgramBuilder
	id      FunctionID
	name    string
	nextReg uint32
	blocks  []*BlockBuilder
}

// ID returns the function id.
func (f *FunctionBuilder) ID() FunctionID { return f.id }

// Entry returns the entry block builder.
func (f *FunctionBuilder) Entry() *BlockBuilder { return f.blocks[0] }

// Params returns the parameter registers of the function.
func (f *FunctionBuilder) Params() []RegisterID { return f.Entry().Params() }

func (f *FunctionBuilder) reg() RegisterID {
	r := RegisterID(f.nextReg)
	f.nextReg++
	return r
}

// Block starts a new block taking the given number of parameters.
func (f *FunctionBuilder) Block(params int) *BlockBuilder {
	bb := &BlockBuilder{
		fn: f,
		block: &Block{
			ID: nextID[BlockID](f.prog, len(f.blocks), "blocks"),
		},
	}
	for range params {
		bb.block.Params = append(bb.block.Params, f.reg())
	}
	f.blocks = append(f.blocks, bb)
	return bb
}

// BlockBuilder appends instructions to one block and finishes it with a
// terminator.
type BlockBuilder struct {
	fn    *FunctionBuilder
	block *Block
}

// ID returns the block id.
func (bb *BlockBuilder) ID() BlockID { return bb.block.ID }

// Params returns the parameter registers of the block.
func (bb *BlockBuilder) Params() []RegisterID {
	return append([]RegisterID(nil), bb.block.Params...)
}

func (bb *BlockBuilder) push(in Instr) {
	if bb.block.Terminated() {
		bb.fn.prog.fail("ir: function %s: instruction %s after terminator in %s", bb.fn.name, in.Kind, bb.block.ID)
		return
	}
	bb.block.Instrs = append(bb.block.Instrs, in)
}

func (bb *BlockBuilder) GetRuntime() RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrGetRuntime, GetRuntime: GetRuntimeInstr{Dst: dst}})
	return dst
}

func (bb *BlockBuilder) MakeString(c ConstantID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrMakeString, MakeString: MakeStringInstr{Dst: dst, Const: c}})
	return dst
}

func (bb *BlockBuilder) MakeInteger(v int64) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrMakeInteger, MakeInt: MakeIntInstr{Dst: dst, Value: v}})
	return dst
}

func (bb *BlockBuilder) MakeBoolean(v bool) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrMakeBoolean, MakeBool: MakeBoolInstr{Dst: dst, Value: v}})
	return dst
}

func (bb *BlockBuilder) Add(lhs, rhs RegisterID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrAdd, Binary: BinaryInstr{Dst: dst, LHS: lhs, RHS: rhs}})
	return dst
}

func (bb *BlockBuilder) CompareLessThan(lhs, rhs RegisterID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrCompareLessThan, Binary: BinaryInstr{Dst: dst, LHS: lhs, RHS: rhs}})
	return dst
}

func (bb *BlockBuilder) Negate(operand RegisterID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrNegate, Negate: NegateInstr{Dst: dst, Operand: operand}})
	return dst
}

// Call calls a function of the program, discarding its result.
func (bb *BlockBuilder) Call(fn FunctionID, args ...RegisterID) {
	bb.push(Instr{Kind: InstrCall, Call: CallInstr{
		Callee: Callee{Kind: CalleeStatic, Func: fn},
		Args:   append([]RegisterID(nil), args...),
	}})
}

// CallResult calls a function of the program and keeps its result.
func (bb *BlockBuilder) CallResult(fn FunctionID, args ...RegisterID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrCall, Call: CallInstr{
		HasDst: true,
		Dst:    dst,
		Callee: Callee{Kind: CalleeStatic, Func: fn},
		Args:   append([]RegisterID(nil), args...),
	}})
	return dst
}

// CallExternal calls a foreign function, discarding its result.
func (bb *BlockBuilder) CallExternal(ext ExternalFunctionID, args ...RegisterID) {
	bb.push(Instr{Kind: InstrCall, Call: CallInstr{
		Callee: Callee{Kind: CalleeExternal, External: ext},
		Args:   append([]RegisterID(nil), args...),
	}})
}

// CallExternalResult calls a foreign function and keeps its result.
func (bb *BlockBuilder) CallExternalResult(ext ExternalFunctionID, args ...RegisterID) RegisterID {
	dst := bb.fn.reg()
	bb.push(Instr{Kind: InstrCall, Call: CallInstr{
		HasDst: true,
		Dst:    dst,
		Callee: Callee{Kind: CalleeExternal, External: ext},
		Args:   append([]RegisterID(nil), args...),
	}})
	return dst
}

func (bb *BlockBuilder) terminate(t Terminator) {
	if bb.block.Terminated() {
		bb.fn.prog.fail("ir: function %s: %s terminated twice", bb.fn.name, bb.block.ID)
		return
	}
	bb.block.Term = t
}

func (bb *BlockBuilder) Jump(target BlockID, args ...RegisterID) {
	bb.terminate(Terminator{Kind: TermJump, Jump: JumpTerm{
		To: BlockJump{Target: target, Args: append([]RegisterID(nil), args...)},
	}})
}

func (bb *BlockBuilder) JumpIf(cond RegisterID, then BlockID, thenArgs []RegisterID, els BlockID, elseArgs []RegisterID) {
	bb.terminate(Terminator{Kind: TermJumpIf, JumpIf: JumpIfTerm{
		Cond: cond,
		Then: BlockJump{Target: then, Args: append([]RegisterID(nil), thenArgs...)},
		Else: BlockJump{Target: els, Args: append([]RegisterID(nil), elseArgs...)},
	}})
}

func (bb *BlockBuilder) Return(value RegisterID) {
	bb.terminate(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: value}})
}

func (bb *BlockBuilder) ReturnVoid() {
	bb.terminate(Terminator{Kind: TermReturn})
}

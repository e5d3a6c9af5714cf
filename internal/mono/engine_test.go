package mono

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"symbex/internal/graph"
	"symbex/internal/ir"
	"symbex/internal/types"
)

func build(t *testing.T, b *ir.ProgramBuilder) *ir.Program {
	t.Helper()
	p, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return p
}

func specialize(t *testing.T, p *ir.Program) *AnnotatedBlocks {
	t.Helper()
	blocks, err := Specialize(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("specialize failed: %v", err)
	}
	return blocks
}

// runFrom explores fn as if it were the entrypoint, entered with args.
func runFrom(t *testing.T, p *ir.Program, fn ir.FunctionID, opt Options, args ...types.ValueType) (*Engine, types.ReturnType, error) {
	t.Helper()
	e, err := NewEngine(context.Background(), p, opt)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	entry, ok := p.EntryRef(fn)
	if !ok {
		t.Fatalf("function %s has no entry", fn)
	}
	e.entry = keyOf(entry, args)
	ret, err := e.Run()
	return e, ret, err
}

func expectKind(t *testing.T, err error, want ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	kind, ok := Classify(err)
	if !ok || kind != want {
		t.Fatalf("expected %s error, got %v (%v)", want, kind, err)
	}
	var me *Error
	errors.As(err, &me)
	return me
}

func TestHelloWorld(t *testing.T) {
	b := ir.NewProgramBuilder()
	printFn := b.ExternalFunction("print", ir.FFIReturnVoid, ir.FFITypeRuntime, ir.FFITypeAny, ir.FFITypeAny)
	hello := b.StringConstant("hello", "Hello, World!")
	main := b.Main()
	rt := main.Entry().GetRuntime()
	msg := main.Entry().MakeString(hello)
	main.Entry().CallExternal(printFn, rt, msg, msg)
	main.Entry().ReturnVoid()
	p := build(t, b)

	blocks := specialize(t, p)
	if blocks.Len() != 1 {
		t.Fatalf("expected 1 specialized block, got %d", blocks.Len())
	}
	blk, ok := blocks.Block(blocks.Entry)
	if !ok {
		t.Fatalf("entry block missing")
	}
	if got := blk.Registers[rt]; got != types.Runtime {
		t.Fatalf("%s: got %s, want Runtime", rt, got)
	}
	if got := blk.Registers[msg]; got != types.ExactString(hello) {
		t.Fatalf("%s: got %s, want ExactString(%s)", msg, got, hello)
	}
	if blk.Return != types.Void {
		t.Fatalf("return type: got %s, want Void", blk.Return)
	}
	if len(blk.Successors) != 0 || blk.Branch != BranchReturn {
		t.Fatalf("unexpected successors %v (%s)", blk.Successors, blk.Branch)
	}
	if ret, _ := blocks.ReturnType(blocks.Entry); ret != types.Void {
		t.Fatalf("ReturnType lookup: got %s", ret)
	}
	entry, _ := p.EntryRef(p.Entrypoint)
	if id, ok := blocks.Lookup(entry, nil); !ok || id != blocks.Entry {
		t.Fatalf("Lookup(entry) = %s, %v", id, ok)
	}
}

func TestDeadBranchIsNeverVisited(t *testing.T) {
	b := ir.NewProgramBuilder()
	readLine := b.ExternalFunction("read_line", ir.FFIReturns(ir.FFITypeString))
	main := b.Main()
	then := main.Block(0)
	els := main.Block(0)

	two := main.Entry().MakeInteger(2)
	five := main.Entry().MakeInteger(5)
	cond := main.Entry().CompareLessThan(two, five)
	main.Entry().JumpIf(cond, then.ID(), nil, els.ID(), nil)

	then.ReturnVoid()

	// Adding a string to an integer fails if this block is ever explored.
	s := els.CallExternalResult(readLine)
	n := els.MakeInteger(1)
	els.Add(s, n)
	els.ReturnVoid()
	p := build(t, b)

	blocks := specialize(t, p)
	if blocks.Len() != 2 {
		t.Fatalf("expected 2 specialized blocks, got %d", blocks.Len())
	}
	entry, _ := blocks.Block(blocks.Entry)
	if entry.Registers[cond] != types.Bool(true) {
		t.Fatalf("2 < 5 folded to %s", entry.Registers[cond])
	}
	if entry.Branch != BranchThen || len(entry.Successors) != 1 {
		t.Fatalf("expected a single then successor, got %s %v", entry.Branch, entry.Successors)
	}
	if _, ok := blocks.Lookup(ir.BlockRef{Func: p.Entrypoint, Block: els.ID()}, nil); ok {
		t.Fatalf("else block should not be specialized")
	}
}

func TestOverflowingSumKeepsBothBranches(t *testing.T) {
	b := ir.NewProgramBuilder()
	main := b.Main()
	then := main.Block(0)
	els := main.Block(0)

	big := main.Entry().MakeInteger(math.MaxInt64)
	sum := main.Entry().Add(big, main.Entry().MakeInteger(1))
	cond := main.Entry().CompareLessThan(sum, big)
	main.Entry().JumpIf(cond, then.ID(), nil, els.ID(), nil)
	then.ReturnVoid()
	els.ReturnVoid()
	p := build(t, b)

	blocks := specialize(t, p)
	entry, _ := blocks.Block(blocks.Entry)
	if entry.Registers[sum] != types.Number {
		t.Fatalf("MaxInt64+1 folded to %s", entry.Registers[sum])
	}
	if entry.Registers[cond] != types.Boolean || entry.Branch != BranchBoth {
		t.Fatalf("condition %s, branch %s", entry.Registers[cond], entry.Branch)
	}
	if _, ok := blocks.Lookup(ir.BlockRef{Func: p.Entrypoint, Block: els.ID()}, nil); !ok {
		t.Fatalf("else block was not specialized")
	}
	if blocks.Len() != 3 {
		t.Fatalf("expected 3 specialized blocks, got %d", blocks.Len())
	}
}

func TestAbstractConditionVisitsBothBranches(t *testing.T) {
	b := ir.NewProgramBuilder()
	pick := b.Function("pick", 1)
	then := pick.Block(0)
	els := pick.Block(0)
	pick.Entry().JumpIf(pick.Params()[0], then.ID(), nil, els.ID(), nil)
	then.Return(then.MakeInteger(1))
	els.Return(els.MakeInteger(1))
	b.Main().Entry().ReturnVoid()
	p := build(t, b)

	e, ret, err := runFrom(t, p, pick.ID(), Options{}, types.Boolean)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ret != types.Returns(types.ExactInteger(1)) {
		t.Fatalf("return type: got %s", ret)
	}
	blocks, err := e.Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	entry, _ := blocks.Block(blocks.Entry)
	if entry.Branch != BranchBoth || len(entry.Successors) != 2 {
		t.Fatalf("expected both successors, got %s %v", entry.Branch, entry.Successors)
	}
	if entry.Successors[0].Block.Block != then.ID() || entry.Successors[1].Block.Block != els.ID() {
		t.Fatalf("successors out of order: %v", entry.Successors)
	}
	if blocks.Len() != 3 {
		t.Fatalf("expected 3 specialized blocks, got %d", blocks.Len())
	}
}

func TestDifferingReturnValuesAreUnsupported(t *testing.T) {
	b := ir.NewProgramBuilder()
	pick := b.Function("pick", 1)
	then := pick.Block(0)
	els := pick.Block(0)
	pick.Entry().JumpIf(pick.Params()[0], then.ID(), nil, els.ID(), nil)
	then.Return(then.MakeInteger(1))
	els.Return(els.MakeInteger(2))
	b.Main().Entry().ReturnVoid()
	p := build(t, b)

	_, _, err := runFrom(t, p, pick.ID(), Options{}, types.Boolean)
	me := expectKind(t, err, ErrUnsupported)
	if !errors.Is(err, types.ErrUnsupportedUnify) {
		t.Fatalf("expected ErrUnsupportedUnify in chain, got %v", err)
	}
	if me.Key.Block.Block != els.ID() {
		t.Fatalf("error should name the else block, got %s", me.Key)
	}
}

func TestSelfRecursionResolvesToNever(t *testing.T) {
	b := ir.NewProgramBuilder()
	loop := b.Function("loop", 1)
	res := loop.Entry().CallResult(loop.ID(), loop.Params()[0])
	after := loop.Entry().MakeInteger(9)
	loop.Entry().Return(res)

	main := b.Main()
	n := main.Entry().MakeInteger(1)
	main.Entry().CallResult(loop.ID(), n)
	main.Entry().ReturnVoid()
	p := build(t, b)

	e, err := NewEngine(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ret, err := e.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsNever() {
		t.Fatalf("expected Never, got %s", ret)
	}
	if st := e.Stats(); st.Calls != 2 || st.Recursive != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	blocks, err := e.Extract()
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if blocks.Len() != 2 {
		t.Fatalf("expected 2 specialized blocks, got %d", blocks.Len())
	}
	entryRef, _ := p.EntryRef(loop.ID())
	id, ok := blocks.Lookup(entryRef, []types.ValueType{types.ExactInteger(1)})
	if !ok {
		t.Fatalf("loop(ExactInteger(1)) was not specialized")
	}
	blk, _ := blocks.Block(id)
	if blk.Branch != BranchUnreachable || blk.Evaluated != 1 {
		t.Fatalf("expected unreachable after the call, got %s evaluated=%d", blk.Branch, blk.Evaluated)
	}
	if _, ok := blk.Registers[after]; ok {
		t.Fatalf("instruction after a never-returning call was evaluated")
	}
	mainBlk, _ := blocks.Block(blocks.Entry)
	if mainBlk.Branch != BranchUnreachable || !mainBlk.Return.IsNever() {
		t.Fatalf("main should end unreachable, got %s %s", mainBlk.Branch, mainBlk.Return)
	}
}

func TestMutualRecursionTerminates(t *testing.T) {
	b := ir.NewProgramBuilder()
	even := b.Function("even", 1)
	odd := b.Function("odd", 1)
	even.Entry().Return(even.Entry().CallResult(odd.ID(), even.Params()[0]))
	odd.Entry().Return(odd.Entry().CallResult(even.ID(), odd.Params()[0]))
	main := b.Main()
	main.Entry().Call(even.ID(), main.Entry().MakeInteger(4))
	main.Entry().ReturnVoid()
	p := build(t, b)

	blocks := specialize(t, p)
	if blocks.Len() != 3 {
		t.Fatalf("expected main, even and odd blocks, got %d", blocks.Len())
	}
	for _, blk := range blocks.Blocks() {
		if !blk.Return.IsNever() {
			t.Fatalf("%s: expected Never, got %s", blk.Key, blk.Return)
		}
	}
}

// countTo builds a function that recurses with n+1 until n reaches limit
// and then returns n.
func countTo(b *ir.ProgramBuilder, limit int64) *ir.FunctionBuilder {
	f := b.Function("count", 1)
	rec := f.Block(1)
	done := f.Block(1)
	n := f.Params()[0]
	lim := f.Entry().MakeInteger(limit)
	c := f.Entry().CompareLessThan(n, lim)
	f.Entry().JumpIf(c, rec.ID(), []ir.RegisterID{n}, done.ID(), []ir.RegisterID{n})

	one := rec.MakeInteger(1)
	next := rec.Add(rec.Params()[0], one)
	rec.Return(rec.CallResult(f.ID(), next))

	done.Return(done.Params()[0])
	return f
}

func TestSpecializesPerArgumentTuple(t *testing.T) {
	b := ir.NewProgramBuilder()
	count := countTo(b, 3)
	main := b.Main()
	main.Entry().Return(main.Entry().CallResult(count.ID(), main.Entry().MakeInteger(0)))
	p := build(t, b)

	blocks := specialize(t, p)
	if blocks.Len() != 9 {
		t.Fatalf("expected 9 specialized blocks, got %d", blocks.Len())
	}
	entry, _ := blocks.Block(blocks.Entry)
	if entry.Return != types.Returns(types.ExactInteger(3)) {
		t.Fatalf("main returns %s", entry.Return)
	}
	countEntry, _ := p.EntryRef(count.ID())
	for n := int64(0); n <= 3; n++ {
		if _, ok := blocks.Lookup(countEntry, []types.ValueType{types.ExactInteger(n)}); !ok {
			t.Fatalf("count(%d) missing", n)
		}
	}
	if _, ok := blocks.Lookup(countEntry, []types.ValueType{types.ExactInteger(4)}); ok {
		t.Fatalf("count(4) should never be requested")
	}
}

func TestDepthGuard(t *testing.T) {
	b := ir.NewProgramBuilder()
	count := countTo(b, 1_000_000)
	main := b.Main()
	main.Entry().Return(main.Entry().CallResult(count.ID(), main.Entry().MakeInteger(0)))
	p := build(t, b)

	e, err := NewEngine(context.Background(), p, Options{MaxDepth: 40})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = e.Run()
	expectKind(t, err, ErrResource)
	if !errors.Is(err, graph.ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	stack := e.Stack()
	if len(stack) != 40 {
		t.Fatalf("expected 40 frames, got %d", len(stack))
	}
	last := stack[len(stack)-1]
	if last.Call.Block.Func != count.ID() || last.Instr != 2 {
		t.Fatalf("innermost frame should sit on the recursive call, got %+v", last)
	}
	if _, err := e.Extract(); err == nil {
		t.Fatalf("extract after a failed run should fail")
	}
}

func TestRepeatedCallIsReused(t *testing.T) {
	b := ir.NewProgramBuilder()
	id := b.Function("id", 1)
	id.Entry().Return(id.Params()[0])
	main := b.Main()
	x := main.Entry().MakeInteger(5)
	a := main.Entry().CallResult(id.ID(), x)
	c := main.Entry().CallResult(id.ID(), x)
	main.Entry().Return(main.Entry().Add(a, c))
	p := build(t, b)

	e, err := NewEngine(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ret, err := e.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ret != types.Returns(types.ExactInteger(10)) {
		t.Fatalf("main returns %s", ret)
	}
	if st := e.Stats(); st.Calls != 2 || st.Reused != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLoopVisitsKeyOncePerCall(t *testing.T) {
	b := ir.NewProgramBuilder()
	main := b.Main()
	loop := main.Block(1)
	main.Entry().Jump(loop.ID(), main.Entry().MakeInteger(0))
	loop.Jump(loop.ID(), loop.Params()[0])
	p := build(t, b)

	blocks := specialize(t, p)
	if blocks.Len() != 2 {
		t.Fatalf("expected 2 specialized blocks, got %d", blocks.Len())
	}
	blk, _ := blocks.Block(1)
	if blk.Branch != BranchJump || len(blk.Successors) != 1 || blk.Successors[0].ID() != blk.Key.ID() {
		t.Fatalf("loop block should jump to itself, got %s %v", blk.Branch, blk.Successors)
	}
	if !blk.Return.IsNever() {
		t.Fatalf("a call that never returns has type Never, got %s", blk.Return)
	}
}

func TestTypeErrors(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *ir.ProgramBuilder, bb *ir.BlockBuilder)
		msg   string
		types []types.ValueType
	}{
		{
			name: "add string and integer",
			build: func(b *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				readLine := b.ExternalFunction("read_line", ir.FFIReturns(ir.FFITypeString))
				bb.Add(bb.CallExternalResult(readLine), bb.MakeInteger(1))
			},
			msg:   "cannot add",
			types: []types.ValueType{types.String, types.ExactInteger(1)},
		},
		{
			name: "compare runtime",
			build: func(_ *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				bb.CompareLessThan(bb.MakeInteger(1), bb.GetRuntime())
			},
			msg:   "right operand is not comparable",
			types: []types.ValueType{types.Runtime},
		},
		{
			name: "add exact string",
			build: func(b *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				c := b.StringConstant("s", "s")
				bb.Add(bb.MakeString(c), bb.MakeInteger(1))
			},
			msg:   "left operand is not addable",
			types: []types.ValueType{types.ExactString(0)},
		},
		{
			name: "negate integer",
			build: func(_ *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				bb.Negate(bb.MakeInteger(1))
			},
			msg:   "operand is not a boolean",
			types: []types.ValueType{types.ExactInteger(1)},
		},
		{
			name: "integer passed as runtime",
			build: func(b *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				printFn := b.ExternalFunction("print", ir.FFIReturnVoid, ir.FFITypeRuntime, ir.FFITypeAny, ir.FFITypeAny)
				n := bb.MakeInteger(1)
				bb.CallExternal(printFn, n, n, n)
			},
			msg:   "argument 0 of print cannot be passed as runtime",
			types: []types.ValueType{types.ExactInteger(1)},
		},
		{
			name: "pointer width mismatch",
			build: func(b *ir.ProgramBuilder, bb *ir.BlockBuilder) {
				alloc := b.ExternalFunction("alloc8", ir.FFIReturns(ir.FFIPointerOf(8)))
				store := b.ExternalFunction("store16", ir.FFIReturnVoid, ir.FFIPointerOf(16))
				bb.CallExternal(store, bb.CallExternalResult(alloc))
			},
			msg:   "argument 0 of store16",
			types: []types.ValueType{types.Pointer(8)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ir.NewProgramBuilder()
			main := b.Main()
			tc.build(b, main.Entry())
			main.Entry().ReturnVoid()
			p := build(t, b)

			_, err := Specialize(context.Background(), p, Options{})
			me := expectKind(t, err, ErrType)
			if !strings.Contains(me.Msg, tc.msg) {
				t.Fatalf("message %q does not contain %q", me.Msg, tc.msg)
			}
			if me.Instr == NoInstr {
				t.Fatalf("type error should name the instruction")
			}
			if len(me.Types) != len(tc.types) {
				t.Fatalf("types: got %v, want %v", me.Types, tc.types)
			}
			for i := range tc.types {
				if me.Types[i] != tc.types[i] {
					t.Fatalf("types: got %v, want %v", me.Types, tc.types)
				}
			}
		})
	}
}

func TestNonBooleanCondition(t *testing.T) {
	b := ir.NewProgramBuilder()
	main := b.Main()
	next := main.Block(0)
	main.Entry().JumpIf(main.Entry().MakeInteger(1), next.ID(), nil, next.ID(), nil)
	next.ReturnVoid()
	p := build(t, b)

	_, err := Specialize(context.Background(), p, Options{})
	me := expectKind(t, err, ErrType)
	if me.Op != "jump_if" || me.Instr != NoInstr {
		t.Fatalf("unexpected error location %q %d", me.Op, me.Instr)
	}
}

// emptyMain returns a program whose main only returns, plus a function
// and an external function nothing calls yet.
func emptyMain(t *testing.T) (*ir.Program, ir.ExternalFunctionID, ir.FunctionID) {
	t.Helper()
	b := ir.NewProgramBuilder()
	printFn := b.ExternalFunction("print", ir.FFIReturnVoid, ir.FFITypeAny)
	nothing := b.Function("nothing", 0)
	nothing.Entry().ReturnVoid()
	b.Main().Entry().ReturnVoid()
	return build(t, b), printFn, nothing.ID()
}

func TestRepresentationErrors(t *testing.T) {
	t.Run("void external into register", func(t *testing.T) {
		b := ir.NewProgramBuilder()
		printFn := b.ExternalFunction("print", ir.FFIReturnVoid, ir.FFITypeAny)
		main := b.Main()
		main.Entry().CallExternalResult(printFn, main.Entry().MakeInteger(1))
		main.Entry().ReturnVoid()
		_, err := Specialize(context.Background(), build(t, b), Options{})
		expectKind(t, err, ErrRepresentation)
	})

	t.Run("void static into register", func(t *testing.T) {
		p, _, nothing := emptyMain(t)
		blk := p.Functions[p.Entrypoint].EntryBlock()
		blk.Instrs = append(blk.Instrs, ir.Instr{
			Kind: ir.InstrCall,
			Call: ir.CallInstr{HasDst: true, Dst: 0, Callee: ir.Callee{Kind: ir.CalleeStatic, Func: nothing}},
		})
		_, err := Specialize(context.Background(), p, Options{})
		me := expectKind(t, err, ErrRepresentation)
		if !strings.Contains(me.Msg, "void result of nothing") {
			t.Fatalf("unexpected message %q", me.Msg)
		}
	})

	t.Run("arity mismatch", func(t *testing.T) {
		p, _, nothing := emptyMain(t)
		_, _, err := runFrom(t, p, nothing, Options{}, types.Any)
		me := expectKind(t, err, ErrRepresentation)
		if !strings.Contains(me.Msg, "takes 0 arguments, got 1") {
			t.Fatalf("unexpected message %q", me.Msg)
		}
	})

	t.Run("external arity", func(t *testing.T) {
		p, printFn, _ := emptyMain(t)
		blk := p.Functions[p.Entrypoint].EntryBlock()
		blk.Instrs = append(blk.Instrs, ir.Instr{
			Kind: ir.InstrCall,
			Call: ir.CallInstr{Callee: ir.Callee{Kind: ir.CalleeExternal, External: printFn}},
		})
		_, err := Specialize(context.Background(), p, Options{})
		me := expectKind(t, err, ErrRepresentation)
		if !strings.Contains(me.Msg, "print takes 1 arguments, got 0") {
			t.Fatalf("unexpected message %q", me.Msg)
		}
	})

	t.Run("undefined register", func(t *testing.T) {
		p, _, _ := emptyMain(t)
		blk := p.Functions[p.Entrypoint].EntryBlock()
		blk.Term = ir.Terminator{Kind: ir.TermReturn, Return: ir.ReturnTerm{HasValue: true, Value: 42}}
		_, err := Specialize(context.Background(), p, Options{})
		me := expectKind(t, err, ErrRepresentation)
		if !strings.Contains(me.Msg, "read before it is assigned") {
			t.Fatalf("unexpected message %q", me.Msg)
		}
	})
}

func TestErrorsPropagateFromCallee(t *testing.T) {
	b := ir.NewProgramBuilder()
	bad := b.Function("bad", 1)
	bad.Entry().Return(bad.Entry().Negate(bad.Params()[0]))
	main := b.Main()
	main.Entry().Call(bad.ID(), main.Entry().MakeInteger(3))
	main.Entry().ReturnVoid()
	p := build(t, b)

	e, err := NewEngine(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = e.Run()
	me := expectKind(t, err, ErrType)
	if me.Key.Block.Func != bad.ID() {
		t.Fatalf("error should be raised in bad, got %s", me.Key)
	}
	stack := e.Stack()
	if len(stack) != 2 || stack[0].Call.Block.Func != p.Entrypoint || stack[1].Instr != 0 {
		t.Fatalf("unexpected stack %+v", stack)
	}
	if _, err := e.Run(); !errors.Is(err, me) {
		t.Fatalf("a failed engine should keep reporting the same error, got %v", err)
	}
}

func TestClassifyForeignErrors(t *testing.T) {
	if _, ok := Classify(errors.New("disk full")); ok {
		t.Fatalf("foreign errors should not classify")
	}
	if kind, ok := Classify(graph.ErrCycle); !ok || kind != ErrUnsupported {
		t.Fatalf("cycle classified as %s", kind)
	}
	if kind, ok := Classify(graph.ErrBogus); !ok || kind != ErrUnsupported {
		t.Fatalf("bogus classified as %s", kind)
	}
}

package mono

import (
	"fmt"
	"sync"

	"symbex/internal/graph"
	"symbex/internal/ir"
	"symbex/internal/trace"
	"symbex/internal/types"
)

// callWorker resolves one call: it walks every block reachable from the
// root key inside the callee and unifies what they return.
type callWorker struct {
	engine *Engine
	root   ExecKey

	mu    sync.Mutex
	cur   ExecKey
	instr int
}

func (w *callWorker) frame() StackFrame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return StackFrame{Call: w.root, Block: w.cur, Instr: w.instr}
}

func (w *callWorker) at(key ExecKey, instr int) {
	w.mu.Lock()
	w.cur = key
	w.instr = instr
	w.mu.Unlock()
}

func (w *callWorker) Work(sys graph.System[KeyID, CallID]) (graph.Computation[CallID], error) {
	e := w.engine
	call, err := e.typed.Reserve()
	if err != nil {
		return graph.Computation[CallID]{}, err
	}
	e.memo.Insert(w.root, InProgress(call))

	span := trace.Begin(e.tracer, trace.ScopeCall, "call "+w.root.String(), e.parentSpan())
	e.pushSpan(span.Parent())
	fn, err := w.explore(sys)
	e.popSpan()
	if err != nil {
		span.End("failed")
		return graph.Computation[CallID]{}, err
	}
	span.WithExtra("visits", fmt.Sprint(len(fn.Visits))).End(fn.Return.String())

	e.typed.Store(call, fn)
	e.memo.Insert(w.root, Finished(call))
	return graph.Done(call), nil
}

// explore drains a FIFO worklist of block keys local to this call.
func (w *callWorker) explore(sys graph.System[KeyID, CallID]) (*TypedFunction, error) {
	fn := &TypedFunction{Key: w.root, Return: types.Never}
	queue := []ExecKey{w.root}
	visited := make(map[KeyID]struct{})
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		id := key.ID()
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		visit, ret, err := w.exploreBlock(sys, key)
		if err != nil {
			return nil, err
		}
		unified, err := types.Unify(fn.Return, ret)
		if err != nil {
			return nil, &Error{
				Kind:  ErrUnsupported,
				Key:   key,
				Instr: NoInstr,
				Op:    "return",
				Msg:   "blocks of one call return different types",
				Err:   err,
			}
		}
		fn.Return = unified
		fn.Visits = append(fn.Visits, visit)
		queue = append(queue, visit.Successors...)
	}
	return fn, nil
}

// exploreBlock evaluates one block under key. The returned type is what
// the block contributes to the call: Never unless it returns.
func (w *callWorker) exploreBlock(sys graph.System[KeyID, CallID], key ExecKey) (Visit, types.ReturnType, error) {
	w.at(key, NoInstr)
	e := w.engine
	blk, ok := e.prog.Block(key.Block)
	if !ok {
		return Visit{}, types.Never, reprErr(key, NoInstr, "", "block does not exist")
	}
	if len(key.Args) != len(blk.Params) {
		return Visit{}, types.Never, reprErr(key, NoInstr, "", "block takes %d arguments, got %d", len(blk.Params), len(key.Args))
	}
	trace.Point(e.tracer, trace.ScopeBlock, "block", key.String(), e.parentSpan())

	ev := &blockEval{w: w, sys: sys, key: key, regs: make(map[ir.RegisterID]types.ValueType, len(blk.Params)+len(blk.Instrs))}
	for i, p := range blk.Params {
		ev.regs[p] = key.Args[i]
	}
	visit := Visit{Key: key, Registers: ev.regs}

	for i := range blk.Instrs {
		w.at(key, i)
		reachable, err := ev.instr(i, &blk.Instrs[i])
		if err != nil {
			return Visit{}, types.Never, err
		}
		visit.Evaluated = i + 1
		if !reachable {
			visit.Branch = BranchUnreachable
			return visit, types.Never, nil
		}
	}

	w.at(key, NoInstr)
	ret, err := ev.term(&blk.Term, &visit)
	if err != nil {
		return Visit{}, types.Never, err
	}
	return visit, ret, nil
}

// blockEval carries the register state of one block visit.
type blockEval struct {
	w    *callWorker
	sys  graph.System[KeyID, CallID]
	key  ExecKey
	regs map[ir.RegisterID]types.ValueType
}

func (ev *blockEval) read(instr int, op string, r ir.RegisterID) (types.ValueType, error) {
	t, ok := ev.regs[r]
	if !ok {
		return types.ValueType{}, reprErr(ev.key, instr, op, "register %s is read before it is assigned", r)
	}
	return t, nil
}

func (ev *blockEval) readAll(instr int, op string, rs []ir.RegisterID) ([]types.ValueType, error) {
	out := make([]types.ValueType, len(rs))
	for i, r := range rs {
		t, err := ev.read(instr, op, r)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// instr evaluates one instruction. It reports false when the rest of the
// block can never run because a callee never returns.
func (ev *blockEval) instr(i int, in *ir.Instr) (bool, error) {
	prog := ev.w.engine.prog
	op := in.Kind.String()
	switch in.Kind {
	case ir.InstrGetRuntime:
		ev.regs[in.GetRuntime.Dst] = types.Runtime

	case ir.InstrMakeString:
		if _, ok := prog.Constant(in.MakeString.Const); !ok {
			return false, reprErr(ev.key, i, op, "constant %s does not exist", in.MakeString.Const)
		}
		ev.regs[in.MakeString.Dst] = types.ExactString(in.MakeString.Const)

	case ir.InstrMakeInteger:
		ev.regs[in.MakeInt.Dst] = types.ExactInteger(in.MakeInt.Value)

	case ir.InstrMakeBoolean:
		ev.regs[in.MakeBool.Dst] = types.Bool(in.MakeBool.Value)

	case ir.InstrCompareLessThan:
		lhs, rhs, err := ev.operands(i, op, in.Binary)
		if err != nil {
			return false, err
		}
		a, ok := lhs.IsComparable()
		if !ok {
			return false, typeErr(ev.key, i, op, "left operand is not comparable", lhs)
		}
		b, ok := rhs.IsComparable()
		if !ok {
			return false, typeErr(ev.key, i, op, "right operand is not comparable", rhs)
		}
		ev.regs[in.Binary.Dst] = types.LessThan(a, b)

	case ir.InstrAdd:
		lhs, rhs, err := ev.operands(i, op, in.Binary)
		if err != nil {
			return false, err
		}
		a, ok := lhs.IsAddable()
		if !ok {
			return false, typeErr(ev.key, i, op, "left operand is not addable", lhs)
		}
		b, ok := rhs.IsAddable()
		if !ok {
			return false, typeErr(ev.key, i, op, "right operand is not addable", rhs)
		}
		sum, err := types.Add(a, b)
		if err != nil {
			te := typeErr(ev.key, i, op, "cannot add", lhs, rhs)
			te.Err = err
			return false, te
		}
		ev.regs[in.Binary.Dst] = sum.ValueType()

	case ir.InstrNegate:
		v, err := ev.read(i, op, in.Negate.Operand)
		if err != nil {
			return false, err
		}
		neg, ok := types.Negate(v)
		if !ok {
			return false, typeErr(ev.key, i, op, "operand is not a boolean", v)
		}
		ev.regs[in.Negate.Dst] = neg

	case ir.InstrCall:
		switch in.Call.Callee.Kind {
		case ir.CalleeExternal:
			return true, ev.callExternal(i, op, &in.Call)
		case ir.CalleeStatic:
			return ev.callStatic(i, op, &in.Call)
		default:
			return false, reprErr(ev.key, i, op, "unknown callee kind %d", in.Call.Callee.Kind)
		}

	default:
		return false, reprErr(ev.key, i, op, "unknown instruction kind %d", in.Kind)
	}
	return true, nil
}

func (ev *blockEval) operands(i int, op string, bin ir.BinaryInstr) (types.ValueType, types.ValueType, error) {
	lhs, err := ev.read(i, op, bin.LHS)
	if err != nil {
		return types.ValueType{}, types.ValueType{}, err
	}
	rhs, err := ev.read(i, op, bin.RHS)
	if err != nil {
		return types.ValueType{}, types.ValueType{}, err
	}
	return lhs, rhs, nil
}

func (ev *blockEval) callExternal(i int, op string, call *ir.CallInstr) error {
	ext, ok := ev.w.engine.prog.ExternalFunctions[call.Callee.External]
	if !ok || ext == nil {
		return reprErr(ev.key, i, op, "external function %s does not exist", call.Callee.External)
	}
	if len(call.Args) != len(ext.Params) {
		return reprErr(ev.key, i, op, "%s takes %d arguments, got %d", ext.Name, len(ext.Params), len(call.Args))
	}
	args, err := ev.readAll(i, op, call.Args)
	if err != nil {
		return err
	}
	for j, param := range ext.Params {
		if !types.CanCoerce(args[j], param) {
			return typeErr(ev.key, i, op, fmt.Sprintf("argument %d of %s cannot be passed as %s", j, ext.Name, param), args[j])
		}
	}
	if !call.HasDst {
		return nil
	}
	if ext.Return.Void {
		return reprErr(ev.key, i, op, "assigns the void result of %s to %s", ext.Name, call.Dst)
	}
	ev.regs[call.Dst] = types.FromFFI(ext.Return.Value)
	return nil
}

func (ev *blockEval) callStatic(i int, op string, call *ir.CallInstr) (bool, error) {
	prog := ev.w.engine.prog
	entry, ok := prog.EntryRef(call.Callee.Func)
	if !ok {
		return false, reprErr(ev.key, i, op, "function %s does not exist", call.Callee.Func)
	}
	args, err := ev.readAll(i, op, call.Args)
	if err != nil {
		return false, err
	}
	ret, err := ev.w.engine.request(ev.sys, keyOf(entry, args))
	if err != nil {
		return false, err
	}
	switch ret.Kind {
	case types.ReturnNever:
		return false, nil
	case types.ReturnVoid:
		if call.HasDst {
			name := prog.Functions[call.Callee.Func].Name
			return false, reprErr(ev.key, i, op, "assigns the void result of %s to %s", name, call.Dst)
		}
	case types.ReturnValue:
		if call.HasDst {
			ev.regs[call.Dst] = ret.Value
		}
	}
	return true, nil
}

// term evaluates the terminator, filling in the branch decision and the
// successor keys of visit.
func (ev *blockEval) term(t *ir.Terminator, visit *Visit) (types.ReturnType, error) {
	op := t.Kind.String()
	switch t.Kind {
	case ir.TermJump:
		succ, err := ev.successor(op, t.Jump.To)
		if err != nil {
			return types.Never, err
		}
		visit.Branch = BranchJump
		visit.Successors = []ExecKey{succ}
		return types.Never, nil

	case ir.TermJumpIf:
		cond, err := ev.read(NoInstr, op, t.JumpIf.Cond)
		if err != nil {
			return types.Never, err
		}
		var targets []ir.BlockJump
		switch {
		case cond.Kind == types.KindBool && cond.Bool:
			visit.Branch = BranchThen
			targets = []ir.BlockJump{t.JumpIf.Then}
		case cond.Kind == types.KindBool:
			visit.Branch = BranchElse
			targets = []ir.BlockJump{t.JumpIf.Else}
		case cond.Kind == types.KindBoolean:
			visit.Branch = BranchBoth
			targets = []ir.BlockJump{t.JumpIf.Then, t.JumpIf.Else}
		default:
			return types.Never, typeErr(ev.key, NoInstr, op, "branch condition is not a boolean", cond)
		}
		for _, target := range targets {
			succ, err := ev.successor(op, target)
			if err != nil {
				return types.Never, err
			}
			visit.Successors = append(visit.Successors, succ)
		}
		return types.Never, nil

	case ir.TermReturn:
		visit.Branch = BranchReturn
		if !t.Return.HasValue {
			return types.Void, nil
		}
		v, err := ev.read(NoInstr, op, t.Return.Value)
		if err != nil {
			return types.Never, err
		}
		return types.Returns(v), nil

	default:
		return types.Never, reprErr(ev.key, NoInstr, op, "block is not terminated")
	}
}

func (ev *blockEval) successor(op string, jump ir.BlockJump) (ExecKey, error) {
	args, err := ev.readAll(NoInstr, op, jump.Args)
	if err != nil {
		return ExecKey{}, err
	}
	return keyOf(ir.BlockRef{Func: ev.key.Block.Func, Block: jump.Target}, args), nil
}


// Package mono specializes every reachable block of an IR program for the
// argument types it is actually entered with.
//
// The engine explores calls through a graph.Graph keyed by execution key.
// Each call is resolved by a worker that interprets its blocks over the
// symbolic lattice of package types; calls made along the way become
// nested graph requests. Once the entry call resolves, Extract turns the
// memo into one annotated block per visited key.
package mono

import (
	"context"
	"fmt"
	"sync"

	"symbex/internal/graph"
	"symbex/internal/ir"
	"symbex/internal/trace"
	"symbex/internal/types"
)

type Options struct {
	// MaxDepth bounds nested calls; zero uses graph.DefaultMaxDepth.
	MaxDepth int
}

// Engine holds all state of one specialization run. It explores a single
// program and is not reused.
type Engine struct {
	prog   *ir.Program
	tracer trace.Tracer

	graph *graph.Graph[KeyID, CallID]
	memo  *executions
	typed *typedTable

	mu      sync.Mutex
	pending map[KeyID]ExecKey
	spans   []trace.Parent
	reused  int
	cut     int

	entry     ExecKey
	extracted bool
}

func NewEngine(ctx context.Context, prog *ir.Program, opt Options) (*Engine, error) {
	if prog == nil {
		return nil, fmt.Errorf("mono: nil program")
	}
	entry, ok := prog.EntryRef(prog.Entrypoint)
	if !ok {
		return nil, fmt.Errorf("mono: entrypoint %s has no entry block", prog.Entrypoint)
	}
	e := &Engine{
		prog:    prog,
		tracer:  trace.FromContext(ctx),
		memo:    newExecutions(),
		typed:   newTypedTable(),
		pending: make(map[KeyID]ExecKey),
		entry:   keyOf(entry, nil),
	}
	e.spans = append(e.spans, trace.ParentFrom(ctx))
	e.graph = graph.New(e.newWorker, graph.Options{MaxDepth: opt.MaxDepth})
	return e, nil
}

// Entry is the key the program starts from: the entrypoint's entry block
// with no arguments.
func (e *Engine) Entry() ExecKey { return e.entry }

// Run explores everything reachable from the entry key and returns the
// program's return type.
func (e *Engine) Run() (types.ReturnType, error) {
	e.remember(e.entry)
	id, err := e.graph.Run(e.entry.ID())
	if err != nil {
		return types.ReturnType{}, err
	}
	return e.result(e.entry, *id)
}

// request resolves the return type of a call. A key already in progress
// on the current chain is a recursive call with an unchanged argument
// shape; it contributes Never instead of being explored again.
func (e *Engine) request(sys graph.System[KeyID, CallID], key ExecKey) (types.ReturnType, error) {
	id := key.ID()
	if st, ok := e.memo.Lookup(id); ok {
		switch st.Kind {
		case StatusInProgress:
			e.count(&e.cut)
			return types.Never, nil
		case StatusFinished:
			e.count(&e.reused)
			return e.result(key, st.Call)
		}
	}
	e.remember(key)
	call, err := sys.Spawn(id)
	if err != nil {
		return types.ReturnType{}, err
	}
	return e.result(key, *call)
}

func (e *Engine) result(key ExecKey, call CallID) (types.ReturnType, error) {
	fn, ok := e.typed.Get(call)
	if !ok {
		return types.ReturnType{}, reprErr(key, NoInstr, "", "%s has no typed function", call)
	}
	return fn.Return, nil
}

func (e *Engine) count(n *int) {
	e.mu.Lock()
	*n++
	e.mu.Unlock()
}

func (e *Engine) remember(key ExecKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[key.ID()] = key
}

func (e *Engine) newWorker(id KeyID) (graph.Worker[KeyID, CallID], error) {
	e.mu.Lock()
	key, ok := e.pending[id]
	delete(e.pending, id)
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("mono: no pending key for %s", id)
	}
	return &callWorker{engine: e, root: key, instr: NoInstr}, nil
}

func (e *Engine) pushSpan(p trace.Parent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, p)
}

func (e *Engine) popSpan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.spans) > 1 {
		e.spans = e.spans[:len(e.spans)-1]
	}
}

func (e *Engine) parentSpan() trace.Parent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spans[len(e.spans)-1]
}

// StackFrame describes one call that was being resolved.
type StackFrame struct {
	// Call is the key the call was requested with.
	Call ExecKey
	// Block is the key being evaluated inside the call when it stopped.
	Block ExecKey
	// Instr is the instruction index within Block, or NoInstr.
	Instr int
}

// Stack returns the chain of calls being resolved, outermost first. After
// a failed Run it shows the calls that led to the failure.
func (e *Engine) Stack() []StackFrame {
	frames := e.graph.Stack()
	out := make([]StackFrame, 0, len(frames))
	for _, f := range frames {
		w, ok := f.Worker.(*callWorker)
		if !ok {
			continue
		}
		out = append(out, w.frame())
	}
	return out
}

// Stats summarizes the run.
type Stats struct {
	// Calls is the number of explored calls.
	Calls int
	// Reused counts requests answered from a finished call.
	Reused int
	// Recursive counts requests that hit a call still in progress.
	Recursive int
}

func (e *Engine) Stats() Stats {
	spawned, hits := e.graph.Stats()
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Calls: spawned, Reused: e.reused + hits, Recursive: e.cut}
}

// Specialize runs a fresh engine over prog and extracts the result.
func Specialize(ctx context.Context, prog *ir.Program, opt Options) (*AnnotatedBlocks, error) {
	e, err := NewEngine(ctx, prog, opt)
	if err != nil {
		return nil, err
	}
	if _, err := e.Run(); err != nil {
		return nil, err
	}
	return e.Extract()
}

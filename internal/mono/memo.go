package mono

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"symbex/internal/ir"
	"symbex/internal/types"
)

// CallID names one explored call in the typed-function table.
type CallID uint32

func (id CallID) String() string { return fmt.Sprintf("call%d", id) }

// StatusKind is the lifecycle state of an execution key.
type StatusKind uint8

const (
	StatusInProgress StatusKind = iota + 1
	StatusFinished
)

// Status records where an execution key stands. Transitions only go from
// absent to in progress to finished.
type Status struct {
	Kind StatusKind
	Call CallID
}

func InProgress(id CallID) Status { return Status{Kind: StatusInProgress, Call: id} }
func Finished(id CallID) Status   { return Status{Kind: StatusFinished, Call: id} }

type execEntry struct {
	Key    ExecKey
	Status Status
}

// executions is the memo of every call key ever requested.
type executions struct {
	mu      sync.Mutex
	index   map[KeyID]int
	entries []execEntry
}

func newExecutions() *executions {
	return &executions{index: make(map[KeyID]int)}
}

func (m *executions) Lookup(id KeyID) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return Status{}, false
	}
	return m.entries[i].Status, true
}

// Insert stores st for key, replacing an earlier status for the same key.
// Replacing keeps the key's original insertion position.
func (m *executions) Insert(key ExecKey, st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := key.ID()
	if i, ok := m.index[id]; ok {
		m.entries[i].Status = st
		return
	}
	m.index[id] = len(m.entries)
	m.entries = append(m.entries, execEntry{Key: key, Status: st})
}

// Entries returns every entry in insertion order. Only valid once the
// graph has resolved; the caller checks that with the graph drain.
func (m *executions) Entries() []execEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]execEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *executions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// BranchKind is the control decision taken at the end of a visited block.
type BranchKind uint8

const (
	BranchJump BranchKind = iota + 1
	BranchThen
	BranchElse
	BranchBoth
	BranchReturn
	// BranchUnreachable replaces the terminator of a block cut short by a
	// call that never returns.
	BranchUnreachable
)

func (k BranchKind) String() string {
	switch k {
	case BranchJump:
		return "jump"
	case BranchThen:
		return "then"
	case BranchElse:
		return "else"
	case BranchBoth:
		return "both"
	case BranchReturn:
		return "return"
	case BranchUnreachable:
		return "unreachable"
	default:
		return "none"
	}
}

// Visit is one (block, args) pair evaluated while resolving a call.
type Visit struct {
	Key        ExecKey
	Branch     BranchKind
	Successors []ExecKey
	Registers  map[ir.RegisterID]types.ValueType
	// Evaluated counts the instructions that ran before the block ended or
	// became unreachable.
	Evaluated int
}

// TypedFunction is the result of resolving one call.
type TypedFunction struct {
	Key    ExecKey
	Return types.ReturnType
	Visits []Visit
}

// typedTable maps call ids to their typed functions.
type typedTable struct {
	mu    sync.Mutex
	next  CallID
	funcs map[CallID]*TypedFunction
}

func newTypedTable() *typedTable {
	return &typedTable{funcs: make(map[CallID]*TypedFunction)}
}

// Reserve mints a fresh call id.
func (t *typedTable) Reserve() (CallID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	n, err := safecast.Conv[uint32](uint64(id) + 1)
	if err != nil {
		return 0, fmt.Errorf("mono: call id overflow: %w", err)
	}
	t.next = CallID(n)
	return id, nil
}

func (t *typedTable) Store(id CallID, fn *TypedFunction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.funcs[id] = fn
}

func (t *typedTable) Get(id CallID) (*TypedFunction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn, ok := t.funcs[id]
	return fn, ok
}

func (t *typedTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.funcs)
}

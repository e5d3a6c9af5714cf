// Package graph runs identified workers that may depend on each other and
// memoizes their results.
//
// Execution is depth-first and synchronous: a worker asking for another id
// runs that worker to completion before continuing. A request for an id
// that is still being computed further up the chain is a cycle and aborts
// the whole graph; no fixed-point iteration is attempted.
package graph

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultMaxDepth bounds the chain of nested workers.
const DefaultMaxDepth = 1000

var (
	ErrCycle         = errors.New("graph: dependency cycle")
	ErrBogus         = errors.New("graph: worker produced a bogus computation")
	ErrDepthExceeded = errors.New("graph: worker depth limit exceeded")
	ErrInFlight      = errors.New("graph: results still in flight")
	ErrDrained       = errors.New("graph: results already drained")
)

// Computation is what a worker hands back. A bogus computation marks a
// shape the worker cannot handle.
type Computation[R any] struct {
	Result R
	Bogus  bool
}

func Done[R any](r R) Computation[R] { return Computation[R]{Result: r} }

func Bogus[R any]() Computation[R] { return Computation[R]{Bogus: true} }

// Worker computes the result for one id.
type Worker[ID comparable, R any] interface {
	Work(sys System[ID, R]) (Computation[R], error)
}

// Factory builds the worker for an id the first time it is requested.
type Factory[ID comparable, R any] func(id ID) (Worker[ID, R], error)

// Frame is one entry of the worker call stack.
type Frame[ID comparable, R any] struct {
	ID     ID
	Worker Worker[ID, R]
}

type Options struct {
	MaxDepth int
}

// Graph owns the memo of finished results and the live call stack.
type Graph[ID comparable, R any] struct {
	mu       sync.Mutex
	factory  Factory[ID, R]
	maxDepth int

	results    map[ID]*R
	order      []ID
	inProgress map[ID]struct{}
	stack      []Frame[ID, R]
	running    int

	failed  error
	drained bool

	spawned int
	hits    int
}

func New[ID comparable, R any](factory Factory[ID, R], opt Options) *Graph[ID, R] {
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	return &Graph[ID, R]{
		factory:    factory,
		maxDepth:   opt.MaxDepth,
		results:    make(map[ID]*R),
		inProgress: make(map[ID]struct{}),
	}
}

// System is the handle a worker uses to request other ids.
type System[ID comparable, R any] struct {
	g *Graph[ID, R]
}

// Spawn returns the result for id, computing it first if needed.
func (s System[ID, R]) Spawn(id ID) (*R, error) {
	return s.g.spawn(id)
}

// Depth reports how many workers are currently on the stack.
func (s System[ID, R]) Depth() int {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	return len(s.g.stack)
}

// Run resolves root and everything it depends on. After a failure the
// graph is poisoned and every later Run returns the same error.
func (g *Graph[ID, R]) Run(root ID) (*R, error) {
	g.mu.Lock()
	if g.failed != nil {
		err := g.failed
		g.mu.Unlock()
		return nil, err
	}
	if g.drained {
		g.mu.Unlock()
		return nil, ErrDrained
	}
	g.running++
	g.mu.Unlock()

	res, err := g.spawn(root)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.running--
	if err != nil && g.failed == nil {
		g.failed = err
	}
	return res, err
}

func (g *Graph[ID, R]) spawn(id ID) (*R, error) {
	g.mu.Lock()
	if g.failed != nil {
		err := g.failed
		g.mu.Unlock()
		return nil, err
	}
	if res, ok := g.results[id]; ok {
		g.hits++
		g.mu.Unlock()
		return res, nil
	}
	if _, busy := g.inProgress[id]; busy {
		g.mu.Unlock()
		return nil, g.fail(fmt.Errorf("%w: %v is already being computed", ErrCycle, id))
	}
	if len(g.stack) >= g.maxDepth {
		g.mu.Unlock()
		return nil, g.fail(fmt.Errorf("%w: %d nested workers while requesting %v", ErrDepthExceeded, g.maxDepth, id))
	}
	g.mu.Unlock()

	w, err := g.factory(id)
	if err != nil {
		return nil, g.fail(err)
	}

	g.mu.Lock()
	g.inProgress[id] = struct{}{}
	g.stack = append(g.stack, Frame[ID, R]{ID: id, Worker: w})
	g.spawned++
	g.mu.Unlock()

	comp, err := w.Work(System[ID, R]{g: g})
	if err != nil {
		return nil, g.fail(err)
	}
	if comp.Bogus {
		return nil, g.fail(fmt.Errorf("%w: %v", ErrBogus, id))
	}

	// Frames are only popped on success so a failed run keeps its stack.
	g.mu.Lock()
	defer g.mu.Unlock()
	res := new(R)
	*res = comp.Result
	g.results[id] = res
	g.order = append(g.order, id)
	delete(g.inProgress, id)
	g.stack = g.stack[:len(g.stack)-1]
	return res, nil
}

func (g *Graph[ID, R]) fail(err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failed == nil {
		g.failed = err
	}
	return err
}

// Stack returns a copy of the worker call stack, innermost frame last.
// After a failed Run it still holds the chain that led to the failure.
func (g *Graph[ID, R]) Stack() []Frame[ID, R] {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Frame[ID, R], len(g.stack))
	copy(out, g.stack)
	return out
}

// Err returns the error that poisoned the graph, if any.
func (g *Graph[ID, R]) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed
}

// Stats reports how many workers ran and how many requests hit the memo.
func (g *Graph[ID, R]) Stats() (spawned, hits int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawned, g.hits
}

// Results is the drained id to result mapping.
type Results[ID comparable, R any] struct {
	byID  map[ID]R
	order []ID
}

func (r *Results[ID, R]) Get(id ID) (R, bool) {
	v, ok := r.byID[id]
	return v, ok
}

func (r *Results[ID, R]) Len() int { return len(r.order) }

// IDs lists ids in completion order.
func (r *Results[ID, R]) IDs() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

// Drain hands the finished results over to the caller. It fails while a
// Run is in flight or a worker is unfinished, and it works only once.
func (g *Graph[ID, R]) Drain() (*Results[ID, R], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drained {
		return nil, ErrDrained
	}
	if g.running > 0 || len(g.inProgress) > 0 {
		return nil, fmt.Errorf("%w: %d running, %d unfinished", ErrInFlight, g.running, len(g.inProgress))
	}
	out := &Results[ID, R]{byID: make(map[ID]R, len(g.results)), order: g.order}
	for id, res := range g.results {
		out.byID[id] = *res
	}
	g.results = nil
	g.order = nil
	g.drained = true
	return out, nil
}

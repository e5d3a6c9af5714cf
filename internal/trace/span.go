package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next event sequence number. Numbers are unique within
// the process, so interleaved output from parallel inputs can be reordered.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Parent is what a new span hangs off: the enclosing span and the input file
// being processed. The zero Parent starts a root span outside any input.
type Parent struct {
	ID    uint64
	Input string
}

// In returns p attributed to the given input file.
func (p Parent) In(input string) Parent {
	p.Input = input
	return p
}

type (
	tracerKey struct{}
	parentKey struct{}
)

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// ParentFrom returns the span new work in ctx should attach to.
func ParentFrom(ctx context.Context) Parent {
	if ctx != nil {
		if p, ok := ctx.Value(parentKey{}).(Parent); ok {
			return p
		}
	}
	return Parent{}
}

func WithParent(ctx context.Context, p Parent) context.Context {
	return context.WithValue(ctx, parentKey{}, p)
}

// Enter begins a span under the tracer and parent carried by ctx and returns
// a context in which the new span is the parent.
func Enter(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := Begin(FromContext(ctx), scope, name, ParentFrom(ctx))
	if span.tracer == nil {
		return ctx, span
	}
	return WithParent(ctx, span.Parent()), span
}

// Span is an open span. A Span whose scope was filtered out is inert: every
// method on it is a no-op, and its Parent is the one it was begun under.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  Parent
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

func Begin(t Tracer, scope Scope, name string, parent Parent) *Span {
	if t == nil || !t.Level().Allows(scope) {
		return &Span{parent: parent}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span with an optional detail and returns how long it ran.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	ev.Elapsed = now.Sub(s.started)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return ev.Elapsed
}

// ID is zero for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Parent returns the Parent children of s should use.
func (s *Span) Parent() Parent {
	if s == nil {
		return Parent{}
	}
	if s.tracer == nil {
		return s.parent
	}
	return Parent{ID: s.id, Input: s.parent.Input}
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent.ID,
		Input:    s.parent.Input,
		Name:     s.name,
		Detail:   detail,
	}
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent Parent) {
	if t == nil || !t.Level().Allows(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent.ID,
		Input:    parent.Input,
		Name:     name,
		Detail:   detail,
	})
}

package trace

import "time"

// Kind says what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string { return nameAt(kindNames[:], int(k)) }

// Scope is the granularity of an event. Smaller scopes are coarser, so a
// level admits every scope up to its deepest one.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole runs and single inputs
	ScopePass                    // load, validate, callgraph, specialize, extract
	ScopeCall                    // one explored call: block plus argument types
	ScopeBlock                   // one block visit
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeCall:   "call",
	ScopeBlock:  "block",
}

func (s Scope) String() string { return nameAt(scopeNames[:], int(s)) }

// Event is one record handed to a Tracer.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// Input is the file the event belongs to; empty for run-wide events.
	Input   string
	Name    string
	Detail  string
	Elapsed time.Duration // set on KindSpanEnd
	Extra   map[string]string
}

func nameAt(names []string, i int) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return "unknown"
}

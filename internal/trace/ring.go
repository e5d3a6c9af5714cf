package trace

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. It is meant to be
// dumped after a failed run to show what the specializer was doing.
type RingTracer struct {
	level Level

	mu    sync.Mutex
	buf   []Event
	start int // index of the oldest event
	n     int
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{level: level, buf: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.Allows(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = *ev
		t.n++
		return
	}
	t.buf[t.start] = *ev
	t.start = (t.start + 1) % len(t.buf)
}

// Snapshot copies the buffered events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, t.n)
	for i := range out {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Dump writes the buffered events to w. Text dumps get a header line.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	format = format.resolve("")
	bw := bufio.NewWriter(w)
	if format == FormatText {
		fmt.Fprintf(bw, "--- last %d trace events ---\n", len(events))
	}
	for i := range events {
		if _, err := bw.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

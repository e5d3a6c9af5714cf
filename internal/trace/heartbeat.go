package trace

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat periodically emits a KindHeartbeat event with the goroutine
// count and live heap, so a stalled or runaway exploration is visible in a
// stream trace and in a ring dump.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat returns nil when t is off or every is not positive;
// Stop on a nil Heartbeat is fine.
func StartHeartbeat(t Tracer, every time.Duration) *Heartbeat {
	if t == nil || t.Level() == LevelOff || every <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.run(t, every)
	return h
}

func (h *Heartbeat) run(t Tracer, every time.Duration) {
	defer close(h.done)
	tick := time.NewTicker(every)
	defer tick.Stop()

	started := time.Now()
	var mem runtime.MemStats
	for n := 1; ; n++ {
		select {
		case <-h.stop:
			return
		case now := <-tick.C:
			runtime.ReadMemStats(&mem)
			t.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d at %s", n, now.Sub(started).Round(time.Millisecond)),
				Extra: map[string]string{
					"goroutines": strconv.Itoa(runtime.NumGoroutine()),
					"heap_kb":    strconv.FormatUint(mem.HeapAlloc>>10, 10),
				},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

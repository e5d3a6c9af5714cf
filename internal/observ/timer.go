package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Timer collects one lap per specialized input. Inputs run in parallel, so
// the sum of laps can exceed the wall time between the first start and the
// last stop; both are reported.
type Timer struct {
	mu   sync.Mutex
	laps []*Lap
}

func NewTimer() *Timer { return &Timer{} }

// Lap is a running or finished measurement.
type Lap struct {
	timer   *Timer
	name    string
	started time.Time
	stopped time.Time
	note    string
}

// Start opens a lap. A nil Timer hands out nil laps, which ignore Stop.
func (t *Timer) Start(name string) *Lap {
	if t == nil {
		return nil
	}
	lap := &Lap{timer: t, name: name, started: time.Now()}
	t.mu.Lock()
	t.laps = append(t.laps, lap)
	t.mu.Unlock()
	return lap
}

// Stop closes the lap with a short note. Only the first Stop counts.
func (l *Lap) Stop(note string) {
	if l == nil {
		return
	}
	l.timer.mu.Lock()
	defer l.timer.mu.Unlock()
	if !l.stopped.IsZero() {
		return
	}
	l.stopped = time.Now()
	l.note = note
}

// LapReport is the serializable form of one finished lap.
type LapReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Share      float64 `json:"share"`
	Note       string  `json:"note,omitempty"`
}

// Report covers finished laps in start order. Laps still running are left out.
type Report struct {
	WallMS float64     `json:"wall_ms"`
	SumMS  float64     `json:"sum_ms"`
	Laps   []LapReport `json:"laps"`
}

func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		report      Report
		sum         time.Duration
		first, last time.Time
	)
	for _, l := range t.laps {
		if l.stopped.IsZero() {
			continue
		}
		d := l.stopped.Sub(l.started)
		sum += d
		if first.IsZero() || l.started.Before(first) {
			first = l.started
		}
		if l.stopped.After(last) {
			last = l.stopped
		}
		report.Laps = append(report.Laps, LapReport{Name: l.name, DurationMS: millis(d), Note: l.note})
	}
	report.SumMS = millis(sum)
	report.WallMS = millis(last.Sub(first))
	for i := range report.Laps {
		if report.SumMS > 0 {
			report.Laps[i].Share = report.Laps[i].DurationMS / report.SumMS
		}
	}
	return report
}

// Summary renders the report as a table. Lap names are file names and may
// hold wide characters, so columns are measured in display cells.
func (t *Timer) Summary() string {
	report := t.Report()
	width := runewidth.StringWidth("wall")
	for _, l := range report.Laps {
		width = max(width, runewidth.StringWidth(l.Name))
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, l := range report.Laps {
		fmt.Fprintf(&b, "  %s %9.2f ms %4.0f%%", runewidth.FillRight(l.Name, width), l.DurationMS, l.Share*100)
		if l.Note != "" {
			fmt.Fprintf(&b, "  // %s", l.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %s %9.2f ms\n", runewidth.FillRight("sum", width), report.SumMS)
	fmt.Fprintf(&b, "  %s %9.2f ms\n", runewidth.FillRight("wall", width), report.WallMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

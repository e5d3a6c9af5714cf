package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Tracer receives events. Implementations filter by their own level and
// must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Flush() error
	Close() error
}

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// Config describes the tracer built by New.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format
	// Output takes precedence over OutputPath. An empty path or "-" means
	// stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff always yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if !cfg.Mode.streams() && !cfg.Mode.rings() {
		return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
	}
	var sinks []Tracer
	if cfg.Mode.streams() {
		w, closer, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		s := NewStreamTracer(w, cfg.Level, cfg.Format.resolve(cfg.OutputPath))
		s.closer = closer
		sinks = append(sinks, s)
	}
	if cfg.Mode.rings() {
		size := cfg.RingSize
		if size <= 0 {
			size = DefaultRingSize
		}
		sinks = append(sinks, NewRingTracer(size, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return Tee(cfg.Level, sinks...), nil
}

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, f, nil
}

// RingOf returns the ring buffer inside t, looking through tees.
func RingOf(t Tracer) *RingTracer {
	switch t := t.(type) {
	case *RingTracer:
		return t
	case *tee:
		for _, s := range t.sinks {
			if r := RingOf(s); r != nil {
				return r
			}
		}
	}
	return nil
}

// Nop discards everything.
var Nop Tracer = nop{}

type nop struct{}

func (nop) Emit(*Event)  {}
func (nop) Level() Level { return LevelOff }
func (nop) Flush() error { return nil }
func (nop) Close() error { return nil }

// Tee sends every event to all sinks. level gates span creation; each sink
// still applies its own.
func Tee(level Level, sinks ...Tracer) Tracer {
	return &tee{level: level, sinks: sinks}
}

type tee struct {
	level Level
	sinks []Tracer
}

func (t *tee) Emit(ev *Event) {
	for _, s := range t.sinks {
		s.Emit(ev)
	}
}

func (t *tee) Level() Level { return t.level }

func (t *tee) Flush() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (t *tee) Close() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

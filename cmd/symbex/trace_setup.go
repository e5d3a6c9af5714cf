package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"symbex/internal/project"
	"symbex/internal/trace"
)

// traceFlags are the persistent --trace* flags. Empty strings fall back to
// the [trace] section of the manifest.
type traceFlags struct {
	output, level, mode, format string
	ringSize                    int
	heartbeat                   time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var errs []error
	str := func(name string) string {
		v, err := flags.GetString(name)
		errs = append(errs, err)
		return v
	}
	f := traceFlags{
		output: str("trace"),
		level:  str("trace-level"),
		mode:   str("trace-mode"),
		format: str("trace-format"),
	}
	var err error
	f.ringSize, err = flags.GetInt("trace-ring-size")
	errs = append(errs, err)
	f.heartbeat, err = flags.GetDuration("trace-heartbeat")
	errs = append(errs, err)
	return f, errors.Join(errs...)
}

func (f traceFlags) config(cfg project.TraceConfig) (trace.Config, error) {
	pick := func(flag, manifest string) string {
		if flag != "" {
			return flag
		}
		return manifest
	}
	level, err := trace.ParseLevel(pick(f.level, cfg.Level))
	if err != nil || level == trace.LevelOff {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(pick(f.mode, cfg.Mode))
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(f.format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: pick(f.output, cfg.Output),
		RingSize:   f.ringSize,
	}, nil
}

// setupTracing installs the configured tracer in the command context. The
// returned cleanup stops the heartbeat, dumps the ring to stderr when the
// run failed, and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg project.TraceConfig) (func(failed bool), error) {
	flags, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	tcfg, err := flags.config(cfg)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	if tracer == trace.Nop {
		return func(bool) {}, nil
	}
	heartbeat := trace.StartHeartbeat(tracer, flags.heartbeat)

	stderr := cmd.ErrOrStderr()
	return func(failed bool) {
		heartbeat.Stop()
		if ring := trace.RingOf(tracer); ring != nil && failed {
			if err := ring.Dump(stderr, tcfg.Format); err != nil {
				fmt.Fprintf(stderr, "trace: dump: %v\n", err)
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close: %v\n", err)
		}
	}, nil
}

// Package trace records what the specializer is doing while it runs.
//
// Tracers are selected from the command line:
//
//	symbex specialize --trace=- --trace-level=detail prog.symir
//
// A StreamTracer writes each event as it happens, a RingTracer keeps the
// last events in memory so they can be dumped after a failure, Tee feeds
// both, and Nop is used when tracing is off.
//
// Levels map onto scopes: phase emits driver and pass spans, detail adds
// one span per explored call and debug adds a point per block visit.
// Every event carries the input file it belongs to, so output from inputs
// specialized in parallel can be told apart.
//
// The tracer and the current span travel in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Enter(ctx, trace.ScopePass, "specialize")
//	defer span.End("")
package trace

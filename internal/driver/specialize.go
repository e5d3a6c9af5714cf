package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"symbex/internal/callgraph"
	"symbex/internal/diag"
	"symbex/internal/ir"
	"symbex/internal/mono"
	"symbex/internal/observ"
	"symbex/internal/project"
	"symbex/internal/trace"
)

const (
	InputExt  = ".symir"
	OutputExt = ".symspec"

	DefaultMaxDiagnostics = 100
)

type Options struct {
	MaxDepth       int
	MaxDiagnostics int
	Jobs           int

	// OutDir receives the .symspec files; empty writes next to the input.
	OutDir string
	// NoWrite skips writing output files.
	NoWrite bool

	Cache    *DiskCache
	Timer    *observ.Timer
	Progress ProgressSink
}

// Result of specializing one file. Failures are reported through Bag;
// Table is nil when the file did not specialize.
type Result struct {
	Path   string
	Out    string
	Bag    *diag.Bag
	Table  *mono.Table
	Stats  mono.Stats
	Cached bool
}

// Failed reports whether the file produced errors.
func (r *Result) Failed() bool {
	return r == nil || r.Table == nil || r.Bag.HasErrors()
}

// SpecializeFile runs the whole pipeline over one .symir file: load,
// validate, call graph, specialize, export, write. Only cancellation is
// returned as an error.
func SpecializeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = DefaultMaxDiagnostics
	}
	res := &Result{Path: path, Bag: diag.NewBag(maxDiags)}

	ctx = trace.WithParent(ctx, trace.ParentFrom(ctx).In(path))
	ctx, span := trace.Enter(ctx, trace.ScopeDriver, "specialize")

	lap := opts.Timer.Start(filepath.Base(path))
	started := time.Now()
	defer func() {
		note, status := "ok", StatusDone
		switch {
		case res.Failed():
			note, status = "failed", StatusError
		case res.Cached:
			note, status = "cached", StatusCached
		}
		lap.Stop(note)
		span.End(note)
		emit(opts.Progress, path, StageWrite, status, time.Since(started))
	}()

	emit(opts.Progress, path, StageLoad, StatusWorking, 0)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFailed, diag.FileLocation(path), err.Error()))
		return res, nil
	}

	key := cacheKey(data, opts)
	if opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheCorrupt, diag.FileLocation(path),
				fmt.Sprintf("ignoring cache entry %s: %v", key, err)))
		case hit:
			res.Cached = true
			res.Table = payload.Table
			res.Stats = payload.Stats
			for _, d := range payload.Diagnostics {
				res.Bag.Add(relocate(d, payload.Path, path))
			}
			trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache", "hit "+key.String(), span.Parent())
			return res, write(res, opts)
		}
	}

	table, err := specialize(ctx, path, data, opts, res)
	if err != nil {
		return res, err
	}
	if table == nil {
		return res, nil
	}
	res.Table = table

	if opts.Cache != nil {
		payload := &DiskPayload{
			Schema:      diskCacheSchemaVersion,
			Path:        path,
			Source:      project.HashBytes(data),
			Table:       table,
			Stats:       res.Stats,
			Diagnostics: res.Bag.Items(),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOWriteFailed, diag.FileLocation(path),
				fmt.Sprintf("failed to store cache entry: %v", err)))
		}
	}
	return res, write(res, opts)
}

func specialize(ctx context.Context, path string, data []byte, opts Options, res *Result) (*mono.Table, error) {
	rep := diag.BagReporter{Bag: res.Bag}
	tracer := trace.FromContext(ctx)
	parent := trace.ParentFrom(ctx)

	pass := trace.Begin(tracer, trace.ScopePass, "load", parent)
	prog, err := ir.Decode(bytes.NewReader(data))
	pass.End("")
	if err != nil {
		diag.Add(rep, diag.NewError(diag.IRDecode, diag.FileLocation(path), err.Error()))
		return nil, nil
	}

	emit(opts.Progress, path, StageValidate, StatusWorking, 0)
	pass = trace.Begin(tracer, trace.ScopePass, "validate", parent)
	err = ir.Validate(prog)
	pass.End("")
	if err != nil {
		for _, d := range diag.FromJoined(path, diag.IRInvalid, err) {
			diag.Add(rep, d)
		}
		return nil, nil
	}

	emit(opts.Progress, path, StageCallGraph, StatusWorking, 0)
	pass = trace.Begin(tracer, trace.ScopePass, "callgraph", parent)
	reportCallGraph(path, prog, rep)
	pass.End("")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emit(opts.Progress, path, StageSpecialize, StatusWorking, 0)
	pass = trace.Begin(tracer, trace.ScopePass, "specialize", parent)
	e, err := mono.NewEngine(trace.WithParent(ctx, pass.Parent()), prog, mono.Options{MaxDepth: opts.MaxDepth})
	if err != nil {
		pass.End("failed")
		diag.Add(rep, diag.NewError(diag.SpecInternal, diag.FileLocation(path), err.Error()))
		return nil, nil
	}
	ret, err := e.Run()
	res.Stats = e.Stats()
	if err != nil {
		pass.End("failed")
		diag.Add(rep, diag.FromError(path, err, e.Stack()))
		return nil, nil
	}
	pass.WithExtra("calls", fmt.Sprint(res.Stats.Calls)).End(ret.String())

	emit(opts.Progress, path, StageExtract, StatusWorking, 0)
	pass = trace.Begin(tracer, trace.ScopePass, "extract", parent)
	blocks, err := e.Extract()
	var table *mono.Table
	if err == nil {
		table, err = blocks.Export()
	}
	pass.End("")
	if err != nil {
		diag.Add(rep, diag.NewError(diag.SpecInternal, diag.FileLocation(path), err.Error()))
		return nil, nil
	}
	return table, nil
}

// reportCallGraph warns about functions the entrypoint never reaches and
// notes recursive ones, which the engine cuts off with Never.
func reportCallGraph(path string, prog *ir.Program, rep diag.Reporter) {
	g := callgraph.Build(prog)
	loc := diag.FileLocation(path)
	for _, fn := range g.Unreachable(prog.Entrypoint) {
		diag.ReportWarning(rep, diag.IRUnreachable, loc,
			fmt.Sprintf("function %s (%s) is never called", prog.Functions[fn].Name, fn)).Emit()
	}
	for _, fn := range g.Recursive() {
		b := diag.ReportInfo(rep, diag.IRRecursive, loc,
			fmt.Sprintf("function %s (%s) is recursive", prog.Functions[fn].Name, fn))
		for _, callee := range g.Callees(fn) {
			b.WithNote(loc, fmt.Sprintf("calls %s (%s)", prog.Functions[callee].Name, callee))
		}
		b.Emit()
	}
}

// relocate moves a cached diagnostic recorded for another copy of the same
// program onto path.
func relocate(d diag.Diagnostic, from, to string) diag.Diagnostic {
	if from == to {
		return d
	}
	if d.Primary.File == from {
		d.Primary.File = to
	}
	notes := make([]diag.Note, len(d.Notes))
	for i, n := range d.Notes {
		if n.Loc.File == from {
			n.Loc.File = to
		}
		notes[i] = n
	}
	d.Notes = notes
	return d
}

// cacheKey covers the program bytes and every option that changes the
// produced table.
func cacheKey(data []byte, opts Options) project.Digest {
	cfg := project.Defaults()
	if opts.MaxDepth > 0 {
		cfg.Engine.MaxDepth = opts.MaxDepth
	}
	return project.Combine(project.HashBytes(data), cfg.Hash())
}

// OutputPath maps an input file to its .symspec file.
func OutputPath(path, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(path), InputExt) + OutputExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), base)
	}
	return filepath.Join(outDir, base)
}

func write(res *Result, opts Options) error {
	if opts.NoWrite || res.Table == nil {
		return nil
	}
	emit(opts.Progress, res.Path, StageWrite, StatusWorking, 0)
	out := OutputPath(res.Path, opts.OutDir)
	if err := writeTable(out, res.Table); err != nil {
		res.Bag.Add(diag.NewError(diag.IOWriteFailed, diag.FileLocation(out), err.Error()))
		return nil
	}
	res.Out = out
	return nil
}

func writeTable(path string, t *mono.Table) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return mono.EncodeTable(f, t)
}

// ReadTable loads a .symspec file.
func ReadTable(path string) (*mono.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mono.DecodeTable(f)
}

// ReadProgram loads and validates a .symir file.
func ReadProgram(path string) (*ir.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := ir.Decode(f)
	if err != nil {
		return nil, err
	}
	if err := ir.Validate(prog); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// WriteProgram stores prog as a .symir file.
func WriteProgram(path string, prog *ir.Program) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return ir.Encode(f, prog)
}

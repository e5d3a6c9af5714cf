package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"symbex/internal/diag"
	"symbex/internal/ir"
	"symbex/internal/mono"
	"symbex/internal/types"
)

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	prog, err := Sample(name)
	if err != nil {
		t.Fatalf("Sample(%q): %v", name, err)
	}
	path := filepath.Join(dir, name+InputExt)
	if err := WriteProgram(path, prog); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}
	return path
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestSpecializeFileWritesTable(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "hello")
	out := filepath.Join(dir, "out")

	res, err := SpecializeFile(context.Background(), path, Options{OutDir: out})
	if err != nil {
		t.Fatalf("SpecializeFile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", diag.FormatShort(res.Bag.Items(), true))
	}
	if want := filepath.Join(out, "hello"+OutputExt); res.Out != want {
		t.Fatalf("output path: got %q want %q", res.Out, want)
	}
	table, err := ReadTable(res.Out)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Blocks) != 1 || table.Entry != table.Blocks[0].ID {
		t.Fatalf("unexpected table: entry=%s blocks=%d", table.Entry, len(table.Blocks))
	}
	if table.Blocks[0].Return != types.Void {
		t.Fatalf("entry return: got %s want Void", table.Blocks[0].Return)
	}
}

func TestSpecializeSumSample(t *testing.T) {
	path := writeSample(t, t.TempDir(), "sum")
	res, err := SpecializeFile(context.Background(), path, Options{NoWrite: true})
	if err != nil {
		t.Fatalf("SpecializeFile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", diag.FormatShort(res.Bag.Items(), true))
	}
	if res.Out != "" {
		t.Fatalf("NoWrite should not produce %q", res.Out)
	}
	// main, six entries of sum, five recursive steps and one base case
	if got := len(res.Table.Blocks); got != 13 {
		t.Fatalf("expected 13 specialized blocks, got %d", got)
	}
	if !hasCode(res.Bag, diag.IRRecursive) {
		t.Fatalf("expected a recursion note, got %s", diag.FormatShort(res.Bag.Items(), false))
	}
	found := false
	for _, b := range res.Table.Blocks {
		if b.Return == types.Returns(types.ExactInteger(15)) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no block returns ExactInteger(15)")
	}
}

func TestSpecializeFilesReportsPerFile(t *testing.T) {
	dir := t.TempDir()
	hello := writeSample(t, dir, "hello")
	bad := writeSample(t, dir, "mismatch")
	garbage := filepath.Join(dir, "garbage"+InputExt)
	if err := os.WriteFile(garbage, []byte("not msgpack"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := ListInputs([]string{dir})
	if err != nil {
		t.Fatalf("ListInputs: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 inputs, got %v", files)
	}

	results, err := SpecializeFiles(context.Background(), files, Options{Jobs: 2, NoWrite: true})
	if err != nil {
		t.Fatalf("SpecializeFiles: %v", err)
	}
	byPath := make(map[string]*Result, len(results))
	for _, r := range results {
		byPath[r.Path] = r
	}

	if r := byPath[hello]; r.Failed() {
		t.Fatalf("hello failed: %s", diag.FormatShort(r.Bag.Items(), true))
	}
	r := byPath[bad]
	if !r.Failed() || !hasCode(r.Bag, diag.SpecType) {
		t.Fatalf("mismatch: expected a type error, got %s", diag.FormatShort(r.Bag.Items(), true))
	}
	if d := r.Bag.Items()[0]; d.Primary.File != bad || d.Primary.Block == "" {
		t.Fatalf("type error should point into %s, got %s", bad, d.Primary)
	}
	if r := byPath[garbage]; !r.Failed() || !hasCode(r.Bag, diag.IRDecode) {
		t.Fatalf("garbage: expected a decode error, got %s", diag.FormatShort(r.Bag.Items(), true))
	}
}

func TestSpecializeFileMissing(t *testing.T) {
	res, err := SpecializeFile(context.Background(), filepath.Join(t.TempDir(), "nope"+InputExt), Options{})
	if err != nil {
		t.Fatalf("SpecializeFile: %v", err)
	}
	if !res.Failed() || !hasCode(res.Bag, diag.IOLoadFailed) {
		t.Fatalf("expected a load error, got %s", diag.FormatShort(res.Bag.Items(), true))
	}
}

func TestSpecializeFileInvalidProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid"+InputExt)
	prog := &ir.Program{
		Entrypoint: 3,
		Functions:  map[ir.FunctionID]*ir.Function{},
	}
	if err := WriteProgram(path, prog); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}
	res, err := SpecializeFile(context.Background(), path, Options{NoWrite: true})
	if err != nil {
		t.Fatalf("SpecializeFile: %v", err)
	}
	if !res.Failed() || !hasCode(res.Bag, diag.IRInvalid) {
		t.Fatalf("expected a validation error, got %s", diag.FormatShort(res.Bag.Items(), true))
	}
}

func TestUnreachableFunctionWarns(t *testing.T) {
	b := ir.NewProgramBuilder()
	dead := b.Function("dead", 0)
	dead.Entry().ReturnVoid()
	b.Main().Entry().ReturnVoid()
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dead"+InputExt)
	if err := WriteProgram(path, prog); err != nil {
		t.Fatalf("WriteProgram: %v", err)
	}

	res, err := SpecializeFile(context.Background(), path, Options{NoWrite: true})
	if err != nil {
		t.Fatalf("SpecializeFile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("warnings must not fail the file: %s", diag.FormatShort(res.Bag.Items(), true))
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IRUnreachable || !strings.Contains(items[0].Message, "dead") {
		t.Fatalf("expected one unreachable warning, got %s", diag.FormatShort(items, false))
	}
}

func TestDiskCacheHitAndMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	path := writeSample(t, dir, "sum")
	opts := Options{NoWrite: true, Cache: cache}

	first, err := SpecializeFile(context.Background(), path, opts)
	if err != nil || first.Failed() {
		t.Fatalf("first run: err=%v", err)
	}
	if first.Cached {
		t.Fatalf("first run should miss the cache")
	}

	second, err := SpecializeFile(context.Background(), path, opts)
	if err != nil || second.Failed() {
		t.Fatalf("second run: err=%v", err)
	}
	if !second.Cached {
		t.Fatalf("second run should hit the cache")
	}
	if len(second.Table.Blocks) != len(first.Table.Blocks) || second.Table.Entry != first.Table.Entry {
		t.Fatalf("cached table differs from the computed one")
	}
	if !hasCode(second.Bag, diag.IRRecursive) {
		t.Fatalf("cached run should replay diagnostics")
	}
	if second.Stats != first.Stats {
		t.Fatalf("stats: got %+v want %+v", second.Stats, first.Stats)
	}

	opts.MaxDepth = 500
	third, err := SpecializeFile(context.Background(), path, opts)
	if err != nil || third.Failed() {
		t.Fatalf("third run: err=%v", err)
	}
	if third.Cached {
		t.Fatalf("a different depth limit should miss the cache")
	}

	usage, err := cache.DropAll()
	if err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if usage.Entries != 2 || usage.Bytes == 0 {
		t.Fatalf("DropAll removed %+v, want 2 entries", usage)
	}
	var payload DiskPayload
	if hit, err := cache.Get(cacheKey([]byte("x"), Options{}), &payload); hit || err != nil {
		t.Fatalf("dropped cache: hit=%v err=%v", hit, err)
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	key := cacheKey([]byte("program"), Options{})
	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var payload DiskPayload
	if _, err := cache.Get(key, &payload); err == nil {
		t.Fatalf("expected a decode error")
	}

	stale := &DiskPayload{Schema: diskCacheSchemaVersion + 1, Table: &mono.Table{}}
	if err := cache.Put(key, stale); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if hit, err := cache.Get(key, &payload); hit || err != nil {
		t.Fatalf("other schema should miss: hit=%v err=%v", hit, err)
	}
}

func TestSpecializeFilesCancelled(t *testing.T) {
	path := writeSample(t, t.TempDir(), "hello")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SpecializeFiles(ctx, []string{path}, Options{NoWrite: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		in, outDir, want string
	}{
		{"a/b/prog.symir", "", filepath.Join("a", "b", "prog.symspec")},
		{"a/b/prog.symir", "out", filepath.Join("out", "prog.symspec")},
		{"prog.bin", "", "prog.bin.symspec"},
	}
	for _, tc := range cases {
		if got := OutputPath(tc.in, tc.outDir); got != tc.want {
			t.Fatalf("OutputPath(%q, %q) = %q, want %q", tc.in, tc.outDir, got, tc.want)
		}
	}
}

func TestUnknownSample(t *testing.T) {
	if _, err := Sample("nope"); err == nil || !strings.Contains(err.Error(), "hello") {
		t.Fatalf("expected an error listing samples, got %v", err)
	}
}

func TestCachedDiagnosticsFollowTheFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	first := writeSample(t, dir, "sum")
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	second := filepath.Join(dir, "copy"+InputExt)
	if err := os.WriteFile(second, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	opts := Options{NoWrite: true, Cache: cache}
	if _, err := SpecializeFile(context.Background(), first, opts); err != nil {
		t.Fatalf("first: %v", err)
	}
	res, err := SpecializeFile(context.Background(), second, opts)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !res.Cached {
		t.Fatalf("identical content should hit the cache")
	}
	for _, d := range res.Bag.Items() {
		if d.Primary.File != second {
			t.Fatalf("diagnostic still points at %q", d.Primary.File)
		}
	}
}

package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"symbex/internal/trace"
)

// ListInputs expands the arguments into a sorted list of .symir files.
// Directories are walked recursively; files are taken as given.
func ListInputs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, InputExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Sort for a deterministic order
	sort.Strings(files)
	return files, nil
}

// SpecializeFiles specializes every file on its own engine, up to
// opts.Jobs at a time. Results keep the order of files.
func SpecializeFiles(ctx context.Context, files []string, opts Options) ([]*Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Enter(ctx, trace.ScopeDriver, "specialize-all")
	span.WithExtra("files", fmt.Sprint(len(files))).WithExtra("jobs", fmt.Sprint(jobs))
	defer span.End("")

	for _, path := range files {
		emit(opts.Progress, path, StageLoad, StatusQueued, 0)
	}

	// each goroutine owns its index, no mutex needed
	results := make([]*Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := SpecializeFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

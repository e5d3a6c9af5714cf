package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"symbex/internal/diag"
	"symbex/internal/driver"
	"symbex/internal/observ"
	"symbex/internal/prof"
)

var specializeCmd = &cobra.Command{
	Use:   "specialize <file.symir|dir>...",
	Short: "Specialize IR programs and write .symspec tables",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpecialize,
}

func init() {
	specializeCmd.Flags().IntP("jobs", "j", 0, "programs specialized in parallel (0 = GOMAXPROCS)")
	specializeCmd.Flags().Int("max-depth", 0, "maximum nested call depth")
	specializeCmd.Flags().StringP("out-dir", "o", "", "directory for .symspec files (default: next to the input)")
	specializeCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	specializeCmd.Flags().Bool("no-write", false, "check programs without writing output")
	specializeCmd.Flags().Bool("notes", true, "show call stack notes under errors")
	uiFlag := uiModeAuto
	specializeCmd.Flags().Var(&uiFlag, "ui", "progress UI (auto|on|off)")
}

var errSpecializeFailed = errors.New("specialization failed")

func runSpecialize(cmd *cobra.Command, args []string) (err error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	session, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := session.Stop(); stopErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", stopErr)
		}
	}()

	root := cmd.Root().PersistentFlags()
	quiet, _ := root.GetBool("quiet")
	timings, _ := root.GetBool("timings")
	maxDiags, _ := root.GetInt("max-diagnostics")
	noWrite, _ := cmd.Flags().GetBool("no-write")
	notes, _ := cmd.Flags().GetBool("notes")
	mode := *cmd.Flags().Lookup("ui").Value.(*uiMode)

	files, err := driver.ListInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.InputExt)
	}

	opts := driver.Options{
		MaxDepth:       cfg.Engine.MaxDepth,
		MaxDiagnostics: maxDiags,
		Jobs:           cfg.Build.Jobs,
		OutDir:         cfg.Build.OutDir,
		NoWrite:        noWrite,
	}
	if cfg.Build.Cache {
		cache, err := driver.OpenDiskCache("symbex")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
		opts.Timer = timer
	}

	var results []*driver.Result
	if mode.drawsOn(os.Stdout) && !quiet {
		results, err = specializeWithUI(cmd.Context(), files, opts)
	} else {
		results, err = driver.SpecializeFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return err
	}

	all := diag.NewBag(max(1, len(results)*max(maxDiags, 1)))
	failed, dropped := 0, 0
	for _, res := range results {
		if res == nil {
			continue
		}
		all.Merge(res.Bag)
		dropped += res.Bag.Dropped()
		if res.Failed() {
			failed++
		}
	}
	all.Sort()
	all.Dedup()

	printer := newDiagPrinter(cmd.ErrOrStderr(), useColor(cmd, os.Stderr), notes)
	items := all.Items()
	if quiet {
		kept := items[:0]
		for _, d := range items {
			if d.Severity >= diag.SevError {
				kept = append(kept, d)
			}
		}
		items = kept
	}
	printer.print(items)
	if dropped > 0 && !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d more diagnostics not shown (raise --max-diagnostics)\n", dropped)
	}

	if !quiet {
		out := cmd.OutOrStdout()
		for _, res := range results {
			if res == nil || res.Failed() {
				continue
			}
			status := ""
			if res.Cached {
				status = " (cached)"
			}
			dest := res.Out
			if dest == "" {
				dest = "ok"
			}
			fmt.Fprintf(out, "%s: %d blocks, %d calls -> %s%s\n", res.Path, len(res.Table.Blocks), res.Stats.Calls, dest, status)
		}
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errSpecializeFailed, failed, len(results))
	}
	return nil
}

func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpuprofile")
	opts.Mem, _ = flags.GetString("memprofile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}

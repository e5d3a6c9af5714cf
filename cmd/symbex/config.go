package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"symbex/internal/project"
)

// loadConfig reads symbex.toml above the working directory, if any, and
// applies the command line flags on top of it.
func loadConfig(cmd *cobra.Command) (project.Config, *project.Manifest, error) {
	cfg := project.Defaults()
	manifest, ok, err := project.LoadManifest(".")
	if err != nil {
		return cfg, nil, err
	}
	if ok {
		cfg = manifest.Config
	}

	flags := cmd.Flags()
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		if cfg.Build.Jobs, err = flags.GetInt("jobs"); err != nil {
			return cfg, nil, err
		}
	}
	if flags.Lookup("max-depth") != nil && flags.Changed("max-depth") {
		if cfg.Engine.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return cfg, nil, err
		}
		if cfg.Engine.MaxDepth <= 0 {
			return cfg, nil, fmt.Errorf("--max-depth must be positive")
		}
	}
	if flags.Lookup("out-dir") != nil && flags.Changed("out-dir") {
		if cfg.Build.OutDir, err = flags.GetString("out-dir"); err != nil {
			return cfg, nil, err
		}
	}
	if flags.Lookup("no-cache") != nil && flags.Changed("no-cache") {
		noCache, err := flags.GetBool("no-cache")
		if err != nil {
			return cfg, nil, err
		}
		cfg.Build.Cache = !noCache
	}
	return cfg, manifest, nil
}

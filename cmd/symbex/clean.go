package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"symbex/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the specialization result cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := driver.OpenDiskCache("symbex")
		if err != nil {
			return err
		}
		usage, err := cache.DropAll()
		if err != nil {
			return fmt.Errorf("failed to clean %q: %w", cache.Dir(), err)
		}
		if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached results (%d KiB) from %s\n",
				usage.Entries, usage.Bytes>>10, cache.Dir())
		}
		return nil
	},
}

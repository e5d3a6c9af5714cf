package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"symbex/internal/driver"
	"symbex/internal/ir"
	"symbex/internal/mono"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.symir|file.symspec>",
	Short: "Print an IR program or a specialized table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		switch filepath.Ext(path) {
		case driver.OutputExt:
			table, err := driver.ReadTable(path)
			if err != nil {
				return err
			}
			return mono.DumpTable(cmd.OutOrStdout(), table)
		case driver.InputExt:
			prog, err := driver.ReadProgram(path)
			if err != nil {
				return err
			}
			return ir.DumpProgram(cmd.OutOrStdout(), prog)
		default:
			return fmt.Errorf("%s: unknown file type (want %s or %s)", path, driver.InputExt, driver.OutputExt)
		}
	},
}

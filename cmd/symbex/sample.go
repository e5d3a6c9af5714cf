package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"symbex/internal/driver"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <out.symir>",
	Short: "Write a sample IR program",
	Long:  "Write one of the built-in sample programs (" + strings.Join(driver.SampleNames(), ", ") + ") as a .symir file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		prog, err := driver.Sample(name)
		if err != nil {
			return err
		}
		if err := driver.WriteProgram(args[0], prog); err != nil {
			return err
		}
		if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample %q to %s\n", name, args[0])
		}
		return nil
	},
}

func init() {
	sampleCmd.Flags().String("name", "hello", "sample program to write")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newFormatCmd wires the `format` subcommand spec §6 names. A formatter
// is an explicit Non-goal of the core (spec §1/SPEC_FULL §4): this
// subcommand exists as the CLI surface's reference placeholder for one,
// not as a working implementation, and always exits clean.
func newFormatCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format [paths...]",
		Short: "format the given files (not implemented by the semantic core)",
		RunE: mkRunE(c, func(c *Command, args []string) error {
			fmt.Fprintln(c.OutOrStdout(), "format: no formatter is implemented; this command is a CLI surface placeholder")
			c.setExit(ExitClean)
			return nil
		}),
	}
	return cmd
}

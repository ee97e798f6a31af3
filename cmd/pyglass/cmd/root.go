// Package cmd implements pyglass's CLI surface (spec §6 "CLI surface
// (for reference, not part of the core)"): subcommands check and
// format wired to internal/query's Engine. Grounded on cue/cmd/cue/cmd's
// root.go: a Command type embedding *cobra.Command with
// SilenceErrors/SilenceUsage so the tool controls its own error
// rendering, and a Main(args) int entry point (rather than os.Exit
// inside subcommands) so tests can drive the CLI without killing the
// test binary.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pyglass.dev/pyglass/internal/diag"
)

// Exit codes, per spec §6: "exit codes 0 (clean), 1 (diagnostics), 2
// (internal error)".
const (
	ExitClean       = 0
	ExitDiagnostics = 1
	ExitInternal    = 2
)

// Command wraps the root cobra.Command with the state its subcommands'
// RunE callbacks share.
type Command struct {
	*cobra.Command

	logger *zap.Logger

	// exitCode lets a subcommand report ExitDiagnostics without itself
	// being a cobra error (a clean run that still found diagnostics is
	// not a tool failure).
	exitCode int
}

func (c *Command) setExit(code int) { c.exitCode = code }

// runFunction is a subcommand body, called through mkRunE.
type runFunction func(c *Command, args []string) error

// mkRunE adapts a runFunction to cobra's RunE signature, pointing c at
// the actually-invoked subcommand first (mirrors cue/cmd's mkRunE: flag
// lookups on c must see the subcommand's own merged flag set, not the
// root command's, since c is shared across every subcommand).
func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		c.Command = cobraCmd
		return f(c, args)
	}
}

// New builds the root command with check and format wired as
// subcommands.
func New() *Command {
	root := &cobra.Command{
		Use:           "pyglass",
		Short:         "incremental Python semantic analysis",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	c := &Command{Command: root, logger: logger}

	addGlobalFlags(root.PersistentFlags())
	root.AddCommand(newCheckCmd(c))
	root.AddCommand(newFormatCmd(c))
	return c
}

// Main runs the CLI against args and returns the process exit code
// (spec §6's contract). Kept separate from os.Exit so it is callable
// from tests and from a thin main.go alike.
func Main(args []string, stdout, stderr io.Writer) int {
	c := New()
	c.SetArgs(args)
	c.SetOut(stdout)
	c.SetErr(stderr)
	if err := c.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitInternal
	}
	return c.exitCode
}

func printDiagnostics(w io.Writer, list diag.List) {
	for _, d := range list.Sorted() {
		fmt.Fprintln(w, d.Error())
	}
}

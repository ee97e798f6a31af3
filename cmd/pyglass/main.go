// Command pyglass is the CLI surface spec §6 names "for reference, not
// part of the core": check and format subcommands over internal/query.
package main

import (
	"os"

	"pyglass.dev/pyglass/cmd/pyglass/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args[1:], os.Stdout, os.Stderr))
}

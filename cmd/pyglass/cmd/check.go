package cmd

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pyglass.dev/pyglass/internal/filesystem"
	"pyglass.dev/pyglass/internal/query"
	"pyglass.dev/pyglass/internal/resolver"
)

func newCheckCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "report diagnostics for the given files or directories",
		RunE:  mkRunE(c, runCheck),
	}
	return cmd
}

func runCheck(c *Command, args []string) error {
	ctx := context.Background()
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	fs := filesystem.NewOSFS(cwd)

	sp, err := buildSearchPath(ctx, fs, c)
	if err != nil {
		return err
	}
	res := resolver.New(fs, bundledTypeshedRoot)
	engine := query.New(fs, res, sp, c.logger)

	paths, err := collectPythonFiles(ctx, fs, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		c.setExit(ExitClean)
		return nil
	}

	results, err := engine.DiagnosticsForPaths(ctx, paths)
	if err != nil {
		return err
	}

	total := 0
	for _, p := range paths {
		list := results[p]
		total += len(list)
		printDiagnostics(c.OutOrStdout(), list)
	}
	if total > 0 {
		c.setExit(ExitDiagnostics)
	} else {
		c.setExit(ExitClean)
	}
	return nil
}

// collectPythonFiles expands args into a sorted, deduplicated list of
// .py/.pyi file paths: a .py/.pyi file argument is kept as-is, any other
// file argument is skipped, and a directory argument is walked
// recursively via fs.ReadDir (skipping hidden directories and
// __pycache__).
func collectPythonFiles(ctx context.Context, fs filesystem.FS, args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	var walk func(path string) error
	walk = func(path string) error {
		md, err := fs.Metadata(ctx, path)
		if err != nil {
			return err
		}
		if md.Kind == filesystem.KindFile {
			if strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi") {
				add(path)
			}
			return nil
		}
		entries, err := fs.ReadDir(ctx, path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			child := path + "/" + e.Name
			if e.Kind == filesystem.KindDir {
				if strings.HasPrefix(e.Name, ".") || e.Name == "__pycache__" {
					continue
				}
				if err := walk(child); err != nil {
					return err
				}
				continue
			}
			if strings.HasSuffix(e.Name, ".py") || strings.HasSuffix(e.Name, ".pyi") {
				add(child)
			}
		}
		return nil
	}

	for _, a := range args {
		if err := walk(a); err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

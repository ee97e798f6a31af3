package query

import (
	"context"
	"strings"

	"pyglass.dev/pyglass/internal/infer"
)

// ModuleName derives the dotted module name a path is registered under:
// the path relative to whichever SrcRoot contains it, with path
// separators replaced by dots and a trailing "__init__"/extension
// stripped, or (outside any configured root, e.g. an ad hoc test file)
// its bare basename.
func (e *Engine) ModuleName(path string) string {
	for _, root := range e.search.SrcRoots {
		if rel, ok := relUnder(root, path); ok {
			return dottedFromRel(rel)
		}
	}
	return dottedFromRel(basename(path))
}

func relUnder(root, path string) (string, bool) {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		return "", false
	}
	prefix := root + "/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	return strings.TrimPrefix(path, prefix), true
}

func basename(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func dottedFromRel(rel string) string {
	rel = strings.TrimSuffix(rel, ".pyi")
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, "/__init__")
	return strings.ReplaceAll(rel, "/", ".")
}

// ensureModule registers path's current parse+index under its derived
// module name in the shared infer.Program, if not already registered for
// the current content fingerprint, and returns that name.
func (e *Engine) ensureModule(ctx context.Context, path string) (string, error) {
	name := e.ModuleName(path)

	e.mu.Lock()
	e.names[path] = name
	e.mu.Unlock()

	if _, ok := e.program.Module(name); ok {
		return name, nil
	}
	file, _, _, err := e.Parse(ctx, path)
	if err != nil {
		return "", err
	}
	idx, err := e.SemanticIndex(ctx, path)
	if err != nil {
		return "", err
	}
	e.program.AddModule(&infer.Module{Name: name, Path: path, File: file, Index: idx})
	return name, nil
}

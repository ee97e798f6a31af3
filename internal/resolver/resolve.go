// Package resolver implements spec §4.E: mapping a dotted module name to
// a file on a configured, ordered search path with typeshed fallback, and
// workspace discovery (manifest walk, member roots). Grounded on
// cue/load's Config + search-path/tags-based instance resolution,
// generalized from CUE's package-import-path algorithm to Python's
// `__init__.pyi`/`.py`/namespace-package precedence rules.
package resolver

import (
	"context"
	"path"
	"strings"

	"pyglass.dev/pyglass/internal/filesystem"
)

// ModuleKind classifies a resolved module (spec §3 Module handle).
type ModuleKind uint8

const (
	ModuleKindModule ModuleKind = iota
	ModuleKindPackage
	ModuleKindNamespacePackage
)

// ModuleHandle is a resolved module (spec §3 "Module handle").
type ModuleHandle struct {
	Name string
	File string // "" for namespace packages
	Kind ModuleKind
	Root string // the search-path root that found it
}

// SearchPath is the ordered configuration spec §4.E resolves against.
type SearchPath struct {
	ExtraRoots     []string
	SrcRoots       []string
	CustomTypeshed string // "" selects the bundled default
	SitePackages   []string
}

// roots returns every root in resolution-priority order, with the
// typeshed root appended last per spec §4.E step 4 ("fall back to the
// bundled typeshed root using identical rules").
func (sp SearchPath) roots(bundledTypeshed string) []string {
	var out []string
	out = append(out, sp.ExtraRoots...)
	out = append(out, sp.SrcRoots...)
	out = append(out, sp.SitePackages...)
	typeshed := sp.CustomTypeshed
	if typeshed == "" {
		typeshed = bundledTypeshed
	}
	out = append(out, typeshed)
	return out
}

// Resolver resolves dotted module names against a SearchPath.
type Resolver struct {
	fs              filesystem.FS
	bundledTypeshed string
}

// New creates a Resolver backed by fs. bundledTypeshed is the path to the
// in-process vendored typeshed root (spec §4.E "bundled typeshed root").
func New(fs filesystem.FS, bundledTypeshed string) *Resolver {
	return &Resolver{fs: fs, bundledTypeshed: bundledTypeshed}
}

// ResolveModule implements the §4.E resolution algorithm. Returns ok=false
// for "unresolved."
func (r *Resolver) ResolveModule(ctx context.Context, name string, sp SearchPath) (ModuleHandle, bool) {
	parts := strings.Split(name, ".")
	for _, root := range sp.roots(r.bundledTypeshed) {
		if root == "" {
			continue
		}
		if h, ok := r.resolveAt(ctx, root, parts, name); ok {
			return h, true
		}
	}
	return ModuleHandle{}, false
}

func (r *Resolver) resolveAt(ctx context.Context, root string, parts []string, name string) (ModuleHandle, bool) {
	dir := root
	if len(parts) > 1 {
		dir = path.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	}
	last := parts[len(parts)-1]
	pkgDir := path.Join(dir, last)

	candidates := []struct {
		file string
		kind ModuleKind
	}{
		{path.Join(pkgDir, "__init__.pyi"), ModuleKindPackage},
		{path.Join(pkgDir, "__init__.py"), ModuleKindPackage},
		{path.Join(dir, last+".pyi"), ModuleKindModule},
		{path.Join(dir, last+".py"), ModuleKindModule},
	}
	for _, c := range candidates {
		if r.fileExists(ctx, c.file) {
			return ModuleHandle{Name: name, File: c.file, Kind: c.kind, Root: root}, true
		}
	}

	if r.dirExists(ctx, pkgDir) {
		return ModuleHandle{Name: name, Kind: ModuleKindNamespacePackage, Root: root}, true
	}
	return ModuleHandle{}, false
}

func (r *Resolver) fileExists(ctx context.Context, p string) bool {
	md, err := r.fs.Metadata(ctx, p)
	return err == nil && md.Kind == filesystem.KindFile
}

func (r *Resolver) dirExists(ctx context.Context, p string) bool {
	md, err := r.fs.Metadata(ctx, p)
	return err == nil && md.Kind == filesystem.KindDir
}

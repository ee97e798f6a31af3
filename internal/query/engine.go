// Package query implements spec §4.I: the memoized, demand-driven query
// layer sitting atop internal/pysource, internal/parser, internal/
// semindex, and internal/infer. Grounded on internal/core/adt's
// scheduler doc ("a task is a computation unit... each task may depend
// on knowing certain properties of one or more fields") generalized from
// CUE's per-field dependency tasks to per-path/per-name query entries,
// each memoized under a content fingerprint rather than a revision
// integer so a byte-identical edit is recognized as a no-op ("early
// cutoff", spec §8 property 6: restoring a file's text byte-for-byte
// must reproduce the original diagnostics and types).
package query

import (
	"context"
	"sync"

	"github.com/minio/highwayhash"
	"go.uber.org/zap"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/filesystem"
	"pyglass.dev/pyglass/internal/infer"
	"pyglass.dev/pyglass/internal/parser"
	"pyglass.dev/pyglass/internal/pysource"
	"pyglass.dev/pyglass/internal/pytype"
	"pyglass.dev/pyglass/internal/resolver"
	"pyglass.dev/pyglass/internal/semindex"
)

// defaultWorkers bounds the worker pool used by DiagnosticsForPaths (spec
// §5 "Parallel threads. The query engine is the sole scheduler; worker
// tasks execute queries on a thread pool.").
const defaultWorkers = 8

// fingerprintKey is a fixed, process-lifetime HighwayHash key (mirrors
// internal/ast's own unexported key, kept separate since the two hash
// different domains: node shapes there, whole-file text here).
var fingerprintKey = [32]byte{
	'p', 'y', 'g', 'l', 'a', 's', 's', '-', 'q', 'u', 'e', 'r', 'y', '-', 'f', 'p',
}

func fingerprint(text string) uint64 {
	h, _ := highwayhash.New64(fingerprintKey[:])
	h.Write([]byte(text))
	return h.Sum64()
}

type parseEntry struct {
	fingerprint uint64
	file        *ast.File
	lexErrs     []*parser.Error
	parseErrs   []*parser.Error
}

type indexEntry struct {
	fingerprint uint64
	index       *semindex.Index
}

type moduleEntry struct {
	handle resolver.ModuleHandle
	ok     bool
}

// Engine is the workspace-wide query context: one source store, one
// resolver/search path, one type store, and one cross-module inference
// Program, all wired so that a host only ever calls the exported query
// methods below and never touches the pipeline stages directly (spec §6
// "Host → core (query entry points, stable contract)").
type Engine struct {
	logger   *zap.Logger
	fs       filesystem.FS
	source   *pysource.Store
	resolver *resolver.Resolver
	search   resolver.SearchPath
	types    *pytype.Store
	program  *infer.Program

	mu      sync.Mutex
	parses  map[string]*parseEntry
	indexes map[string]*indexEntry
	modules map[string]*moduleEntry
	names   map[string]string // path -> module dotted name, once assigned

	// diagMu serializes the "compute then splice off the freshly appended
	// diagnostics" critical section in Diagnostics: Program.Diagnostics is
	// one append-only list shared by every module, so two concurrent
	// Diagnostics calls (DiagnosticsForPaths' worker pool) must not
	// interleave their tail-slices of it. The lock is held across the
	// per-file inference walk that appends those diagnostics, so the walks
	// of different paths run one at a time; parsing and indexing run
	// before the lock is taken.
	diagMu sync.Mutex
}

// New creates an Engine backed by fs, resolving cross-module imports
// against res/sp. logger may be nil (defaults to a no-op logger); it
// receives ICE and cancellation records (spec §5 "Cancellation...").
func New(fs filesystem.FS, res *resolver.Resolver, sp resolver.SearchPath, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		fs:       fs,
		source:   pysource.NewStore(fs),
		resolver: res,
		search:   sp,
		types:    pytype.NewStore(),
		parses:   make(map[string]*parseEntry),
		indexes:  make(map[string]*indexEntry),
		modules:  make(map[string]*moduleEntry),
		names:    make(map[string]string),
	}
	e.program = infer.NewProgram(e.types, res, sp, e.loadForInfer)
	return e
}

// TypeStore exposes the shared type-interning store, for a caller (e.g.
// cmd/pyglass's reveal_type rendering) that needs pytype.Store.String.
func (e *Engine) TypeStore() *pytype.Store { return e.types }

// Parse implements the `parse(path)` query (spec §6): AST root + parse
// errors, memoized under path's content fingerprint.
func (e *Engine) Parse(ctx context.Context, path string) (*ast.File, []*parser.Error, []*parser.Error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	text, err := e.source.Read(ctx, path)
	if err != nil {
		return nil, nil, nil, err
	}
	fp := fingerprint(text)

	e.mu.Lock()
	if pe, ok := e.parses[path]; ok && pe.fingerprint == fp {
		e.mu.Unlock()
		return pe.file, pe.lexErrs, pe.parseErrs, nil
	}
	e.mu.Unlock()

	file, lexErrs, parseErrs := parser.ParseFile(path, []byte(text))
	pe := &parseEntry{fingerprint: fp, file: file, lexErrs: lexErrs, parseErrs: parseErrs}

	e.mu.Lock()
	e.parses[path] = pe
	e.mu.Unlock()
	return file, lexErrs, parseErrs, nil
}

// SemanticIndex implements the `semantic_index(path)` query: scope tree
// + symbol tables, memoized under the same content fingerprint Parse
// uses (the index is a pure function of the AST, which is a pure
// function of the text).
func (e *Engine) SemanticIndex(ctx context.Context, path string) (*semindex.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := e.source.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	fp := fingerprint(text)

	e.mu.Lock()
	if ie, ok := e.indexes[path]; ok && ie.fingerprint == fp {
		e.mu.Unlock()
		return ie.index, nil
	}
	e.mu.Unlock()

	file, _, _, err := e.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	idx := semindex.Build(file)

	e.mu.Lock()
	e.indexes[path] = &indexEntry{fingerprint: fp, index: idx}
	e.mu.Unlock()
	return idx, nil
}

// ResolveModule implements the `resolve_module(name)` query, memoized by
// dotted name (spec §6).
func (e *Engine) ResolveModule(ctx context.Context, name string) (resolver.ModuleHandle, bool) {
	e.mu.Lock()
	if me, ok := e.modules[name]; ok {
		e.mu.Unlock()
		return me.handle, me.ok
	}
	e.mu.Unlock()

	var h resolver.ModuleHandle
	var ok bool
	if e.resolver != nil {
		h, ok = e.resolver.ResolveModule(ctx, name, e.search)
	}

	e.mu.Lock()
	e.modules[name] = &moduleEntry{handle: h, ok: ok}
	e.mu.Unlock()
	return h, ok
}

// loadForInfer is the infer.Loader the Program uses to satisfy a
// cross-module reference: it routes back through Engine's own
// memoized Parse/SemanticIndex rather than re-parsing, so a module
// loaded once for inference is the same cached entry a direct
// Engine.Parse(path) call would return.
func (e *Engine) loadForInfer(ctx context.Context, path string) (*ast.File, *semindex.Index, error) {
	file, _, _, err := e.Parse(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	idx, err := e.SemanticIndex(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return file, idx, nil
}

// ApplyEdit implements the `apply_edit(path, text)` mutation (spec §6):
// bumps path's revision in the source store and invalidates every
// cached query keyed on path, including the cross-module Program's
// memoized types for the module path names (spec §4.I "On a base-input
// mutation, revisions bump... stored outputs are verified... re-running
// only those whose fingerprints disagree").
func (e *Engine) ApplyEdit(path string, text string) {
	e.source.SetText(path, text, pysource.KindRegular)

	e.mu.Lock()
	delete(e.parses, path)
	delete(e.indexes, path)
	name, hasName := e.names[path]
	e.mu.Unlock()

	if hasName {
		e.program.InvalidateModule(name)
	}
}

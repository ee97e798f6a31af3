package query

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/diag"
	"pyglass.dev/pyglass/internal/semindex"
)

// Diagnostics implements the `diagnostics(path)` query (spec §6): parse
// errors plus every diagnostic raised while computing type_of_expression
// and type_of_symbol for every expression and symbol path's module
// defines. Cancellation is observed per-expression and per-scope (spec
// §5 "check the cancellation flag between steps... per-file in
// cross-module walks" generalized here to per-node within one file, the
// smallest step this query can usefully yield at). A panic inside the
// inference layer is recovered, logged as an internal compiler error,
// and returned as an error rather than propagated (spec §7's ICE
// boundary, enforced here rather than only in cmd/pyglass so every host
// gets the same guarantee).
func (e *Engine) Diagnostics(ctx context.Context, path string) (out diag.List, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("internal compiler error computing diagnostics",
				zap.String("path", path), zap.Any("panic", r))
			out = nil
			err = fmt.Errorf("internal error computing diagnostics for %s: %v", path, r)
		}
	}()

	if cerr := ctx.Err(); cerr != nil {
		e.logger.Debug("diagnostics cancelled before start", zap.String("path", path))
		return nil, cerr
	}

	name, derr := e.ensureModule(ctx, path)
	if derr != nil {
		return nil, derr
	}
	file, _, parseErrs, perr := e.Parse(ctx, path)
	if perr != nil {
		return nil, perr
	}
	idx, ierr := e.SemanticIndex(ctx, path)
	if ierr != nil {
		return nil, ierr
	}

	for _, pe := range parseErrs {
		out.Add(diag.Newf(pe.Range.Start, "%s", pe.Msg))
	}

	e.diagMu.Lock()
	before := len(e.program.Diagnostics)
	for i := 1; i < file.Arena.NumExprs(); i++ {
		if cerr := ctx.Err(); cerr != nil {
			e.diagMu.Unlock()
			e.logger.Debug("diagnostics cancelled mid-walk", zap.String("path", path))
			return nil, cerr
		}
		e.program.TypeOfExpression(ctx, name, ast.ExprID(i))
	}
	for scope := range idx.Scopes {
		if cerr := ctx.Err(); cerr != nil {
			e.diagMu.Unlock()
			return nil, cerr
		}
		for sym := range idx.Symbols[scope] {
			e.program.TypeOfSymbol(ctx, name, semindex.FileScopeId(scope), semindex.ScopedSymbolId(sym))
		}
	}
	fresh := append(diag.List{}, e.program.Diagnostics[before:]...)
	e.diagMu.Unlock()

	out = append(out, fresh...)
	return out.Sorted(), nil
}

// DiagnosticsForPaths computes Diagnostics for every path concurrently,
// bounded by a worker pool (spec §5 "Parallel threads. The query engine
// is the sole scheduler; worker tasks execute queries on a thread
// pool."). The first worker error cancels the remaining ones via the
// shared errgroup context.
func (e *Engine) DiagnosticsForPaths(ctx context.Context, paths []string) (map[string]diag.List, error) {
	sem := semaphore.NewWeighted(defaultWorkers)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(map[string]diag.List, len(paths))

	for _, p := range paths {
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			d, err := e.Diagnostics(gctx, p)
			if err != nil {
				return err
			}
			mu.Lock()
			results[p] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

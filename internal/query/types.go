package query

import (
	"context"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/infer"
	"pyglass.dev/pyglass/internal/pytype"
	"pyglass.dev/pyglass/internal/semindex"
)

// TypeOfExpression implements the `type_of_expression(path, node-key)`
// query (spec §6) for a caller that already has an ast.ExprID (the
// common in-process case — e.g. a diagnostics pass walking its own
// arena). See TypeOfExpressionAt for the cross-parse NodeKey variant.
func (e *Engine) TypeOfExpression(ctx context.Context, path string, id ast.ExprID) (pytype.TypeID, error) {
	name, err := e.ensureModule(ctx, path)
	if err != nil {
		return pytype.Dynamic, err
	}
	return e.program.TypeOfExpression(ctx, name, id), nil
}

// TypeOfExpressionAt resolves a NodeKey recorded against an earlier
// parse of path (e.g. by a host that only kept the key, not the raw
// ExprID) to its current type, by locating the expression whose live
// NodeKey still matches. Returns ok=false if the node was edited away.
func (e *Engine) TypeOfExpressionAt(ctx context.Context, path string, key ast.NodeKey) (pytype.TypeID, bool, error) {
	file, _, _, err := e.Parse(ctx, path)
	if err != nil {
		return pytype.Dynamic, false, err
	}
	text, err := e.source.Read(ctx, path)
	if err != nil {
		return pytype.Dynamic, false, err
	}
	src := []byte(text)
	for i := 1; i < file.Arena.NumExprs(); i++ {
		id := ast.ExprID(i)
		if ast.ExprKey(src, id, file.Arena.Expr(id)) == key {
			t, err := e.TypeOfExpression(ctx, path, id)
			return t, true, err
		}
	}
	return pytype.Dynamic, false, nil
}

// TypeOfSymbol implements the `type_of_symbol(scope-id)` query (spec §6)
// for a (path, scope, symbol) triple.
func (e *Engine) TypeOfSymbol(ctx context.Context, path string, scope semindex.FileScopeId, symbol semindex.ScopedSymbolId) (pytype.TypeID, error) {
	name, err := e.ensureModule(ctx, path)
	if err != nil {
		return pytype.Dynamic, err
	}
	return e.program.TypeOfSymbol(ctx, name, scope, symbol), nil
}

// PublicSymbol implements the `public_symbol(path, name)` query (spec
// §6): name's symbol in path's module-root scope, or none.
func (e *Engine) PublicSymbol(ctx context.Context, path string, name string) (infer.PublicSymbolId, bool, error) {
	modName, err := e.ensureModule(ctx, path)
	if err != nil {
		return infer.PublicSymbolId{}, false, err
	}
	pub, ok := e.program.PublicSymbol(ctx, modName, name)
	return pub, ok, nil
}

package infer

import (
	"context"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/diag"
	"pyglass.dev/pyglass/internal/pytype"
)

// TypeOfExpression implements spec §4.H query 3: structural rules over the
// expression tree.
func (p *Program) TypeOfExpression(ctx context.Context, moduleName string, id ast.ExprID) pytype.TypeID {
	if id == ast.NilExpr {
		return pytype.Dynamic
	}
	key := exprKey{moduleName, id}

	p.mu.Lock()
	if t, ok := p.exprCache[key]; ok {
		p.mu.Unlock()
		return t
	}
	p.mu.Unlock()

	m, ok := p.module(moduleName)
	if !ok {
		return pytype.Dynamic
	}
	t := p.computeTypeOfExpression(ctx, moduleName, m, id)

	p.mu.Lock()
	p.exprCache[key] = t
	p.mu.Unlock()
	return t
}

func (p *Program) computeTypeOfExpression(ctx context.Context, moduleName string, m *Module, id ast.ExprID) pytype.TypeID {
	e := m.File.Arena.Expr(id)
	switch e.Kind {
	case ast.KindNumberLit:
		switch e.Literal.Kind {
		case ast.LiteralInt:
			return p.Store.LiteralInt(e.Literal.Int)
		case ast.LiteralFloat:
			return p.Store.Instance("float")
		case ast.LiteralComplex:
			return p.Store.Instance("complex")
		}
		return pytype.Dynamic
	case ast.KindStringLit:
		return p.Store.LiteralStr(e.Literal.Str)
	case ast.KindBytesLit:
		return p.Store.LiteralBytes(string(e.Literal.Bytes))
	case ast.KindBooleanLit:
		return p.Store.LiteralBool(e.Literal.Bool)
	case ast.KindNoneLit:
		return p.Store.Instance("NoneType")
	case ast.KindEllipsisLit:
		return p.Store.Instance("ellipsis")
	case ast.KindFString:
		return p.Store.Instance("str")

	case ast.KindName:
		return p.typeOfNameUse(ctx, moduleName, m, id, e.Name)

	case ast.KindTuple:
		return p.Store.Instance("tuple")
	case ast.KindList, ast.KindListComp:
		return p.Store.Instance("list")
	case ast.KindSet, ast.KindSetComp:
		return p.Store.Instance("set")
	case ast.KindDict, ast.KindDictComp:
		return p.Store.Instance("dict")
	case ast.KindGeneratorExp:
		return p.Store.Instance("generator")
	case ast.KindSlice:
		return p.Store.Instance("slice")

	case ast.KindIfExp:
		a := p.TypeOfExpression(ctx, moduleName, e.Body)
		b := p.TypeOfExpression(ctx, moduleName, e.OrElse)
		return p.Store.NewUnionBuilder().Add(a).Add(b).Build()

	case ast.KindBoolOp:
		// Narrowing-aware per spec §4.H; pytype's Truthy/Falsy predicates
		// are no-ops (documented simplification in narrow.go), so this
		// degenerates to a plain union of operand types.
		ub := p.Store.NewUnionBuilder()
		for _, v := range e.Values {
			ub.Add(p.TypeOfExpression(ctx, moduleName, v))
		}
		return ub.Build()

	case ast.KindCompare:
		return p.Store.Instance("bool")

	case ast.KindBinOp:
		l := p.TypeOfExpression(ctx, moduleName, e.Left)
		r := p.TypeOfExpression(ctx, moduleName, e.Right)
		if isDynamic(l) || isDynamic(r) {
			return pytype.Dynamic
		}
		// Dunder-based operator overload resolution is not modeled; widen
		// the left operand's type, matching the common case of same-typed
		// arithmetic (a documented simplification).
		return pytype.Widen(p.Store, l)

	case ast.KindUnaryOp:
		return pytype.Widen(p.Store, p.TypeOfExpression(ctx, moduleName, e.Right))

	case ast.KindAwait:
		// Coroutine unwrapping is not modeled; the awaited expression's own
		// type is returned as-is.
		return p.TypeOfExpression(ctx, moduleName, e.Right)
	case ast.KindYield, ast.KindYieldFrom:
		return pytype.Dynamic

	case ast.KindAttribute:
		recv := p.TypeOfExpression(ctx, moduleName, e.Right)
		return p.typeOfAttribute(recv, e.Name)

	case ast.KindSubscript:
		recv := p.TypeOfExpression(ctx, moduleName, e.Value)
		return p.typeOfSubscript(recv)

	case ast.KindStarred:
		return p.TypeOfExpression(ctx, moduleName, e.Value)

	case ast.KindNamedExpr:
		return p.TypeOfExpression(ctx, moduleName, e.Right)

	case ast.KindParenExpr:
		return p.TypeOfExpression(ctx, moduleName, e.Right)

	case ast.KindLambda:
		return p.typeOfLambda(ctx, moduleName, m, id, e)

	case ast.KindCall:
		return p.typeOfCall(ctx, moduleName, m, id, e)
	}
	return pytype.Dynamic
}

func isDynamic(t pytype.TypeID) bool { return t == pytype.Dynamic }

func (p *Program) typeOfLambda(ctx context.Context, moduleName string, m *Module, id ast.ExprID, e *ast.Expr) pytype.TypeID {
	params := make([]pytype.TypeID, 0, len(e.Params))
	for _, param := range e.Params {
		switch param.Kind {
		case ast.ParamNormal, ast.ParamStarArgs, ast.ParamDoubleStarArgs:
			if param.Default != ast.NilExpr {
				params = append(params, pytype.Widen(p.Store, p.TypeOfExpression(ctx, moduleName, param.Default)))
			} else {
				params = append(params, pytype.Dynamic)
			}
		}
	}
	// The lambda body's name-loads were already resolved against the scope
	// ExprScopes[id] introduced, during indexing; evaluating it here needs
	// no scope parameter of its own.
	ret := p.TypeOfExpression(ctx, moduleName, e.Body)
	return p.Store.Callable("<lambda>", params, ret)
}

// typeOfNameUse resolves a Name-load expression: the symindex resolution
// it was already assigned during indexing (spec §4.H Name resolution
// rule), falling through to the builtins module when unresolved within
// the file, and producing an unbound-use diagnostic otherwise.
func (p *Program) typeOfNameUse(ctx context.Context, moduleName string, m *Module, id ast.ExprID, name string) pytype.TypeID {
	res, ok := m.Index.Resolutions[id]
	if ok && !res.Unbound {
		t := p.TypeOfSymbol(ctx, moduleName, res.Scope, res.Symbol)
		e := m.File.Arena.Expr(id)
		if pred, ok := m.Index.NarrowedPredicate(res.Scope, res.Symbol, e.Range); ok {
			return pytype.Narrow(p.Store, t, pred)
		}
		return t
	}
	if moduleName != builtinsModule {
		if pub, ok := p.PublicSymbol(ctx, builtinsModule, name); ok {
			return p.TypeOfPublicSymbol(ctx, pub)
		}
	}
	e := m.File.Arena.Expr(id)
	p.Diagnostics.Add(diag.Newf(e.Range.Start, "name %q is unbound", name))
	return pytype.Dynamic
}

// typeOfAttribute looks up name on recv. pytype carries no per-class
// member table (the same documented limitation as its nominal-subtyping
// simplification: no semindex class-body integration), so this can only
// ever return Dynamic; the hook exists so a future class-member table can
// slot in here without touching call sites.
func (p *Program) typeOfAttribute(recv pytype.TypeID, name string) pytype.TypeID {
	_ = recv
	_ = name
	return pytype.Dynamic
}

// typeOfSubscript implements a minimal indexer protocol: Dynamic, since
// pytype has no generic/parameterized container shapes (documented
// simplification, consistent with typeOfAttribute's member-table gap).
func (p *Program) typeOfSubscript(recv pytype.TypeID) pytype.TypeID {
	_ = recv
	return pytype.Dynamic
}

// typeOfAnnotation evaluates an annotation expression as a type, not a
// value: a bare Name names a class (`x: int` → Instance("int")); `None`
// names NoneType; a quoted forward reference or an attribute names a class
// by its text or attribute name; `X | Y` is the union of both sides; a
// subscript keeps only its base, spelled as written (`list[int]` →
// Instance("list"), `List[int]` → Instance("List")), dropping the
// parameter — pytype has no parameterized generics (documented
// simplification, see typeOfSubscript); anything else falls back to
// Dynamic.
func (p *Program) typeOfAnnotation(ctx context.Context, moduleName string, id ast.ExprID) pytype.TypeID {
	if id == ast.NilExpr {
		return pytype.Dynamic
	}
	m, ok := p.module(moduleName)
	if !ok {
		return pytype.Dynamic
	}
	e := m.File.Arena.Expr(id)
	switch e.Kind {
	case ast.KindNoneLit:
		return p.Store.Instance("NoneType")
	case ast.KindStringLit:
		// Forward-reference annotation (`x: "Foo"`); the quoted text names
		// a class, evaluated nominally rather than re-parsed.
		return p.Store.Instance(e.Literal.Str)
	case ast.KindName:
		return p.typeOfAnnotationName(e.Name)
	case ast.KindAttribute:
		return p.Store.Instance(e.Name)
	case ast.KindSubscript:
		return p.typeOfAnnotation(ctx, moduleName, e.Value)
	case ast.KindBinOp:
		// PEP 604 `X | Y` union annotation syntax.
		l := p.typeOfAnnotation(ctx, moduleName, e.Left)
		r := p.typeOfAnnotation(ctx, moduleName, e.Right)
		return p.Store.NewUnionBuilder().Add(l).Add(r).Build()
	default:
		return pytype.Dynamic
	}
}

// typeOfAnnotationName evaluates a bare-name annotation nominally: every
// resolution path (class defined in this file, imported, or unresolved
// and assumed to name a builtin/typeshed class) lands on the same nominal
// Instance(name) — the distinction only matters for diagnostics (an
// unresolved annotation name should eventually produce an
// unresolved-reference diagnostic the way an ordinary use-site name does),
// which is left to a future pass once class-body member resolution
// exists to make that diagnostic actionable.
func (p *Program) typeOfAnnotationName(name string) pytype.TypeID {
	if name == "None" {
		return p.Store.Instance("NoneType")
	}
	return p.Store.Instance(name)
}

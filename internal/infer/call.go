package infer

import (
	"context"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/diag"
	"pyglass.dev/pyglass/internal/pytype"
)

// revealTypeName is the magic function name spec §4.H special-cases:
// "reveal_type is special-cased to attach an informational diagnostic".
const revealTypeName = "reveal_type"

// typeOfCall resolves a Call expression's target type and folds the
// resulting CallOutcome back into a plain TypeID for type_of_expression,
// while recording the diagnostics the outcome implies (spec §4.H "Call
// resolution produces a CallOutcome").
func (p *Program) typeOfCall(ctx context.Context, moduleName string, m *Module, id ast.ExprID, e *ast.Expr) pytype.TypeID {
	called := p.TypeOfExpression(ctx, moduleName, e.Func)
	isReveal := m.File.Arena.Expr(e.Func).Kind == ast.KindName && m.File.Arena.Expr(e.Func).Name == revealTypeName

	// possiblyUnboundDunder is always false here: detecting that a call
	// target's own `__call__` is conditionally unbound needs a flow-
	// sensitive reachability analysis semindex's single AST walk does not
	// build (see TypeOfSymbol's doc comment on the same limitation).
	// pytype.ResolveCall still exposes the parameter so a future
	// flow-sensitive pass can supply it without changing this call site.
	outcome := pytype.ResolveCall(p.Store, called, false, isReveal, p.revealedArgType(ctx, moduleName, e))
	p.recordCallDiagnostics(m, id, outcome)
	return outcome.Return
}

// revealedArgType computes the type reveal_type(arg) reports: the
// argument's type, not reveal_type itself's, with literal types widened
// to their nominal class (a name bound to 'hi' reveals as str).
// reveal_type with no positional argument has nothing to reveal; Dynamic
// stands in rather than special-casing the CallOutcome shape for a
// malformed call.
func (p *Program) revealedArgType(ctx context.Context, moduleName string, e *ast.Expr) pytype.TypeID {
	if len(e.Args) == 0 {
		return pytype.Dynamic
	}
	return pytype.Widen(p.Store, p.TypeOfExpression(ctx, moduleName, e.Args[0]))
}

// ResolveCallExpression exposes the full CallOutcome (not just its
// return type) for a Call expression, for callers — the future
// `cmd/pyglass check` driver, or a `reveal_type` display collaborator —
// that need the structured shape rather than type_of_expression's folded
// TypeID.
func (p *Program) ResolveCallExpression(ctx context.Context, moduleName string, id ast.ExprID) pytype.CallOutcome {
	m, ok := p.module(moduleName)
	if !ok {
		return pytype.CallOutcome{Kind: pytype.OutcomeCallable, Return: pytype.Dynamic}
	}
	e := m.File.Arena.Expr(id)
	called := p.TypeOfExpression(ctx, moduleName, e.Func)
	isReveal := m.File.Arena.Expr(e.Func).Kind == ast.KindName && m.File.Arena.Expr(e.Func).Name == revealTypeName
	outcome := pytype.ResolveCall(p.Store, called, false, isReveal, p.revealedArgType(ctx, moduleName, e))
	p.recordCallDiagnostics(m, id, outcome)
	return outcome
}

func (p *Program) recordCallDiagnostics(m *Module, id ast.ExprID, outcome pytype.CallOutcome) {
	e := m.File.Arena.Expr(id)
	switch outcome.Kind {
	case pytype.OutcomeRevealType:
		d := diag.New("reveal-type", diag.SeverityInfo, e.Range.Start, diag.TagRevealType,
			"revealed type is %q", p.Store.String(outcome.Revealed))
		p.Diagnostics.Add(d.Err)
	case pytype.OutcomeNotCallable:
		p.Diagnostics.Add(diag.Newf(e.Range.Start, "object of type %q is not callable", p.Store.String(outcome.Called)))
	case pytype.OutcomeUnion:
		if outcome.HasNonCallableElement() {
			p.Diagnostics.Add(diag.Newf(e.Range.Start, "not all members of %q are callable", p.Store.String(outcome.Called)))
		}
	case pytype.OutcomePossiblyUnboundDunderCall:
		d := diag.New("possibly-unbound-dunder-call", diag.SeverityWarning, e.Range.Start, diag.TagPossiblyUnbound,
			"`__call__` on %q is possibly unbound", p.Store.String(outcome.Called))
		p.Diagnostics.Add(d.Err)
	}
}

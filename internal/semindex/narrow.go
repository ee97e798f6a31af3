package semindex

import (
	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/pytype"
	"pyglass.dev/pyglass/internal/token"
)

// NarrowRegion records that throughout Range, Symbol (as resolved from
// Scope) satisfies Predicate: the lexical span of an if-statement's
// positive or negative branch, a CFG-free approximation of the
// flow-sensitive narrowing spec §4.G describes. type_of_expression
// applies the narrowest (innermost) region covering a given name-use's
// position; type_of_symbol does not consult regions.
type NarrowRegion struct {
	Scope     FileScopeId
	Symbol    ScopedSymbolId
	Range     token.Range
	Predicate pytype.Predicate
}

// narrowTest inspects an If statement's test expression for one of the
// predicate shapes spec §4.G names ("is None, is not None, isinstance(X),
// not isinstance(X), truthiness") and, on a match, returns the guarded
// name and the predicate that holds in the positive (then) branch.
func narrowTest(arena *ast.Arena, test ast.ExprID) (name string, positive pytype.Predicate, ok bool) {
	e := arena.Expr(test)
	switch e.Kind {
	case ast.KindCall:
		return narrowIsInstanceCall(arena, e)
	case ast.KindUnaryOp:
		if e.Op != token.NOT {
			return "", pytype.Predicate{}, false
		}
		inner := arena.Expr(e.Right)
		if inner.Kind != ast.KindCall {
			return "", pytype.Predicate{}, false
		}
		n, p, ok := narrowIsInstanceCall(arena, inner)
		if !ok {
			return "", pytype.Predicate{}, false
		}
		return n, negatedPredicate(p), true
	case ast.KindCompare:
		return narrowIsCompare(arena, e)
	case ast.KindName:
		return e.Name, pytype.Predicate{Kind: pytype.PredicateTruthy}, true
	}
	return "", pytype.Predicate{}, false
}

// narrowIsInstanceCall recognizes `isinstance(subject, Class)` where both
// operands are bare names; a tuple-of-classes second argument or any
// other shape is left undetected rather than partially modeled.
func narrowIsInstanceCall(arena *ast.Arena, e *ast.Expr) (string, pytype.Predicate, bool) {
	fn := arena.Expr(e.Func)
	if fn.Kind != ast.KindName || fn.Name != "isinstance" || len(e.Args) != 2 {
		return "", pytype.Predicate{}, false
	}
	subj := arena.Expr(e.Args[0])
	cls := arena.Expr(e.Args[1])
	if subj.Kind != ast.KindName || cls.Kind != ast.KindName {
		return "", pytype.Predicate{}, false
	}
	return subj.Name, pytype.Predicate{Kind: pytype.PredicateIsInstance, Class: cls.Name}, true
}

// narrowIsCompare recognizes `name is None`/`name is not None` in either
// operand order.
func narrowIsCompare(arena *ast.Arena, e *ast.Expr) (string, pytype.Predicate, bool) {
	if len(e.Ops) != 1 || len(e.Comparators) != 1 {
		return "", pytype.Predicate{}, false
	}
	op := e.Ops[0]
	if op != token.IS && op != token.ISNOT {
		return "", pytype.Predicate{}, false
	}
	left := arena.Expr(e.Left)
	right := arena.Expr(e.Comparators[0])
	var subj *ast.Expr
	switch {
	case left.Kind == ast.KindName && right.Kind == ast.KindNoneLit:
		subj = left
	case right.Kind == ast.KindName && left.Kind == ast.KindNoneLit:
		subj = right
	default:
		return "", pytype.Predicate{}, false
	}
	kind := pytype.PredicateIsNone
	if op == token.ISNOT {
		kind = pytype.PredicateIsNotNone
	}
	return subj.Name, pytype.Predicate{Kind: kind}, true
}

// negatedPredicate is the complement of p, the predicate that holds in an
// if-statement's else branch when p held in the then branch.
func negatedPredicate(p pytype.Predicate) pytype.Predicate {
	switch p.Kind {
	case pytype.PredicateIsNone:
		return pytype.Predicate{Kind: pytype.PredicateIsNotNone}
	case pytype.PredicateIsNotNone:
		return pytype.Predicate{Kind: pytype.PredicateIsNone}
	case pytype.PredicateIsInstance:
		return pytype.Predicate{Kind: pytype.PredicateNotIsInstance, Class: p.Class}
	case pytype.PredicateNotIsInstance:
		return pytype.Predicate{Kind: pytype.PredicateIsInstance, Class: p.Class}
	case pytype.PredicateTruthy:
		return pytype.Predicate{Kind: pytype.PredicateFalsy}
	case pytype.PredicateFalsy:
		return pytype.Predicate{Kind: pytype.PredicateTruthy}
	default:
		return p
	}
}

// rangeOfStmts spans the first statement's start to the last statement's
// end, ok=false for an empty body (no region to record).
func rangeOfStmts(arena *ast.Arena, stmts []ast.StmtID) (token.Range, bool) {
	if len(stmts) == 0 {
		return token.Range{}, false
	}
	first := arena.Stmt(stmts[0])
	last := arena.Stmt(stmts[len(stmts)-1])
	return token.Range{Start: first.Range.Start, End: last.Range.End}, true
}

// contains reports whether r wholly contains target, used to find the
// narrowing regions that apply to a given expression's position.
func (r NarrowRegion) contains(target token.Range) bool {
	return r.Range.Start.Offset <= target.Start.Offset && target.End.Offset <= r.Range.End.Offset
}

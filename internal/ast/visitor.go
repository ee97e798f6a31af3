package ast

// Visitor receives enter/leave callbacks during a depth-first walk (spec
// §4.D: "The arena supports a depth-first visitor with enter/leave hooks").
// Any hook may be nil. Returning false from an Enter hook skips the
// subtree's children (and its Leave call).
type Visitor struct {
	EnterStmt func(StmtID, *Stmt) bool
	LeaveStmt func(StmtID, *Stmt)
	EnterExpr func(ExprID, *Expr) bool
	LeaveExpr func(ExprID, *Expr)
}

// Walk traverses every statement in body, in order, via v.
func Walk(a *Arena, body []StmtID, v *Visitor) {
	for _, id := range body {
		walkStmt(a, id, v)
	}
}

func walkStmt(a *Arena, id StmtID, v *Visitor) {
	if id == NilStmt {
		return
	}
	s := a.Stmt(id)
	if v.EnterStmt != nil && !v.EnterStmt(id, s) {
		return
	}
	for _, p := range s.Params {
		walkExpr(a, p.Annotation, v)
		walkExpr(a, p.Default, v)
	}
	for _, d := range s.Decorators {
		walkExpr(a, d, v)
	}
	for _, b := range s.Bases {
		walkExpr(a, b, v)
	}
	for _, k := range s.Keywords {
		walkExpr(a, k.Value, v)
	}
	walkExpr(a, s.Returns, v)
	for _, t := range s.Targets {
		walkExpr(a, t, v)
	}
	walkExpr(a, s.Target, v)
	walkExpr(a, s.Value, v)
	walkExpr(a, s.Test, v)
	walkExpr(a, s.Iter, v)
	walkExpr(a, s.Annotation, v)
	walkExpr(a, s.Msg, v)
	walkExpr(a, s.Exc, v)
	for _, wi := range s.WithItems {
		walkExpr(a, wi.ContextExpr, v)
		walkExpr(a, wi.OptionalVars, v)
	}
	Walk(a, s.Body, v)
	Walk(a, s.OrElse, v)
	Walk(a, s.Finalbody, v)
	for _, h := range s.Handlers {
		walkExpr(a, h.Type, v)
		Walk(a, h.Body, v)
	}
	if v.LeaveStmt != nil {
		v.LeaveStmt(id, s)
	}
}

func walkExpr(a *Arena, id ExprID, v *Visitor) {
	if id == NilExpr {
		return
	}
	e := a.Expr(id)
	if v.EnterExpr != nil && !v.EnterExpr(id, e) {
		return
	}
	walkExpr(a, e.Left, v)
	walkExpr(a, e.Right, v)
	for _, c := range e.Comparators {
		walkExpr(a, c, v)
	}
	for _, val := range e.Values {
		walkExpr(a, val, v)
	}
	for _, k := range e.Keys {
		walkExpr(a, k, v)
	}
	walkExpr(a, e.Body, v)
	walkExpr(a, e.Test, v)
	walkExpr(a, e.OrElse, v)
	for _, p := range e.Params {
		walkExpr(a, p.Annotation, v)
		walkExpr(a, p.Default, v)
	}
	walkExpr(a, e.Func, v)
	for _, arg := range e.Args {
		walkExpr(a, arg, v)
	}
	for _, kw := range e.KwArgs {
		walkExpr(a, kw.Value, v)
	}
	walkExpr(a, e.Value, v)
	walkExpr(a, e.Index, v)
	walkExpr(a, e.Lower, v)
	walkExpr(a, e.Upper, v)
	walkExpr(a, e.Step, v)
	for _, el := range e.Elts {
		walkExpr(a, el, v)
	}
	for _, c := range e.Clauses {
		walkExpr(a, c.Target, v)
		walkExpr(a, c.Iter, v)
		walkExpr(a, c.Cond, v)
	}
	for _, part := range e.Parts {
		if part.IsExpr {
			walkExpr(a, part.Expr, v)
		}
	}
	if v.LeaveExpr != nil {
		v.LeaveExpr(id, e)
	}
}

package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	file, lexErrs, parseErrs := ParseFile("test.py", []byte(src))
	qt.Assert(t, qt.HasLen(lexErrs, 0))
	qt.Assert(t, qt.HasLen(parseErrs, 0))
	return file
}

func TestParseSimpleAssignment(t *testing.T) {
	f := parseOK(t, "x = 1\n")
	qt.Assert(t, qt.HasLen(f.Body, 1))
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindAssign))
	qt.Assert(t, qt.HasLen(s.Targets, 1))
}

func TestParseFunctionDef(t *testing.T) {
	src := "def f(a, b=1, *args, c, **kwargs) -> int:\n    return a + b\n"
	f := parseOK(t, src)
	qt.Assert(t, qt.HasLen(f.Body, 1))
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindFunctionDef))
	qt.Assert(t, qt.Equals(s.Name, "f"))
	qt.Assert(t, qt.IsFalse(s.Returns == ast.NilExpr))
	qt.Assert(t, qt.HasLen(s.Body, 1))
	ret := f.Arena.Stmt(s.Body[0])
	qt.Assert(t, qt.Equals(ret.Kind, ast.KindReturn))
}

func TestParseIfElif(t *testing.T) {
	src := "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindIf))
	qt.Assert(t, qt.HasLen(s.OrElse, 1))
	elif := f.Arena.Stmt(s.OrElse[0])
	qt.Assert(t, qt.Equals(elif.Kind, ast.KindIf))
	qt.Assert(t, qt.HasLen(elif.OrElse, 1))
}

func TestParseClassDef(t *testing.T) {
	src := "class Foo(Base, metaclass=Meta):\n    x: int = 1\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindClassDef))
	qt.Assert(t, qt.Equals(s.Name, "Foo"))
	qt.Assert(t, qt.HasLen(s.Bases, 1))
	qt.Assert(t, qt.HasLen(s.Keywords, 1))
	ann := f.Arena.Stmt(s.Body[0])
	qt.Assert(t, qt.Equals(ann.Kind, ast.KindAnnAssign))
}

func TestParseForWithComprehension(t *testing.T) {
	src := "xs = [y for y in range(10) if y % 2 == 0]\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindAssign))
	comp := f.Arena.Expr(s.Value)
	qt.Assert(t, qt.Equals(comp.Kind, ast.KindListComp))
	qt.Assert(t, qt.HasLen(comp.Clauses, 2))
}

func TestParseTryExcept(t *testing.T) {
	src := "try:\n    pass\nexcept ValueError as e:\n    pass\nfinally:\n    pass\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindTry))
	qt.Assert(t, qt.HasLen(s.Handlers, 1))
	qt.Assert(t, qt.Equals(s.Handlers[0].Name, "e"))
	qt.Assert(t, qt.HasLen(s.Finalbody, 1))
}

func TestParseImportFrom(t *testing.T) {
	src := "from .pkg import a, b as c\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindImportFrom))
	qt.Assert(t, qt.Equals(s.Level, 1))
	qt.Assert(t, qt.Equals(s.ModuleName, "pkg"))
	qt.Assert(t, qt.HasLen(s.Aliases, 2))
	qt.Assert(t, qt.Equals(s.Aliases[1].AsName, "c"))
}

func TestParseFString(t *testing.T) {
	src := "x = f\"hello {name!r:>10} world\"\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	e := f.Arena.Expr(s.Value)
	qt.Assert(t, qt.Equals(e.Kind, ast.KindFString))
	hasExpr := false
	for _, part := range e.Parts {
		if part.IsExpr {
			hasExpr = true
		}
	}
	qt.Assert(t, qt.IsTrue(hasExpr))
}

func TestParseWithStatement(t *testing.T) {
	src := "with open(a) as f, open(b):\n    pass\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	qt.Assert(t, qt.Equals(s.Kind, ast.KindWith))
	qt.Assert(t, qt.HasLen(s.WithItems, 2))
	qt.Assert(t, qt.IsFalse(s.WithItems[0].OptionalVars == ast.NilExpr))
}

func TestParseDefaultArgOrderError(t *testing.T) {
	_, _, errs := ParseFile("test.py", []byte("def f(a=1, b):\n    pass\n"))
	qt.Assert(t, qt.IsTrue(len(errs) > 0))
}

func TestParseLambdaAndTernary(t *testing.T) {
	src := "f = lambda x: x if x > 0 else -x\n"
	f := parseOK(t, src)
	s := f.Arena.Stmt(f.Body[0])
	e := f.Arena.Expr(s.Value)
	qt.Assert(t, qt.Equals(e.Kind, ast.KindLambda))
	body := f.Arena.Expr(e.Body)
	qt.Assert(t, qt.Equals(body.Kind, ast.KindIfExp))
}

package semindex

import (
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/parser"
)

func buildOK(t *testing.T, src string) (*ast.File, *Index) {
	t.Helper()
	file, lexErrs, parseErrs := parser.ParseFile("test.py", []byte(src))
	qt.Assert(t, qt.HasLen(lexErrs, 0))
	qt.Assert(t, qt.HasLen(parseErrs, 0))
	return file, Build(file)
}

// findName returns the ExprID of the nth Name expr with the given text in
// source order of arena allocation.
func findName(file *ast.File, name string, occurrence int) ast.ExprID {
	count := 0
	for i := 1; i < file.Arena.NumExprs(); i++ {
		id := ast.ExprID(i)
		e := file.Arena.Expr(id)
		if e.Kind == ast.KindName && e.Name == name {
			if count == occurrence {
				return id
			}
			count++
		}
	}
	return ast.NilExpr
}

func TestModuleLevelAssignmentAndUse(t *testing.T) {
	file, idx := buildOK(t, "x = 1\ny = x + 1\n")
	use := findName(file, "x", 1) // the x inside "x + 1"
	qt.Assert(t, qt.IsFalse(use == ast.NilExpr))
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(res.Unbound))
	qt.Assert(t, qt.Equals(res.Scope, FileScopeId(0)))
	sym := idx.Symbol(res.Scope, res.Symbol)
	qt.Assert(t, qt.Equals(sym.Name, "x"))
	qt.Assert(t, qt.IsTrue(sym.Flags&FlagUsed != 0))
}

func TestFunctionClosesOverModuleGlobalDefinedLater(t *testing.T) {
	src := "def f():\n    return LATER\n\nLATER = 1\n"
	file, idx := buildOK(t, src)
	use := findName(file, "LATER", 0)
	qt.Assert(t, qt.IsFalse(use == ast.NilExpr))
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(res.Unbound))
	qt.Assert(t, qt.Equals(res.Scope, FileScopeId(0)))
}

func TestParameterShadowsOuterScope(t *testing.T) {
	src := "x = 1\ndef f(x):\n    return x\n"
	file, idx := buildOK(t, src)
	use := findName(file, "x", 1) // the x in "return x"
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(res.Scope == FileScopeId(0)))
}

func TestNestedFunctionSkipsEnclosingClassScope(t *testing.T) {
	src := "class C:\n    attr = 1\n    def m(self):\n        def inner():\n            return attr\n        return inner\n"
	file, idx := buildOK(t, src)
	use := findName(file, "attr", 1) // the attr inside inner()
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(res.Unbound))
}

func TestClassBodyCanSeeItsOwnAttribute(t *testing.T) {
	src := "class C:\n    attr = 1\n    other = attr + 1\n"
	file, idx := buildOK(t, src)
	use := findName(file, "attr", 1) // the attr inside "attr + 1"
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsFalse(res.Unbound))
}

func TestUnresolvedNameIsUnbound(t *testing.T) {
	file, idx := buildOK(t, "print(nope)\n")
	use := findName(file, "nope", 0)
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(res.Unbound))
}

func TestGlobalDeclRedirectsBindingToModuleScope(t *testing.T) {
	src := "count = 0\ndef bump():\n    global count\n    count = count + 1\n"
	file, idx := buildOK(t, src)
	use := findName(file, "count", 2) // the count inside "count + 1"
	res, ok := idx.Resolutions[use]
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(res.Scope, FileScopeId(0)))
}

func TestComprehensionTargetDoesNotLeakToEnclosingScope(t *testing.T) {
	src := "squares = [y * y for y in range(10)]\n"
	_, idx := buildOK(t, src)
	qt.Assert(t, qt.IsFalse(idx.IsNameBound(FileScopeId(0), "y")))
}

func TestIsNameBoundReflectsParameters(t *testing.T) {
	src := "def f(a):\n    pass\n"
	file, idx := buildOK(t, src)
	// function scope is scope 1 (module is 0, first nested scope allocated is the function)
	_ = file
	qt.Assert(t, qt.IsTrue(idx.IsNameBound(FileScopeId(1), "a")))
	qt.Assert(t, qt.IsFalse(idx.IsNameBound(FileScopeId(0), "a")))
}

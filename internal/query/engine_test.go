package query

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/filesystem"
	"pyglass.dev/pyglass/internal/resolver"
)

func newTestEngine(t *testing.T, fs *filesystem.MemFS, sp resolver.SearchPath) *Engine {
	t.Helper()
	res := resolver.New(fs, "")
	return New(fs, res, sp, nil)
}

func TestParseMemoizesUntilContentChanges(t *testing.T) {
	fs := filesystem.NewMemFS()
	fs.WriteText("/src/m.py", "x = 1\n")
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})

	file1, _, _, err := e.Parse(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	file2, _, _, err := e.Parse(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(file1, file2)) // same cached *ast.File, no reparse

	e.ApplyEdit("/src/m.py", "x = 2\n")
	file3, _, _, err := e.Parse(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(file1 == file3))
}

func TestApplyEditRestoringByteIdenticalTextReproducesDiagnostics(t *testing.T) {
	fs := filesystem.NewMemFS()
	original := "print(nope)\n"
	fs.WriteText("/src/m.py", original)
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})

	// Both print and nope are unresolved: the test engine has no builtins
	// module to fall back to.
	first, err := e.Diagnostics(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(first, 2))

	e.ApplyEdit("/src/m.py", "print(nope)  \n")
	e.ApplyEdit("/src/m.py", original)

	second, err := e.Diagnostics(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(second, 2))
	qt.Assert(t, qt.Equals(first[0].Error(), second[0].Error()))
}

func TestModuleNameDerivedFromSrcRoot(t *testing.T) {
	fs := filesystem.NewMemFS()
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})
	qt.Assert(t, qt.Equals(e.ModuleName("/src/pkg/mod.py"), "pkg.mod"))
	qt.Assert(t, qt.Equals(e.ModuleName("/src/pkg/__init__.py"), "pkg"))
}

func TestTypeOfSymbolAcrossModules(t *testing.T) {
	fs := filesystem.NewMemFS()
	fs.WriteText("/src/pkg.py", "x = 1\n")
	fs.WriteText("/src/main.py", "from pkg import x\n")
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})

	idx, err := e.SemanticIndex(context.Background(), "/src/main.py")
	qt.Assert(t, qt.IsNil(err))
	sid, ok := idx.Lookup(0, "x")
	qt.Assert(t, qt.IsTrue(ok))

	got, err := e.TypeOfSymbol(context.Background(), "/src/main.py", 0, sid)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, e.TypeStore().LiteralInt("1")))
}

func TestTypeOfExpressionAtSurvivesReparse(t *testing.T) {
	fs := filesystem.NewMemFS()
	fs.WriteText("/src/m.py", "x = 1\n")
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})

	file, _, _, err := e.Parse(context.Background(), "/src/m.py")
	qt.Assert(t, qt.IsNil(err))
	var litID ast.ExprID
	for i := 1; i < file.Arena.NumExprs(); i++ {
		if file.Arena.Expr(ast.ExprID(i)).Kind == ast.KindNumberLit {
			litID = ast.ExprID(i)
		}
	}
	qt.Assert(t, qt.IsFalse(litID == ast.NilExpr))
	key := ast.ExprKey([]byte("x = 1\n"), litID, file.Arena.Expr(litID))

	got, ok, err := e.TypeOfExpressionAt(context.Background(), "/src/m.py", key)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, e.TypeStore().LiteralInt("1")))
}

func TestDiagnosticsForPathsRunsConcurrently(t *testing.T) {
	fs := filesystem.NewMemFS()
	fs.WriteText("/src/a.py", "a()\n")
	fs.WriteText("/src/b.py", "b = 1\n")
	e := newTestEngine(t, fs, resolver.SearchPath{SrcRoots: []string{"/src"}})

	results, err := e.DiagnosticsForPaths(context.Background(), []string{"/src/a.py", "/src/b.py"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(results["/src/a.py"], 1))
	qt.Assert(t, qt.HasLen(results["/src/b.py"], 0))
}

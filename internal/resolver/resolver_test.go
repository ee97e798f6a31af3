package resolver

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/filesystem"
)

func TestResolveModulePrefersEarlierRoot(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/r1/m.py", "x = 1\n")
	mem.WriteText("/r2/m.py", "x = 2\n")
	r := New(mem, "/typeshed")
	h, ok := r.ResolveModule(context.Background(), "m", SearchPath{ExtraRoots: []string{"/r1", "/r2"}})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(h.Root, "/r1"))
	qt.Assert(t, qt.Equals(h.File, "/r1/m.py"))
}

func TestResolveModulePyiWinsOverPy(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/r1/m.py", "x = 1\n")
	mem.WriteText("/r1/m.pyi", "x: int\n")
	r := New(mem, "/typeshed")
	h, ok := r.ResolveModule(context.Background(), "m", SearchPath{ExtraRoots: []string{"/r1"}})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(h.File, "/r1/m.pyi"))
}

func TestResolveModulePackage(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/r1/pkg/sub/__init__.py", "")
	r := New(mem, "/typeshed")
	h, ok := r.ResolveModule(context.Background(), "pkg.sub", SearchPath{ExtraRoots: []string{"/r1"}})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(h.Kind, ModuleKindPackage))
	qt.Assert(t, qt.Equals(h.File, "/r1/pkg/sub/__init__.py"))
}

func TestResolveModuleFallsBackToTypeshed(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/typeshed/os.pyi", "")
	r := New(mem, "/typeshed")
	h, ok := r.ResolveModule(context.Background(), "os", SearchPath{ExtraRoots: []string{"/r1"}})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(h.Root, "/typeshed"))
}

func TestResolveModuleUnresolved(t *testing.T) {
	mem := filesystem.NewMemFS()
	r := New(mem, "/typeshed")
	_, ok := r.ResolveModule(context.Background(), "no_such_pkg", SearchPath{ExtraRoots: []string{"/r1"}})
	qt.Assert(t, qt.IsFalse(ok))
}

func TestDiscoverWorkspaceMembers(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/ws/pyglass.yaml", "members:\n  - \"pkgs/*\"\n")
	mem.WriteText("/ws/pkgs/a/pyglass.yaml", "python_version: \"3.12\"\n")
	mem.WriteText("/ws/pkgs/a/mod.py", "")
	mem.WriteText("/ws/pkgs/b/pyglass.yaml", "python_version: \"3.12\"\n")
	mem.WriteText("/ws/pkgs/b/mod.py", "")

	ws, errs := DiscoverWorkspace(context.Background(), mem, "/ws")
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.HasLen(ws.Members, 2))
	qt.Assert(t, qt.Equals(ws.Members[0].Name, "a"))
	qt.Assert(t, qt.Equals(ws.Members[1].Name, "b"))
}

func TestDiscoverWorkspaceMissingManifest(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/ws/pyglass.yaml", "members:\n  - \"pkgs/*\"\n")
	mem.WriteText("/ws/pkgs/a/mod.py", "")

	_, errs := DiscoverWorkspace(context.Background(), mem, "/ws")
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Kind, ErrMemberMissingManifest))
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestCheckCleanFileExitsZero(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "clean.py"), []byte("x = 1\n"), 0o644)))

	wd, err := os.Getwd()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(os.Chdir(dir)))
	defer os.Chdir(wd)

	var stdout, stderr bytes.Buffer
	code := Main([]string{"check", "clean.py"}, &stdout, &stderr)
	qt.Assert(t, qt.Equals(code, ExitClean))
}

func TestCheckUnboundNameExitsOne(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "bad.py"), []byte("print(nope)\n"), 0o644)))

	wd, err := os.Getwd()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(os.Chdir(dir)))
	defer os.Chdir(wd)

	var stdout, stderr bytes.Buffer
	code := Main([]string{"check", "bad.py"}, &stdout, &stderr)
	qt.Assert(t, qt.Equals(code, ExitDiagnostics))
	qt.Assert(t, qt.IsTrue(stdout.Len() > 0))
}

func TestFormatIsAPlaceholder(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "m.py"), []byte("x = 1\n"), 0o644)))

	var stdout, stderr bytes.Buffer
	code := Main([]string{"format", filepath.Join(dir, "m.py")}, &stdout, &stderr)
	qt.Assert(t, qt.Equals(code, ExitClean))
	qt.Assert(t, qt.IsTrue(stdout.Len() > 0))
}

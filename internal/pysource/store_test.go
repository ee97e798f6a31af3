package pysource

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/filesystem"
)

func TestStoreReadAndSetText(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/a.py", "x = 1\n")
	store := NewStore(mem)
	ctx := context.Background()

	text, err := store.Read(ctx, "/a.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(text, "x = 1\n"))

	rev0, err := store.Revision(ctx, "/a.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(rev0, 0))

	rev1 := store.SetText("/a.py", "x = 2\n", KindRegular)
	qt.Assert(t, qt.Equals(rev1, 1))

	text2, err := store.Read(ctx, "/a.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(text2, "x = 2\n"))
}

func TestStoreNotFound(t *testing.T) {
	mem := filesystem.NewMemFS()
	store := NewStore(mem)
	_, err := store.Read(context.Background(), "/missing.py")
	qt.Assert(t, qt.Equals(err, NotFound))
}

func TestStoreLineIndex(t *testing.T) {
	mem := filesystem.NewMemFS()
	mem.WriteText("/a.py", "a\nbb\nccc")
	store := NewStore(mem)
	idx, err := store.LineIndex(context.Background(), "/a.py")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(idx, []int{0, 2, 5}))
}

func TestParseNotebookConcatenatesCodeCells(t *testing.T) {
	doc := []byte(`{
		"cells": [
			{"cell_type": "markdown", "source": ["# title\n"]},
			{"cell_type": "code", "source": ["x = 1\n", "y = 2\n"]},
			{"cell_type": "code", "source": "reveal_type(x)"}
		]
	}`)
	nb, err := ParseNotebook(doc)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(nb.Source, "x = 1\ny = 2\nreveal_type(x)\n"))
	qt.Assert(t, qt.HasLen(nb.Cells, 2))
	qt.Assert(t, qt.Equals(nb.CellForOffset(0), 0))
	qt.Assert(t, qt.Equals(nb.CellForOffset(14), 1))
}

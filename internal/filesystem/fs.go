// Package filesystem implements a minimal virtual filesystem contract:
// read_text, metadata, read_dir, served identically for OS paths,
// in-memory buffers, and the vendored typeshed archive. Grounded on
// cue/filesystem's io/fs-shaped OSFS, generalized to three backends
// behind one interface.
package filesystem

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Metadata/ReadText when path does not exist.
var ErrNotFound = errors.New("filesystem: not found")

// ErrNotText is returned by ReadText when path's content is not valid UTF-8
// (spec §4.A read(path) → text | NotFound | NotText).
var ErrNotText = errors.New("filesystem: not text")

// Kind classifies a filesystem entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
)

// Metadata is the result of a stat-like lookup (spec §6 "metadata(path) →
// {kind, revision}"). ModTime stands in for "revision" on backing stores
// that do not themselves version content (OS disk, vendored archive); the
// source store in internal/pysource keeps its own monotonic revision
// independent of this value.
type Metadata struct {
	Kind    Kind
	Size    int64
	ModTime time.Time
}

// DirEntry is one entry returned by ReadDir.
type DirEntry struct {
	Name string
	Kind Kind
}

// FS is the contract consumed by internal/pysource and internal/resolver.
// Implementations: OSFS (local disk), MemFS (unsaved buffers / tests),
// VendoredFS (bundled typeshed).
type FS interface {
	ReadText(ctx context.Context, path string) (string, error)
	Metadata(ctx context.Context, path string) (Metadata, error)
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)
}

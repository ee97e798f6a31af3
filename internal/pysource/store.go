// Package pysource implements spec §4.A: the source store mapping a
// canonical path to (revision, text, kind, line index), shared by the
// lexer/parser/query layers. Grounded on cue/build's Instance (an
// in-memory record owning its files) adapted to a single flat, mutable,
// per-path record store with monotonic revisions instead of CUE's
// immutable per-load Instance tree.
package pysource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pyglass.dev/pyglass/internal/filesystem"
)

// Kind classifies a source record (spec §3 Source file: "kind ∈ {regular,
// virtual, vendored-stub}").
type Kind uint8

const (
	KindRegular Kind = iota
	KindVirtual
	KindVendoredStub
)

// Record is one canonical path's current state.
type Record struct {
	Path      string
	Revision  int
	Text      string
	Kind      Kind
	LineIndex []int // cumulative byte offsets of line starts, index 0 == 0
}

// NotFound and NotText are typed sentinel errors for a read's two failure
// modes, preferred here over an error-carrying result struct.
var (
	NotFound = fmt.Errorf("pysource: not found")
	NotText  = fmt.Errorf("pysource: not text")
)

// Store owns every known source record for one workspace instance (spec
// §5 "The source store is the only mutable shared resource. Writes bump
// revisions under a per-path lock; reads take a shared lock.").
type Store struct {
	fs filesystem.FS

	mu      sync.RWMutex
	records map[string]*recordLock
}

type recordLock struct {
	mu     sync.RWMutex
	record *Record
}

// NewStore creates a Store backed by fs for paths not yet opened in
// memory.
func NewStore(fs filesystem.FS) *Store {
	return &Store{fs: fs, records: make(map[string]*recordLock)}
}

func (s *Store) entry(path string) *recordLock {
	s.mu.RLock()
	e, ok := s.records[path]
	s.mu.RUnlock()
	if ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.records[path]; ok {
		return e
	}
	e = &recordLock{}
	s.records[path] = e
	return e
}

// Read returns path's current text, loading it from the backing
// filesystem on first access. Returns NotFound or NotText per spec §4.A.
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	rec, err := s.load(ctx, path)
	if err != nil {
		return "", err
	}
	return rec.Text, nil
}

// Revision returns path's current monotonic revision.
func (s *Store) Revision(ctx context.Context, path string) (int, error) {
	rec, err := s.load(ctx, path)
	if err != nil {
		return 0, err
	}
	return rec.Revision, nil
}

// LineIndex returns the cumulative line-start offset table for path.
func (s *Store) LineIndex(ctx context.Context, path string) ([]int, error) {
	rec, err := s.load(ctx, path)
	if err != nil {
		return nil, err
	}
	return rec.LineIndex, nil
}

func (s *Store) load(ctx context.Context, path string) (*Record, error) {
	e := s.entry(path)
	e.mu.RLock()
	if e.record != nil {
		r := e.record
		e.mu.RUnlock()
		return r, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record != nil {
		return e.record, nil
	}
	text, err := s.fs.ReadText(ctx, path)
	if err != nil {
		if err == filesystem.ErrNotFound {
			return nil, NotFound
		}
		if err == filesystem.ErrNotText {
			return nil, NotText
		}
		return nil, err
	}
	rec := &Record{Path: path, Revision: 0, Text: text, Kind: KindRegular, LineIndex: buildLineIndex(text)}
	e.record = rec
	return rec, nil
}

// SetText bumps path's revision and replaces its text (spec §4.A "mutation
// primitive used by the host... bumping revision. The store MUST ensure
// revision monotonicity and MUST NOT reuse a revision after a change.").
func (s *Store) SetText(path string, text string, kind Kind) int {
	e := s.entry(path)
	e.mu.Lock()
	defer e.mu.Unlock()
	rev := 0
	if e.record != nil {
		rev = e.record.Revision + 1
	}
	e.record = &Record{Path: path, Revision: rev, Text: text, Kind: kind, LineIndex: buildLineIndex(text)}
	return rev
}

// Close drops path's in-memory record; a subsequent Read reloads from fs
// (or returns NotFound for virtual paths with no backing file).
func (s *Store) Close(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, path)
}

// NewVirtualPath mints a unique path for an unsaved editor buffer (spec
// §3 "virtual" source kind), namespaced so it can never collide with a
// real filesystem path.
func NewVirtualPath(hint string) string {
	id := uuid.New()
	if hint == "" {
		return "virtual://" + id.String()
	}
	hint = strings.TrimPrefix(hint, "/")
	return "virtual://" + id.String() + "/" + hint
}

func buildLineIndex(text string) []int {
	idx := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

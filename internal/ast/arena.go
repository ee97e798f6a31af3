package ast

import (
	"encoding/binary"

	"github.com/minio/highwayhash"

	"pyglass.dev/pyglass/internal/token"
)

// highwayKey is a fixed, unexported 32-byte key. NodeKey equality is only
// meaningful within one process, so the key need not be secret or
// configurable — it only has to be stable for the process lifetime.
var highwayKey = [32]byte{
	'p', 'y', 'g', 'l', 'a', 's', 's', '-', 'n', 'o', 'd', 'e', '-', 'k', 'e', 'y',
}

// Arena owns every Stmt and Expr produced by one parse (spec §4.D: "Arena
// layout ... a NodeKey ... used to re-associate nodes across parses when
// source is unchanged"). Index 0 in each slice is reserved as the nil
// sentinel (NilStmt / NilExpr) so zero-valued IDs are recognizably absent.
type Arena struct {
	stmts []Stmt
	exprs []Expr
}

// NewArena creates an empty arena with the nil sentinels pre-populated.
func NewArena() *Arena {
	return &Arena{
		stmts: []Stmt{{Kind: KindInvalid}},
		exprs: []Expr{{Kind: KindInvalid}},
	}
}

// AddStmt appends a statement and returns its stable StmtID.
func (a *Arena) AddStmt(s Stmt) StmtID {
	a.stmts = append(a.stmts, s)
	return StmtID(len(a.stmts) - 1)
}

// AddExpr appends an expression and returns its stable ExprID.
func (a *Arena) AddExpr(e Expr) ExprID {
	a.exprs = append(a.exprs, e)
	return ExprID(len(a.exprs) - 1)
}

// Stmt returns the statement for id. NilStmt returns the KindInvalid
// sentinel at index 0, so callers check against NilStmt before
// dereferencing.
func (a *Arena) Stmt(id StmtID) *Stmt { return &a.stmts[id] }

// Expr returns the expression for id.
func (a *Arena) Expr(id ExprID) *Expr { return &a.exprs[id] }

// NumStmts and NumExprs report arena occupancy, for diagnostics/metrics.
func (a *Arena) NumStmts() int { return len(a.stmts) }
func (a *Arena) NumExprs() int { return len(a.exprs) }

// File is the root of one parsed module (spec §4.C: "A root AST node owned
// by a freshly allocated arena").
type File struct {
	Arena    *Arena
	Path     string
	Body     []StmtID
	Comments []token.Range // sorted, never attached to nodes (spec §4.C)
}

// NodeKey is a content-stable identifier permitting cross-parse
// memoization when source compares equal (spec §3 AST node, §4.D).
type NodeKey struct {
	IsStmt bool
	Kind   Kind
	Start  int
	End    int
	Shape  uint64 // highwayhash of (kind, range, source bytes) — see StmtKey/ExprKey
}

// StmtKey computes the NodeKey for a statement given the full source text
// it was parsed from.
func StmtKey(src []byte, id StmtID, s *Stmt) NodeKey {
	start, end := rangeOffsets(s.Range)
	return NodeKey{
		IsStmt: true,
		Kind:   s.Kind,
		Start:  start,
		End:    end,
		Shape:  shapeHash(src, s.Kind, start, end),
	}
}

// ExprKey computes the NodeKey for an expression.
func ExprKey(src []byte, id ExprID, e *Expr) NodeKey {
	start, end := rangeOffsets(e.Range)
	return NodeKey{
		IsStmt: false,
		Kind:   e.Kind,
		Start:  start,
		End:    end,
		Shape:  shapeHash(src, e.Kind, start, end),
	}
}

func rangeOffsets(r token.Range) (int, int) {
	return r.Start.Offset, r.End.Offset
}

// shapeHash hashes (kind, byte range contents) with HighwayHash. Two parses
// of byte-identical source produce identical shape hashes for the node that
// covers the same range, which is all the re-association guarantee spec
// §4.D asks for: no recursive structural hashing is needed because the
// source slice already determines the shape deterministically.
func shapeHash(src []byte, kind Kind, start, end int) uint64 {
	var header [9]byte
	header[0] = byte(kind)
	binary.LittleEndian.PutUint32(header[1:5], uint32(start))
	binary.LittleEndian.PutUint32(header[5:9], uint32(end))

	h, _ := highwayhash.New64(highwayKey[:])
	h.Write(header[:])
	if start >= 0 && end <= len(src) && start <= end {
		h.Write(src[start:end])
	}
	return h.Sum64()
}

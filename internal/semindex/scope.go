// Package semindex implements spec §4.F: the scope tree, symbol tables,
// and bindings built in a single walk over a parsed file. Grounded on
// cue/ast/astutil's scope-aware resolver (a parent-scope chain consulted
// during an AST walk to resolve identifier references) generalized from
// CUE's single-scope-per-file-and-struct-literal model to Python's
// module/class/function/lambda/comprehension scope kinds and the
// class-scope-skipping lookup rule.
package semindex

import (
	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/pytype"
	"pyglass.dev/pyglass/internal/token"
)

// FileScopeId addresses a Scope within one file's Index. The module
// (root) scope is always FileScopeId 0 (spec §3 Scope: "The root scope is
// always the module scope with id 0").
type FileScopeId int

// ScopedSymbolId addresses a Symbol within one Scope's table.
type ScopedSymbolId int

// ScopeKind classifies a lexical scope (spec §3 Scope).
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeLambda
	ScopeAnnotation
	ScopeTypeParam
	ScopeComprehension
)

// Scope is a contiguous lexical region with its own symbol table (spec §3
// Scope).
type Scope struct {
	Kind   ScopeKind
	Parent FileScopeId
	Name   string // the symbol this scope is introduced by, "" for module/lambda/comprehension
}

// SymbolFlags is the flag set spec §3 Symbol names: {used, defined,
// marked-global, marked-nonlocal, implicit-global}.
type SymbolFlags uint8

const (
	FlagUsed SymbolFlags = 1 << iota
	FlagDefined
	FlagGlobal
	FlagNonlocal
	FlagImplicitGlobal
)

// Definition is a binding site paired with its kind (spec §3 Definition).
// Value/Annotation point back into the arena so `internal/infer` can
// evaluate `type_of_definition` without re-walking the tree; Stmt carries
// the owning Import/ImportFrom statement (for alias → source-module
// resolution) and AliasIndex selects which of its Aliases this
// Definition binds.
type Definition struct {
	Kind       ast.DefKind
	Range      token.Range
	Stmt       ast.StmtID // NilStmt unless Kind needs statement-level context (imports)
	Value      ast.ExprID // expression whose type this definition takes on; NilExpr if none
	Annotation ast.ExprID // explicit annotation, if any; NilExpr otherwise
	AliasIndex int        // Import/ImportFrom: index into Stmt's Aliases
}

// Symbol is an interned name within a scope with its flags and ordered
// definitions (spec §3 Symbol).
type Symbol struct {
	Name        string
	Flags       SymbolFlags
	Definitions []Definition
}

// Resolution is the outcome of resolving one name-load expression (spec
// §4.H "Name resolution rule").
type Resolution struct {
	Scope   FileScopeId
	Symbol  ScopedSymbolId
	Unbound bool // true if no reachable definition in the file; type_of_expression then tries builtins, else reports a diagnostic and yields Dynamic
}

// Index is the semantic index for one (file, revision) (spec §4.F
// outputs: SymbolTable per Scope, ScopeTree, bindings/uses, NodeKey
// resolver).
type Index struct {
	Scopes      []Scope
	Symbols     [][]Symbol // Symbols[scope][symbolID]
	nameIndex   []map[string]ScopedSymbolId
	Resolutions map[ast.ExprID]Resolution // Name-load expr -> resolution

	// StmtScopes/ExprScopes let a later consumer (internal/infer, evaluating
	// a lambda body or a comprehension element in its own scope) recover the
	// scope a FunctionDef/ClassDef statement or a Lambda/comprehension
	// expression introduced, without re-walking the tree.
	StmtScopes map[ast.StmtID]FileScopeId
	ExprScopes map[ast.ExprID]FileScopeId

	// NarrowRegions is every if-statement branch whose test narrows a
	// name's type (spec §4.G), recorded as the lexical span it applies to.
	NarrowRegions []NarrowRegion
}

// NarrowedPredicate returns the predicate narrowing symbol (as resolved in
// scope) at use, the innermost NarrowRegion whose range contains use, if
// any. Innermost is approximated by smallest byte span, which is correct
// for the non-overlapping-except-nesting shape if-statement branches
// produce.
func (idx *Index) NarrowedPredicate(scope FileScopeId, symbol ScopedSymbolId, use token.Range) (pytype.Predicate, bool) {
	best := -1
	bestLen := 0
	for i, r := range idx.NarrowRegions {
		if r.Scope != scope || r.Symbol != symbol {
			continue
		}
		if !r.contains(use) {
			continue
		}
		l := r.Range.End.Offset - r.Range.Start.Offset
		if best == -1 || l < bestLen {
			best = i
			bestLen = l
		}
	}
	if best == -1 {
		return pytype.Predicate{}, false
	}
	return idx.NarrowRegions[best].Predicate, true
}

// Symbol returns the symbol table entry (scope, id).
func (idx *Index) Symbol(scope FileScopeId, id ScopedSymbolId) *Symbol {
	return &idx.Symbols[scope][id]
}

// Lookup finds name, an existing name index entry in scope by name, if
// present locally (no scope-chain walk).
func (idx *Index) Lookup(scope FileScopeId, name string) (ScopedSymbolId, bool) {
	id, ok := idx.nameIndex[scope][name]
	return id, ok
}

// IsNameBound reports whether name resolves to a reachable, defined
// binding starting from scope, using the same lexical lookup rule as
// name-use resolution (spec §4.H), without marking the symbol used.
// Exposed per SPEC_FULL §4 "importer/import rewriting awareness": lets
// autofix-style collaborators ask "is this name free" without re-deriving
// the index.
func (idx *Index) IsNameBound(scope FileScopeId, name string) bool {
	_, _, ok := findSymbol(idx, scope, name)
	return ok
}

// findSymbol implements spec §4.H's lookup rule: inspect nested scopes
// innermost outward, skipping class scopes except when the use occurs
// directly within that class scope.
func findSymbol(idx *Index, start FileScopeId, name string) (FileScopeId, ScopedSymbolId, bool) {
	scope := start
	innermost := true
	for {
		sc := idx.Scopes[scope]
		if innermost || sc.Kind != ScopeClass {
			if sid, ok := idx.nameIndex[scope][name]; ok {
				sym := &idx.Symbols[scope][sid]
				if sym.Flags&FlagDefined != 0 {
					return scope, sid, true
				}
			}
		}
		innermost = false
		if scope == 0 {
			return 0, 0, false
		}
		scope = sc.Parent
	}
}

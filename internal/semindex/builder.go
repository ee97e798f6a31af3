package semindex

import (
	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/pytype"
	"pyglass.dev/pyglass/internal/token"
)

// nameUse records one name-load expression awaiting resolution once the
// full scope tree exists.
type nameUse struct {
	id    ast.ExprID
	scope FileScopeId
	name  string
}

type builder struct {
	arena   *ast.Arena
	idx     *Index
	store   map[ast.ExprID]bool // ExprIDs that are store (binding) positions, not loads
	uses    []nameUse
	narrows []pendingNarrow
}

// pendingNarrow is a narrowing fact recorded while walking an If
// statement, awaiting symbol resolution once the scope tree is complete
// (same two-pass shape as nameUse/resolveUses).
type pendingNarrow struct {
	scope     FileScopeId
	name      string
	rng       token.Range
	predicate pytype.Predicate
}

// Build walks file once and produces its Index (spec §4.F: "Building the
// index is a single pre-order walk of the AST"). Name-load resolution is
// deferred to a second pass over the recorded uses once every scope's
// symbol table is fully populated, which realizes forward-reference
// resolution (a name used before its textual definition within the same
// scope, or a function referencing a module global defined later in the
// file) without ruff's explicit deferred-scope work queue: building the
// complete tree before resolving any use gives the same result.
func Build(file *ast.File) *Index {
	b := &builder{
		arena: file.Arena,
		idx: &Index{
			Resolutions: map[ast.ExprID]Resolution{},
			StmtScopes:  map[ast.StmtID]FileScopeId{},
			ExprScopes:  map[ast.ExprID]FileScopeId{},
		},
		store: map[ast.ExprID]bool{},
	}
	module := b.newScope(ScopeModule, 0)
	b.processStmts(module, file.Body)
	b.resolveUses()
	b.resolveNarrows()
	return b.idx
}

func (b *builder) newScope(kind ScopeKind, parent FileScopeId) FileScopeId {
	id := FileScopeId(len(b.idx.Scopes))
	b.idx.Scopes = append(b.idx.Scopes, Scope{Kind: kind, Parent: parent})
	b.idx.Symbols = append(b.idx.Symbols, nil)
	b.idx.nameIndex = append(b.idx.nameIndex, map[string]ScopedSymbolId{})
	return id
}

// declare records a binding of name in scope, redirecting to the module
// scope or nearest enclosing function scope when a prior `global`/
// `nonlocal` declaration marked the name (spec §3 Symbol "marked-global"/
// "marked-nonlocal").
func (b *builder) declare(scope FileScopeId, name string, def Definition) {
	if name == "" {
		return
	}
	if sid, ok := b.idx.nameIndex[scope][name]; ok {
		sym := &b.idx.Symbols[scope][sid]
		if sym.Flags&FlagGlobal != 0 {
			b.declare(0, name, def)
			return
		}
		if sym.Flags&FlagNonlocal != 0 {
			if parent, ok := b.nearestFunctionAncestor(scope); ok {
				b.declare(parent, name, def)
				return
			}
		}
	}
	b.bindDefinition(scope, name, def)
}

func (b *builder) bindDefinition(scope FileScopeId, name string, def Definition) ScopedSymbolId {
	nameIdx := b.idx.nameIndex[scope]
	if sid, ok := nameIdx[name]; ok {
		sym := &b.idx.Symbols[scope][sid]
		sym.Flags |= FlagDefined
		sym.Definitions = append(sym.Definitions, def)
		return sid
	}
	sid := ScopedSymbolId(len(b.idx.Symbols[scope]))
	b.idx.Symbols[scope] = append(b.idx.Symbols[scope], Symbol{
		Name:        name,
		Flags:       FlagDefined,
		Definitions: []Definition{def},
	})
	nameIdx[name] = sid
	return sid
}

// markRedirect records a `global`/`nonlocal` declaration: it does not bind
// name, it only routes future bindings of name within scope.
func (b *builder) markRedirect(scope FileScopeId, name string, flag SymbolFlags, def Definition) {
	nameIdx := b.idx.nameIndex[scope]
	if sid, ok := nameIdx[name]; ok {
		sym := &b.idx.Symbols[scope][sid]
		sym.Flags |= flag
		sym.Definitions = append(sym.Definitions, def)
		return
	}
	sid := ScopedSymbolId(len(b.idx.Symbols[scope]))
	b.idx.Symbols[scope] = append(b.idx.Symbols[scope], Symbol{
		Name:        name,
		Flags:       flag,
		Definitions: []Definition{def},
	})
	nameIdx[name] = sid
}

func (b *builder) nearestFunctionAncestor(scope FileScopeId) (FileScopeId, bool) {
	sc := b.idx.Scopes[scope]
	for sc.Kind != ScopeModule {
		parent := sc.Parent
		psc := b.idx.Scopes[parent]
		if psc.Kind == ScopeFunction || psc.Kind == ScopeLambda {
			return parent, true
		}
		sc = psc
	}
	return 0, false
}

// processStmts walks a statement list within scope. If/While/For/Try/With
// bodies do not introduce a new scope (Python scoping is function-level,
// not block-level), so they recurse inline with the same scope id.
func (b *builder) processStmts(scope FileScopeId, stmts []ast.StmtID) {
	for _, id := range stmts {
		b.processStmt(scope, id)
	}
}

func (b *builder) processStmt(scope FileScopeId, id ast.StmtID) {
	if id == ast.NilStmt {
		return
	}
	s := b.arena.Stmt(id)
	switch s.Kind {
	case ast.KindFunctionDef:
		b.declare(scope, s.Name, Definition{Kind: ast.DefFunctionDef, Range: s.Range, Stmt: id})
		for _, d := range s.Decorators {
			b.processExpr(scope, d)
		}
		fnScope := b.newScope(ScopeFunction, scope)
		b.idx.Scopes[fnScope].Name = s.Name
		b.idx.StmtScopes[id] = fnScope
		for _, p := range s.Params {
			if p.Annotation != ast.NilExpr {
				b.processExpr(scope, p.Annotation)
			}
			if p.Default != ast.NilExpr {
				b.processExpr(scope, p.Default)
			}
			if p.Kind == ast.ParamNormal || p.Kind == ast.ParamStarArgs || p.Kind == ast.ParamDoubleStarArgs {
				b.bindDefinition(fnScope, p.Name, Definition{
					Kind:       ast.DefParameter,
					Range:      p.Range,
					Annotation: p.Annotation,
					Value:      p.Default,
				})
			}
		}
		if s.Returns != ast.NilExpr {
			b.processExpr(scope, s.Returns)
		}
		b.processStmts(fnScope, s.Body)

	case ast.KindClassDef:
		b.declare(scope, s.Name, Definition{Kind: ast.DefClassDef, Range: s.Range, Stmt: id})
		for _, d := range s.Decorators {
			b.processExpr(scope, d)
		}
		for _, base := range s.Bases {
			b.processExpr(scope, base)
		}
		for _, kw := range s.Keywords {
			b.processExpr(scope, kw.Value)
		}
		clsScope := b.newScope(ScopeClass, scope)
		b.idx.Scopes[clsScope].Name = s.Name
		b.idx.StmtScopes[id] = clsScope
		b.processStmts(clsScope, s.Body)

	case ast.KindReturn:
		b.processExpr(scope, s.Value)

	case ast.KindDelete:
		for _, t := range s.Targets {
			b.processExpr(scope, t)
		}

	case ast.KindAssign:
		b.processExpr(scope, s.Value)
		for _, t := range s.Targets {
			b.bindTarget(scope, t, ast.DefAssignment, Definition{Range: s.Range, Value: s.Value})
		}

	case ast.KindAugAssign:
		b.processExpr(scope, s.Value)
		b.bindTarget(scope, s.Target, ast.DefAssignment, Definition{Range: s.Range, Value: s.Value})

	case ast.KindAnnAssign:
		b.processExpr(scope, s.Annotation)
		if s.Value != ast.NilExpr {
			b.processExpr(scope, s.Value)
		}
		b.bindTarget(scope, s.Target, ast.DefAssignment, Definition{Range: s.Range, Value: s.Value, Annotation: s.Annotation})

	case ast.KindFor:
		b.processExpr(scope, s.Iter)
		b.bindTarget(scope, s.Target, ast.DefForTarget, Definition{Range: s.Range})
		b.processStmts(scope, s.Body)
		b.processStmts(scope, s.OrElse)

	case ast.KindWhile:
		b.processExpr(scope, s.Test)
		b.processStmts(scope, s.Body)
		b.processStmts(scope, s.OrElse)

	case ast.KindIf:
		b.processExpr(scope, s.Test)
		b.recordNarrowing(scope, s)
		b.processStmts(scope, s.Body)
		b.processStmts(scope, s.OrElse)

	case ast.KindWith:
		for _, item := range s.WithItems {
			b.processExpr(scope, item.ContextExpr)
			if item.OptionalVars != ast.NilExpr {
				b.bindTarget(scope, item.OptionalVars, ast.DefWithTarget, Definition{Range: s.Range})
			}
		}
		b.processStmts(scope, s.Body)

	case ast.KindRaise:
		if s.Exc != ast.NilExpr {
			b.processExpr(scope, s.Exc)
		}
		if s.Msg != ast.NilExpr {
			b.processExpr(scope, s.Msg)
		}

	case ast.KindTry:
		b.processStmts(scope, s.Body)
		for _, h := range s.Handlers {
			if h.Type != ast.NilExpr {
				b.processExpr(scope, h.Type)
			}
			if h.Name != "" {
				b.bindDefinition(scope, h.Name, Definition{Kind: ast.DefAssignment, Range: h.Range})
			}
			b.processStmts(scope, h.Body)
		}
		b.processStmts(scope, s.OrElse)
		b.processStmts(scope, s.Finalbody)

	case ast.KindAssert:
		b.processExpr(scope, s.Test)
		if s.Msg != ast.NilExpr {
			b.processExpr(scope, s.Msg)
		}

	case ast.KindImport:
		for i, a := range s.Aliases {
			name := a.AsName
			kind := ast.DefImport
			if name == "" {
				name = a.Name
				if idx := indexOfByte(name, '.'); idx >= 0 {
					name = name[:idx]
					kind = ast.DefSubmoduleImport
				}
			}
			b.declare(scope, name, Definition{Kind: kind, Range: a.Range, Stmt: id, AliasIndex: i})
		}

	case ast.KindImportFrom:
		kind := ast.DefImportFrom
		if s.ModuleName == "__future__" {
			kind = ast.DefFutureImport
		}
		for i, a := range s.Aliases {
			if a.Name == "*" {
				continue
			}
			name := a.AsName
			if name == "" {
				name = a.Name
			}
			b.declare(scope, name, Definition{Kind: kind, Range: a.Range, Stmt: id, AliasIndex: i})
		}

	case ast.KindGlobal:
		for _, n := range s.Names {
			b.markRedirect(scope, n, FlagGlobal, Definition{Kind: ast.DefGlobalDecl, Range: s.Range})
		}

	case ast.KindNonlocal:
		for _, n := range s.Names {
			b.markRedirect(scope, n, FlagNonlocal, Definition{Kind: ast.DefNonlocalDecl, Range: s.Range})
		}

	case ast.KindExprStmt:
		b.processExpr(scope, s.Value)

	case ast.KindTypeAlias:
		b.declare(scope, s.Name, Definition{Kind: ast.DefTypeAlias, Range: s.Range, Value: s.Value})
		if s.Value != ast.NilExpr {
			b.processExpr(scope, s.Value)
		}

	case ast.KindPass, ast.KindBreak, ast.KindContinue:
		// no bindings, no subexpressions
	}
}

// recordNarrowing detects whether an If statement's test is one of the
// predicate shapes narrowTest recognizes and, if so, queues the
// then-branch and else-branch narrowing facts for resolution once the
// scope tree is complete.
func (b *builder) recordNarrowing(scope FileScopeId, s *ast.Stmt) {
	name, positive, ok := narrowTest(b.arena, s.Test)
	if !ok {
		return
	}
	if rng, ok := rangeOfStmts(b.arena, s.Body); ok {
		b.narrows = append(b.narrows, pendingNarrow{scope: scope, name: name, rng: rng, predicate: positive})
	}
	if rng, ok := rangeOfStmts(b.arena, s.OrElse); ok {
		b.narrows = append(b.narrows, pendingNarrow{scope: scope, name: name, rng: rng, predicate: negatedPredicate(positive)})
	}
}

// bindTarget binds every Name leaf of an assignment-target expression
// (plain name, tuple/list destructuring, starred sub-target) using def as
// a template, with def.Value only meaningful for the outermost (bare
// Name) target — a destructured element's precise element type is an
// infer-layer concern (iterator/sequence-unpacking protocol), so nested
// targets carry no Value and resolve to Dynamic at inference time, a
// documented simplification. Attribute and Subscript targets bind
// nothing new; their receiver expression is itself a load and is
// processed as such.
func (b *builder) bindTarget(scope FileScopeId, id ast.ExprID, kind ast.DefKind, def Definition) {
	if id == ast.NilExpr {
		return
	}
	e := b.arena.Expr(id)
	switch e.Kind {
	case ast.KindName:
		b.store[id] = true
		def.Kind = kind
		b.declare(scope, e.Name, def)
	case ast.KindTuple, ast.KindList:
		inner := Definition{Kind: kind, Range: def.Range}
		for _, el := range e.Elts {
			b.bindTarget(scope, el, kind, inner)
		}
	case ast.KindStarred:
		b.bindTarget(scope, e.Value, kind, Definition{Kind: kind, Range: def.Range})
	case ast.KindAttribute:
		b.store[id] = true
		b.processExpr(scope, e.Right)
	case ast.KindSubscript:
		b.store[id] = true
		b.processExpr(scope, e.Value)
		b.processExpr(scope, e.Index)
	case ast.KindParenExpr:
		b.bindTarget(scope, e.Right, kind, def)
	default:
		b.processExpr(scope, id)
	}
}

// processExpr walks an expression subtree within scope, recording every
// Name-load for later resolution and opening new scopes for Lambda and
// comprehensions (spec §3 Scope kinds function/lambda/comprehension).
// Parameter defaults and the comprehension's outermost iterable are, for
// simplicity, resolved in the new scope rather than the strictly correct
// enclosing one.
func (b *builder) processExpr(scope FileScopeId, id ast.ExprID) {
	if id == ast.NilExpr {
		return
	}
	e := b.arena.Expr(id)
	switch e.Kind {
	case ast.KindName:
		if !b.store[id] {
			b.uses = append(b.uses, nameUse{id: id, scope: scope, name: e.Name})
		}

	case ast.KindLambda:
		lamScope := b.newScope(ScopeLambda, scope)
		b.idx.ExprScopes[id] = lamScope
		for _, p := range e.Params {
			if p.Default != ast.NilExpr {
				b.processExpr(lamScope, p.Default)
			}
			if p.Kind == ast.ParamNormal || p.Kind == ast.ParamStarArgs || p.Kind == ast.ParamDoubleStarArgs {
				b.bindDefinition(lamScope, p.Name, Definition{
					Kind:  ast.DefParameter,
					Range: p.Range,
					Value: p.Default,
				})
			}
		}
		b.processExpr(lamScope, e.Body)

	case ast.KindListComp, ast.KindSetComp, ast.KindGeneratorExp:
		compScope := b.newScope(ScopeComprehension, scope)
		b.idx.ExprScopes[id] = compScope
		b.processCompClauses(compScope, e.Clauses)
		b.processExpr(compScope, e.Body)

	case ast.KindDictComp:
		compScope := b.newScope(ScopeComprehension, scope)
		b.idx.ExprScopes[id] = compScope
		b.processCompClauses(compScope, e.Clauses)
		// Body holds the key:value pair as a synthetic Tuple expr; recurse normally.
		b.processExpr(compScope, e.Body)

	case ast.KindBoolOp:
		for _, v := range e.Values {
			b.processExpr(scope, v)
		}
	case ast.KindBinOp:
		b.processExpr(scope, e.Left)
		b.processExpr(scope, e.Right)
	case ast.KindUnaryOp:
		b.processExpr(scope, e.Right)
	case ast.KindIfExp:
		b.processExpr(scope, e.Test)
		b.processExpr(scope, e.Body)
		b.processExpr(scope, e.OrElse)
	case ast.KindDict:
		for _, k := range e.Keys {
			if k != ast.NilExpr {
				b.processExpr(scope, k)
			}
		}
		for _, v := range e.Values {
			b.processExpr(scope, v)
		}
	case ast.KindSet, ast.KindList, ast.KindTuple:
		for _, v := range e.Elts {
			b.processExpr(scope, v)
		}
	case ast.KindAwait, ast.KindYield, ast.KindYieldFrom:
		b.processExpr(scope, e.Right)
	case ast.KindCompare:
		b.processExpr(scope, e.Left)
		for _, c := range e.Comparators {
			b.processExpr(scope, c)
		}
	case ast.KindCall:
		b.processExpr(scope, e.Func)
		for _, a := range e.Args {
			b.processExpr(scope, a)
		}
		for _, kw := range e.KwArgs {
			b.processExpr(scope, kw.Value)
		}
	case ast.KindAttribute:
		b.processExpr(scope, e.Right)
	case ast.KindSubscript:
		b.processExpr(scope, e.Value)
		b.processExpr(scope, e.Index)
	case ast.KindStarred:
		b.processExpr(scope, e.Value)
	case ast.KindSlice:
		b.processExpr(scope, e.Lower)
		b.processExpr(scope, e.Upper)
		b.processExpr(scope, e.Step)
	case ast.KindNamedExpr:
		b.processExpr(scope, e.Right)
		b.bindTarget(scope, e.Left, ast.DefNamedExpr, Definition{Range: e.Range, Value: e.Right})
	case ast.KindParenExpr:
		b.processExpr(scope, e.Right)
	case ast.KindFString:
		for _, p := range e.Parts {
			if p.IsExpr {
				b.processExpr(scope, p.Expr)
			}
		}
	case ast.KindNumberLit, ast.KindStringLit, ast.KindBytesLit, ast.KindBooleanLit,
		ast.KindNoneLit, ast.KindEllipsisLit:
		// leaves, nothing to recurse into
	}
}

func (b *builder) processCompClauses(scope FileScopeId, clauses []ast.CompClause) {
	for _, c := range clauses {
		switch c.Kind {
		case ast.CompFor:
			b.processExpr(scope, c.Iter)
			b.bindTarget(scope, c.Target, ast.DefForTarget, Definition{})
		case ast.CompIf:
			b.processExpr(scope, c.Cond)
		}
	}
}

// resolveUses resolves every recorded name-load now that every scope's
// symbol table is complete (spec §4.H "Name resolution rule").
func (b *builder) resolveUses() {
	for _, u := range b.uses {
		scope, sid, ok := findSymbol(b.idx, u.scope, u.name)
		if !ok {
			b.idx.Resolutions[u.id] = Resolution{Unbound: true}
			continue
		}
		b.idx.Symbols[scope][sid].Flags |= FlagUsed
		b.idx.Resolutions[u.id] = Resolution{Scope: scope, Symbol: sid}
	}
}

// resolveNarrows resolves every queued narrowing fact's guarded name to
// the symbol the same lookup rule would give a use at that position, now
// that every scope's symbol table is complete. A name that resolves to
// nothing (typo, builtin, not-yet-handled shape) is silently dropped
// rather than narrowing the wrong or a nonexistent symbol.
func (b *builder) resolveNarrows() {
	for _, n := range b.narrows {
		scope, sid, ok := findSymbol(b.idx, n.scope, n.name)
		if !ok {
			continue
		}
		b.idx.NarrowRegions = append(b.idx.NarrowRegions, NarrowRegion{
			Scope:     scope,
			Symbol:    sid,
			Range:     n.rng,
			Predicate: n.predicate,
		})
	}
}

func indexOfByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

package parser

import (
	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/token"
)

// parseStatement parses one compound statement, or one line of
// semicolon-separated simple statements.
func (p *Parser) parseStatement() []ast.StmtID {
	switch p.tok.Kind {
	case token.IF:
		return []ast.StmtID{p.parseIf()}
	case token.WHILE:
		return []ast.StmtID{p.parseWhile()}
	case token.FOR:
		return []ast.StmtID{p.parseFor(false)}
	case token.TRY:
		return []ast.StmtID{p.parseTry()}
	case token.WITH:
		return []ast.StmtID{p.parseWith(false)}
	case token.DEF:
		return []ast.StmtID{p.parseFunctionDef(nil, false)}
	case token.CLASS:
		return []ast.StmtID{p.parseClassDef(nil)}
	case token.AT:
		return []ast.StmtID{p.parseDecorated()}
	case token.ASYNC:
		return []ast.StmtID{p.parseAsync()}
	default:
		return p.parseSimpleStatementLine()
	}
}

func (p *Parser) parseAsync() ast.StmtID {
	p.advance() // 'async'
	switch p.tok.Kind {
	case token.DEF:
		return p.parseFunctionDef(nil, true)
	case token.FOR:
		return p.parseFor(true)
	case token.WITH:
		return p.parseWith(true)
	default:
		p.errorf(p.tok.Range, ErrInvalidSyntax, "expected def/for/with after async")
		return ast.NilStmt
	}
}

func (p *Parser) parseDecorated() ast.StmtID {
	var decorators []ast.ExprID
	for p.at(token.AT) {
		p.advance()
		decorators = append(decorators, p.parseNamedExpr())
		p.accept(token.NEWLINE)
	}
	switch p.tok.Kind {
	case token.DEF:
		return p.parseFunctionDef(decorators, false)
	case token.CLASS:
		return p.parseClassDef(decorators)
	case token.ASYNC:
		p.advance()
		return p.parseFunctionDef(decorators, true)
	default:
		p.errorf(p.tok.Range, ErrInvalidSyntax, "expected function or class definition after decorator")
		return ast.NilStmt
	}
}

// parseSimpleStatementLine parses `simple_stmt (';' simple_stmt)* [';'] NEWLINE`.
func (p *Parser) parseSimpleStatementLine() []ast.StmtID {
	var out []ast.StmtID
	for {
		out = append(out, p.parseSimpleStatement())
		if !p.accept(token.SEMI) {
			break
		}
		if p.at(token.NEWLINE) || p.at(token.EOF) {
			break
		}
	}
	if !p.at(token.EOF) {
		p.expect(token.NEWLINE)
	}
	return out
}

func (p *Parser) parseSimpleStatement() ast.StmtID {
	start := p.startPos()
	switch p.tok.Kind {
	case token.PASS:
		p.advance()
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindPass, Range: p.rangeFrom(start)})
	case token.BREAK:
		p.advance()
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindBreak, Range: p.rangeFrom(start)})
	case token.CONTINUE:
		p.advance()
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindContinue, Range: p.rangeFrom(start)})
	case token.RETURN:
		p.advance()
		var v ast.ExprID
		if !p.atSimpleStmtEnd() {
			v = p.parseExprListAsExpr()
		}
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindReturn, Value: v, Range: p.rangeFrom(start)})
	case token.RAISE:
		p.advance()
		var exc, cause ast.ExprID
		if !p.atSimpleStmtEnd() {
			exc = p.parseTest()
			if p.accept(token.FROM) {
				cause = p.parseTest()
			}
		}
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindRaise, Exc: exc, Msg: cause, Range: p.rangeFrom(start)})
	case token.DEL:
		p.advance()
		targets := p.parseTargetListUntilEnd()
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindDelete, Targets: targets, Range: p.rangeFrom(start)})
	case token.ASSERT:
		p.advance()
		test := p.parseTest()
		var msg ast.ExprID
		if p.accept(token.COMMA) {
			msg = p.parseTest()
		}
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindAssert, Test: test, Msg: msg, Range: p.rangeFrom(start)})
	case token.GLOBAL, token.NONLOCAL:
		kind := ast.KindGlobal
		if p.tok.Kind == token.NONLOCAL {
			kind = ast.KindNonlocal
		}
		p.advance()
		names := p.parseNameList()
		return p.arena.AddStmt(ast.Stmt{Kind: kind, Names: names, Range: p.rangeFrom(start)})
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseImportFrom()
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) atSimpleStmtEnd() bool {
	return p.at(token.NEWLINE) || p.at(token.SEMI) || p.at(token.EOF)
}

func (p *Parser) parseNameList() []string {
	var out []string
	for {
		out = append(out, p.expect(token.NAME).Lit)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseTargetListUntilEnd() []ast.ExprID {
	var out []ast.ExprID
	for {
		out = append(out, p.parseTest())
		if !p.accept(token.COMMA) || p.atSimpleStmtEnd() {
			break
		}
	}
	return out
}

func (p *Parser) parseImport() ast.StmtID {
	start := p.startPos()
	p.advance() // 'import'
	aliases := p.parseDottedAsNames()
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindImport, Aliases: aliases, Range: p.rangeFrom(start)})
}

func (p *Parser) parseDottedAsNames() []ast.Alias {
	var out []ast.Alias
	for {
		astart := p.startPos()
		name := p.parseDottedName()
		as := ""
		if p.accept(token.AS) {
			as = p.expect(token.NAME).Lit
		}
		out = append(out, ast.Alias{Range: p.rangeFrom(astart), Name: name, AsName: as})
		if !p.accept(token.COMMA) {
			break
		}
	}
	return out
}

func (p *Parser) parseDottedName() string {
	name := p.expect(token.NAME).Lit
	for p.at(token.DOT) {
		p.advance()
		name += "." + p.expect(token.NAME).Lit
	}
	return name
}

func (p *Parser) parseImportFrom() ast.StmtID {
	start := p.startPos()
	p.advance() // 'from'
	level := 0
	for p.at(token.DOT) || p.at(token.ELLIPSIS) {
		if p.at(token.ELLIPSIS) {
			level += 3
		} else {
			level++
		}
		p.advance()
	}
	module := ""
	if !p.at(token.IMPORT) {
		module = p.parseDottedName()
	}
	p.expect(token.IMPORT)
	var aliases []ast.Alias
	if p.at(token.STAR) {
		p.advance()
		aliases = []ast.Alias{{Name: "*"}}
	} else if p.accept(token.LPAREN) {
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			astart := p.startPos()
			name := p.expect(token.NAME).Lit
			as := ""
			if p.accept(token.AS) {
				as = p.expect(token.NAME).Lit
			}
			aliases = append(aliases, ast.Alias{Range: p.rangeFrom(astart), Name: name, AsName: as})
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	} else {
		for {
			astart := p.startPos()
			name := p.expect(token.NAME).Lit
			as := ""
			if p.accept(token.AS) {
				as = p.expect(token.NAME).Lit
			}
			aliases = append(aliases, ast.Alias{Range: p.rangeFrom(astart), Name: name, AsName: as})
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindImportFrom, ModuleName: module, Level: level, Aliases: aliases, Range: p.rangeFrom(start)})
}

// parseExprOrAssignStatement handles expression statements, assignments
// (including chained and tuple targets), annotated assignments, and
// augmented assignments.
func (p *Parser) parseExprOrAssignStatement() ast.StmtID {
	start := p.startPos()
	first := p.parseExprListAsExpr()

	if p.at(token.COLON) {
		p.advance()
		annot := p.parseTest()
		var value ast.ExprID
		if p.accept(token.ASSIGN) {
			value = p.parseExprListAsExpr()
		}
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindAnnAssign, Target: first, Annotation: annot, Value: value, Range: p.rangeFrom(start)})
	}

	if op, ok := augAssignOp(p.tok.Kind); ok {
		p.advance()
		value := p.parseExprListAsExpr()
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindAugAssign, Target: first, Op: op, Value: value, Range: p.rangeFrom(start)})
	}

	if p.at(token.ASSIGN) {
		targets := []ast.ExprID{first}
		var value ast.ExprID
		for p.accept(token.ASSIGN) {
			value = p.parseExprListAsExpr()
			if p.at(token.ASSIGN) {
				targets = append(targets, value)
			}
		}
		return p.arena.AddStmt(ast.Stmt{Kind: ast.KindAssign, Targets: targets, Value: value, Range: p.rangeFrom(start)})
	}

	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindExprStmt, Value: first, Range: p.rangeFrom(start)})
}

func augAssignOp(k token.Kind) (token.Kind, bool) {
	switch k {
	case token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ, token.DSLASHEQ,
		token.PERCENTEQ, token.DSTAREQ, token.AMPEQ, token.VBAREQ, token.CARETEQ,
		token.LSHIFTEQ, token.RSHIFTEQ, token.ATEQ:
		return k, true
	}
	return token.ILLEGAL, false
}

func (p *Parser) parseIf() ast.StmtID {
	start := p.startPos()
	p.advance() // 'if'
	test := p.parseNamedExpr()
	body := p.parseSuite()
	var orElse []ast.StmtID
	if p.at(token.ELIF) {
		orElse = []ast.StmtID{p.parseElif()}
	} else if p.accept(token.ELSE) {
		orElse = p.parseSuite()
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindIf, Test: test, Body: body, OrElse: orElse, Range: p.rangeFrom(start)})
}

func (p *Parser) parseElif() ast.StmtID {
	start := p.startPos()
	p.advance() // 'elif'
	test := p.parseNamedExpr()
	body := p.parseSuite()
	var orElse []ast.StmtID
	if p.at(token.ELIF) {
		orElse = []ast.StmtID{p.parseElif()}
	} else if p.accept(token.ELSE) {
		orElse = p.parseSuite()
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindIf, Test: test, Body: body, OrElse: orElse, Range: p.rangeFrom(start)})
}

func (p *Parser) parseWhile() ast.StmtID {
	start := p.startPos()
	p.advance()
	test := p.parseNamedExpr()
	body := p.parseSuite()
	var orElse []ast.StmtID
	if p.accept(token.ELSE) {
		orElse = p.parseSuite()
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindWhile, Test: test, Body: body, OrElse: orElse, Range: p.rangeFrom(start)})
}

func (p *Parser) parseFor(isAsync bool) ast.StmtID {
	start := p.startPos()
	p.advance() // 'for'
	target := p.parseTargetListAsExpr()
	p.expect(token.IN)
	iter := p.parseExprListAsExpr()
	body := p.parseSuite()
	var orElse []ast.StmtID
	if p.accept(token.ELSE) {
		orElse = p.parseSuite()
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindFor, Target: target, Iter: iter, Body: body, OrElse: orElse, IsAsync: isAsync, Range: p.rangeFrom(start)})
}

// parseTargetListAsExpr parses a for-loop target list, wrapping multiple
// comma-separated targets into a Tuple (without requiring parens).
func (p *Parser) parseTargetListAsExpr() ast.ExprID {
	start := p.startPos()
	first := p.parseOrExprNoCond()
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.ExprID{first}
	for p.accept(token.COMMA) {
		if p.at(token.IN) {
			break
		}
		elts = append(elts, p.parseOrExprNoCond())
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Elts: elts, Range: p.rangeFrom(start)})
}

func (p *Parser) parseWith(isAsync bool) ast.StmtID {
	start := p.startPos()
	p.advance() // 'with'
	var items []ast.WithItem
	parenWrapped := p.accept(token.LPAREN)
	for {
		istart := p.startPos()
		ctx := p.parseTest()
		var opt ast.ExprID
		if p.accept(token.AS) {
			opt = p.parseOrExprNoCond()
		}
		items = append(items, ast.WithItem{Range: p.rangeFrom(istart), ContextExpr: ctx, OptionalVars: opt})
		if !p.accept(token.COMMA) {
			break
		}
		if parenWrapped && p.at(token.RPAREN) {
			break
		}
	}
	if parenWrapped {
		p.expect(token.RPAREN)
	}
	body := p.parseSuite()
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindWith, WithItems: items, Body: body, IsAsync: isAsync, Range: p.rangeFrom(start)})
}

func (p *Parser) parseTry() ast.StmtID {
	start := p.startPos()
	p.advance() // 'try'
	body := p.parseSuite()
	var handlers []ast.ExceptHandler
	for p.at(token.EXCEPT) {
		hstart := p.startPos()
		p.advance()
		star := p.accept(token.STAR)
		var typ ast.ExprID
		name := ""
		if !p.at(token.COLON) {
			typ = p.parseTest()
			if p.accept(token.AS) {
				name = p.expect(token.NAME).Lit
			}
		}
		hbody := p.parseSuite()
		handlers = append(handlers, ast.ExceptHandler{Range: p.rangeFrom(hstart), Type: typ, Name: name, Body: hbody, Star: star})
	}
	var orElse, finalBody []ast.StmtID
	if p.accept(token.ELSE) {
		orElse = p.parseSuite()
	}
	if p.accept(token.FINALLY) {
		finalBody = p.parseSuite()
	}
	return p.arena.AddStmt(ast.Stmt{Kind: ast.KindTry, Body: body, Handlers: handlers, OrElse: orElse, Finalbody: finalBody, Range: p.rangeFrom(start)})
}

func (p *Parser) parseClassDef(decorators []ast.ExprID) ast.StmtID {
	start := p.startPos()
	p.advance() // 'class'
	name := p.expect(token.NAME).Lit
	var typeParams []string
	if p.accept(token.LBRACK) {
		typeParams = p.parseNameList()
		p.expect(token.RBRACK)
	}
	var bases []ast.ExprID
	var keywords []ast.Keyword
	if p.accept(token.LPAREN) {
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			if p.at(token.NAME) && p.peek().Kind == token.ASSIGN {
				kname := p.tok.Lit
				p.advance()
				p.advance()
				val := p.parseTest()
				keywords = append(keywords, ast.Keyword{Name: kname, Value: val})
			} else {
				bases = append(bases, p.parseTest())
			}
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}
	body := p.parseSuite()
	return p.arena.AddStmt(ast.Stmt{
		Kind: ast.KindClassDef, Name: name, Bases: bases, Keywords: keywords,
		Body: body, Decorators: decorators, TypeParams: typeParams, Range: p.rangeFrom(start),
	})
}

func (p *Parser) parseFunctionDef(decorators []ast.ExprID, isAsync bool) ast.StmtID {
	start := p.startPos()
	p.advance() // 'def'
	name := p.expect(token.NAME).Lit
	var typeParams []string
	if p.accept(token.LBRACK) {
		typeParams = p.parseNameList()
		p.expect(token.RBRACK)
	}
	p.expect(token.LPAREN)
	params := p.parseParamList(token.RPAREN)
	p.expect(token.RPAREN)
	var returns ast.ExprID
	if p.accept(token.ARROW) {
		returns = p.parseTest()
	}
	body := p.parseSuite()
	p.validateParams(params, start)
	return p.arena.AddStmt(ast.Stmt{
		Kind: ast.KindFunctionDef, Name: name, Params: params, Returns: returns,
		Body: body, Decorators: decorators, IsAsync: isAsync, TypeParams: typeParams,
		Range: p.rangeFrom(start),
	})
}

// parseParamList parses a comma-separated parameter list up to (not
// consuming) end, enforcing spec §4.C's argument-validation rules via
// validateParams after the full list is known.
func (p *Parser) parseParamList(end token.Kind) []ast.Param {
	var params []ast.Param
	for !p.at(end) && !p.at(token.EOF) {
		pstart := p.startPos()
		switch p.tok.Kind {
		case token.STAR:
			p.advance()
			if p.at(token.COMMA) || p.at(end) {
				params = append(params, ast.Param{Range: p.rangeFrom(pstart), Kind: ast.ParamKeywordOnlyMarker})
			} else {
				pname := p.expect(token.NAME).Lit
				var annot ast.ExprID
				if p.accept(token.COLON) {
					annot = p.parseTest()
				}
				params = append(params, ast.Param{Range: p.rangeFrom(pstart), Name: pname, Annotation: annot, Kind: ast.ParamStarArgs})
			}
		case token.DSTAR:
			p.advance()
			pname := p.expect(token.NAME).Lit
			var annot ast.ExprID
			if p.accept(token.COLON) {
				annot = p.parseTest()
			}
			params = append(params, ast.Param{Range: p.rangeFrom(pstart), Name: pname, Annotation: annot, Kind: ast.ParamDoubleStarArgs})
		case token.SLASH:
			p.advance()
			params = append(params, ast.Param{Range: p.rangeFrom(pstart), Kind: ast.ParamPositionalOnlyMarker})
		default:
			pname := p.expect(token.NAME).Lit
			var annot, def ast.ExprID
			if p.accept(token.COLON) {
				annot = p.parseTest()
			}
			if p.accept(token.ASSIGN) {
				def = p.parseTest()
			}
			params = append(params, ast.Param{Range: p.rangeFrom(pstart), Name: pname, Annotation: annot, Default: def, Kind: ast.ParamNormal})
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	return params
}

// validateParams enforces spec §4.C: unique names, default-argument
// ordering (non-default must not follow a defaulted param except across
// `*`/`/`), at most one *args/**kwargs.
func (p *Parser) validateParams(params []ast.Param, at token.Pos) {
	seen := map[string]bool{}
	seenDefault := false
	seenStar := false
	seenDoubleStar := false
	for _, prm := range params {
		switch prm.Kind {
		case ast.ParamStarArgs, ast.ParamKeywordOnlyMarker:
			if seenStar {
				p.errorf(token.Range{Start: at, End: at}, ErrInvalidSyntax, "duplicate * in parameter list")
			}
			seenStar = true
			continue
		case ast.ParamDoubleStarArgs:
			if seenDoubleStar {
				p.errorf(token.Range{Start: at, End: at}, ErrInvalidSyntax, "duplicate ** in parameter list")
			}
			seenDoubleStar = true
			continue
		case ast.ParamPositionalOnlyMarker:
			seenDefault = false
			continue
		}
		if prm.Name != "" {
			if seen[prm.Name] {
				p.errorf(prm.Range, ErrDuplicateParam, "duplicate parameter %q", prm.Name)
			}
			seen[prm.Name] = true
		}
		if !seenStar {
			if prm.Default != ast.NilExpr {
				seenDefault = true
			} else if seenDefault {
				p.errorf(prm.Range, ErrDefaultArgOrder, "non-default argument follows default argument")
			}
		}
	}
}

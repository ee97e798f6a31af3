package parser

import (
	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/lexer"
	"pyglass.dev/pyglass/internal/token"
)

// parseExprListAsExpr parses a comma-separated expression list, wrapping
// more than one element into a Tuple (spec §4.C: bare tuple display without
// parens, e.g. `return a, b`).
func (p *Parser) parseExprListAsExpr() ast.ExprID {
	start := p.startPos()
	first := p.parseStarOrTest()
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.ExprID{first}
	for p.accept(token.COMMA) {
		if p.atExprListEnd() {
			break
		}
		elts = append(elts, p.parseStarOrTest())
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Elts: elts, Values: elts, Range: p.rangeFrom(start)})
}

func (p *Parser) atExprListEnd() bool {
	switch p.tok.Kind {
	case token.NEWLINE, token.SEMI, token.EOF, token.RPAREN, token.RBRACK, token.RBRACE, token.COLON, token.ASSIGN:
		return true
	}
	return false
}

func (p *Parser) parseStarOrTest() ast.ExprID {
	if p.at(token.STAR) {
		start := p.startPos()
		p.advance()
		v := p.parseOrExprNoCond()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindStarred, Value: v, Range: p.rangeFrom(start)})
	}
	return p.parseNamedExpr()
}

// parseNamedExpr parses `test [':=' test]` (PEP 572 walrus).
func (p *Parser) parseNamedExpr() ast.ExprID {
	start := p.startPos()
	v := p.parseTest()
	if p.at(token.COLONEQ) {
		p.advance()
		rhs := p.parseTest()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindNamedExpr, Left: v, Right: rhs, Range: p.rangeFrom(start)})
	}
	return v
}

// parseTest parses `or_test ['if' or_test 'else' test] | lambdef`.
func (p *Parser) parseTest() ast.ExprID {
	if p.at(token.LAMBDA) {
		return p.parseLambda()
	}
	start := p.startPos()
	body := p.parseOrTest()
	if p.accept(token.IF) {
		test := p.parseOrTest()
		p.expect(token.ELSE)
		orElse := p.parseTest()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindIfExp, Body: body, Test: test, OrElse: orElse, Range: p.rangeFrom(start)})
	}
	return body
}

// parseOrExprNoCond parses a test without a trailing conditional expression
// or lambda, for contexts where `if`/`lambda` would be ambiguous (comprehension
// targets, for-loop targets).
func (p *Parser) parseOrExprNoCond() ast.ExprID {
	return p.parseOrTest()
}

func (p *Parser) parseLambda() ast.ExprID {
	start := p.startPos()
	p.advance() // 'lambda'
	var params []ast.Param
	if !p.at(token.COLON) {
		params = p.parseParamList(token.COLON)
		p.validateParams(params, start)
	}
	p.expect(token.COLON)
	body := p.parseTest()
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindLambda, Params: params, Body: body, Range: p.rangeFrom(start)})
}

func (p *Parser) parseOrTest() ast.ExprID {
	start := p.startPos()
	first := p.parseAndTest()
	if !p.at(token.OR) {
		return first
	}
	values := []ast.ExprID{first}
	for p.accept(token.OR) {
		values = append(values, p.parseAndTest())
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindBoolOp, Op: token.OR, Values: values, Range: p.rangeFrom(start)})
}

func (p *Parser) parseAndTest() ast.ExprID {
	start := p.startPos()
	first := p.parseNotTest()
	if !p.at(token.AND) {
		return first
	}
	values := []ast.ExprID{first}
	for p.accept(token.AND) {
		values = append(values, p.parseNotTest())
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindBoolOp, Op: token.AND, Values: values, Range: p.rangeFrom(start)})
}

func (p *Parser) parseNotTest() ast.ExprID {
	if p.at(token.NOT) {
		start := p.startPos()
		p.advance()
		v := p.parseNotTest()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindUnaryOp, Op: token.NOT, Right: v, Range: p.rangeFrom(start)})
	}
	return p.parseComparison()
}

var compareOps = map[token.Kind]bool{
	token.LT: true, token.GT: true, token.LE: true, token.GE: true,
	token.EQ: true, token.NE: true, token.IN: true, token.IS: true, token.NOT: true,
}

func (p *Parser) parseComparison() ast.ExprID {
	start := p.startPos()
	first := p.parseBitOr()
	var ops []token.Kind
	var comparators []ast.ExprID
	for {
		op, ok := p.compareOp()
		if !ok {
			break
		}
		comparators = append(comparators, p.parseBitOr())
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return first
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindCompare, Left: first, Ops: ops, Comparators: comparators, Range: p.rangeFrom(start)})
}

// compareOp consumes one comparison operator (including the two-token forms
// `not in` and `is not`), reporting which it found.
func (p *Parser) compareOp() (token.Kind, bool) {
	switch p.tok.Kind {
	case token.LT, token.GT, token.LE, token.GE, token.EQ, token.NE, token.IN:
		k := p.tok.Kind
		p.advance()
		return k, true
	case token.IS:
		p.advance()
		if p.accept(token.NOT) {
			return token.ISNOT, true
		}
		return token.IS, true
	case token.NOT:
		if p.peek().Kind == token.IN {
			p.advance()
			p.advance()
			return token.NOTIN, true
		}
		return token.ILLEGAL, false
	}
	return token.ILLEGAL, false
}

func (p *Parser) parseBitOr() ast.ExprID {
	return p.parseBinOpLevel(token.VBAR, p.parseBitXor)
}
func (p *Parser) parseBitXor() ast.ExprID {
	return p.parseBinOpLevel(token.CARET, p.parseBitAnd)
}
func (p *Parser) parseBitAnd() ast.ExprID {
	return p.parseBinOpLevel(token.AMP, p.parseShift)
}
func (p *Parser) parseShift() ast.ExprID {
	return p.parseBinOpLevel2(p.parseArith, token.LSHIFT, token.RSHIFT)
}
func (p *Parser) parseArith() ast.ExprID {
	return p.parseBinOpLevel2(p.parseTerm, token.PLUS, token.MINUS)
}
func (p *Parser) parseTerm() ast.ExprID {
	return p.parseBinOpLevel2(p.parseFactor, token.STAR, token.SLASH, token.DSLASH, token.PERCENT, token.AT)
}

func (p *Parser) parseBinOpLevel(op token.Kind, next func() ast.ExprID) ast.ExprID {
	start := p.startPos()
	left := next()
	for p.at(op) {
		p.advance()
		right := next()
		left = p.arena.AddExpr(ast.Expr{Kind: ast.KindBinOp, Op: op, Left: left, Right: right, Range: p.rangeFrom(start)})
	}
	return left
}

func (p *Parser) parseBinOpLevel2(next func() ast.ExprID, ops ...token.Kind) ast.ExprID {
	start := p.startPos()
	left := next()
	for {
		matched := false
		for _, op := range ops {
			if p.at(op) {
				p.advance()
				right := next()
				left = p.arena.AddExpr(ast.Expr{Kind: ast.KindBinOp, Op: op, Left: left, Right: right, Range: p.rangeFrom(start)})
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *Parser) parseFactor() ast.ExprID {
	if p.at(token.PLUS) || p.at(token.MINUS) || p.at(token.TILDE) {
		start := p.startPos()
		op := p.tok.Kind
		p.advance()
		v := p.parseFactor()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindUnaryOp, Op: op, Right: v, Range: p.rangeFrom(start)})
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.ExprID {
	start := p.startPos()
	base := p.parseAtomTrailer()
	if p.at(token.DSTAR) {
		p.advance()
		exp := p.parseFactor()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindBinOp, Op: token.DSTAR, Left: base, Right: exp, Range: p.rangeFrom(start)})
	}
	return base
}

// parseAtomTrailer parses an atom followed by any number of `.name`, `(
// args )`, and `[ subscript ]` trailers.
func (p *Parser) parseAtomTrailer() ast.ExprID {
	start := p.startPos()
	if p.at(token.AWAIT) {
		p.advance()
		v := p.parseAtomTrailer()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindAwait, Right: v, Range: p.rangeFrom(start)})
	}
	v := p.parseAtom()
	for {
		switch p.tok.Kind {
		case token.DOT:
			p.advance()
			name := p.expect(token.NAME).Lit
			v = p.arena.AddExpr(ast.Expr{Kind: ast.KindAttribute, Right: v, Name: name, Range: p.rangeFrom(start)})
		case token.LPAREN:
			p.advance()
			args, kwargs := p.parseCallArgs()
			p.expect(token.RPAREN)
			v = p.arena.AddExpr(ast.Expr{Kind: ast.KindCall, Func: v, Args: args, KwArgs: kwargs, Range: p.rangeFrom(start)})
		case token.LBRACK:
			p.advance()
			idx := p.parseSubscript()
			p.expect(token.RBRACK)
			v = p.arena.AddExpr(ast.Expr{Kind: ast.KindSubscript, Value: v, Index: idx, Range: p.rangeFrom(start)})
		default:
			return v
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.ExprID, []ast.Keyword) {
	var args []ast.ExprID
	var kwargs []ast.Keyword
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		switch {
		case p.at(token.STAR):
			p.advance()
			v := p.parseTest()
			args = append(args, p.arena.AddExpr(ast.Expr{Kind: ast.KindStarred, Value: v}))
		case p.at(token.DSTAR):
			p.advance()
			v := p.parseTest()
			kwargs = append(kwargs, ast.Keyword{Name: "", Value: v})
		case p.at(token.NAME) && p.peek().Kind == token.ASSIGN:
			name := p.tok.Lit
			p.advance()
			p.advance()
			v := p.parseTest()
			kwargs = append(kwargs, ast.Keyword{Name: name, Value: v})
		default:
			v := p.parseNamedExpr()
			if p.at(token.FOR) || (p.at(token.ASYNC) && p.peek().Kind == token.FOR) {
				clauses := p.parseCompClauses()
				v = p.arena.AddExpr(ast.Expr{Kind: ast.KindGeneratorExp, Body: v, Clauses: clauses})
			}
			args = append(args, v)
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	return args, kwargs
}

// parseSubscript parses an index or slice expression inside `[...]`.
func (p *Parser) parseSubscript() ast.ExprID {
	start := p.startPos()
	first := p.parseSliceItem()
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.ExprID{first}
	for p.accept(token.COMMA) {
		if p.at(token.RBRACK) {
			break
		}
		elts = append(elts, p.parseSliceItem())
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Elts: elts, Values: elts, Range: p.rangeFrom(start)})
}

func (p *Parser) parseSliceItem() ast.ExprID {
	start := p.startPos()
	var lower, upper, step ast.ExprID
	isSlice := false
	if !p.at(token.COLON) {
		lower = p.parseTest()
	}
	if p.at(token.COLON) {
		isSlice = true
		p.advance()
		if !p.at(token.COLON) && !p.at(token.RBRACK) && !p.at(token.COMMA) {
			upper = p.parseTest()
		}
		if p.accept(token.COLON) {
			if !p.at(token.RBRACK) && !p.at(token.COMMA) {
				step = p.parseTest()
			}
		}
	}
	if !isSlice {
		return lower
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindSlice, Lower: lower, Upper: upper, Step: step, Range: p.rangeFrom(start)})
}

// parseCompClauses parses the `for ... [if ...]` clauses of a comprehension.
func (p *Parser) parseCompClauses() []ast.CompClause {
	var out []ast.CompClause
	for p.at(token.FOR) || p.at(token.ASYNC) {
		isAsync := p.accept(token.ASYNC)
		p.expect(token.FOR)
		target := p.parseTargetListAsExpr()
		p.expect(token.IN)
		iter := p.parseOrTest()
		out = append(out, ast.CompClause{Kind: ast.CompFor, Target: target, Iter: iter, IsAsync: isAsync})
		for p.at(token.IF) {
			p.advance()
			cond := p.parseOrExprNoCond()
			out = append(out, ast.CompClause{Kind: ast.CompIf, Cond: cond})
		}
	}
	return out
}

func (p *Parser) parseAtom() ast.ExprID {
	start := p.startPos()
	switch p.tok.Kind {
	case token.NAME:
		name := p.tok.Lit
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindName, Name: name, Range: p.rangeFrom(start)})
	case token.NUMBER:
		lit := p.tok
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindNumberLit, Literal: numberLiteral(lit), Range: p.rangeFrom(start)})
	case token.STRING:
		return p.parseStringConcat(start)
	case token.FSTRING_START:
		return p.parseFString(start)
	case token.TRUE, token.FALSE:
		v := p.tok.Kind == token.TRUE
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindBooleanLit, Literal: ast.Literal{Kind: ast.LiteralBool, Bool: v}, Range: p.rangeFrom(start)})
	case token.NONE:
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindNoneLit, Range: p.rangeFrom(start)})
	case token.ELLIPSIS:
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindEllipsisLit, Range: p.rangeFrom(start)})
	case token.LPAREN:
		return p.parseParenOrTupleOrGenexp(start)
	case token.LBRACK:
		return p.parseListOrListComp(start)
	case token.LBRACE:
		return p.parseDictOrSetOrComp(start)
	case token.YIELD:
		return p.parseYield(start)
	case token.STAR:
		p.advance()
		v := p.parseOrExprNoCond()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindStarred, Value: v, Range: p.rangeFrom(start)})
	default:
		p.errorf(p.tok.Range, ErrUnexpectedToken, "unexpected token %s in expression", p.tok.Kind)
		tok := p.tok
		if tok.Kind != token.EOF {
			p.advance()
		}
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindInvalid, Range: token.Range{Start: start, End: p.prevEnd}})
	}
}

func (p *Parser) parseYield(start token.Pos) ast.ExprID {
	p.advance() // 'yield'
	if p.accept(token.FROM) {
		v := p.parseTest()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindYieldFrom, Right: v, Range: p.rangeFrom(start)})
	}
	var v ast.ExprID
	if !p.atSimpleStmtEnd() && !p.at(token.RPAREN) && !p.at(token.RBRACK) && !p.at(token.RBRACE) {
		v = p.parseExprListAsExpr()
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindYield, Right: v, Range: p.rangeFrom(start)})
}

// parseStringConcat handles Python's implicit adjacent-string-literal
// concatenation (`"a" "b"` == `"ab"`), folding consecutive STRING tokens
// into one StringLit/BytesLit node.
func (p *Parser) parseStringConcat(start token.Pos) ast.ExprID {
	lit := p.tok
	bytesLit := lit.Quote.Byte
	text := decodeStringLit(lit)
	var raw []byte
	if bytesLit {
		raw = []byte(text)
	}
	p.advance()
	for p.at(token.STRING) {
		next := p.tok
		p.advance()
		text += decodeStringLit(next)
		if bytesLit {
			raw = append(raw, []byte(decodeStringLit(next))...)
		}
	}
	if bytesLit {
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindBytesLit, Literal: ast.Literal{Kind: ast.LiteralBytes, Bytes: raw, Raw: text}, Range: p.rangeFrom(start)})
	}
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindStringLit, Literal: ast.Literal{Kind: ast.LiteralString, Str: text, Raw: text}, Range: p.rangeFrom(start)})
}

// parseFString consumes FSTRING_START (tok) ... interleaved expression
// tokens ... FSTRING_END, assembling ast.FStringPart entries. The lexer has
// already re-entered normal tokenizing between the START/MIDDLE/END
// literal-text tokens (spec §4.B).
func (p *Parser) parseFString(start token.Pos) ast.ExprID {
	var parts []ast.FStringPart
	parts = append(parts, ast.FStringPart{Str: decodeFStringLit(p.tok.Lit)})
	p.advance() // FSTRING_START

	for {
		if p.at(token.FSTRING_END) {
			parts = append(parts, ast.FStringPart{Str: decodeFStringLit(p.tok.Lit)})
			p.advance()
			break
		}
		if p.at(token.FSTRING_MIDDLE) {
			parts = append(parts, ast.FStringPart{Str: decodeFStringLit(p.tok.Lit)})
			p.advance()
			continue
		}
		expr := p.parseExprListAsExpr()
		if p.at(token.NAME) && (p.tok.Lit == "!s" || p.tok.Lit == "!r" || p.tok.Lit == "!a") {
			p.advance()
		}
		spec := ""
		if p.at(token.COLON) {
			spec = p.tok.Lit
			p.advance()
		}
		parts = append(parts, ast.FStringPart{IsExpr: true, Expr: expr, Spec: spec})
	}

	return p.arena.AddExpr(ast.Expr{Kind: ast.KindFString, Parts: parts, Range: p.rangeFrom(start)})
}

func (p *Parser) parseParenOrTupleOrGenexp(start token.Pos) ast.ExprID {
	p.advance() // '('
	if p.at(token.RPAREN) {
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Range: p.rangeFrom(start)})
	}
	if p.at(token.YIELD) {
		v := p.parseYield(p.startPos())
		p.expect(token.RPAREN)
		return v
	}
	first := p.parseStarOrTest()
	if p.at(token.FOR) || (p.at(token.ASYNC) && p.peek().Kind == token.FOR) {
		clauses := p.parseCompClauses()
		p.expect(token.RPAREN)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindGeneratorExp, Body: first, Clauses: clauses, Range: p.rangeFrom(start)})
	}
	if p.at(token.COMMA) {
		elts := []ast.ExprID{first}
		for p.accept(token.COMMA) {
			if p.at(token.RPAREN) {
				break
			}
			elts = append(elts, p.parseStarOrTest())
		}
		p.expect(token.RPAREN)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Elts: elts, Values: elts, Range: p.rangeFrom(start)})
	}
	p.expect(token.RPAREN)
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindParenExpr, Right: first, Range: p.rangeFrom(start)})
}

func (p *Parser) parseListOrListComp(start token.Pos) ast.ExprID {
	p.advance() // '['
	if p.at(token.RBRACK) {
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindList, Range: p.rangeFrom(start)})
	}
	first := p.parseStarOrTest()
	if p.at(token.FOR) || (p.at(token.ASYNC) && p.peek().Kind == token.FOR) {
		clauses := p.parseCompClauses()
		p.expect(token.RBRACK)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindListComp, Body: first, Clauses: clauses, Range: p.rangeFrom(start)})
	}
	elts := []ast.ExprID{first}
	for p.accept(token.COMMA) {
		if p.at(token.RBRACK) {
			break
		}
		elts = append(elts, p.parseStarOrTest())
	}
	p.expect(token.RBRACK)
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindList, Elts: elts, Values: elts, Range: p.rangeFrom(start)})
}

func (p *Parser) parseDictOrSetOrComp(start token.Pos) ast.ExprID {
	p.advance() // '{'
	if p.at(token.RBRACE) {
		p.advance()
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindDict, Range: p.rangeFrom(start)})
	}
	if p.at(token.DSTAR) {
		p.advance()
		v := p.parseOrExprNoCond()
		keys := []ast.ExprID{ast.NilExpr}
		values := []ast.ExprID{v}
		for p.accept(token.COMMA) {
			if p.at(token.RBRACE) {
				break
			}
			if p.accept(token.DSTAR) {
				keys = append(keys, ast.NilExpr)
				values = append(values, p.parseOrExprNoCond())
				continue
			}
			k := p.parseTest()
			p.expect(token.COLON)
			val := p.parseTest()
			keys = append(keys, k)
			values = append(values, val)
		}
		p.expect(token.RBRACE)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindDict, Keys: keys, Values: values, Range: p.rangeFrom(start)})
	}

	firstStart := p.startPos()
	first := p.parseStarOrTest()
	if p.at(token.COLON) {
		p.advance()
		val := p.parseTest()
		if p.at(token.FOR) || (p.at(token.ASYNC) && p.peek().Kind == token.FOR) {
			clauses := p.parseCompClauses()
			p.expect(token.RBRACE)
			pair := p.arena.AddExpr(ast.Expr{Kind: ast.KindTuple, Elts: []ast.ExprID{first, val}, Range: p.rangeFrom(firstStart)})
			return p.arena.AddExpr(ast.Expr{Kind: ast.KindDictComp, Body: pair, Clauses: clauses, Range: p.rangeFrom(start)})
		}
		keys := []ast.ExprID{first}
		values := []ast.ExprID{val}
		for p.accept(token.COMMA) {
			if p.at(token.RBRACE) {
				break
			}
			if p.accept(token.DSTAR) {
				keys = append(keys, ast.NilExpr)
				values = append(values, p.parseOrExprNoCond())
				continue
			}
			k := p.parseTest()
			p.expect(token.COLON)
			v := p.parseTest()
			keys = append(keys, k)
			values = append(values, v)
		}
		p.expect(token.RBRACE)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindDict, Keys: keys, Values: values, Range: p.rangeFrom(start)})
	}

	if p.at(token.FOR) || (p.at(token.ASYNC) && p.peek().Kind == token.FOR) {
		clauses := p.parseCompClauses()
		p.expect(token.RBRACE)
		return p.arena.AddExpr(ast.Expr{Kind: ast.KindSetComp, Body: first, Clauses: clauses, Range: p.rangeFrom(start)})
	}

	elts := []ast.ExprID{first}
	for p.accept(token.COMMA) {
		if p.at(token.RBRACE) {
			break
		}
		elts = append(elts, p.parseStarOrTest())
	}
	p.expect(token.RBRACE)
	return p.arena.AddExpr(ast.Expr{Kind: ast.KindSet, Elts: elts, Values: elts, Range: p.rangeFrom(start)})
}

func numberLiteral(t lexer.Token) ast.Literal {
	lit := ast.Literal{Raw: t.Lit}
	switch {
	case t.Num.IsComplex:
		lit.Kind = ast.LiteralComplex
		f, _ := t.Num.Decimal.Float64()
		lit.Float = f
	case t.Num.IsFloat:
		lit.Kind = ast.LiteralFloat
		f, _ := t.Num.Decimal.Float64()
		lit.Float = f
	default:
		lit.Kind = ast.LiteralInt
		if t.Num.Decimal != nil {
			lit.Int = t.Num.Decimal.String()
		}
	}
	return lit
}

// decodeStringLit strips the prefix letters (the lexer includes them in Lit)
// and the quote delimiters, leaving the literal text;
// escape decoding is deferred to internal/pytype literal construction, which
// needs the raw/byte flags carried on Quote alongside it.
func decodeStringLit(t lexer.Token) string {
	s := t.Lit
	n := 1
	if t.Quote.Triple {
		n = 3
	}
	if len(s) < 2*n {
		return ""
	}
	// skip prefix letters before the opening quote
	start := 0
	for start < len(s) && s[start] != '\'' && s[start] != '"' {
		start++
	}
	return s[start+n : len(s)-n]
}

// decodeFStringLit returns the literal-text segment verbatim; quote/prefix
// stripping and escape decoding happen when internal/pytype builds the
// literal value, same deferral as decodeStringLit.
func decodeFStringLit(lit string) string {
	return lit
}

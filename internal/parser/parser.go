// Package parser implements spec §4.C: a recursive-descent parser building
// an arena-backed AST (internal/ast), a sorted comment-range list, and a
// NodeKey-ready arena per file. Grounded on cue/parser's structure (a
// Parser struct wrapping the scanner, one-token lookahead, and statement-
// boundary error recovery) adapted to Python's INDENT/DEDENT/NEWLINE
// layout grammar instead of CUE's brace/comma grammar.
package parser

import (
	"fmt"

	"pyglass.dev/pyglass/internal/ast"
	"pyglass.dev/pyglass/internal/lexer"
	"pyglass.dev/pyglass/internal/token"
)

// Parser holds transient parsing state for one file. It is not reused
// across files (spec §4.C: "A root AST node owned by a freshly allocated
// arena").
type Parser struct {
	lex  *lexer.Lexer
	file *token.File

	tok     lexer.Token // current token
	ahead   *lexer.Token
	prevEnd token.Pos // end position of the token just consumed, for ranges

	arena  *ast.Arena
	Errors []*Error
}

// ParseFile tokenizes and parses src as one Python module (spec §6
// `parse(path)`).
func ParseFile(path string, src []byte) (*ast.File, []*Error, []*Error) {
	file := token.NewFile(path, len(src))
	l := lexer.New(file, src)
	p := &Parser{lex: l, file: file, arena: ast.NewArena()}
	p.advance()

	body := p.parseStatements(true)

	var lexErrs []*Error
	for _, e := range l.Errors {
		lexErrs = append(lexErrs, &Error{Kind: ErrLexer, Range: token.Range{Start: e.Pos, End: e.Pos}, Msg: e.Error()})
	}

	return &ast.File{
		Arena:    p.arena,
		Path:     path,
		Body:     body,
		Comments: l.Comments,
	}, lexErrs, p.Errors
}

func (p *Parser) advance() {
	p.prevEnd = p.tok.Range.End
	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return
	}
	p.tok = p.lex.Scan()
}

func (p *Parser) peek() lexer.Token {
	if p.ahead == nil {
		t := p.lex.Scan()
		p.ahead = &t
	}
	return *p.ahead
}

func (p *Parser) at(k token.Kind) bool { return p.tok.Kind == k }

func (p *Parser) errorf(r token.Range, kind ErrorKind, format string, args ...any) {
	p.Errors = append(p.Errors, &Error{Kind: kind, Range: r, Msg: fmt.Sprintf(format, args...)})
}

// expect consumes the current token if it matches k, else records a
// missing-token error (spec §4.C ParseError kind "missing token").
func (p *Parser) expect(k token.Kind) lexer.Token {
	t := p.tok
	if t.Kind != k {
		p.errorf(t.Range, ErrMissingToken, "expected %s, found %s", k, t.Kind)
		return t
	}
	p.advance()
	return t
}

func (p *Parser) accept(k token.Kind) bool {
	if p.tok.Kind == k {
		p.advance()
		return true
	}
	return false
}

// recover skips tokens until the next NEWLINE/DEDENT/EOF, for single-token
// recovery at statement boundaries (spec §4.C).
func (p *Parser) recover() {
	for !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.EOF) {
		p.advance()
	}
	p.accept(token.NEWLINE)
}

func (p *Parser) startPos() token.Pos { return p.tok.Range.Start }

func (p *Parser) rangeFrom(start token.Pos) token.Range {
	return token.Range{Start: start, End: p.prevEnd}
}

// parseStatements parses a block of statements. atModuleLevel controls the
// terminator: EOF for the module body, DEDENT for a nested suite.
func (p *Parser) parseStatements(atModuleLevel bool) []ast.StmtID {
	var out []ast.StmtID
	for {
		for p.accept(token.NEWLINE) {
		}
		if atModuleLevel && p.at(token.EOF) {
			break
		}
		if !atModuleLevel && (p.at(token.DEDENT) || p.at(token.EOF)) {
			break
		}
		before := len(p.Errors)
		ids := p.parseStatement()
		out = append(out, ids...)
		if len(p.Errors) > before && len(ids) == 0 {
			p.recover()
		}
	}
	return out
}

// parseSuite parses `:` NEWLINE INDENT statements DEDENT, or a single
// simple-statement suite on the same line (`if x: pass`).
func (p *Parser) parseSuite() []ast.StmtID {
	p.expect(token.COLON)
	if p.accept(token.NEWLINE) {
		p.expect(token.INDENT)
		body := p.parseStatements(false)
		p.expect(token.DEDENT)
		return body
	}
	return p.parseSimpleStatementLine()
}

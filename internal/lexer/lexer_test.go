package lexer

import (
	"testing"

	"github.com/go-quicktest/qt"

	"pyglass.dev/pyglass/internal/token"
)

func scanAll(src string) ([]Token, *Lexer) {
	file := token.NewFile("test.py", len(src))
	l := New(file, []byte(src))
	var toks []Token
	for {
		t := l.Scan()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l
}

func kinds(toks []Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestSimpleAssignment(t *testing.T) {
	toks, l := scanAll("x = 1\n")
	qt.Assert(t, qt.HasLen(l.Errors, 0))
	qt.Assert(t, qt.DeepEquals(kinds(toks), []token.Kind{
		token.NAME, token.ASSIGN, token.NUMBER, token.NEWLINE, token.EOF,
	}))
	qt.Assert(t, qt.Equals(toks[0].Lit, "x"))
}

func TestIndentDedent(t *testing.T) {
	src := "if x:\n    y = 1\nz = 2\n"
	toks, l := scanAll(src)
	qt.Assert(t, qt.HasLen(l.Errors, 0))
	ks := kinds(toks)
	qt.Assert(t, qt.Equals(ks[0], token.IF))
	foundIndent, foundDedent := false, false
	for _, k := range ks {
		if k == token.INDENT {
			foundIndent = true
		}
		if k == token.DEDENT {
			foundDedent = true
		}
	}
	qt.Assert(t, qt.IsTrue(foundIndent))
	qt.Assert(t, qt.IsTrue(foundDedent))
}

func TestImplicitLineJoining(t *testing.T) {
	src := "x = (1 +\n     2)\n"
	toks, l := scanAll(src)
	qt.Assert(t, qt.HasLen(l.Errors, 0))
	for _, tok := range toks[:len(toks)-2] {
		qt.Assert(t, qt.IsFalse(tok.Kind == token.NEWLINE))
	}
}

func TestFStringReentrant(t *testing.T) {
	src := `f"hello {name!r:>10}"` + "\n"
	toks, l := scanAll(src)
	qt.Assert(t, qt.HasLen(l.Errors, 0))
	ks := kinds(toks)
	qt.Assert(t, qt.Equals(ks[0], token.FSTRING_START))
	hasName := false
	for _, k := range ks {
		if k == token.NAME {
			hasName = true
		}
	}
	qt.Assert(t, qt.IsTrue(hasName))
	qt.Assert(t, qt.Equals(ks[len(ks)-3], token.FSTRING_END))
}

func TestUnterminatedStringError(t *testing.T) {
	_, l := scanAll("x = 'abc\n")
	qt.Assert(t, qt.HasLen(l.Errors, 1))
	qt.Assert(t, qt.Equals(l.Errors[0].Kind, ErrUnterminatedString))
}

func TestNumberDecoding(t *testing.T) {
	toks, l := scanAll("x = 123456789012345678901234567890\n")
	qt.Assert(t, qt.HasLen(l.Errors, 0))
	var num Token
	for _, tok := range toks {
		if tok.Kind == token.NUMBER {
			num = tok
		}
	}
	qt.Assert(t, qt.IsFalse(num.Num.Decimal == nil))
	qt.Assert(t, qt.Equals(num.Num.Decimal.String(), "123456789012345678901234567890"))
}

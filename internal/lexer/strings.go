package lexer

import (
	"strings"

	"pyglass.dev/pyglass/internal/token"
)

// scanString scans a quoted string literal starting at the opening quote
// (l.ch). prefixLen is how many prefix characters (r/b/f/u) preceded it and
// have already been consumed from the source but are included in start.
// For f-strings this emits FSTRING_START and pushes modeFStringExpr so the
// next Scan() calls re-enter normal tokenizing inside `{...}` (spec §4.B:
// "re-entrant").
func (l *Lexer) scanString(start int, prefixLen int, raw, byteLit, fstr, _ bool) Token {
	quote := l.ch
	triple := l.peekAt(0) == byte(quote) && l.peekAt(1) == byte(quote)
	l.next()
	if triple {
		l.next()
		l.next()
	}

	q := token.StringQuote{Triple: triple, Raw: raw, Byte: byteLit, FString: fstr, Double: quote == '"'}

	if fstr {
		l.fstrStack = append(l.fstrStack, fstringState{quote: quote, triple: triple, raw: raw, byteLit: byteLit})
		return l.scanFStringSegment(start, true)
	}

	for {
		if l.ch < 0 {
			l.error(start, ErrUnterminatedString, "unterminated string literal")
			break
		}
		if l.ch == '\\' && !raw {
			l.next()
			if l.ch < 0 {
				break
			}
			if !isValidEscape(l.ch) {
				l.error(l.offset, ErrInvalidEscape, "invalid escape sequence")
			}
			l.next()
			continue
		}
		if l.ch == quote {
			if !triple {
				l.next()
				break
			}
			if l.peekAt(0) == byte(quote) && l.peekAt(1) == byte(quote) {
				l.next()
				l.next()
				l.next()
				break
			}
			l.next()
			continue
		}
		if l.ch == '\n' && !triple {
			l.error(start, ErrUnterminatedString, "EOL while scanning string literal")
			break
		}
		l.next()
	}

	lit := string(l.src[start:l.offset])
	return Token{Kind: token.STRING, Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)}, Lit: lit, Quote: q}
}

// scanFStringSegment scans the literal text of an f-string up to the next
// unescaped `{` (entering expression mode) or the closing quote (ending the
// f-string). first controls whether this emits FSTRING_START or
// FSTRING_MIDDLE.
func (l *Lexer) scanFStringSegment(start int, first bool) Token {
	st := l.fstrStack[len(l.fstrStack)-1]
	quote := st.quote

	for {
		switch {
		case l.ch < 0:
			l.error(start, ErrUnterminatedString, "unterminated f-string literal")
			return l.finishFStringEnd(start)
		case l.ch == '{' && l.peekAt(0) == '{':
			l.next()
			l.next()
			continue
		case l.ch == '}' && l.peekAt(0) == '}':
			l.next()
			l.next()
			continue
		case l.ch == '{':
			l.next()
			l.modeStack = append(l.modeStack, modeFStringExpr)
			kind := token.FSTRING_MIDDLE
			if first {
				kind = token.FSTRING_START
			}
			return Token{Kind: kind, Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)}, Lit: string(l.src[start:l.offset])}
		case l.ch == quote && (!st.triple || (l.peekAt(0) == byte(quote) && l.peekAt(1) == byte(quote))):
			return l.finishFStringEnd(start)
		case l.ch == '\\' && !st.raw:
			l.next()
			if l.ch >= 0 {
				l.next()
			}
		default:
			l.next()
		}
	}
}

func (l *Lexer) finishFStringEnd(start int) Token {
	st := l.fstrStack[len(l.fstrStack)-1]
	l.fstrStack = l.fstrStack[:len(l.fstrStack)-1]
	if l.ch == st.quote {
		l.next()
		if st.triple {
			l.next()
			l.next()
		}
	}
	return Token{Kind: token.FSTRING_END, Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)}, Lit: string(l.src[start:l.offset])}
}

// scanFStringExprMode tokenizes ordinary Python tokens inside an f-string
// interpolation until the matching `}` (or a `:`, which always starts the
// format spec; a colon inside brackets within the interpolation is not told
// apart from it), then pops back to string mode.
func (l *Lexer) scanFStringExprMode() Token {
	l.skipSpacesAndComments()
	if l.ch == '}' {
		l.next()
		l.modeStack = l.modeStack[:len(l.modeStack)-1]
		start := l.offset
		return l.scanFStringSegment(start, false)
	}
	if l.ch == '!' && (l.peekAt(0) == 's' || l.peekAt(0) == 'r' || l.peekAt(0) == 'a') && l.peekAt(1) != '=' {
		start := l.offset
		l.next()
		l.next()
		return Token{Kind: token.NAME, Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)}, Lit: string(l.src[start:l.offset])}
	}
	if l.ch == ':' {
		// Format spec: scan verbatim text up to the '}' that closes the
		// interpolation, counting nested '{'/'}' pairs. Nested replacement
		// fields in the spec stay part of the spec text and are not
		// tokenized.
		start := l.offset
		l.next()
		depth := 0
		for {
			switch {
			case l.ch < 0:
				l.error(start, ErrBadFStringExpr, "unterminated format spec")
				goto done
			case l.ch == '{':
				depth++
				l.next()
			case l.ch == '}':
				if depth == 0 {
					goto done
				}
				depth--
				l.next()
			default:
				l.next()
			}
		}
	done:
		return Token{Kind: token.COLON, Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)}, Lit: string(l.src[start:l.offset])}
	}

	start := l.offset
	if l.ch < 0 {
		l.error(start, ErrBadFStringExpr, "unexpected end of f-string expression")
		l.modeStack = l.modeStack[:len(l.modeStack)-1]
		return Token{Kind: token.EOF, Range: token.Range{Start: l.pos(start), End: l.pos(start)}}
	}

	switch {
	case isIdentStart(l.ch):
		return l.scanIdentOrPrefixedString(start)
	case l.ch >= '0' && l.ch <= '9':
		return l.scanNumber(start)
	case l.ch == '\'' || l.ch == '"':
		return l.scanString(start, 0, false, false, false, false)
	default:
		return l.scanOperator(start)
	}
}

func isValidEscape(ch rune) bool {
	return strings.ContainsRune("\\'\"abfnrtv01234567xNuU\n", ch)
}

package lexer

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"pyglass.dev/pyglass/internal/token"
)

// Number is the decoded numeric payload of a NUMBER token (spec §3 Token:
// "number tokens carry a decoded numeric representation"). Python ints are
// arbitrary precision, so decimal digits are kept as an apd.Decimal,
// mirroring how apd.Decimal is used elsewhere for unbounded numeric
// literals, rather than truncated into a machine int.
type Number struct {
	IsFloat   bool
	IsComplex bool
	Decimal   *apd.Decimal // valid for both int and float forms
}

func (l *Lexer) scanNumber(start int) Token {
	isFloat := false
	if l.ch == '0' && (l.peekAt(0) == 'x' || l.peekAt(0) == 'X' ||
		l.peekAt(0) == 'o' || l.peekAt(0) == 'O' ||
		l.peekAt(0) == 'b' || l.peekAt(0) == 'B') {
		l.next()
		l.next()
		for isHexOctBinDigit(l.ch) || l.ch == '_' {
			l.next()
		}
	} else {
		for unicode_IsDigitOrUnderscore(l.ch) {
			l.next()
		}
		if l.ch == '.' {
			isFloat = true
			l.next()
			for unicode_IsDigitOrUnderscore(l.ch) {
				l.next()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			save := *l
			l.next()
			if l.ch == '+' || l.ch == '-' {
				l.next()
			}
			if !unicode_IsDigitOrUnderscore(l.ch) {
				*l = save
			} else {
				isFloat = true
				for unicode_IsDigitOrUnderscore(l.ch) {
					l.next()
				}
			}
		}
	}
	isComplex := false
	if l.ch == 'j' || l.ch == 'J' {
		isComplex = true
		l.next()
	}

	lit := string(l.src[start:l.offset])
	digits := lit
	if isComplex {
		digits = lit[:len(lit)-1]
	}
	dec, _ := decodeDecimal(digits, isFloat)

	return Token{
		Kind:  token.NUMBER,
		Range: token.Range{Start: l.pos(start), End: l.pos(l.offset)},
		Lit:   lit,
		Num:   Number{IsFloat: isFloat, IsComplex: isComplex, Decimal: dec},
	}
}

// DecodeNumber re-derives the Number payload for a NUMBER token's literal
// text. The parser does not call it; it reads Token.Num directly.
func DecodeNumber(lit string) (Number, error) {
	isFloat := strings.ContainsAny(lit, ".eE") && !strings.HasPrefix(lit, "0x") && !strings.HasPrefix(lit, "0X")
	isComplex := strings.HasSuffix(lit, "j") || strings.HasSuffix(lit, "J")
	core := lit
	if isComplex {
		core = core[:len(core)-1]
	}
	dec, err := decodeDecimal(core, isFloat)
	return Number{IsFloat: isFloat, IsComplex: isComplex, Decimal: dec}, err
}

func decodeDecimal(lit string, isFloat bool) (*apd.Decimal, error) {
	clean := strings.ReplaceAll(lit, "_", "")
	if len(clean) > 1 && clean[0] == '0' && !isFloat {
		switch clean[1] | 0x20 {
		case 'x':
			return decodeRadix(clean[2:], 16)
		case 'o':
			return decodeRadix(clean[2:], 8)
		case 'b':
			return decodeRadix(clean[2:], 2)
		}
	}
	d, _, err := apd.NewFromString(clean)
	return d, err
}

func decodeRadix(digits string, base int) (*apd.Decimal, error) {
	var acc apd.Decimal
	var baseDec apd.Decimal
	baseDec.SetInt64(int64(base))
	var ctx apd.Context
	ctx = *apd.BaseContext.WithPrecision(4000)
	for _, c := range digits {
		v := hexVal(byte(c))
		if v < 0 {
			continue
		}
		var digit apd.Decimal
		digit.SetInt64(int64(v))
		if _, err := ctx.Mul(&acc, &acc, &baseDec); err != nil {
			return nil, err
		}
		if _, err := ctx.Add(&acc, &acc, &digit); err != nil {
			return nil, err
		}
	}
	return &acc, nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func isHexOctBinDigit(ch rune) bool {
	return hexVal(byte(ch)) >= 0
}

func unicode_IsDigitOrUnderscore(ch rune) bool {
	return (ch >= '0' && ch <= '9') || ch == '_'
}

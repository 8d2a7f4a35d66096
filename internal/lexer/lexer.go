package lexer

import (
	"strings"
	"unicode"

	"github.com/arithflow/arithflow/internal/errs"
)

// operatorPunctuation holds ASCII punctuation that reads as "an operator
// the grammar doesn't support" (spec §8 S7: "5 % 2" must fail with
// UNSUPPORTED_OPERATOR, not the generic invalid-character error). Anything
// outside both this set and the core grammar characters is instead
// SYNTAX_INVALID_CHARS. See DESIGN.md for this distinction.
const operatorPunctuation = "%^&|~!<>=:,;?"

// Lexer scans an input expression into a stream of Tokens per spec §6.1.
// It accepts digits, '.', the four operator characters, parentheses, and
// whitespace; anything else is reported through Next's error return.
type Lexer struct {
	src    string
	pos    int
	ch     rune
	offset int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	l := &Lexer{src: src}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	l.offset = l.pos
	if l.pos >= len(l.src) {
		l.ch = 0
		return
	}
	l.ch = rune(l.src[l.pos])
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.advance()
	}
}

// Next returns the next token, or a *errs.Error of kind SyntaxInvalidChars
// or UnsupportedOperator if the next rune cannot be tokenized.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.offset
	switch {
	case l.ch == 0:
		return Token{Type: EOF, Offset: start}, nil
	case l.ch == '+':
		l.advance()
		return Token{Type: PLUS, Literal: "+", Offset: start}, nil
	case l.ch == '-':
		l.advance()
		return Token{Type: MINUS, Literal: "-", Offset: start}, nil
	case l.ch == '*':
		l.advance()
		return Token{Type: STAR, Literal: "*", Offset: start}, nil
	case l.ch == '/':
		l.advance()
		return Token{Type: SLASH, Literal: "/", Offset: start}, nil
	case l.ch == '(':
		l.advance()
		return Token{Type: LPAREN, Literal: "(", Offset: start}, nil
	case l.ch == ')':
		l.advance()
		return Token{Type: RPAREN, Literal: ")", Offset: start}, nil
	case unicode.IsDigit(l.ch) || l.ch == '.':
		return l.readNumber(start)
	case strings.ContainsRune(operatorPunctuation, l.ch):
		bad := l.ch
		l.advance()
		return Token{}, errs.UnsupportedOperator.New(string(bad))
	default:
		bad := l.ch
		l.advance()
		return Token{}, errs.SyntaxInvalidChars.New(string(bad))
	}
}

func (l *Lexer) readNumber(start int) (Token, error) {
	var sb strings.Builder
	seenDot := false
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			if seenDot {
				break
			}
			seenDot = true
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	return Token{Type: NUMBER, Literal: sb.String(), Offset: start}, nil
}

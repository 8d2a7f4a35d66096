package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/lexer"
)

func allTokens(t *testing.T, src string) ([]lexer.Token, error) {
	t.Helper()
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == lexer.EOF {
			return toks, nil
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	toks, err := allTokens(t, "12 + 3.5 * (4 - 1) / 2")
	require.NoError(t, err)

	var types []lexer.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []lexer.TokenType{
		lexer.NUMBER, lexer.PLUS, lexer.NUMBER, lexer.STAR, lexer.LPAREN,
		lexer.NUMBER, lexer.MINUS, lexer.NUMBER, lexer.RPAREN, lexer.SLASH,
		lexer.NUMBER, lexer.EOF,
	}, types)
}

func TestLexerNumberLiteral(t *testing.T) {
	toks, err := allTokens(t, "3.14")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "3.14", toks[0].Literal)
}

func TestLexerUnsupportedOperatorNotInvalidChars(t *testing.T) {
	_, err := allTokens(t, "5 % 2")
	require.Error(t, err)
	assert.True(t, errs.UnsupportedOperator.Is(err), "expected UNSUPPORTED_OPERATOR, got %v", err)
}

func TestLexerInvalidCharacter(t *testing.T) {
	_, err := allTokens(t, "5 @ 2")
	require.Error(t, err)
	assert.True(t, errs.SyntaxInvalidChars.Is(err), "expected SYNTAX_INVALID_CHARS, got %v", err)
}

func TestLexerEmptyIsEOF(t *testing.T) {
	toks, err := allTokens(t, "")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, lexer.EOF, toks[0].Type)
}

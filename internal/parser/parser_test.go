package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/parser"
)

func TestParseLiteral(t *testing.T) {
	node, err := parser.Parse("42")
	require.NoError(t, err)
	lit, ok := node.(*parser.Literal)
	require.True(t, ok)
	assert.Equal(t, 42.0, lit.Value)
}

func TestParseUnaryMinusFoldsIntoLiteral(t *testing.T) {
	node, err := parser.Parse("-5")
	require.NoError(t, err)
	lit, ok := node.(*parser.Literal)
	require.True(t, ok)
	assert.Equal(t, -5.0, lit.Value)
}

func TestParseUnaryOnComplexIsRejected(t *testing.T) {
	_, err := parser.Parse("-(1+2)")
	require.Error(t, err)
	assert.True(t, errs.UnaryOnComplex.Is(err))
}

func TestParsePrecedence(t *testing.T) {
	node, err := parser.Parse("1 + 2 * 3")
	require.NoError(t, err)
	top, ok := node.(*parser.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, parser.ADD, top.Op)

	right, ok := top.Right.(*parser.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, parser.MUL, right.Op)
}

func TestParseParenGrouping(t *testing.T) {
	node, err := parser.Parse("(1 + 2) * 4")
	require.NoError(t, err)
	top, ok := node.(*parser.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, parser.MUL, top.Op)

	left, ok := top.Left.(*parser.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, parser.ADD, left.Op)
}

func TestParseEmptyExpression(t *testing.T) {
	_, err := parser.Parse("   ")
	require.Error(t, err)
	assert.True(t, errs.SyntaxEmpty.Is(err))
}

func TestParseUnclosedParen(t *testing.T) {
	_, err := parser.Parse("(1 + 2")
	require.Error(t, err)
	assert.True(t, errs.SyntaxMalformed.Is(err))
}

func TestParseTrailingGarbage(t *testing.T) {
	_, err := parser.Parse("1 + 2)")
	require.Error(t, err)
	assert.True(t, errs.SyntaxMalformed.Is(err))
}

func TestParseUnsupportedOperator(t *testing.T) {
	_, err := parser.Parse("5 % 2")
	require.Error(t, err)
	assert.True(t, errs.UnsupportedOperator.Is(err))
}

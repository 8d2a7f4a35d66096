package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/lexer"
)

// Parser is a recursive-descent, precedence-climbing parser over the
// grammar in spec §6.1:
//
//	expr   := term (('+'|'-') term)*
//	term   := unary (('*'|'/') unary)*
//	unary  := '-' unary | primary
//	primary:= number | '(' expr ')'
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

// Parse tokenizes and parses expression into an operator tree. It returns
// an *errs.Error of kind SyntaxEmpty, SyntaxInvalidChars,
// UnsupportedOperator, UnaryOnComplex, or SyntaxMalformed on failure.
func Parse(expression string) (Node, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errs.SyntaxEmpty.New()
	}

	p := &Parser{lex: lexer.New(expression)}
	if err := p.init(); err != nil {
		return nil, err
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, errs.SyntaxMalformed.New(fmt.Sprintf("unexpected token %q", p.cur.Literal))
	}
	return node, nil
}

func (p *Parser) init() error {
	var err error
	if p.cur, err = p.lex.Next(); err != nil {
		return err
	}
	if p.peek, err = p.lex.Next(); err != nil {
		return err
	}
	return nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	next, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = next
	return nil
}

func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		op := ADD
		if p.cur.Type == lexer.MINUS {
			op = SUB
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.STAR || p.cur.Type == lexer.SLASH {
		op := MUL
		if p.cur.Type == lexer.SLASH {
			op = DIV
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type == lexer.MINUS {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lit, ok := operand.(*Literal)
		if !ok {
			return nil, errs.UnaryOnComplex.New()
		}
		return &Literal{Value: -lit.Value}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case lexer.NUMBER:
		lit := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, errs.SyntaxMalformed.New(fmt.Sprintf("invalid number %q", lit))
		}
		return &Literal{Value: v}, nil
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, errs.SyntaxMalformed.New("'(' was never closed")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.EOF:
		return nil, errs.SyntaxMalformed.New("unexpected end of expression")
	default:
		return nil, errs.SyntaxMalformed.New(fmt.Sprintf("unexpected token %q", p.cur.Literal))
	}
}

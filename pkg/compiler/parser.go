package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an
// expression tree.
//
// Grammar:
//
//	expression = "let" IDENTIFIER "=" expression "in" expression
//	           | "if" expression "then" expression "else" expression
//	           | additive
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = primary ("*" primary)*
//	primary    = INTEGER | "-" INTEGER | IDENTIFIER
//	           | ("inc" | "dec" | "twice") "(" expression ")"
//	           | "(" expression ")"
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	switch p.peek().Type {
	case LET:
		return p.parseLet()
	case IF:
		return p.parseIf()
	default:
		return p.parseAdditive()
	}
}

// parseLet handles let IDENT = expr in expr
func (p *Parser) parseLet() (Expr, error) {
	p.advance() // let
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(name.Lexeme, "tmp_") {
		return nil, p.fmtError(name, "the tmp_ name prefix is reserved")
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	bound, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetExpr{Name: name.Lexeme, Bound: bound, Body: body}, nil
}

// parseIf handles if expr then expr else expr
func (p *Parser) parseIf() (Expr, error) {
	p.advance() // if
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN); err != nil {
		return nil, err
	}
	thenBranch, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ELSE); err != nil {
		return nil, err
	}
	elseBranch, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &IfExpr{Cond: cond, Then: thenBranch, Else: elseBranch}, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := OpPlus
		if p.advance().Type == MINUS {
			op = OpMinus
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles *
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: OpTimes, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseIntLiteral(tok Token, negative bool) (Expr, error) {
	value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return nil, p.fmtError(tok, "invalid integer literal %q", tok.Lexeme)
	}
	if negative {
		value = -value
	}
	return &Literal{Value: value}, nil
}

// parsePrimary handles literals, variable references, unary calls and
// parenthesised expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case INTEGER:
		return p.parseIntLiteral(tok, false)

	case MINUS:
		num, err := p.expect(INTEGER)
		if err != nil {
			return nil, err
		}
		return p.parseIntLiteral(num, true)

	case IDENTIFIER:
		return &VarRef{Name: tok.Lexeme}, nil

	case INC, DEC, TWICE:
		op := OpInc
		switch tok.Type {
		case DEC:
			op = OpDec
		case TWICE:
			op = OpTwice
		}
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil

	case LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "unexpected token %s (%q)", tok.Type, tok.Lexeme)
	}
}

// Parse builds the expression tree for a whole source file. The entire token
// stream must form exactly one expression.
func Parse(tokens []Token, rawSource string) (Expr, error) {
	p := NewParser(tokens, rawSource)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EOF); err != nil {
		return nil, err
	}
	return expr, nil
}

package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal

	// Keywords
	LET   // "let"
	IN    // "in"
	IF    // "if"
	THEN  // "then"
	ELSE  // "else"
	INC   // "inc"
	DEC   // "dec"
	TWICE // "twice"

	// Paired delimiters
	LPAREN // (
	RPAREN // )

	// Operators
	PLUS   // +
	MINUS  // -
	STAR   // *
	ASSIGN // =
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	LET:        "LET",
	IN:         "IN",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	INC:        "INC",
	DEC:        "DEC",
	TWICE:      "TWICE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	ASSIGN:     "ASSIGN",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

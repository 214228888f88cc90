// Package frontend - Lexer for Spiglet source
// Design: Hand-written scanner, keywords resolved after scanning an identifier
package frontend

import (
	"fmt"
	"unicode"
)

type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	// Literals
	INT
	IDENT

	// Keywords
	MAIN
	END
	BEGIN
	RETURN
	NOOP
	ERROR
	CJUMP
	JUMP
	HSTORE
	HLOAD
	MOVE
	PRINT
	CALL
	HALLOCATE
	TEMP

	// Operators
	LT
	PLUS
	MINUS
	TIMES

	// Delimiters
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
)

var keywords = map[string]TokenType{
	"MAIN":      MAIN,
	"END":       END,
	"BEGIN":     BEGIN,
	"RETURN":    RETURN,
	"NOOP":      NOOP,
	"ERROR":     ERROR,
	"CJUMP":     CJUMP,
	"JUMP":      JUMP,
	"HSTORE":    HSTORE,
	"HLOAD":     HLOAD,
	"MOVE":      MOVE,
	"PRINT":     PRINT,
	"CALL":      CALL,
	"HALLOCATE": HALLOCATE,
	"TEMP":      TEMP,
	"LT":        LT,
	"PLUS":      PLUS,
	"MINUS":     MINUS,
	"TIMES":     TIMES,
}

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case ILLEGAL:
		return t.Lexeme
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

type Lexer struct {
	source []rune
	start  int
	pos    int
	line   int
	col    int
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		source: []rune(source),
		line:   1,
		col:    1,
	}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() Token {
	if err := l.skipTrivia(); err != "" {
		return l.error(err)
	}

	if l.isAtEnd() {
		return Token{Type: EOF, Line: l.line, Col: l.col}
	}

	l.start = l.pos
	c := l.advance()

	switch c {
	case '(':
		return l.makeToken(LPAREN, "(")
	case ')':
		return l.makeToken(RPAREN, ")")
	case '[':
		return l.makeToken(LBRACKET, "[")
	case ']':
		return l.makeToken(RBRACKET, "]")
	}

	if unicode.IsDigit(c) {
		return l.number()
	}

	if unicode.IsLetter(c) || c == '_' {
		return l.identifier()
	}

	return l.error(fmt.Sprintf("unexpected character: %c", c))
}

// skipTrivia skips whitespace and comments. It returns a message for an
// unterminated block comment.
func (l *Lexer) skipTrivia() string {
	for !l.isAtEnd() {
		c := l.peek()
		switch {
		case c == '\n':
			l.advance()
			l.line++
			l.col = 1
		case unicode.IsSpace(c):
			l.advance()
		case c == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekNext() == '*':
			l.advance()
			l.advance()
			for {
				if l.isAtEnd() {
					return "unterminated comment"
				}
				if l.peek() == '*' && l.peekNext() == '/' {
					l.advance()
					l.advance()
					break
				}
				if l.advance() == '\n' {
					l.line++
					l.col = 1
				}
			}
		default:
			return ""
		}
	}
	return ""
}

func (l *Lexer) number() Token {
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(INT, string(l.source[l.start:l.pos]))
}

func (l *Lexer) identifier() Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := string(l.source[l.start:l.pos])
	if typ, ok := keywords[text]; ok {
		return l.makeToken(typ, text)
	}
	return l.makeToken(IDENT, text)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return '\x00'
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	c := l.source[l.pos]
	l.pos++
	l.col++
	return c
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) makeToken(typ TokenType, lexeme string) Token {
	return Token{
		Type:   typ,
		Lexeme: lexeme,
		Line:   l.line,
		Col:    l.col - len([]rune(lexeme)),
	}
}

func (l *Lexer) error(msg string) Token {
	return Token{
		Type:   ILLEGAL,
		Lexeme: msg,
		Line:   l.line,
		Col:    l.col,
	}
}

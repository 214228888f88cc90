// Package frontend - Recursive descent parser for Spiglet
// Design: Predictive parsing, one token of lookahead, every error reported
package frontend

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

// SyntaxError is a positioned parse error
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

type Parser struct {
	lexer   *Lexer
	current Token
	errors  []error
}

func NewParser(source string) *Parser {
	lexer := NewLexer(source)
	return &Parser{
		lexer:   lexer,
		current: lexer.Next(),
	}
}

// Parse reads a whole Spiglet program.
func Parse(source string) (*spiglet.Program, error) {
	return NewParser(source).Parse()
}

func (p *Parser) Parse() (*spiglet.Program, error) {
	prog := &spiglet.Program{}

	if p.consume(MAIN, "expected 'MAIN'") {
		body := p.stmtList()
		p.consume(END, "expected 'END' after MAIN body")
		prog.Main = &spiglet.Procedure{Name: spiglet.MainName, Body: body}
	}

	for !p.check(EOF) {
		if proc := p.procedure(); proc != nil {
			prog.Procedures = append(prog.Procedures, proc)
			continue
		}
		// skip to the next procedure header
		for !p.check(EOF) && !p.check(END) {
			p.advance()
		}
		if p.check(END) {
			p.advance()
		}
	}

	if len(p.errors) > 0 {
		return nil, fmt.Errorf("parse errors: %w", multierr.Combine(p.errors...))
	}

	logger.LogParsing(len(prog.Procedures) + 1)
	return prog, nil
}

func (p *Parser) procedure() *spiglet.Procedure {
	if !p.check(IDENT) {
		p.error(fmt.Sprintf("expected procedure name, found %v", p.current))
		return nil
	}
	name := p.advance().Lexeme

	if !p.consume(LBRACKET, "expected '['") {
		return nil
	}
	params, ok := p.integer()
	if !ok {
		return nil
	}
	if !p.consume(RBRACKET, "expected ']'") {
		return nil
	}
	if !p.consume(BEGIN, "expected 'BEGIN'") {
		return nil
	}

	body := p.stmtList()

	if !p.consume(RETURN, "expected 'RETURN'") {
		return nil
	}
	ret, ok := p.simpleExp()
	if !ok {
		return nil
	}
	if !p.consume(END, "expected 'END'") {
		return nil
	}

	return &spiglet.Procedure{
		Name:   name,
		Params: params,
		Body:   body,
		Return: ret,
	}
}

// stmtList parses statements up to END, RETURN or EOF.
func (p *Parser) stmtList() []spiglet.Labeled {
	var body []spiglet.Labeled
	for !p.check(END) && !p.check(RETURN) && !p.check(EOF) {
		var label string
		if p.check(IDENT) {
			label = p.advance().Lexeme
		}

		stmt, ok := p.statement()
		if !ok {
			p.synchronize()
			continue
		}
		body = append(body, spiglet.Labeled{Label: label, Stmt: stmt})
	}
	return body
}

func (p *Parser) statement() (spiglet.Stmt, bool) {
	switch p.advance().Type {
	case NOOP:
		return spiglet.NoOp{}, true

	case ERROR:
		return spiglet.Error{}, true

	case CJUMP:
		cond, ok := p.temp()
		if !ok {
			return nil, false
		}
		target, ok := p.label()
		return spiglet.CJump{Cond: cond, Target: target}, ok

	case JUMP:
		target, ok := p.label()
		return spiglet.Jump{Target: target}, ok

	case HSTORE:
		base, ok := p.temp()
		if !ok {
			return nil, false
		}
		offset, ok := p.integer()
		if !ok {
			return nil, false
		}
		value, ok := p.temp()
		return spiglet.HStore{Base: base, Offset: offset, Value: value}, ok

	case HLOAD:
		dest, ok := p.temp()
		if !ok {
			return nil, false
		}
		base, ok := p.temp()
		if !ok {
			return nil, false
		}
		offset, ok := p.integer()
		return spiglet.HLoad{Dest: dest, Base: base, Offset: offset}, ok

	case MOVE:
		dest, ok := p.temp()
		if !ok {
			return nil, false
		}
		src, ok := p.expression()
		return spiglet.Move{Dest: dest, Src: src}, ok

	case PRINT:
		val, ok := p.simpleExp()
		return spiglet.Print{Value: val}, ok
	}

	p.error("expected statement")
	return nil, false
}

func (p *Parser) expression() (spiglet.Exp, bool) {
	switch p.current.Type {
	case CALL:
		p.advance()
		target, ok := p.simpleExp()
		if !ok {
			return nil, false
		}
		if !p.consume(LPAREN, "expected '('") {
			return nil, false
		}
		var args []spiglet.Temp
		for p.check(TEMP) {
			arg, ok := p.temp()
			if !ok {
				return nil, false
			}
			args = append(args, arg)
		}
		if !p.consume(RPAREN, "expected ')'") {
			return nil, false
		}
		return spiglet.Call{Target: target, Args: args}, true

	case HALLOCATE:
		p.advance()
		size, ok := p.simpleExp()
		return spiglet.HAllocate{Size: size}, ok

	case LT, PLUS, MINUS, TIMES:
		op, _ := spiglet.LookupOp(p.advance().Lexeme)
		left, ok := p.temp()
		if !ok {
			return nil, false
		}
		right, ok := p.simpleExp()
		return spiglet.BinOp{Op: op, Left: left, Right: right}, ok
	}

	return p.simpleExp()
}

func (p *Parser) simpleExp() (spiglet.SimpleExp, bool) {
	switch p.current.Type {
	case TEMP:
		return p.temp()
	case INT:
		n, ok := p.integer()
		return spiglet.IntLit(n), ok
	case IDENT:
		return spiglet.LabelRef(p.advance().Lexeme), true
	}
	p.error(fmt.Sprintf("expected TEMP, integer or label, found %v", p.current))
	return nil, false
}

func (p *Parser) temp() (spiglet.Temp, bool) {
	if !p.consume(TEMP, "expected 'TEMP'") {
		return 0, false
	}
	n, ok := p.integer()
	return spiglet.Temp(n), ok
}

func (p *Parser) label() (string, bool) {
	if !p.check(IDENT) {
		p.error(fmt.Sprintf("expected label, found %v", p.current))
		return "", false
	}
	return p.advance().Lexeme, true
}

func (p *Parser) integer() (int, bool) {
	if !p.check(INT) {
		p.error(fmt.Sprintf("expected integer, found %v", p.current))
		return 0, false
	}
	tok := p.advance()
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		p.errorAt(tok, fmt.Sprintf("integer out of range: %s", tok.Lexeme))
		return 0, false
	}
	return n, true
}

// synchronize skips tokens until something that can start a statement or end a list.
func (p *Parser) synchronize() {
	for {
		switch p.current.Type {
		case EOF, END, RETURN, NOOP, ERROR, CJUMP, JUMP, HSTORE, HLOAD, MOVE, PRINT:
			return
		}
		p.advance()
	}
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

func (p *Parser) advance() Token {
	prev := p.current
	if prev.Type == ILLEGAL {
		p.errorAt(prev, prev.Lexeme)
	}
	if prev.Type != EOF {
		p.current = p.lexer.Next()
	}
	return prev
}

func (p *Parser) consume(typ TokenType, msg string) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	p.error(fmt.Sprintf("%s, found %v", msg, p.current))
	return false
}

func (p *Parser) error(msg string) {
	p.errorAt(p.current, msg)
}

func (p *Parser) errorAt(tok Token, msg string) {
	p.errors = append(p.errors, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: msg})
}

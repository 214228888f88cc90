// Package spiglet defines the Spiglet statement tree consumed by the back end.
//
// Design: closed sum types via unexported marker methods, one struct per
// syntactic form. Consumers walk the tree with exhaustive type switches.
package spiglet

// MainName is the name of the distinguished entry procedure.
const MainName = "MAIN"

// Program is one compilation unit
type Program struct {
	Main       *Procedure
	Procedures []*Procedure
}

// All returns MAIN followed by every procedure in declaration order.
func (p *Program) All() []*Procedure {
	all := make([]*Procedure, 0, len(p.Procedures)+1)
	if p.Main != nil {
		all = append(all, p.Main)
	}
	return append(all, p.Procedures...)
}

// Procedure is a method body. Return is nil for MAIN.
type Procedure struct {
	Name   string
	Params int
	Body   []Labeled
	Return SimpleExp
}

// Labeled is a statement with an optional label in front of it
type Labeled struct {
	Label string
	Stmt  Stmt
}

// Stmt is a Spiglet statement
type Stmt interface {
	stmt()
}

// Exp is the right-hand side of a MOVE
type Exp interface {
	exp()
}

// SimpleExp is a temporary, an integer literal or a label reference
type SimpleExp interface {
	Exp
	simple()
}

// Statements
type NoOp struct{}

func (NoOp) stmt() {}

type Error struct{}

func (Error) stmt() {}

type CJump struct {
	Cond   Temp
	Target string
}

func (CJump) stmt() {}

type Jump struct {
	Target string
}

func (Jump) stmt() {}

type HStore struct {
	Base   Temp
	Offset int
	Value  Temp
}

func (HStore) stmt() {}

type HLoad struct {
	Dest   Temp
	Base   Temp
	Offset int
}

func (HLoad) stmt() {}

type Move struct {
	Dest Temp
	Src  Exp
}

func (Move) stmt() {}

type Print struct {
	Value SimpleExp
}

func (Print) stmt() {}

// Expressions
type Call struct {
	Target SimpleExp
	Args   []Temp
}

func (Call) exp() {}

type HAllocate struct {
	Size SimpleExp
}

func (HAllocate) exp() {}

type BinOp struct {
	Op    Op
	Left  Temp
	Right SimpleExp
}

func (BinOp) exp() {}

// Simple expressions

// Temp is a method-local virtual temporary
type Temp int

func (Temp) exp()    {}
func (Temp) simple() {}

type IntLit int

func (IntLit) exp()    {}
func (IntLit) simple() {}

type LabelRef string

func (LabelRef) exp()    {}
func (LabelRef) simple() {}

// Op is a binary operator
type Op uint8

//go:generate go tool stringer -type Op -linecomment
const (
	OpLT    Op = iota // LT
	OpPlus            // PLUS
	OpMinus           // MINUS
	OpTimes           // TIMES
)

// LookupOp maps an operator keyword to its Op.
func LookupOp(name string) (Op, bool) {
	switch name {
	case "LT":
		return OpLT, true
	case "PLUS":
		return OpPlus, true
	case "MINUS":
		return OpMinus, true
	case "TIMES":
		return OpTimes, true
	}
	return 0, false
}

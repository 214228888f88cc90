package frontend

import (
	"errors"
	"strings"
	"testing"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

const sample = `
// entry
MAIN
  MOVE TEMP 20 HALLOCATE 8
  HSTORE TEMP 20 0 TEMP 21
  MOVE TEMP 22 CALL Fac_Compute (TEMP 20 TEMP 23)
  PRINT TEMP 22
END

/* the factorial */
Fac_Compute [2]
BEGIN
  CJUMP TEMP 1 L2
  MOVE TEMP 24 MINUS TEMP 1 1
  MOVE TEMP 25 CALL Fac_Compute (TEMP 0 TEMP 24)
  MOVE TEMP 26 TIMES TEMP 1 TEMP 25
  JUMP L3
L2 MOVE TEMP 26 1
L3 HLOAD TEMP 27 TEMP 0 4
  NOOP
RETURN TEMP 26
END
`

func TestParseProgram(t *testing.T) {
	prog, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if prog.Main == nil || prog.Main.Name != spiglet.MainName {
		t.Fatalf("expected MAIN procedure, got %+v", prog.Main)
	}
	if len(prog.Main.Body) != 4 {
		t.Errorf("MAIN body: got %d statements, want 4", len(prog.Main.Body))
	}
	if prog.Main.Return != nil {
		t.Errorf("MAIN should have no return expression")
	}

	if len(prog.Procedures) != 1 {
		t.Fatalf("got %d procedures, want 1", len(prog.Procedures))
	}
	fac := prog.Procedures[0]
	if fac.Name != "Fac_Compute" || fac.Params != 2 {
		t.Errorf("got procedure %s [%d], want Fac_Compute [2]", fac.Name, fac.Params)
	}
	if len(fac.Body) != 7 {
		t.Errorf("Fac_Compute body: got %d statements, want 7", len(fac.Body))
	}
	if fac.Body[5].Label != "L2" || fac.Body[6].Label != "L3" {
		t.Errorf("labels not attached: %q %q", fac.Body[5].Label, fac.Body[6].Label)
	}
	if ret, ok := fac.Return.(spiglet.Temp); !ok || ret != 26 {
		t.Errorf("return: got %#v, want TEMP 26", fac.Return)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want spiglet.Stmt
	}{
		{"noop", "NOOP", spiglet.NoOp{}},
		{"error", "ERROR", spiglet.Error{}},
		{"jump", "JUMP L1", spiglet.Jump{Target: "L1"}},
		{"cjump", "CJUMP TEMP 3 L1", spiglet.CJump{Cond: 3, Target: "L1"}},
		{"hstore", "HSTORE TEMP 1 8 TEMP 2", spiglet.HStore{Base: 1, Offset: 8, Value: 2}},
		{"hload", "HLOAD TEMP 1 TEMP 2 4", spiglet.HLoad{Dest: 1, Base: 2, Offset: 4}},
		{"print literal", "PRINT 42", spiglet.Print{Value: spiglet.IntLit(42)}},
		{"move temp", "MOVE TEMP 1 TEMP 2", spiglet.Move{Dest: 1, Src: spiglet.Temp(2)}},
		{"move label", "MOVE TEMP 1 Foo", spiglet.Move{Dest: 1, Src: spiglet.LabelRef("Foo")}},
		{"move binop", "MOVE TEMP 1 LT TEMP 2 7", spiglet.Move{Dest: 1, Src: spiglet.BinOp{Op: spiglet.OpLT, Left: 2, Right: spiglet.IntLit(7)}}},
		{"move halloc", "MOVE TEMP 1 HALLOCATE TEMP 4", spiglet.Move{Dest: 1, Src: spiglet.HAllocate{Size: spiglet.Temp(4)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse("MAIN " + tt.src + " L1 NOOP END")
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			got := prog.Main.Body[0].Stmt
			if !equalStmt(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseCall(t *testing.T) {
	prog, err := Parse("MAIN MOVE TEMP 9 CALL TEMP 5 (TEMP 1 TEMP 2 TEMP 3) END")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	move := prog.Main.Body[0].Stmt.(spiglet.Move)
	call, ok := move.Src.(spiglet.Call)
	if !ok {
		t.Fatalf("expected call, got %T", move.Src)
	}
	if call.Target != spiglet.Temp(5) {
		t.Errorf("call target: got %#v", call.Target)
	}
	if len(call.Args) != 3 || call.Args[0] != 1 || call.Args[2] != 3 {
		t.Errorf("call args: got %v", call.Args)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"missing main", "NOOP END", "expected 'MAIN'"},
		{"missing end", "MAIN NOOP", "expected 'END'"},
		{"bad temp", "MAIN MOVE 3 TEMP 1 END", "expected 'TEMP'"},
		{"bad char", "MAIN NOOP # END", "unexpected character"},
		{"bad procedure", "MAIN NOOP END P [x] BEGIN RETURN 0 END", "expected integer"},
		{"open comment", "MAIN NOOP /* END", "unterminated comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("expected error for %q", tt.src)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Errorf("expected a *SyntaxError in %v", err)
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("MAIN\n  MOVE TEMP 12 Lbl")
	want := []struct {
		typ  TokenType
		line int
		col  int
	}{
		{MAIN, 1, 1},
		{MOVE, 2, 3},
		{TEMP, 2, 8},
		{INT, 2, 13},
		{IDENT, 2, 16},
		{EOF, 2, 19},
	}
	for i, w := range want {
		tok := l.Next()
		if tok.Type != w.typ || tok.Line != w.line || tok.Col != w.col {
			t.Errorf("token %d: got %v at %d:%d, want type %d at %d:%d",
				i, tok, tok.Line, tok.Col, w.typ, w.line, w.col)
		}
	}
}

func equalStmt(a, b spiglet.Stmt) bool {
	am, aok := a.(spiglet.Move)
	bm, bok := b.(spiglet.Move)
	if aok && bok {
		return am.Dest == bm.Dest && am.Src == bm.Src
	}
	return a == b
}

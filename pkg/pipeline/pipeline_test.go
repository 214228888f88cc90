package pipeline

import (
	"context"
	"errors"
	"maps"
	"testing"

	"go.uber.org/multierr"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/codegen/regalloc"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/config"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/frontend"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/kanga"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

const factorial = `
MAIN
  MOVE TEMP 20 HALLOCATE 4
  MOVE TEMP 10 7
  MOVE TEMP 22 CALL Fac_Compute (TEMP 20 TEMP 10)
  PRINT TEMP 22
END

Fac_Compute [2]
BEGIN
  MOVE TEMP 30 LT TEMP 1 1
  CJUMP TEMP 30 L2
  MOVE TEMP 24 1
  JUMP L3
L2 MOVE TEMP 25 MINUS TEMP 1 1
  MOVE TEMP 26 CALL Fac_Compute (TEMP 0 TEMP 25)
  MOVE TEMP 24 TIMES TEMP 1 TEMP 26
L3 NOOP
RETURN TEMP 24
END
`

func run(t *testing.T, src string, cfg config.Config) (*kanga.Unit, error) {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return New(cfg).Run(context.Background(), prog)
}

func TestRunProgram(t *testing.T) {
	unit, err := run(t, factorial, config.Default())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(unit.Methods) != 2 || unit.Methods[0].Name != spiglet.MainName {
		t.Fatalf("methods: got %d, first %q", len(unit.Methods), unit.Methods[0].Name)
	}

	main, _ := unit.Lookup(spiglet.MainName)
	if main.CallParams != 2 || main.StackSlots != 0 {
		t.Errorf("MAIN frame: call params %d, stack slots %d", main.CallParams, main.StackSlots)
	}

	fac, ok := unit.Lookup("Fac_Compute")
	if !ok {
		t.Fatal("Fac_Compute missing")
	}
	if fac.Params != 2 || fac.CallParams != 2 {
		t.Errorf("Fac_Compute frame: params %d, call params %d", fac.Params, fac.CallParams)
	}
	for _, temp := range []int{0, 1, 24, 25, 26, 30} {
		if _, ok := fac.Home(temp); !ok {
			t.Errorf("Fac_Compute TEMP %d has no home", temp)
		}
	}
	if len(fac.Spilled()) != 0 {
		t.Errorf("unexpected spills: %v", fac.Spilled())
	}
}

func TestRunScopesMalformedMethods(t *testing.T) {
	src := `
MAIN
  MOVE TEMP 1 CALL Good (TEMP 2)
  PRINT TEMP 1
END
Good [1]
BEGIN
RETURN TEMP 0
END
Bad [0]
BEGIN
  JUMP Nowhere
RETURN 0
END
Worse [0]
BEGIN
  MOVE TEMP 0 CALL Missing ()
RETURN TEMP 0
END
`
	unit, err := run(t, src, config.Default())
	if unit == nil {
		t.Fatalf("unit dropped for method-scoped errors: %v", err)
	}
	if !errors.Is(err, flow.ErrUnresolvedLabel) || !errors.Is(err, flow.ErrUndeclaredProc) {
		t.Errorf("method errors not reported: %v", err)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("got %d method errors, want 2", n)
	}

	var names []string
	for _, m := range unit.Methods {
		names = append(names, m.Name)
	}
	if len(names) != 2 || names[0] != spiglet.MainName || names[1] != "Good" {
		t.Errorf("methods: got %v, want [MAIN Good]", names)
	}
}

func TestRunRejectsDuplicateLabels(t *testing.T) {
	src := "MAIN L1 NOOP END P [0] BEGIN L1 NOOP RETURN 0 END"
	unit, err := run(t, src, config.Default())
	if unit != nil || !errors.Is(err, flow.ErrDuplicateLabel) {
		t.Errorf("got unit %v, err %v", unit, err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.ScratchRegs = 2
	cfg.SavedRegs = 1

	serial := cfg
	serial.Workers = 1
	parallel := cfg
	parallel.Workers = 8

	a, err := run(t, factorial, serial)
	if err != nil {
		t.Fatal(err)
	}
	b, err := run(t, factorial, parallel)
	if err != nil {
		t.Fatal(err)
	}

	for i, ma := range a.Methods {
		mb := b.Methods[i]
		if ma.Name != mb.Name || ma.StackSlots != mb.StackSlots || ma.CallParams != mb.CallParams {
			t.Errorf("%s: frames differ", ma.Name)
		}
		if !maps.Equal(ma.Locations, mb.Locations) {
			t.Errorf("%s: homes differ: %v vs %v", ma.Name, ma.Locations, mb.Locations)
		}
	}
}

func TestRunUnderPressure(t *testing.T) {
	cfg := config.Default()
	cfg.ScratchRegs = 0
	cfg.SavedRegs = 0

	unit, err := run(t, factorial, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range unit.Methods {
		if len(m.Spilled()) != len(m.Locations) {
			t.Errorf("%s: registers handed out from empty pools", m.Name)
		}
		if m.StackSlots != len(m.Locations) {
			t.Errorf("%s: stack slots %d, spilled temps %d", m.Name, m.StackSlots, len(m.Locations))
		}
		for _, loc := range m.Locations {
			if loc.Kind != regalloc.KindSpilled {
				t.Errorf("%s: %v", m.Name, loc)
			}
		}
	}
}

func TestRunCanceled(t *testing.T) {
	prog, err := frontend.Parse(factorial)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	unit, err := New(config.Default()).Run(ctx, prog)
	if unit != nil || !errors.Is(err, context.Canceled) {
		t.Errorf("got unit %v, err %v", unit, err)
	}
}

func TestRunAbortsOnInvariantViolation(t *testing.T) {
	prog, err := frontend.Parse(factorial)
	if err != nil {
		t.Fatal(err)
	}

	p := New(config.Default())
	p.check = func(method string, g *flow.Graph) error {
		if method == "Fac_Compute" {
			// a dangling vertex with no way to the exit
			g.Vertex(g.Len())
		}
		return flow.Check(method, g)
	}

	unit, err := p.Run(context.Background(), prog)
	if unit != nil {
		t.Errorf("unit kept after an internal error: %v", unit.Methods)
	}
	var inv *flow.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if inv.Method != "Fac_Compute" || inv.Phase != "flow graph" {
		t.Errorf("got %v", inv)
	}
}

package flow

import (
	"fmt"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

// Result is the output of Build for one method
type Result struct {
	Graph      *Graph
	CallParams int // max argument count over the method's call sites
	Calls      int
}

// builder holds the traversal state of one Build call
type builder struct {
	unit *Unit
	proc *spiglet.Procedure
	g    *Graph
	cur  *Vertex
	vid  int

	callParams int
	calls      int
}

// Build converts proc's statement list into a flow graph with Def/Use facts.
// Labels are resolved through unit, which must already cover the whole
// program. Build keeps no state between calls and may run concurrently for
// different procedures of the same unit.
func Build(unit *Unit, proc *spiglet.Procedure) (*Result, error) {
	b := &builder{
		unit: unit,
		proc: proc,
		g:    New(),
	}

	// begin
	b.g.AddEdge(0, 1)
	b.vid = 1

	for _, line := range proc.Body {
		if err := b.stmt(line.Stmt); err != nil {
			return nil, err
		}
	}

	if proc.Return != nil {
		b.cur = b.g.Vertex(b.vid)
		if err := b.simple(proc.Return); err != nil {
			return nil, err
		}
		// end
		b.g.AddEdge(b.vid, b.vid+1)
		b.vid++
	}
	b.g.Vertex(b.vid)
	b.g.Exit = b.vid

	logger.LogFlowGraph(proc.Name, b.g.Len(), b.g.EdgeCount())

	return &Result{
		Graph:      b.g,
		CallParams: b.callParams,
		Calls:      b.calls,
	}, nil
}

func (b *builder) stmt(stmt spiglet.Stmt) error {
	b.cur = b.g.Vertex(b.vid)
	if err := b.visit(stmt); err != nil {
		return err
	}
	b.vid++
	return nil
}

func (b *builder) visit(stmt spiglet.Stmt) error {
	switch s := stmt.(type) {
	case spiglet.NoOp, spiglet.Error:
		b.fallThrough()

	case spiglet.CJump:
		b.use(s.Cond)
		target, err := b.unit.Resolve(b.proc.Name, s.Target)
		if err != nil {
			return b.malformed("CJUMP "+s.Target, err)
		}
		b.fallThrough()
		b.g.AddEdge(b.vid, target)

	case spiglet.Jump:
		target, err := b.unit.Resolve(b.proc.Name, s.Target)
		if err != nil {
			return b.malformed("JUMP "+s.Target, err)
		}
		b.g.AddEdge(b.vid, target)

	case spiglet.HStore:
		b.use(s.Base)
		b.use(s.Value)
		b.fallThrough()

	case spiglet.HLoad:
		b.def(s.Dest)
		b.use(s.Base)
		b.fallThrough()

	case spiglet.Move:
		b.def(s.Dest)
		b.fallThrough()
		return b.exp(s.Src)

	case spiglet.Print:
		b.fallThrough()
		return b.simple(s.Value)

	default:
		return b.malformed(fmt.Sprintf("statement %T", stmt), fmt.Errorf("unsupported statement type"))
	}
	return nil
}

func (b *builder) exp(exp spiglet.Exp) error {
	switch e := exp.(type) {
	case spiglet.Call:
		if err := b.simple(e.Target); err != nil {
			return err
		}
		if ref, ok := e.Target.(spiglet.LabelRef); ok {
			if _, declared := b.unit.Procs[string(ref)]; !declared {
				return b.malformed("CALL "+string(ref), ErrUndeclaredProc)
			}
		}
		// every argument is materialized at the call
		for _, arg := range e.Args {
			b.use(arg)
		}
		b.calls++
		b.callParams = max(b.callParams, len(e.Args))
		return nil

	case spiglet.HAllocate:
		return b.simple(e.Size)

	case spiglet.BinOp:
		b.use(e.Left)
		return b.simple(e.Right)

	case spiglet.SimpleExp:
		return b.simple(e)
	}
	return b.malformed(fmt.Sprintf("expression %T", exp), fmt.Errorf("unsupported expression type"))
}

// simple records a use only when the operand is a temp
func (b *builder) simple(exp spiglet.SimpleExp) error {
	switch e := exp.(type) {
	case spiglet.Temp:
		b.use(e)
	case spiglet.IntLit, spiglet.LabelRef:
	default:
		return b.malformed(fmt.Sprintf("operand %T", exp), fmt.Errorf("unsupported simple expression type"))
	}
	return nil
}

func (b *builder) fallThrough() {
	b.g.AddEdge(b.vid, b.vid+1)
}

func (b *builder) def(t spiglet.Temp) {
	b.cur.Def.Insert(int(t))
}

func (b *builder) use(t spiglet.Temp) {
	b.cur.Use.Insert(int(t))
}

func (b *builder) malformed(construct string, err error) error {
	return &MalformedError{
		Method:    b.proc.Name,
		Construct: fmt.Sprintf("%s at vertex %d", construct, b.vid),
		Err:       err,
	}
}

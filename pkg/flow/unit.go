package flow

import (
	"fmt"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

// LabelPos is the vertex a label resolves to inside its owning procedure
type LabelPos struct {
	Proc   string
	Vertex int
}

// Unit is the read-only context shared by every method of one compilation
// unit: labels and declared procedures. It is populated once by NewUnit
// before any graph is built.
type Unit struct {
	Labels map[string]LabelPos
	Procs  map[string]int // name -> declared parameter count
}

// StmtVertex is the vertex index of the i'th statement of a body
func StmtVertex(i int) int {
	return i + 1
}

// NewUnit scans every procedure and resolves every label.
func NewUnit(prog *spiglet.Program) (*Unit, error) {
	u := &Unit{
		Labels: make(map[string]LabelPos),
		Procs:  make(map[string]int),
	}

	for _, proc := range prog.All() {
		if _, dup := u.Procs[proc.Name]; dup {
			return nil, &MalformedError{Method: proc.Name, Construct: "procedure declaration", Err: ErrDuplicateProc}
		}
		u.Procs[proc.Name] = proc.Params

		for i, line := range proc.Body {
			if line.Label == "" {
				continue
			}
			if prev, dup := u.Labels[line.Label]; dup {
				return nil, &MalformedError{
					Method:    proc.Name,
					Construct: fmt.Sprintf("label %s (first defined in %s)", line.Label, prev.Proc),
					Err:       ErrDuplicateLabel,
				}
			}
			u.Labels[line.Label] = LabelPos{Proc: proc.Name, Vertex: StmtVertex(i)}
		}
	}

	return u, nil
}

// Resolve returns the vertex of label within proc
func (u *Unit) Resolve(proc, label string) (int, error) {
	pos, ok := u.Labels[label]
	if !ok {
		return 0, ErrUnresolvedLabel
	}
	if pos.Proc != proc {
		return 0, ErrForeignLabel
	}
	return pos.Vertex, nil
}

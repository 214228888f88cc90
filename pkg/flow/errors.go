package flow

import (
	"errors"
	"fmt"
	"strings"
)

// Malformed-input causes. They indicate a front-end defect, not a property of
// valid programs.
var (
	ErrUnresolvedLabel = errors.New("unresolved label")
	ErrForeignLabel    = errors.New("label belongs to another procedure")
	ErrUndeclaredProc  = errors.New("undeclared procedure")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrDuplicateProc   = errors.New("duplicate procedure")
)

// MalformedError reports invalid input for one method. Analysis of that
// method stops; sibling methods are unaffected.
type MalformedError struct {
	Method    string
	Construct string
	Err       error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("method %s: %s: %v", e.Method, e.Construct, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Violation is one broken internal invariant
type Violation struct {
	Vertex  int
	Message string
}

func (v Violation) String() string {
	if v.Vertex < 0 {
		return v.Message
	}
	return fmt.Sprintf("vertex %d: %s", v.Vertex, v.Message)
}

// InvariantError reports a logic error in graph construction, dataflow or
// allocation. It aborts the whole compilation unit.
type InvariantError struct {
	Method     string
	Phase      string
	Violations []Violation
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "internal error in %s (method %s):", e.Phase, e.Method)
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.String())
	}
	return b.String()
}

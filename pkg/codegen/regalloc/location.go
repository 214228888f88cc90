package regalloc

import "fmt"

// Kind says where a temp lives
type Kind uint8

//go:generate go tool stringer -type Kind -linecomment
const (
	KindNone    Kind = iota // none
	KindScratch             // scratch
	KindSaved               // saved
	KindSpilled             // spilled
)

// Location is the home of a temp: a register index within its pool or a
// spill slot number.
type Location struct {
	Kind  Kind
	Index int
}

// IsRegister reports whether the location is a physical register
func (l Location) IsRegister() bool {
	return l.Kind == KindScratch || l.Kind == KindSaved
}

func (l Location) String() string {
	switch l.Kind {
	case KindScratch:
		return fmt.Sprintf("t%d", l.Index)
	case KindSaved:
		return fmt.Sprintf("s%d", l.Index)
	case KindSpilled:
		return fmt.Sprintf("SPILLEDARG %d", l.Index)
	}
	return l.Kind.String()
}

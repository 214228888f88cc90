// Package kanga holds the per-method analysis results handed to Kanga code
// emission: register and spill homes, live intervals and frame sizes.
package kanga

import (
	"github.com/GriffinCanCode/spiglet-compiler/pkg/codegen/regalloc"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
)

// Method is one compiled procedure
type Method struct {
	Name       string
	Params     int
	StackSlots int // local stack slots; one per spilled temp
	CallParams int // outgoing argument staging slots
	Locations  map[int]regalloc.Location
	Intervals  map[int]*regalloc.Interval
	Graph      *flow.Graph

	names *regalloc.Config
}

// NewMethod creates an empty record for a declared procedure
func NewMethod(name string, params int, names *regalloc.Config) *Method {
	return &Method{
		Name:      name,
		Params:    params,
		Locations: make(map[int]regalloc.Location),
		Intervals: make(map[int]*regalloc.Interval),
		names:     names,
	}
}

// Record copies the outcome of a finished allocation into m
func (m *Method) Record(a *regalloc.Allocator, callParams int) {
	m.Graph = a.Graph()
	m.CallParams = callParams
	m.StackSlots = a.SpillSlots()
	for _, iv := range a.Intervals() {
		m.Locations[iv.Temp] = iv.Loc
		m.Intervals[iv.Temp] = iv
	}
}

// Scratch maps temps held in scratch registers to register names
func (m *Method) Scratch() map[int]string {
	return m.registers(regalloc.KindScratch)
}

// Saved maps temps held in saved registers to register names
func (m *Method) Saved() map[int]string {
	return m.registers(regalloc.KindSaved)
}

// Spilled maps spilled temps to their spill slot designation
func (m *Method) Spilled() map[int]string {
	return m.registers(regalloc.KindSpilled)
}

func (m *Method) registers(kind regalloc.Kind) map[int]string {
	out := make(map[int]string)
	for t, loc := range m.Locations {
		if loc.Kind != kind {
			continue
		}
		out[t] = m.name(loc)
	}
	return out
}

func (m *Method) name(loc regalloc.Location) string {
	if m.names != nil {
		switch loc.Kind {
		case regalloc.KindScratch:
			return m.names.Scratch[loc.Index]
		case regalloc.KindSaved:
			return m.names.Saved[loc.Index]
		}
	}
	return loc.String()
}

// Home returns the rendered location of temp
func (m *Method) Home(temp int) (string, bool) {
	loc, ok := m.Locations[temp]
	if !ok {
		return "", false
	}
	return m.name(loc), true
}

// Unit is the analysed compilation unit
type Unit struct {
	Methods []*Method // program order, MAIN first
	byName  map[string]*Method
}

// NewUnit indexes methods by name
func NewUnit(methods []*Method) *Unit {
	u := &Unit{
		Methods: methods,
		byName:  make(map[string]*Method, len(methods)),
	}
	for _, m := range methods {
		u.byName[m.Name] = m
	}
	return u
}

// Lookup returns the method called name
func (u *Unit) Lookup(name string) (*Method, bool) {
	m, ok := u.byName[name]
	return m, ok
}

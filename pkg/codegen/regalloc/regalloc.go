// Package regalloc implements linear scan register allocation over the live
// intervals of a method's flow graph.
//
// Design: Poletto & Sarkar's linear scan with two register pools. Scratch
// registers are preferred, saved registers are the fallback, and when both
// are exhausted the interval reaching furthest is spilled. Spill slots are
// numbered monotonically and never reused within a method.
package regalloc

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
)

// Config holds the register pools available to the allocator
type Config struct {
	Scratch []string // caller-saved, tried first
	Saved   []string // callee-saved
}

// DefaultConfig returns the Kanga register file: t0-t9 and s0-s7.
func DefaultConfig() *Config {
	cfg := &Config{}
	for i := 0; i < 10; i++ {
		cfg.Scratch = append(cfg.Scratch, fmt.Sprintf("t%d", i))
	}
	for i := 0; i < 8; i++ {
		cfg.Saved = append(cfg.Saved, fmt.Sprintf("s%d", i))
	}
	return cfg
}

// Limit returns a copy of cfg with at most scratch and saved registers.
func (c *Config) Limit(scratch, saved int) *Config {
	return &Config{
		Scratch: slices.Clone(c.Scratch[:min(max(scratch, 0), len(c.Scratch))]),
		Saved:   slices.Clone(c.Saved[:min(max(saved, 0), len(c.Saved))]),
	}
}

// Allocator performs linear scan register allocation for one method
type Allocator struct {
	method        string
	g             *flow.Graph
	params        int
	intervals     []*Interval
	byTemp        map[int]*Interval
	active        []*Interval
	pools         []*pool
	nextSpillSlot int
}

// NewAllocator creates an allocator for the method whose liveness has
// already been computed on g.
func NewAllocator(method string, g *flow.Graph, params int, cfg *Config) *Allocator {
	return &Allocator{
		method: method,
		g:      g,
		params: params,
		byTemp: make(map[int]*Interval),
		pools: []*pool{
			newPool(KindScratch, cfg.Scratch),
			newPool(KindSaved, cfg.Saved),
		},
	}
}

// Allocate assigns every temp a register or a spill slot
func (a *Allocator) Allocate() error {
	logger.Debug("Starting register allocation", "method", a.method)

	intervals, err := BuildIntervals(a.method, a.g, a.params)
	if err != nil {
		return err
	}
	a.intervals = intervals
	for _, iv := range intervals {
		a.byTemp[iv.Temp] = iv
	}

	logger.Debug("Computed live intervals", "method", a.method, "count", len(intervals))

	for _, iv := range intervals {
		a.allocateInterval(iv)
	}

	logger.Debug("Linear scan complete",
		"method", a.method,
		"spilled", a.nextSpillSlot)

	return nil
}

// allocateInterval gives interval a register, or spills
func (a *Allocator) allocateInterval(interval *Interval) {
	a.expireOldIntervals(interval)

	for _, p := range a.pools {
		if idx, ok := p.take(); ok {
			interval.Loc = Location{Kind: p.kind, Index: idx}
			a.active = append(a.active, interval)
			a.sortActiveByEnd()
			logger.Debug("Allocated register", "temp", interval.Temp, "reg", a.Name(interval.Loc))
			return
		}
	}

	a.spillAtInterval(interval)
}

// expireOldIntervals retires active intervals that ended before interval starts
func (a *Allocator) expireOldIntervals(interval *Interval) {
	newActive := a.active[:0]
	for _, active := range a.active {
		if active.End >= interval.Start {
			newActive = append(newActive, active)
			continue
		}
		a.pool(active.Loc.Kind).release(active.Loc.Index)
		logger.Debug("Freed register", "reg", a.Name(active.Loc))
	}
	a.active = newActive
}

// spillAtInterval spills whichever of interval and the active intervals
// reaches furthest.
func (a *Allocator) spillAtInterval(interval *Interval) {
	if len(a.active) == 0 {
		a.spill(interval)
		return
	}

	victim := a.active[len(a.active)-1]
	if victim.End > interval.End {
		interval.Loc = victim.Loc
		a.spill(victim)
		a.active[len(a.active)-1] = interval
		a.sortActiveByEnd()
		return
	}

	a.spill(interval)
}

func (a *Allocator) spill(interval *Interval) {
	interval.Loc = Location{Kind: KindSpilled, Index: a.nextSpillSlot}
	a.nextSpillSlot++
	logger.Debug("Spilled interval", "temp", interval.Temp, "slot", interval.Loc.Index)
}

// sortActiveByEnd keeps the furthest-reaching interval last. Ties go to the
// larger temp so that spill choice is deterministic.
func (a *Allocator) sortActiveByEnd() {
	slices.SortFunc(a.active, func(x, y *Interval) int {
		if c := cmp.Compare(x.End, y.End); c != 0 {
			return c
		}
		return cmp.Compare(x.Temp, y.Temp)
	})
}

func (a *Allocator) pool(kind Kind) *pool {
	for _, p := range a.pools {
		if p.kind == kind {
			return p
		}
	}
	panic(fmt.Sprintf("regalloc: no pool for %v", kind))
}

// Location returns the home of temp
func (a *Allocator) Location(temp int) (Location, bool) {
	iv, ok := a.byTemp[temp]
	if !ok {
		return Location{}, false
	}
	return iv.Loc, true
}

// Name renders loc with the configured register names
func (a *Allocator) Name(loc Location) string {
	if !loc.IsRegister() {
		return loc.String()
	}
	return a.pool(loc.Kind).names[loc.Index]
}

// Intervals returns the intervals in allocation order
func (a *Allocator) Intervals() []*Interval {
	return a.intervals
}

// SpillSlots returns the number of spill slots used
func (a *Allocator) SpillSlots() int {
	return a.nextSpillSlot
}

// Graph returns the flow graph being allocated
func (a *Allocator) Graph() *flow.Graph {
	return a.g
}

// pool is one register class; the lowest free index is handed out first
type pool struct {
	kind  Kind
	names []string
	used  []bool
}

func newPool(kind Kind, names []string) *pool {
	return &pool{
		kind:  kind,
		names: names,
		used:  make([]bool, len(names)),
	}
}

func (p *pool) take() (int, bool) {
	for i, used := range p.used {
		if !used {
			p.used[i] = true
			return i, true
		}
	}
	return 0, false
}

func (p *pool) release(i int) {
	p.used[i] = false
}

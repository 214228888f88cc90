// Package regalloc - Interference graph over live intervals
// Design: two temps interfere when their intervals share a vertex; a valid
// assignment never gives interfering temps the same register.
package regalloc

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
)

// InterferenceGraph represents temp interference
type InterferenceGraph struct {
	nodes map[int]*IGNode
	edges map[int]map[int]bool
}

// IGNode represents a node in the interference graph
type IGNode struct {
	interval  *Interval
	neighbors map[int]bool
	degree    int
}

// BuildInterference constructs the interference graph of intervals
func BuildInterference(intervals []*Interval) *InterferenceGraph {
	ig := newInterferenceGraph()

	sorted := slices.Clone(intervals)
	slices.SortFunc(sorted, func(x, y *Interval) int {
		if c := cmp.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return cmp.Compare(x.Temp, y.Temp)
	})

	for i, iv := range sorted {
		ig.addNode(iv)
		for _, other := range sorted[i+1:] {
			if other.Start > iv.End {
				break
			}
			if iv.Overlaps(other) {
				ig.addEdge(iv, other)
			}
		}
	}
	return ig
}

// Verify checks that an allocation is complete and conflict-free: every
// interval has a home, no two interfering temps share a register and no
// spill slot holds two temps.
func Verify(method string, intervals []*Interval) error {
	var violations []flow.Violation
	ig := BuildInterference(intervals)
	slots := make(map[int]int)

	for _, iv := range intervals {
		switch iv.Loc.Kind {
		case KindNone:
			violations = append(violations, flow.Violation{
				Vertex:  iv.Start,
				Message: fmt.Sprintf("TEMP %d has no location", iv.Temp),
			})
		case KindSpilled:
			if prev, dup := slots[iv.Loc.Index]; dup {
				violations = append(violations, flow.Violation{
					Vertex:  iv.Start,
					Message: fmt.Sprintf("TEMP %d and TEMP %d share %v", prev, iv.Temp, iv.Loc),
				})
			}
			slots[iv.Loc.Index] = iv.Temp
		}
	}

	for _, iv := range intervals {
		if !iv.Loc.IsRegister() {
			continue
		}
		for _, n := range ig.Neighbors(iv.Temp) {
			// report each pair once
			if n <= iv.Temp {
				continue
			}
			other := ig.nodes[n].interval
			if other.Loc == iv.Loc {
				violations = append(violations, flow.Violation{
					Vertex:  max(iv.Start, other.Start),
					Message: fmt.Sprintf("TEMP %d and TEMP %d both live in %v", iv.Temp, n, iv.Loc),
				})
			}
		}
	}

	if len(violations) > 0 {
		return &flow.InvariantError{Method: method, Phase: "register allocation", Violations: violations}
	}
	return nil
}

// Interferes reports whether temps a and b are live at a common vertex
func (ig *InterferenceGraph) Interferes(a, b int) bool {
	return ig.edges[a][b]
}

// Neighbors returns the temps interfering with temp, ascending
func (ig *InterferenceGraph) Neighbors(temp int) []int {
	node, ok := ig.nodes[temp]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(node.neighbors))
	for n := range node.neighbors {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Degree returns the number of temps interfering with temp
func (ig *InterferenceGraph) Degree(temp int) int {
	if node, ok := ig.nodes[temp]; ok {
		return node.degree
	}
	return 0
}

// EdgeCount returns the number of interference edges
func (ig *InterferenceGraph) EdgeCount() int {
	count := 0
	for _, edges := range ig.edges {
		count += len(edges)
	}
	return count / 2 // Each edge counted twice
}

func newInterferenceGraph() *InterferenceGraph {
	return &InterferenceGraph{
		nodes: make(map[int]*IGNode),
		edges: make(map[int]map[int]bool),
	}
}

func (ig *InterferenceGraph) addNode(iv *Interval) {
	if _, exists := ig.nodes[iv.Temp]; !exists {
		ig.nodes[iv.Temp] = &IGNode{
			interval:  iv,
			neighbors: make(map[int]bool),
		}
		ig.edges[iv.Temp] = make(map[int]bool)
	}
}

func (ig *InterferenceGraph) addEdge(a, b *Interval) {
	ig.addNode(a)
	ig.addNode(b)

	if !ig.edges[a.Temp][b.Temp] {
		ig.edges[a.Temp][b.Temp] = true
		ig.edges[b.Temp][a.Temp] = true
		ig.nodes[a.Temp].neighbors[b.Temp] = true
		ig.nodes[b.Temp].neighbors[a.Temp] = true
		ig.nodes[a.Temp].degree++
		ig.nodes[b.Temp].degree++
	}
}

// Package liveness computes live-in and live-out temp sets over a flow graph.
//
// Design: classic backward dataflow, iterated to a fixed point.
//
//	out(v) = ∪ in(s) for s in succ(v)
//	in(v)  = use(v) ∪ (out(v) − def(v))
//
// Sets only grow, so the iteration terminates.
package liveness

import (
	"golang.org/x/tools/container/intsets"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
)

// Stats describes one analysis run
type Stats struct {
	Iterations int // full passes, including the final one that changed nothing
	Vertices   int
	Temps      int
}

// Analyze fills LiveIn and LiveOut of every vertex in g. Any previous live
// sets are discarded first.
func Analyze(g *flow.Graph) Stats {
	vertices := g.Vertices()
	for _, v := range vertices {
		v.LiveIn.Clear()
		v.LiveOut.Clear()
	}

	var in intsets.Sparse
	iterations := 0
	changed := true
	for changed {
		changed = false
		iterations++

		// reverse index order converges fastest for a backward problem
		for i := len(vertices) - 1; i >= 0; i-- {
			v := vertices[i]

			for _, s := range v.Succs {
				if v.LiveOut.UnionWith(&g.Vertex(s).LiveIn) {
					changed = true
				}
			}

			in.Difference(&v.LiveOut, &v.Def)
			in.UnionWith(&v.Use)
			if v.LiveIn.UnionWith(&in) {
				changed = true
			}
		}
	}

	return Stats{
		Iterations: iterations,
		Vertices:   len(vertices),
		Temps:      g.Temps().Len(),
	}
}

// LiveAt reports whether temp is live on entry to vertex i
func LiveAt(g *flow.Graph, temp, i int) bool {
	return g.Vertex(i).LiveIn.Has(temp)
}

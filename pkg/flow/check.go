package flow

// Check validates the structural invariants of a built graph: every vertex
// other than the exit has a successor, the exit has none, and every edge
// lands on a vertex of the graph. All violations are reported together.
func Check(method string, g *Graph) error {
	var violations []Violation
	n := g.Len()

	if g.Exit <= g.Entry || g.Exit >= n {
		violations = append(violations, Violation{Vertex: -1, Message: "exit vertex out of range"})
	}

	for _, v := range g.Vertices() {
		if v.Index == g.Exit {
			if len(v.Succs) > 0 {
				violations = append(violations, Violation{Vertex: v.Index, Message: "exit vertex has successors"})
			}
			continue
		}
		if len(v.Succs) == 0 {
			violations = append(violations, Violation{Vertex: v.Index, Message: "no successor before exit"})
		}
		for _, s := range v.Succs {
			if s < 0 || s >= n {
				violations = append(violations, Violation{Vertex: v.Index, Message: "edge to unknown vertex"})
			}
		}
	}

	if len(violations) > 0 {
		return &InvariantError{Method: method, Phase: "flow graph", Violations: violations}
	}
	return nil
}

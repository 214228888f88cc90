// Package flow builds per-method control-flow graphs over Spiglet statements.
//
// Design: one vertex per program point, indexed in statement order with the
// method entry at 0. Vertices carry Def/Use facts and the live sets that the
// liveness pass fills in. Edges are append-only.
package flow

import (
	"slices"

	"golang.org/x/tools/container/intsets"
)

// Vertex is one program point
type Vertex struct {
	Index   int
	Def     intsets.Sparse // temps written here
	Use     intsets.Sparse // temps read here
	LiveIn  intsets.Sparse
	LiveOut intsets.Sparse
	Succs   []int
	Preds   []int
}

// Graph is the flow graph of one method
type Graph struct {
	vertices []*Vertex
	Entry    int
	Exit     int
}

// New creates an empty graph with its entry at vertex 0
func New() *Graph {
	g := &Graph{}
	g.Vertex(0)
	return g
}

// Vertex returns the vertex at index i, creating it (and any missing lower
// indices) on demand.
func (g *Graph) Vertex(i int) *Vertex {
	for len(g.vertices) <= i {
		g.vertices = append(g.vertices, &Vertex{Index: len(g.vertices)})
	}
	return g.vertices[i]
}

// AddEdge registers the edge from -> to. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to int) {
	src := g.Vertex(from)
	dst := g.Vertex(to)
	if slices.Contains(src.Succs, to) {
		return
	}
	src.Succs = append(src.Succs, to)
	dst.Preds = append(dst.Preds, from)
}

// Len returns the number of vertices
func (g *Graph) Len() int {
	return len(g.vertices)
}

// Vertices returns every vertex in index order
func (g *Graph) Vertices() []*Vertex {
	return g.vertices
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	n := 0
	for _, v := range g.vertices {
		n += len(v.Succs)
	}
	return n
}

// Temps returns every temp that is defined or used somewhere in the graph
func (g *Graph) Temps() *intsets.Sparse {
	var all intsets.Sparse
	for _, v := range g.vertices {
		all.UnionWith(&v.Def)
		all.UnionWith(&v.Use)
	}
	return &all
}

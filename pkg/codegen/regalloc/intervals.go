package regalloc

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/tools/container/intsets"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
)

// Interval is the inclusive range of vertices over which a temp must keep
// its home
type Interval struct {
	Temp  int
	Start int // first vertex where the temp is defined or live-in
	End   int // last vertex where the temp is defined, used or live-out
	Loc   Location
}

// Overlaps reports whether the two intervals share a vertex
func (iv *Interval) Overlaps(other *Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// BuildIntervals derives one interval per temp from the liveness sets of g.
// Parameters (temps 0..params-1) start at the entry vertex whether or not
// they are referenced. A temp that is written here and never read gets a
// degenerate interval at its definition. The result is sorted by start,
// then by temp.
func BuildIntervals(method string, g *flow.Graph, params int) ([]*Interval, error) {
	byTemp := make(map[int]*Interval)
	var order []*Interval

	get := func(t, at int) *Interval {
		iv, ok := byTemp[t]
		if !ok {
			iv = &Interval{Temp: t, Start: at, End: at}
			byTemp[t] = iv
			order = append(order, iv)
		}
		return iv
	}

	for t := 0; t < params; t++ {
		get(t, g.Entry)
	}

	var starts, ends intsets.Sparse
	var buf []int
	for _, v := range g.Vertices() {
		starts.Union(&v.Def, &v.LiveIn)
		ends.Union(&v.Use, &v.LiveOut)
		ends.UnionWith(&v.Def)

		// vertices are visited in index order, so the first sighting is the
		// start and the last one is the end
		buf = starts.AppendTo(buf[:0])
		for _, t := range buf {
			get(t, v.Index)
		}
		buf = ends.AppendTo(buf[:0])
		for _, t := range buf {
			get(t, v.Index).End = v.Index
		}
	}

	var violations []flow.Violation
	for _, iv := range order {
		if iv.Start > iv.End {
			violations = append(violations, flow.Violation{
				Vertex:  iv.Start,
				Message: fmt.Sprintf("interval of TEMP %d ends at %d", iv.Temp, iv.End),
			})
		}
	}
	if len(violations) > 0 {
		return nil, &flow.InvariantError{Method: method, Phase: "live intervals", Violations: violations}
	}

	slices.SortFunc(order, func(x, y *Interval) int {
		if c := cmp.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return cmp.Compare(x.Temp, y.Temp)
	})
	return order, nil
}

package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// AssertTwoPathCounts recomputes every two-path counter by brute force and
// fails the test on any mismatch with the incrementally maintained tables.
func AssertTwoPathCounts(t *testing.T, g *graph.Graph) {
	t.Helper()
	n := g.NumNodes()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.Directed() {
				mix, in, out := 0, 0, 0
				for k := 0; k < n; k++ {
					if g.IsArc(i, k) && g.IsArc(k, j) {
						mix++
					}
					if g.IsArc(k, i) && g.IsArc(k, j) {
						in++
					}
					if g.IsArc(i, k) && g.IsArc(j, k) {
						out++
					}
				}
				if got := g.MixTwoPaths(i, j); got != mix {
					t.Fatalf("mixTwoPath[%d,%d] = %d, want %d", i, j, got, mix)
				}
				if got := g.InTwoPaths(i, j); got != in {
					t.Fatalf("inTwoPath[%d,%d] = %d, want %d", i, j, got, in)
				}
				if got := g.OutTwoPaths(i, j); got != out {
					t.Fatalf("outTwoPath[%d,%d] = %d, want %d", i, j, got, out)
				}
			} else {
				tp := 0
				for k := 0; k < n; k++ {
					if g.IsArc(i, k) && g.IsArc(k, j) {
						tp++
					}
				}
				if got := g.TwoPaths(i, j); got != tp {
					t.Fatalf("twoPath[%d,%d] = %d, want %d", i, j, got, tp)
				}
			}
		}
	}
}

// AssertArcListConsistent checks that the flat arc list matches the arc set
// and that the reverse adjacency is the exact transpose of the forward one.
func AssertArcListConsistent(t *testing.T, g *graph.Graph) {
	t.Helper()
	seen := make(map[graph.Arc]bool, g.NumArcs())
	for k := 0; k < g.NumArcs(); k++ {
		a := g.Arc(k)
		if !g.IsArc(a.I, a.J) {
			t.Fatalf("allarcs[%d] = (%d,%d) is not a present arc", k, a.I, a.J)
		}
		if seen[a] {
			t.Fatalf("allarcs contains (%d,%d) twice", a.I, a.J)
		}
		seen[a] = true
	}

	outCount, inCount := 0, 0
	for i := 0; i < g.NumNodes(); i++ {
		outCount += g.OutDegree(i)
		for _, j := range g.OutNeighbors(i) {
			if !containsInt(g.InNeighbors(j), i) {
				t.Fatalf("arc (%d,%d) missing from reverse list", i, j)
			}
		}
		if g.Directed() {
			inCount += g.InDegree(i)
			for _, j := range g.InNeighbors(i) {
				if !containsInt(g.OutNeighbors(j), i) {
					t.Fatalf("reverse arc (%d,%d) missing from forward list", j, i)
				}
			}
		}
	}
	if g.Directed() {
		if outCount != g.NumArcs() || inCount != g.NumArcs() {
			t.Fatalf("degree totals (out %d, in %d) disagree with %d arcs", outCount, inCount, g.NumArcs())
		}
	}
}

// AssertFloatNear fails unless got is within tol of want.
func AssertFloatNear(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %g, want %g (tol %g)", what, got, want, tol)
	}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

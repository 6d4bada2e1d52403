package graph

import (
	"math/rand/v2"
	"testing"

	"pgregory.net/rapid"
)

// bruteCounts recomputes every two-path pattern for one pair from the arc
// set.
func bruteCounts(g *Graph, i, j int) (mix, in, out int) {
	n := g.NumNodes()
	for k := 0; k < n; k++ {
		if g.IsArc(i, k) && g.IsArc(k, j) {
			mix++
		}
		if g.Directed() {
			if g.IsArc(k, i) && g.IsArc(k, j) {
				in++
			}
			if g.IsArc(i, k) && g.IsArc(j, k) {
				out++
			}
		}
	}
	return mix, in, out
}

func checkAllCounts(t *testing.T, g *Graph) {
	t.Helper()
	n := g.NumNodes()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			mix, in, out := bruteCounts(g, i, j)
			if g.Directed() {
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
				if got := g.TwoPaths(i, j); got != mix {
					t.Fatalf("twoPath[%d,%d] = %d, want %d", i, j, got, mix)
				}
			}
		}
	}
}

// Random insert/remove sequences keep every counter equal to a brute-force
// recount, for all four table/direction combinations.
func TestTwoPathCountersRandomOps(t *testing.T) {
	cases := []struct {
		name     string
		directed bool
		sparse   bool
	}{
		{"directed dense", true, false},
		{"directed sparse", true, true},
		{"undirected dense", false, false},
		{"undirected sparse", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			const (
				n     = 50
				ops   = 10000
				check = 250 // brute-force verify cadence
			)
			var gopts []Option
			if tc.sparse {
				gopts = append(gopts, WithSparseTwoPaths())
			}
			g := New(n, tc.directed, gopts...)
			rng := rand.New(rand.NewPCG(42, uint64(len(tc.name))))
			for op := 1; op <= ops; op++ {
				i, j := rng.IntN(n), rng.IntN(n)
				if i == j {
					continue
				}
				if g.IsArc(i, j) {
					mustRemove(t, g, i, j)
				} else {
					mustInsert(t, g, i, j)
				}
				if op%check == 0 {
					checkAllCounts(t, g)
				}
			}
			checkAllCounts(t, g)
		})
	}
}

// Property-based version on small graphs, exercising loops as well.
func TestTwoPathCountersRapid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(rt, "n")
		directed := rapid.Bool().Draw(rt, "directed")
		sparse := rapid.Bool().Draw(rt, "sparse")
		withLoops := directed && rapid.Bool().Draw(rt, "withLoops")

		var gopts []Option
		if sparse {
			gopts = append(gopts, WithSparseTwoPaths())
		}
		g := New(n, directed, gopts...)

		ops := rapid.IntRange(1, 80).Draw(rt, "ops")
		for k := 0; k < ops; k++ {
			i := rapid.IntRange(0, n-1).Draw(rt, "i")
			j := rapid.IntRange(0, n-1).Draw(rt, "j")
			if i == j && !withLoops {
				continue
			}
			if g.IsArc(i, j) {
				if err := g.RemoveArc(i, j); err != nil {
					rt.Fatalf("remove (%d,%d): %v", i, j, err)
				}
			} else {
				if err := g.InsertArc(i, j); err != nil {
					rt.Fatalf("insert (%d,%d): %v", i, j, err)
				}
			}
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				mix, in, out := bruteCounts(g, i, j)
				if directed {
					if g.MixTwoPaths(i, j) != mix || g.InTwoPaths(i, j) != in || g.OutTwoPaths(i, j) != out {
						rt.Fatalf("counter mismatch at (%d,%d): mix %d/%d in %d/%d out %d/%d",
							i, j, g.MixTwoPaths(i, j), mix, g.InTwoPaths(i, j), in, g.OutTwoPaths(i, j), out)
					}
				} else if g.TwoPaths(i, j) != mix {
					rt.Fatalf("twoPath[%d,%d] = %d, want %d", i, j, g.TwoPaths(i, j), mix)
				}
			}
		}
	})
}

// Dense and hash tables must agree observation-for-observation.
func TestDenseHashAgree(t *testing.T) {
	const n = 12
	dense := New(n, true)
	sparseG := New(n, true, WithSparseTwoPaths())
	rng := rand.New(rand.NewPCG(3, 9))
	for op := 0; op < 400; op++ {
		i, j := rng.IntN(n), rng.IntN(n)
		if i == j {
			continue
		}
		if dense.IsArc(i, j) {
			mustRemove(t, dense, i, j)
			mustRemove(t, sparseG, i, j)
		} else {
			mustInsert(t, dense, i, j)
			mustInsert(t, sparseG, i, j)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dense.MixTwoPaths(i, j) != sparseG.MixTwoPaths(i, j) ||
				dense.InTwoPaths(i, j) != sparseG.InTwoPaths(i, j) ||
				dense.OutTwoPaths(i, j) != sparseG.OutTwoPaths(i, j) {
				t.Fatalf("dense and hash tables disagree at (%d,%d)", i, j)
			}
		}
	}
}

// Package testutil provides deterministic test fixtures: random graphs,
// attribute tables and on-disk input files in the formats the loaders read.
// All generators take an explicit seed so tests are reproducible.
package testutil

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// NewRand returns a PRNG for tests, seeded deterministically.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// RandomGraph builds a graph on n nodes with numArcs uniformly placed arcs
// (no loops, no duplicates).
func RandomGraph(tb testing.TB, n, numArcs int, directed bool, seed uint64, opts ...graph.Option) *graph.Graph {
	tb.Helper()
	g := graph.New(n, directed, opts...)
	rng := NewRand(seed)
	for g.NumArcs() < numArcs {
		i, j := rng.IntN(n), rng.IntN(n)
		if i == j || g.IsArc(i, j) {
			continue
		}
		if err := g.InsertArc(i, j); err != nil {
			tb.Fatalf("insert arc (%d,%d): %v", i, j, err)
		}
	}
	return g
}

// WritePajekFile writes the graph to a temp Pajek file and returns its path.
func WritePajekFile(tb testing.TB, g *graph.Graph) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "net.txt")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatal(err)
	}
	if err := g.WritePajek(f); err != nil {
		tb.Fatal(err)
	}
	if err := f.Close(); err != nil {
		tb.Fatal(err)
	}
	return path
}

// WriteAttrFile writes a whitespace-separated attribute file with one header
// column per name and returns its path. rows[r][c] is the cell text.
func WriteAttrFile(tb testing.TB, names []string, rows [][]string) string {
	tb.Helper()
	var sb strings.Builder
	sb.WriteString(strings.Join(names, " "))
	sb.WriteByte('\n')
	for _, row := range rows {
		sb.WriteString(strings.Join(row, " "))
		sb.WriteByte('\n')
	}
	path := filepath.Join(tb.TempDir(), "attrs.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// WriteIntColumnFile writes a single-column integer file (zone/term format)
// and returns its path.
func WriteIntColumnFile(tb testing.TB, header string, vals []int) string {
	tb.Helper()
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	for _, v := range vals {
		fmt.Fprintf(&sb, "%d\n", v)
	}
	path := filepath.Join(tb.TempDir(), "col.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// RandomBinaryColumn attaches a binary attribute column with the given name
// to the graph; naProb is the chance a node is missing.
func RandomBinaryColumn(g *graph.Graph, name string, seed uint64, naProb float64) {
	rng := NewRand(seed)
	col := make([]int, g.NumNodes())
	for i := range col {
		switch {
		case rng.Float64() < naProb:
			col[i] = graph.BinNA
		case rng.Float64() < 0.5:
			col[i] = 1
		}
	}
	g.BinNames = append(g.BinNames, name)
	g.BinAttr = append(g.BinAttr, col)
}

// RandomCategoricalColumn attaches a categorical column with values in
// [0,categories).
func RandomCategoricalColumn(g *graph.Graph, name string, categories int, seed uint64) {
	rng := NewRand(seed)
	col := make([]int, g.NumNodes())
	for i := range col {
		col[i] = rng.IntN(categories)
	}
	g.CatNames = append(g.CatNames, name)
	g.CatAttr = append(g.CatAttr, col)
}

// RandomContinuousColumn attaches a continuous column of uniform [0,1)
// values.
func RandomContinuousColumn(g *graph.Graph, name string, seed uint64) {
	rng := NewRand(seed)
	col := make([]float64, g.NumNodes())
	for i := range col {
		col[i] = rng.Float64()
	}
	g.ContNames = append(g.ContNames, name)
	g.ContAttr = append(g.ContAttr, col)
}

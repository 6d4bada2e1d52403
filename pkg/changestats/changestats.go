// Package changestats holds the change-statistic registry and aggregator.
//
// A change statistic is a pure function of the graph and a candidate arc
// (i,j) returning the change in one sufficient statistic induced by adding
// the arc. Every statistic here assumes the arc is absent from the graph;
// samplers evaluating a delete move remove the arc first and negate the
// total. Statistics never mutate the graph.
package changestats

import (
	"fmt"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// Kind partitions statistics into the four parameter families.
type Kind int

const (
	// Structural statistics depend only on the arc set.
	Structural Kind = iota
	// Attribute statistics read one node attribute column.
	Attribute
	// Dyadic statistics read a dyadic covariate built from two attribute
	// columns.
	Dyadic
	// Interaction statistics read a pair of attribute columns.
	Interaction
)

// StructuralFunc computes a structural change statistic; lambda is the decay
// parameter for alternating statistics and ignored by the rest.
type StructuralFunc func(g *graph.Graph, i, j int, lambda float64) float64

// AttrFunc computes an attribute change statistic for attribute column a.
type AttrFunc func(g *graph.Graph, i, j, a int) float64

// PairFunc computes a dyadic-covariate or attribute-interaction change
// statistic from two attribute columns.
type PairFunc func(g *graph.Graph, i, j, a1, a2 int) float64

// Stat is one bound position of the parameter vector: a tagged variant
// carrying the function and whatever extra indices its family needs.
type Stat struct {
	name string
	kind Kind

	structuralFn StructuralFunc
	lambda       float64

	attrFn AttrFunc
	attr   int

	pairFn PairFunc
	attr2  int
}

// Name returns the trajectory-column name of the position.
func (s *Stat) Name() string { return s.name }

// Kind returns the statistic's family.
func (s *Stat) Kind() Kind { return s.kind }

// eval returns the add-direction change statistic for arc (i,j).
func (s *Stat) eval(g *graph.Graph, i, j int) float64 {
	switch s.kind {
	case Structural:
		return s.structuralFn(g, i, j, s.lambda)
	case Attribute:
		return s.attrFn(g, i, j, s.attr)
	default:
		return s.pairFn(g, i, j, s.attr, s.attr2)
	}
}

// Model is the ordered set of bound statistics backing the parameter vector
// theta. Positions are ordered structural, attribute, dyadic, interaction.
type Model struct {
	stats []Stat
	names []string
}

// N returns the number of parameter positions.
func (m *Model) N() int { return len(m.stats) }

// Names returns the trajectory-column names in position order.
func (m *Model) Names() []string { return m.names }

// Stat returns the l-th bound statistic.
func (m *Model) Stat(l int) *Stat { return &m.stats[l] }

// HasDensityTerm reports whether the model contains an explicit Arc or Edge
// position. The IFD sampler's auxiliary parameter plays that role, so the
// two are mutually exclusive.
func (m *Model) HasDensityTerm() bool {
	for i := range m.stats {
		if m.stats[i].name == "Arc" || m.stats[i].name == "Edge" {
			return true
		}
	}
	return false
}

// ChangeStats computes every position's add-direction change statistic for
// arc (i,j) into out and returns total = sum(theta_l * delta_l), negated when
// isDelete is true. The arc must be absent from g. out must have length N().
func (m *Model) ChangeStats(g *graph.Graph, i, j int, theta []float64, isDelete bool, out []float64) float64 {
	total := 0.0
	for l := range m.stats {
		d := m.stats[l].eval(g, i, j)
		out[l] = d
		total += theta[l] * d
	}
	if isDelete {
		return -total
	}
	return total
}

// ObservedStats computes the sufficient-statistic vector of g by replaying
// its arcs one at a time onto an empty copy and accumulating the change
// statistics. Used by simulation mode to seed the statistic trajectory.
func (m *Model) ObservedStats(g *graph.Graph) ([]float64, error) {
	z := make([]float64, m.N())
	delta := make([]float64, m.N())
	scratch := g.EmptyCopy()
	zeros := make([]float64, m.N())
	for k := 0; k < g.NumArcs(); k++ {
		a := g.Arc(k)
		m.ChangeStats(scratch, a.I, a.J, zeros, false, delta)
		for l := range z {
			z[l] += delta[l]
		}
		if err := scratch.InsertArc(a.I, a.J); err != nil {
			return nil, fmt.Errorf("replaying observed arcs: %w", err)
		}
	}
	return z, nil
}

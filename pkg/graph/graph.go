// Package graph holds the in-memory network state mutated by the MCMC
// samplers: incident-arc lists with their reverse mirror, a flat arc list for
// O(1) uniform arc picks, incrementally maintained two-path counters, per-node
// attributes, and the side lists needed for conditional estimation (snowball
// zones, citation terms).
//
// All mutation goes through InsertArc and RemoveArc so every derived index
// stays consistent with the arc set. A Graph is owned by a single task and is
// not safe for concurrent use.
package graph

import (
	"fmt"
)

// Arc is a directed arc (or an undirected edge, stored with I <= J).
type Arc struct {
	I, J int
}

// Graph is a labelled graph on nodes 0..N-1 with a mutable arc set.
type Graph struct {
	n        int
	directed bool
	numModeA int // bipartite split: nodes [0,numModeA) are mode A; 0 = one-mode
	sparse   bool

	numArcs int
	out     [][]int
	in      [][]int // nil when undirected

	allArcs  []Arc
	arcIndex map[Arc]int // canonical arc -> position in allArcs

	// Two-path counters. Directed graphs carry the mixed/in/out triple,
	// undirected graphs the single symmetric table.
	mixTwoPath TwoPathTable
	inTwoPath  TwoPathTable
	outTwoPath TwoPathTable
	twoPath    TwoPathTable

	// Node attributes, indexed [attr][node]. Read-only after load.
	BinAttr   [][]int
	BinNames  []string
	CatAttr   [][]int
	CatNames  []string
	ContAttr  [][]float64
	ContNames []string
	SetAttr   [][]NodeSet
	SetNames  []string

	// Snowball zone state; nil/empty when zones are absent.
	zones         []int
	maxZone       int
	innerNodes    []int
	innerArcs     []Arc
	innerArcIndex map[Arc]int
	prevWaveDeg   []int
	numInnerDyads int

	// Citation term state; nil/empty when terms are absent.
	terms        []int
	maxTerm      int
	maxTermNodes []int
	mtsArcs      []Arc // arcs whose tail is a max-term node
	mtsArcIndex  map[Arc]int
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithSparseTwoPaths selects the hash-table two-path counters instead of the
// dense N x N matrices. Observable behaviour is identical; memory drops from
// O(N^2) to O(number of nonzero pairs).
func WithSparseTwoPaths() Option {
	return func(g *Graph) {
		g.sparse = true
		if g.directed {
			g.mixTwoPath = NewHashTwoPathTable(g.n)
			g.inTwoPath = NewHashTwoPathTable(g.n)
			g.outTwoPath = NewHashTwoPathTable(g.n)
		} else {
			g.twoPath = NewHashTwoPathTable(g.n)
		}
	}
}

// WithModeSplit marks the graph as bipartite with nodes [0,numA) in the first
// mode. Proposal generators only offer cross-mode candidates for such graphs.
func WithModeSplit(numA int) Option {
	return func(g *Graph) {
		g.numModeA = numA
	}
}

// New creates an empty graph on n nodes.
func New(n int, directed bool, opts ...Option) *Graph {
	g := &Graph{
		n:        n,
		directed: directed,
		out:      make([][]int, n),
		arcIndex: make(map[Arc]int),
	}
	if directed {
		g.in = make([][]int, n)
		g.mixTwoPath = NewDenseTwoPathTable(n)
		g.inTwoPath = NewDenseTwoPathTable(n)
		g.outTwoPath = NewDenseTwoPathTable(n)
	} else {
		g.twoPath = NewDenseTwoPathTable(n)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NumNodes returns N.
func (g *Graph) NumNodes() int { return g.n }

// NumArcs returns the current arc (edge) count.
func (g *Graph) NumArcs() int { return g.numArcs }

// Directed reports whether the graph is directed.
func (g *Graph) Directed() bool { return g.directed }

// Bipartite reports whether a mode split was configured.
func (g *Graph) Bipartite() bool { return g.numModeA > 0 }

// NumModeA returns the size of the first mode, or 0 for one-mode graphs.
func (g *Graph) NumModeA() int { return g.numModeA }

// OutDegree returns the number of outgoing arcs of i (the degree for
// undirected graphs).
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// InDegree returns the number of incoming arcs of i (the degree for
// undirected graphs).
func (g *Graph) InDegree(i int) int {
	if !g.directed {
		return len(g.out[i])
	}
	return len(g.in[i])
}

// Degree returns the total degree of i ignoring direction. A loop counts once
// in an undirected graph and twice (out and in) in a directed one.
func (g *Graph) Degree(i int) int {
	if !g.directed {
		return len(g.out[i])
	}
	return len(g.out[i]) + len(g.in[i])
}

// OutNeighbors returns the out-neighbour list of i. The slice is owned by the
// graph and must not be modified or retained across mutations.
func (g *Graph) OutNeighbors(i int) []int { return g.out[i] }

// InNeighbors returns the in-neighbour list of i (the neighbour list for
// undirected graphs). Same ownership rules as OutNeighbors.
func (g *Graph) InNeighbors(i int) []int {
	if !g.directed {
		return g.out[i]
	}
	return g.in[i]
}

// Arc returns the k-th entry of the flat arc list, 0 <= k < NumArcs().
func (g *Graph) Arc(k int) Arc { return g.allArcs[k] }

// key canonicalises an arc for index lookups: undirected edges are stored
// under (min,max).
func (g *Graph) key(i, j int) Arc {
	if !g.directed && j < i {
		return Arc{j, i}
	}
	return Arc{i, j}
}

// IsArc reports whether arc i->j (edge i-j when undirected) is present.
func (g *Graph) IsArc(i, j int) bool {
	if i < 0 || i >= g.n || j < 0 || j >= g.n {
		return false
	}
	_, ok := g.arcIndex[g.key(i, j)]
	return ok
}

// InsertArc adds arc i->j and updates every derived index. It is an error to
// insert an arc that is already present or references a node out of range.
func (g *Graph) InsertArc(i, j int) error {
	if i < 0 || i >= g.n || j < 0 || j >= g.n {
		return fmt.Errorf("insert arc (%d,%d): node out of range [0,%d)", i, j, g.n)
	}
	k := g.key(i, j)
	if _, dup := g.arcIndex[k]; dup {
		return fmt.Errorf("insert arc (%d,%d): already present", i, j)
	}

	// Two-path deltas are computed against the arc set without (i,j), so
	// they must run before the adjacency lists change.
	g.applyTwoPathDelta(i, j, 1)

	g.out[i] = append(g.out[i], j)
	if g.directed {
		g.in[j] = append(g.in[j], i)
	} else if i != j {
		g.out[j] = append(g.out[j], i)
	}
	g.arcIndex[k] = len(g.allArcs)
	g.allArcs = append(g.allArcs, k)
	g.numArcs++

	g.zoneArcInserted(k)
	g.termArcInserted(k)
	return nil
}

// RemoveArc deletes arc i->j and updates every derived index.
func (g *Graph) RemoveArc(i, j int) error {
	k := g.key(i, j)
	pos, ok := g.arcIndex[k]
	if !ok {
		return fmt.Errorf("remove arc (%d,%d): not present", i, j)
	}

	g.out[k.I] = removeFromList(g.out[k.I], k.J)
	if g.directed {
		g.in[k.J] = removeFromList(g.in[k.J], k.I)
	} else if k.I != k.J {
		g.out[k.J] = removeFromList(g.out[k.J], k.I)
	}

	last := len(g.allArcs) - 1
	moved := g.allArcs[last]
	g.allArcs[pos] = moved
	g.arcIndex[moved] = pos
	g.allArcs = g.allArcs[:last]
	delete(g.arcIndex, k)
	g.numArcs--

	// Mirror of insert: deltas against the arc set without (i,j), so after
	// the adjacency lists changed.
	g.applyTwoPathDelta(k.I, k.J, -1)

	g.zoneArcRemoved(k)
	g.termArcRemoved(k)
	return nil
}

// removeFromList deletes one occurrence of v by swapping with the last entry.
// Neighbour lists are unordered, so this is O(len).
func removeFromList(list []int, v int) []int {
	for idx, x := range list {
		if x == v {
			last := len(list) - 1
			list[idx] = list[last]
			return list[:last]
		}
	}
	return list
}

// Clone returns a copy whose arc lists, two-path counters and
// conditional-estimation arc lists are independent of g. The attribute
// columns and the zone and term assignments are shared with g; they are
// read-only after load. Tasks clone the observed graph so chains never share
// mutable state.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		n:        g.n,
		directed: g.directed,
		numModeA: g.numModeA,
		sparse:   g.sparse,
		numArcs:  g.numArcs,
		out:      cloneLists(g.out),
		allArcs:  append([]Arc(nil), g.allArcs...),
		arcIndex: make(map[Arc]int, len(g.arcIndex)),

		BinAttr:   g.BinAttr,
		BinNames:  g.BinNames,
		CatAttr:   g.CatAttr,
		CatNames:  g.CatNames,
		ContAttr:  g.ContAttr,
		ContNames: g.ContNames,
		SetAttr:   g.SetAttr,
		SetNames:  g.SetNames,

		zones:         g.zones,
		maxZone:       g.maxZone,
		innerNodes:    g.innerNodes,
		numInnerDyads: g.numInnerDyads,
		terms:         g.terms,
		maxTerm:       g.maxTerm,
		maxTermNodes:  g.maxTermNodes,
	}
	if g.directed {
		c.in = cloneLists(g.in)
		c.mixTwoPath = g.mixTwoPath.clone()
		c.inTwoPath = g.inTwoPath.clone()
		c.outTwoPath = g.outTwoPath.clone()
	} else {
		c.twoPath = g.twoPath.clone()
	}
	for k, v := range g.arcIndex {
		c.arcIndex[k] = v
	}
	if g.zones != nil {
		c.innerArcs = append([]Arc(nil), g.innerArcs...)
		c.innerArcIndex = make(map[Arc]int, len(g.innerArcIndex))
		for k, v := range g.innerArcIndex {
			c.innerArcIndex[k] = v
		}
		c.prevWaveDeg = append([]int(nil), g.prevWaveDeg...)
	}
	if g.terms != nil {
		c.mtsArcs = append([]Arc(nil), g.mtsArcs...)
		c.mtsArcIndex = make(map[Arc]int, len(g.mtsArcIndex))
		for k, v := range g.mtsArcIndex {
			c.mtsArcIndex[k] = v
		}
	}
	return c
}

// EmptyCopy returns a graph with the same node count, direction, mode split,
// two-path table kind, attributes and conditional-estimation metadata, but no
// arcs. Statistic replay (Model.ObservedStats) starts here.
func (g *Graph) EmptyCopy() *Graph {
	var opts []Option
	if g.sparse {
		opts = append(opts, WithSparseTwoPaths())
	}
	if g.numModeA > 0 {
		opts = append(opts, WithModeSplit(g.numModeA))
	}
	c := New(g.n, g.directed, opts...)
	c.BinAttr, c.BinNames = g.BinAttr, g.BinNames
	c.CatAttr, c.CatNames = g.CatAttr, g.CatNames
	c.ContAttr, c.ContNames = g.ContAttr, g.ContNames
	c.SetAttr, c.SetNames = g.SetAttr, g.SetNames
	if g.zones != nil {
		if err := c.SetZones(g.zones); err != nil {
			panic(err) // zones already validated on g
		}
	}
	if g.terms != nil {
		if err := c.SetTerms(g.terms); err != nil {
			panic(err) // terms already validated on g
		}
	}
	return c
}

func cloneLists(lists [][]int) [][]int {
	out := make([][]int, len(lists))
	for i, l := range lists {
		if l != nil {
			out[i] = append([]int(nil), l...)
		}
	}
	return out
}

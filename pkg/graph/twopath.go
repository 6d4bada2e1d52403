package graph

// TwoPathTable counts, for each ordered node pair, the number of two-paths of
// one directional pattern. The dense and hash-backed implementations are
// interchangeable; pick dense for speed when N^2 counters fit in memory.
type TwoPathTable interface {
	// Count returns the counter for the ordered pair (i,j).
	Count(i, j int) int

	add(i, j, delta int)
	clone() TwoPathTable
}

// DenseTwoPathTable stores counters in a flat N x N matrix.
type DenseTwoPathTable struct {
	n      int
	counts []int32
}

// NewDenseTwoPathTable returns a zeroed dense table for n nodes.
func NewDenseTwoPathTable(n int) *DenseTwoPathTable {
	return &DenseTwoPathTable{n: n, counts: make([]int32, n*n)}
}

// Count returns the counter for (i,j).
func (t *DenseTwoPathTable) Count(i, j int) int {
	return int(t.counts[i*t.n+j])
}

func (t *DenseTwoPathTable) add(i, j, delta int) {
	t.counts[i*t.n+j] += int32(delta)
}

func (t *DenseTwoPathTable) clone() TwoPathTable {
	c := &DenseTwoPathTable{n: t.n, counts: make([]int32, len(t.counts))}
	copy(c.counts, t.counts)
	return c
}

// HashTwoPathTable stores only nonzero counters, keyed by the packed pair.
type HashTwoPathTable struct {
	n      int
	counts map[int64]int32
}

// NewHashTwoPathTable returns an empty sparse table for n nodes.
func NewHashTwoPathTable(n int) *HashTwoPathTable {
	return &HashTwoPathTable{n: n, counts: make(map[int64]int32)}
}

func (t *HashTwoPathTable) pack(i, j int) int64 {
	return int64(i)*int64(t.n) + int64(j)
}

// Count returns the counter for (i,j); absent pairs are zero.
func (t *HashTwoPathTable) Count(i, j int) int {
	return int(t.counts[t.pack(i, j)])
}

func (t *HashTwoPathTable) add(i, j, delta int) {
	k := t.pack(i, j)
	v := t.counts[k] + int32(delta)
	if v == 0 {
		delete(t.counts, k)
		return
	}
	t.counts[k] = v
}

func (t *HashTwoPathTable) clone() TwoPathTable {
	c := &HashTwoPathTable{n: t.n, counts: make(map[int64]int32, len(t.counts))}
	for k, v := range t.counts {
		c.counts[k] = v
	}
	return c
}

// MixTwoPaths returns |{k : arc i->k and arc k->j}|. Directed graphs only.
func (g *Graph) MixTwoPaths(i, j int) int { return g.mixTwoPath.Count(i, j) }

// InTwoPaths returns |{k : arc k->i and arc k->j}|, the shared in-neighbour
// count of the pair. Directed graphs only.
func (g *Graph) InTwoPaths(i, j int) int { return g.inTwoPath.Count(i, j) }

// OutTwoPaths returns |{k : arc i->k and arc j->k}|, the shared out-neighbour
// count of the pair. Directed graphs only.
func (g *Graph) OutTwoPaths(i, j int) int { return g.outTwoPath.Count(i, j) }

// TwoPaths returns |{k : edge i-k and edge k-j}|. Undirected graphs only.
func (g *Graph) TwoPaths(i, j int) int { return g.twoPath.Count(i, j) }

// applyTwoPathDelta applies the localised counter update for toggling arc
// (i,j). It must be called while the arc is absent from the adjacency lists:
// before insertion (delta +1) and after removal (delta -1). The loops then
// never see the toggled arc itself, which keeps the deltas exact.
func (g *Graph) applyTwoPathDelta(i, j, delta int) {
	if g.directed {
		// Mixed: the new arc as first leg (paths i->j->k) and as second
		// leg (paths k->i->j).
		for _, k := range g.out[j] {
			g.mixTwoPath.add(i, k, delta)
		}
		for _, k := range g.in[i] {
			g.mixTwoPath.add(k, j, delta)
		}
		if i == j {
			// The loop alone forms the path i->i->i.
			g.mixTwoPath.add(i, i, delta)
		}
		// In: i becomes a shared source for j paired with each existing
		// out-neighbour of i.
		for _, x := range g.out[i] {
			g.inTwoPath.add(j, x, delta)
			g.inTwoPath.add(x, j, delta)
		}
		g.inTwoPath.add(j, j, delta)
		// Out: j becomes a shared target for i paired with each existing
		// in-neighbour of j.
		for _, x := range g.in[j] {
			g.outTwoPath.add(i, x, delta)
			g.outTwoPath.add(x, i, delta)
		}
		g.outTwoPath.add(i, i, delta)
		return
	}

	// Undirected: paths through j as middle node, then through i.
	for _, x := range g.out[j] {
		g.twoPath.add(i, x, delta)
		g.twoPath.add(x, i, delta)
	}
	for _, x := range g.out[i] {
		g.twoPath.add(j, x, delta)
		g.twoPath.add(x, j, delta)
	}
	g.twoPath.add(i, i, delta)
	g.twoPath.add(j, j, delta)
}

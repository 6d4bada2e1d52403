package graph

import "fmt"

// SetZones installs snowball-sampling wave indices (one per node, wave 0 is
// the seed set) and rebuilds the conditional-estimation side state: the inner
// node list, the inner arc list and per-node previous-wave degrees. May be
// called before or after arcs are loaded.
func (g *Graph) SetZones(zones []int) error {
	if len(zones) != g.n {
		return fmt.Errorf("zones: got %d values for %d nodes", len(zones), g.n)
	}
	maxZone := 0
	for i, z := range zones {
		if z < 0 {
			return fmt.Errorf("zones: node %d has negative zone %d", i, z)
		}
		if z > maxZone {
			maxZone = z
		}
	}
	g.zones = append([]int(nil), zones...)
	g.maxZone = maxZone

	g.innerNodes = g.innerNodes[:0]
	for i, z := range g.zones {
		if z < maxZone {
			g.innerNodes = append(g.innerNodes, i)
		}
	}

	// Ordered dyad count available to the snowball proposal regime: pairs of
	// distinct inner nodes at most one wave apart. Undirected graphs count
	// each dyad once.
	dyads := 0
	for _, i := range g.innerNodes {
		for _, j := range g.innerNodes {
			if i != j && absInt(g.zones[i]-g.zones[j]) <= 1 {
				dyads++
			}
		}
	}
	if !g.directed {
		dyads /= 2
	}
	g.numInnerDyads = dyads

	g.innerArcs = g.innerArcs[:0]
	g.innerArcIndex = make(map[Arc]int)
	g.prevWaveDeg = make([]int, g.n)
	for _, a := range g.allArcs {
		g.zoneArcInserted(a)
	}
	return nil
}

// HasZones reports whether snowball zone data is loaded.
func (g *Graph) HasZones() bool { return g.zones != nil }

// Zone returns the snowball wave of node i.
func (g *Graph) Zone(i int) int { return g.zones[i] }

// MaxZone returns the outermost wave index.
func (g *Graph) MaxZone() int { return g.maxZone }

// InnerNodes returns the nodes in waves before the outermost one. The slice
// is owned by the graph.
func (g *Graph) InnerNodes() []int { return g.innerNodes }

// NumInnerArcs returns the number of arcs with both endpoints inner.
func (g *Graph) NumInnerArcs() int { return len(g.innerArcs) }

// InnerArc returns the k-th inner arc, 0 <= k < NumInnerArcs().
func (g *Graph) InnerArc(k int) Arc { return g.innerArcs[k] }

// NumInnerDyads returns the number of candidate dyads under the snowball
// regime.
func (g *Graph) NumInnerDyads() int { return g.numInnerDyads }

// PrevWaveDegree returns the number of neighbours of i (ignoring direction)
// in wave Zone(i)-1. A node in wave z > 0 must keep at least one such tie.
func (g *Graph) PrevWaveDegree(i int) int { return g.prevWaveDeg[i] }

// innerNode reports whether i lies strictly inside the outermost wave.
func (g *Graph) innerNode(i int) bool { return g.zones[i] < g.maxZone }

func (g *Graph) zoneArcInserted(a Arc) {
	if g.zones == nil {
		return
	}
	if g.innerNode(a.I) && g.innerNode(a.J) {
		g.innerArcIndex[a] = len(g.innerArcs)
		g.innerArcs = append(g.innerArcs, a)
	}
	if g.zones[a.J] == g.zones[a.I]-1 {
		g.prevWaveDeg[a.I]++
	}
	if g.zones[a.I] == g.zones[a.J]-1 {
		g.prevWaveDeg[a.J]++
	}
}

func (g *Graph) zoneArcRemoved(a Arc) {
	if g.zones == nil {
		return
	}
	if pos, ok := g.innerArcIndex[a]; ok {
		last := len(g.innerArcs) - 1
		moved := g.innerArcs[last]
		g.innerArcs[pos] = moved
		g.innerArcIndex[moved] = pos
		g.innerArcs = g.innerArcs[:last]
		delete(g.innerArcIndex, a)
	}
	if g.zones[a.J] == g.zones[a.I]-1 {
		g.prevWaveDeg[a.I]--
	}
	if g.zones[a.I] == g.zones[a.J]-1 {
		g.prevWaveDeg[a.J]--
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

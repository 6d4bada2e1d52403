package graph

import "fmt"

// SetTerms installs per-node terms for citation-ERGM conditional estimation
// and rebuilds the max-term side state: the max-term node list and the list
// of arcs sent by max-term nodes. Directed graphs only.
func (g *Graph) SetTerms(terms []int) error {
	if !g.directed {
		return fmt.Errorf("terms: citation conditioning requires a directed graph")
	}
	if len(terms) != g.n {
		return fmt.Errorf("terms: got %d values for %d nodes", len(terms), g.n)
	}
	maxTerm := 0
	for i, t := range terms {
		if t < 0 {
			return fmt.Errorf("terms: node %d has negative term %d", i, t)
		}
		if t > maxTerm {
			maxTerm = t
		}
	}
	g.terms = append([]int(nil), terms...)
	g.maxTerm = maxTerm

	g.maxTermNodes = g.maxTermNodes[:0]
	for i, t := range g.terms {
		if t == maxTerm {
			g.maxTermNodes = append(g.maxTermNodes, i)
		}
	}

	g.mtsArcs = g.mtsArcs[:0]
	g.mtsArcIndex = make(map[Arc]int)
	for _, a := range g.allArcs {
		g.termArcInserted(a)
	}
	return nil
}

// HasTerms reports whether citation term data is loaded.
func (g *Graph) HasTerms() bool { return g.terms != nil }

// Term returns the term of node i.
func (g *Graph) Term(i int) int { return g.terms[i] }

// MaxTerm returns the largest term value.
func (g *Graph) MaxTerm() int { return g.maxTerm }

// MaxTermNodes returns the nodes whose term equals MaxTerm(). The slice is
// owned by the graph.
func (g *Graph) MaxTermNodes() []int { return g.maxTermNodes }

// NumMaxTermSenderArcs returns the number of arcs whose tail is a max-term
// node.
func (g *Graph) NumMaxTermSenderArcs() int { return len(g.mtsArcs) }

// MaxTermSenderArc returns the k-th max-term-sender arc.
func (g *Graph) MaxTermSenderArc(k int) Arc { return g.mtsArcs[k] }

func (g *Graph) termArcInserted(a Arc) {
	if g.terms == nil || g.terms[a.I] != g.maxTerm {
		return
	}
	g.mtsArcIndex[a] = len(g.mtsArcs)
	g.mtsArcs = append(g.mtsArcs, a)
}

func (g *Graph) termArcRemoved(a Arc) {
	if g.terms == nil {
		return
	}
	pos, ok := g.mtsArcIndex[a]
	if !ok {
		return
	}
	last := len(g.mtsArcs) - 1
	moved := g.mtsArcs[last]
	g.mtsArcs[pos] = moved
	g.mtsArcIndex[moved] = pos
	g.mtsArcs = g.mtsArcs[:last]
	delete(g.mtsArcIndex, a)
}

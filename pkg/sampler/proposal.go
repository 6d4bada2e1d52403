// Package sampler implements the MCMC kernels over graph state: the basic
// Metropolis toggle sampler, the tie/no-tie (TNT) sampler and the improved
// fixed density (IFD) sampler, together with the candidate-arc proposal
// regimes they draw from.
//
// Kernels never touch global state: the PRNG, the proposal regime and any
// cross-call sampler state are owned by the calling task and passed in
// explicitly.
package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// Regime selects the constraint regime candidate arcs are drawn under.
type Regime int

const (
	// Plain draws uniform candidates over all dyads.
	Plain Regime = iota
	// Snowball conditions on the outermost sampling wave: candidates are
	// dyads of inner nodes at most one wave apart, and deletes never
	// disconnect a node from its previous wave.
	Snowball
	// Citation conditions on node terms: adds originate at max-term nodes
	// and deletes only touch arcs sent by them.
	Citation
)

// DefaultMaxRetries bounds rejection resampling so a dense graph cannot spin
// the proposal loop forever.
const DefaultMaxRetries = 10000

// ErrProposalExhausted is returned when no acceptable candidate was found
// within the retry budget.
var ErrProposalExhausted = errors.New("proposal retries exhausted")

// Proposer generates uniform add/delete candidates under one regime.
type Proposer struct {
	Regime            Regime
	ForbidReciprocity bool
	AllowLoops        bool
	// MaxRetries bounds rejection resampling; DefaultMaxRetries when 0.
	MaxRetries int
}

func (p *Proposer) retries() int {
	if p.MaxRetries > 0 {
		return p.MaxRetries
	}
	return DefaultMaxRetries
}

// randEndpoints draws a uniform candidate pair, respecting the bipartite
// mode split: i comes from mode A and j from mode B for two-mode graphs.
func randEndpoints(g *graph.Graph, rng *rand.Rand) (int, int) {
	n := g.NumNodes()
	if a := g.NumModeA(); a > 0 {
		return rng.IntN(a), a + rng.IntN(n-a)
	}
	return rng.IntN(n), rng.IntN(n)
}

// AddCandidate draws a uniform candidate (i,j) for an add move: a dyad that
// is not currently an arc and satisfies the regime's constraints.
func (p *Proposer) AddCandidate(g *graph.Graph, rng *rand.Rand) (int, int, error) {
	switch p.Regime {
	case Snowball:
		inner := g.InnerNodes()
		for r := 0; r < p.retries(); r++ {
			i := inner[rng.IntN(len(inner))]
			j := inner[rng.IntN(len(inner))]
			if i == j || g.IsArc(i, j) {
				continue
			}
			if zdiff := g.Zone(i) - g.Zone(j); zdiff > 1 || zdiff < -1 {
				continue
			}
			return i, j, nil
		}
	case Citation:
		senders := g.MaxTermNodes()
		n := g.NumNodes()
		for r := 0; r < p.retries(); r++ {
			i := senders[rng.IntN(len(senders))]
			j := rng.IntN(n)
			if i == j || g.IsArc(i, j) {
				continue
			}
			return i, j, nil
		}
	default:
		for r := 0; r < p.retries(); r++ {
			i, j := randEndpoints(g, rng)
			if i == j && !p.AllowLoops {
				continue
			}
			if g.IsArc(i, j) {
				continue
			}
			if p.ForbidReciprocity && g.IsArc(j, i) {
				continue
			}
			return i, j, nil
		}
	}
	return 0, 0, fmt.Errorf("add candidate: %w", ErrProposalExhausted)
}

// DeleteCandidate draws a uniform deletable arc. ok is false when the regime
// currently has no deletable arcs at all; an error means eligible arcs may
// exist but none was found within the retry budget.
func (p *Proposer) DeleteCandidate(g *graph.Graph, rng *rand.Rand) (arc graph.Arc, ok bool, err error) {
	switch p.Regime {
	case Snowball:
		if g.NumInnerArcs() == 0 {
			return graph.Arc{}, false, nil
		}
		for r := 0; r < p.retries(); r++ {
			a := g.InnerArc(rng.IntN(g.NumInnerArcs()))
			if p.lastWaveTie(g, a) {
				continue
			}
			return a, true, nil
		}
		return graph.Arc{}, false, fmt.Errorf("delete candidate: %w", ErrProposalExhausted)
	case Citation:
		if g.NumMaxTermSenderArcs() == 0 {
			return graph.Arc{}, false, nil
		}
		return g.MaxTermSenderArc(rng.IntN(g.NumMaxTermSenderArcs())), true, nil
	default:
		if g.NumArcs() == 0 {
			return graph.Arc{}, false, nil
		}
		return g.Arc(rng.IntN(g.NumArcs())), true, nil
	}
}

// lastWaveTie reports whether deleting a would leave one of its endpoints
// with no tie into its previous snowball wave.
func (p *Proposer) lastWaveTie(g *graph.Graph, a graph.Arc) bool {
	if g.Zone(a.J) == g.Zone(a.I)-1 && g.PrevWaveDegree(a.I) == 1 {
		return true
	}
	if g.Zone(a.I) == g.Zone(a.J)-1 && g.PrevWaveDegree(a.J) == 1 {
		return true
	}
	return false
}

// NumCandidateDyads returns the size L of the candidate dyad space under the
// active regime, used by the IFD arc-parameter correction.
func (p *Proposer) NumCandidateDyads(g *graph.Graph) int {
	n := g.NumNodes()
	switch p.Regime {
	case Snowball:
		return g.NumInnerDyads()
	case Citation:
		return len(g.MaxTermNodes()) * (n - 1) / 2
	default:
		if a := g.NumModeA(); a > 0 {
			return a * (n - a)
		}
		switch {
		case p.AllowLoops:
			return n * n
		case !g.Directed():
			return n * (n - 1) / 2
		case p.ForbidReciprocity:
			return n * (n - 1) / 2
		default:
			return n * (n - 1)
		}
	}
}

// NumDeletableArcs returns the size of the delete candidate list under the
// active regime.
func (p *Proposer) NumDeletableArcs(g *graph.Graph) int {
	switch p.Regime {
	case Snowball:
		return g.NumInnerArcs()
	case Citation:
		return g.NumMaxTermSenderArcs()
	default:
		return g.NumArcs()
	}
}

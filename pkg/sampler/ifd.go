package sampler

import (
	"errors"
	"fmt"
	"math"

	"math/rand/v2"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// DefaultIFDK is the auxiliary-parameter gain used when the configuration
// does not supply one.
const DefaultIFDK = 0.1

// imbalanceWarnThreshold triggers the IFD imbalance warning on
// |Ndel-Nadd|/(Ndel+Nadd).
const imbalanceWarnThreshold = 0.8

// IFDState is the cross-call state of the improved fixed density sampler,
// owned by the task that runs the chain.
type IFDState struct {
	// V is the auxiliary parameter standing in for the arc coefficient.
	V float64
	// isDelete is the alternation flag: the kind the most recent proposal
	// took. Each step flips it before proposing.
	isDelete bool
	// ForcedAdds counts delete slots silently flipped to add moves because
	// no deletable arc existed. A persistently nonzero count can bias the
	// chain; it is surfaced as a diagnostic.
	ForcedAdds int
}

// ArcCorrection returns C = log((L-m)/(m+1)) for the active regime, where L
// is the candidate dyad count and m the current deletable arc count. The
// effective arc parameter reported alongside IFD estimates is V - C.
func ArcCorrection(g *graph.Graph, p *Proposer) float64 {
	L := float64(p.NumCandidateDyads(g))
	m := float64(p.NumDeletableArcs(g))
	return math.Log((L - m) / (m + 1))
}

// IFD runs the improved fixed density sampler: proposals alternate between
// add and delete, the acceptance exponent carries +V on adds and -V on
// deletes, and V is nudged once per call toward balancing accepted adds and
// deletes. Returns the acceptance rate and dzArc = Ndel - Nadd.
func IFD(g *graph.Graph, m *changestats.Model, theta []float64, acc *Accumulators, opts Options, st *IFDState, ifdK float64, rng *rand.Rand) (float64, int, error) {
	if ifdK <= 0 {
		ifdK = DefaultIFDK
	}
	warn := opts.warn()
	delta := make([]float64, m.N())
	accepted := 0
	nAdd, nDel := 0, 0
	forced := 0

	for k := 0; k < opts.Steps; k++ {
		st.isDelete = !st.isDelete
		if st.isDelete {
			a, ok, err := opts.Proposer.DeleteCandidate(g, rng)
			if err != nil {
				return 0, 0, err
			}
			if !ok {
				// Nothing deletable: silently switch to add mode for
				// this and subsequent alternation.
				st.isDelete = false
				forced++
			} else {
				before := accepted
				if err := toggleDeleteExtra(g, m, theta, a, -st.V, delta, acc, opts.PerformMove, rng, &accepted); err != nil {
					return 0, 0, err
				}
				if accepted > before {
					nDel++
				}
				continue
			}
		}
		i, j, err := opts.Proposer.AddCandidate(g, rng)
		if errors.Is(err, ErrProposalExhausted) && opts.Proposer.Regime == Plain && g.NumArcs() >= opts.Proposer.NumCandidateDyads(g) {
			continue // nothing to add counts as a rejection
		}
		if err != nil {
			return 0, 0, err
		}
		before := accepted
		if err := toggleAdd(g, m, theta, i, j, st.V, delta, acc, opts.PerformMove, rng, &accepted); err != nil {
			return 0, 0, err
		}
		if accepted > before {
			nAdd++
		}
	}

	if forced > 0 {
		st.ForcedAdds += forced
		warn(fmt.Sprintf("IFD sampler: %d delete moves flipped to add (no deletable arcs)", forced))
	}

	// Nudge V toward add/delete balance. Deletes outnumbering adds means
	// the chain is shedding density, so V rises to favour adds; the
	// mirror case lowers it.
	if nTot := nAdd + nDel; nTot > 0 {
		diff := float64(nDel - nAdd)
		corr := ifdK * diff * diff / (float64(nTot) * float64(nTot))
		if nDel > nAdd {
			st.V += corr
		} else if nAdd > nDel {
			st.V -= corr
		}
		if math.Abs(diff)/float64(nTot) > imbalanceWarnThreshold {
			warn(fmt.Sprintf("IFD sampler: accepted moves unbalanced (%d adds, %d deletes)", nAdd, nDel))
		}
	}

	return float64(accepted) / float64(opts.Steps), nDel - nAdd, nil
}

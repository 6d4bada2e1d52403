package sampler

import (
	"math"
	"math/rand/v2"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// TNT runs the tie/no-tie sampler: with probability one half the candidate
// is a uniform dyad (toggling whatever is there), otherwise a uniform
// existing arc. The Metropolis ratio carries the proposal correction for the
// unequal pick probabilities of present and absent dyads. Plain regime only.
func TNT(g *graph.Graph, m *changestats.Model, theta []float64, acc *Accumulators, opts Options, rng *rand.Rand) (float64, error) {
	delta := make([]float64, m.N())
	accepted := 0
	dyads := float64(opts.Proposer.NumCandidateDyads(g))

	for k := 0; k < opts.Steps; k++ {
		var (
			arc      graph.Arc
			isDelete bool
		)
		if g.NumArcs() > 0 && rng.Float64() >= 0.5 {
			// Tie branch: uniform existing arc.
			arc = g.Arc(rng.IntN(g.NumArcs()))
			isDelete = true
		} else {
			// No-tie branch: uniform dyad, toggled either way.
			i, j := randEndpoints(g, rng)
			if i == j {
				continue
			}
			arc = graph.Arc{I: i, J: j}
			isDelete = g.IsArc(i, j)
		}

		if isDelete {
			numArcs := float64(g.NumArcs())
			if err := g.RemoveArc(arc.I, arc.J); err != nil {
				return 0, err
			}
			total := m.ChangeStats(g, arc.I, arc.J, theta, true, delta)
			// q(add back)/q(delete) for a dyad that was occupied.
			ratio := 1 / (1 + dyads/numArcs)
			ok := acceptRatio(total, ratio, rng)
			if ok {
				accepted++
				for l := range delta {
					acc.Del[l] += delta[l]
				}
			}
			if !ok || !opts.PerformMove {
				if err := g.InsertArc(arc.I, arc.J); err != nil {
					return 0, err
				}
			}
		} else {
			total := m.ChangeStats(g, arc.I, arc.J, theta, false, delta)
			// q(delete back)/q(add) for a dyad that was empty.
			ratio := 1 + dyads/float64(g.NumArcs()+1)
			if acceptRatio(total, ratio, rng) {
				accepted++
				for l := range delta {
					acc.Add[l] += delta[l]
				}
				if opts.PerformMove {
					if err := g.InsertArc(arc.I, arc.J); err != nil {
						return 0, err
					}
				}
			}
		}
	}
	return float64(accepted) / float64(opts.Steps), nil
}

// acceptRatio runs the Metropolis test for exp(total)*ratio.
func acceptRatio(total float64, ratio float64, rng *rand.Rand) bool {
	a := math.Exp(total) * ratio
	return a >= 1 || rng.Float64() < a
}

package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// Accumulators collect, per parameter position, the summed add-direction
// change statistics of accepted add moves and accepted delete moves. The
// estimation algorithms combine them under their own sign conventions.
type Accumulators struct {
	Add []float64
	Del []float64
}

// NewAccumulators returns zeroed accumulators for n parameter positions.
func NewAccumulators(n int) *Accumulators {
	return &Accumulators{Add: make([]float64, n), Del: make([]float64, n)}
}

// Reset zeroes both accumulators.
func (a *Accumulators) Reset() {
	for l := range a.Add {
		a.Add[l] = 0
		a.Del[l] = 0
	}
}

// Options configure one sampler call.
type Options struct {
	// Steps is the number of proposals per call (sampler_m).
	Steps int
	// PerformMove commits accepted toggles to the graph; when false the
	// graph is returned to its prior arc set before the call returns.
	PerformMove bool
	// Proposer supplies candidates under the active constraint regime.
	Proposer *Proposer
	// Warn receives non-fatal diagnostics; defaults to stderr.
	Warn func(string)
}

func (o *Options) warn() func(string) {
	if o.Warn != nil {
		return o.Warn
	}
	return func(msg string) { fmt.Fprintf(os.Stderr, "Warning: %s\n", msg) }
}

// accept runs the Metropolis test for an acceptance exponent, drawing from
// rng only when the outcome is not already decided.
func accept(total float64, rng *rand.Rand) bool {
	return total >= 0 || rng.Float64() < math.Exp(total)
}

// Basic runs the plain Metropolis toggle sampler for opts.Steps proposals:
// a fair coin picks add or delete, the candidate comes from the proposer, and
// the toggle is accepted with probability min(1, exp(theta . delta)).
// Delete proposals with no deletable arc, and plain-regime add proposals on a
// graph with no free dyad, count as rejected. Returns the acceptance rate.
func Basic(g *graph.Graph, m *changestats.Model, theta []float64, acc *Accumulators, opts Options, rng *rand.Rand) (float64, error) {
	delta := make([]float64, m.N())
	accepted := 0
	for k := 0; k < opts.Steps; k++ {
		if rng.Float64() < 0.5 {
			// Delete move.
			a, ok, err := opts.Proposer.DeleteCandidate(g, rng)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue // nothing to delete counts as a rejection
			}
			if err := toggleDelete(g, m, theta, a, delta, acc, opts.PerformMove, rng, &accepted); err != nil {
				return 0, err
			}
		} else {
			i, j, err := opts.Proposer.AddCandidate(g, rng)
			if errors.Is(err, ErrProposalExhausted) && opts.Proposer.Regime == Plain && g.NumArcs() >= opts.Proposer.NumCandidateDyads(g) {
				continue // nothing to add counts as a rejection
			}
			if err != nil {
				return 0, err
			}
			if err := toggleAdd(g, m, theta, i, j, 0, delta, acc, opts.PerformMove, rng, &accepted); err != nil {
				return 0, err
			}
		}
	}
	return float64(accepted) / float64(opts.Steps), nil
}

// toggleAdd evaluates and (on acceptance) applies one add move. extra is
// added to the acceptance exponent (the IFD auxiliary parameter; 0
// otherwise).
func toggleAdd(g *graph.Graph, m *changestats.Model, theta []float64, i, j int, extra float64, delta []float64, acc *Accumulators, performMove bool, rng *rand.Rand, accepted *int) error {
	total := m.ChangeStats(g, i, j, theta, false, delta) + extra
	if !accept(total, rng) {
		return nil
	}
	*accepted++
	for l := range delta {
		acc.Add[l] += delta[l]
	}
	if performMove {
		if err := g.InsertArc(i, j); err != nil {
			return fmt.Errorf("sampler add move: %w", err)
		}
	}
	return nil
}

// toggleDelete evaluates one delete move. The arc is removed first so change
// statistics see the graph without it, and reinserted unless the move is
// accepted and performed.
func toggleDelete(g *graph.Graph, m *changestats.Model, theta []float64, a graph.Arc, delta []float64, acc *Accumulators, performMove bool, rng *rand.Rand, accepted *int) error {
	return toggleDeleteExtra(g, m, theta, a, 0, delta, acc, performMove, rng, accepted)
}

func toggleDeleteExtra(g *graph.Graph, m *changestats.Model, theta []float64, a graph.Arc, extra float64, delta []float64, acc *Accumulators, performMove bool, rng *rand.Rand, accepted *int) error {
	if err := g.RemoveArc(a.I, a.J); err != nil {
		return fmt.Errorf("sampler delete move: %w", err)
	}
	total := m.ChangeStats(g, a.I, a.J, theta, true, delta) + extra
	ok := accept(total, rng)
	if ok {
		*accepted++
		for l := range delta {
			acc.Del[l] += delta[l]
		}
	}
	if !ok || !performMove {
		if err := g.InsertArc(a.I, a.J); err != nil {
			return fmt.Errorf("sampler delete restore: %w", err)
		}
	}
	return nil
}

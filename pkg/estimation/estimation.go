// Package estimation implements the Equilibrium Expectation method: the
// Algorithm S initialisation stage, the Algorithm EE parameter-update loop,
// the per-task driver that runs independent chains, and the plain simulation
// mode that draws networks from a fixed parameter vector.
package estimation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/debug"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
	"github.com/vanderheijden86/estimnet/pkg/sampler"
)

// ErrDegenerate marks a task whose Algorithm S run produced a non-finite
// derivative estimate: the model is judged degenerate and Algorithm EE is
// skipped for that chain.
var ErrDegenerate = errors.New("model degenerate: non-finite derivative estimate after Algorithm S")

// Progress reports per-phase advancement of one chain to an observer.
type Progress struct {
	Task    int
	Phase   string // "S", "EE" or "sim"
	Iter    int
	Total   int
	AccRate float64
	Theta   []float64
}

// ProgressFunc observes chain progress; it is called from the task's own
// goroutine and must be safe for concurrent use across tasks.
type ProgressFunc func(Progress)

// chain bundles the per-task mutable state: the task's own graph copy, the
// parameter vector, the sampler state and the PRNG.
type chain struct {
	cfg      *config.Config
	g        *graph.Graph
	model    *changestats.Model
	theta    []float64
	acc      *sampler.Accumulators
	proposer *sampler.Proposer
	ifd      sampler.IFDState
	rng      *rand.Rand
	warn     func(string)

	// dzArcSum accumulates the implicit arc statistic drift under IFD,
	// in the same add-minus-delete convention as the other positions.
	dzArcSum float64
}

func newChain(cfg *config.Config, observed *graph.Graph, model *changestats.Model, tasknum int, warn func(string)) *chain {
	regime := sampler.Plain
	if cfg.UseConditionalEstimation {
		regime = sampler.Snowball
	} else if cfg.CitationERGM {
		regime = sampler.Citation
	}
	return &chain{
		cfg:   cfg,
		g:     observed.Clone(),
		model: model,
		theta: make([]float64, model.N()),
		acc:   sampler.NewAccumulators(model.N()),
		proposer: &sampler.Proposer{
			Regime:            regime,
			ForbidReciprocity: cfg.ForbidReciprocity,
			AllowLoops:        cfg.AllowLoops,
			MaxRetries:        cfg.MaxProposalRetries,
		},
		rng:  rand.New(rand.NewPCG(cfg.Seed, uint64(tasknum))),
		warn: warn,
	}
}

// sample runs one batch of SamplerSteps proposals through the configured
// kernel, resetting the accumulators first.
func (c *chain) sample(performMove bool) (float64, error) {
	defer metrics.Timer(metrics.SamplerBatch)()
	c.acc.Reset()
	opts := sampler.Options{
		Steps:       c.cfg.SamplerSteps,
		PerformMove: performMove,
		Proposer:    c.proposer,
		Warn:        c.warn,
	}
	switch {
	case c.cfg.UseIFDSampler:
		rate, dzArc, err := sampler.IFD(c.g, c.model, c.theta, c.acc, opts, &c.ifd, c.cfg.IFDK, c.rng)
		c.dzArcSum += float64(-dzArc) // dzArc is Ndel-Nadd
		return rate, err
	case c.cfg.UseTNTSampler:
		return sampler.TNT(c.g, c.model, c.theta, c.acc, opts, c.rng)
	default:
		return sampler.Basic(c.g, c.model, c.theta, c.acc, opts, c.rng)
	}
}

// effectiveArcParam returns the corrected arc coefficient V - C reported
// alongside IFD estimates.
func (c *chain) effectiveArcParam() float64 {
	return c.ifd.V - sampler.ArcCorrection(c.g, c.proposer)
}

// algorithmS runs the initialisation stage: SSteps sampler batches without
// performing moves, a crude sign-following update on theta, and accumulation
// of the squared statistic changes that become the derivative estimates D.
// Returns D with D_l = SamplerSteps / sum_t dzA_l^2.
func (c *chain) algorithmS(w *trajectoryWriter, t *int) ([]float64, error) {
	n := c.model.N()
	d0 := make([]float64, n)
	for iter := 0; iter < c.cfg.SSteps; iter++ {
		rate, err := c.sample(false)
		if err != nil {
			return nil, fmt.Errorf("algorithm S: %w", err)
		}
		for l := 0; l < n; l++ {
			dzA := c.acc.Del[l] - c.acc.Add[l]
			sum := c.acc.Add[l] + c.acc.Del[l]
			d0[l] += dzA * dzA
			da := 0.0
			if sum != 0 {
				da = c.cfg.ACAS / (sum * sum)
			}
			c.theta[l] += math.Copysign(da*dzA*dzA, dzA)
		}
		if err := w.writeTheta(*t, c.theta, c.arcColumn(), rate); err != nil {
			return nil, err
		}
		*t++
	}
	dmean := make([]float64, n)
	for l := 0; l < n; l++ {
		dmean[l] = float64(c.cfg.SamplerSteps) / d0[l]
	}
	return dmean, nil
}

// arcColumn returns the extra trajectory column carried under IFD: the
// effective arc parameter V - C. Nil when IFD is off.
func (c *chain) arcColumn() *float64 {
	if !c.cfg.UseIFDSampler {
		return nil
	}
	v := c.effectiveArcParam()
	return &v
}

// degenerate reports whether any derivative estimate is non-finite.
func degenerate(d []float64) bool {
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// algorithmEE runs the main estimation loop: EESteps outer iterations of
// EEInnerSteps move-performing sampler batches, updating theta by the
// classical EE rule or the Borisenko rule, with the adaptive rescale of the
// derivative estimates between outer iterations.
func (c *chain) algorithmEE(d []float64, tw, dw *trajectoryWriter, t *int, tasknum int, progress ProgressFunc) error {
	n := c.model.N()
	dzA := make([]float64, n) // accumulates add-del across all inner steps
	history := make([][]float64, c.cfg.EEInnerSteps)
	for i := range history {
		history[i] = make([]float64, n)
	}

	for outer := 0; outer < c.cfg.EESteps; outer++ {
		var rate float64
		for inner := 0; inner < c.cfg.EEInnerSteps; inner++ {
			r, err := c.sample(true)
			if err != nil {
				return fmt.Errorf("algorithm EE: %w", err)
			}
			rate = r
			for l := 0; l < n; l++ {
				dzA[l] += c.acc.Add[l] - c.acc.Del[l]
				if c.cfg.UseBorisenkoUpdate {
					step := c.cfg.LearningRate * math.Max(math.Abs(c.theta[l]), c.cfg.MinTheta)
					c.theta[l] -= math.Copysign(step, dzA[l])
				} else {
					c.theta[l] -= math.Copysign(d[l]*c.cfg.ACAEE*dzA[l]*dzA[l], dzA[l])
				}
				history[inner][l] = c.theta[l]
			}
			if c.cfg.OutputAllSteps {
				if err := c.writeRows(tw, dw, *t, dzA, rate); err != nil {
					return err
				}
			}
			*t++
		}
		if !c.cfg.OutputAllSteps {
			if err := c.writeRows(tw, dw, *t-1, dzA, rate); err != nil {
				return err
			}
		}
		if err := tw.flush(); err != nil {
			return err
		}
		if err := dw.flush(); err != nil {
			return err
		}

		if !c.cfg.UseBorisenkoUpdate {
			c.rescaleDerivatives(d, history)
		}
		debug.Log("task %d: outer %d/%d acceptance %.3f", tasknum, outer+1, c.cfg.EESteps, rate)
		if progress != nil {
			progress(Progress{Task: tasknum, Phase: "EE", Iter: outer + 1, Total: c.cfg.EESteps, AccRate: rate, Theta: c.theta})
		}
	}
	return nil
}

// rescaleDerivatives adapts the derivative estimates from the spread of each
// parameter over the last inner loop: D_l scales by sqrt(compC*|mean|/sd).
// Near-zero means are clamped so parameters hovering at zero do not freeze.
func (c *chain) rescaleDerivatives(d []float64, history [][]float64) {
	n := c.model.N()
	xs := make([]float64, len(history))
	for l := 0; l < n; l++ {
		for i := range history {
			xs[i] = history[i][l]
		}
		mean, sd := stat.MeanStdDev(xs, nil)
		am := math.Abs(mean)
		if am < c.cfg.MinThetaMean {
			am = c.cfg.MinThetaMean
		}
		if sd > c.cfg.ThetaSDThreshold {
			d[l] *= math.Sqrt(c.cfg.CompC * am / sd)
		}
	}
}

func (c *chain) writeRows(tw, dw *trajectoryWriter, t int, dzA []float64, rate float64) error {
	if err := tw.writeTheta(t, c.theta, c.arcColumn(), rate); err != nil {
		return err
	}
	var arcDz *float64
	if c.cfg.UseIFDSampler {
		v := c.dzArcSum
		arcDz = &v
	}
	return dw.writeDzA(t, dzA, arcDz)
}

// RunTask executes one full estimation chain: Algorithm S, the degeneracy
// guard, then Algorithm EE. Trajectory files are named
// <prefix>_<tasknum>.txt. The observed graph is cloned, never mutated.
func RunTask(cfg *config.Config, observed *graph.Graph, model *changestats.Model, tasknum int, progress ProgressFunc) (theta []float64, err error) {
	warn := func(msg string) { fmt.Fprintf(os.Stderr, "Warning: task %d: %s\n", tasknum, msg) }
	c := newChain(cfg, observed, model, tasknum, warn)

	tw, err := newTrajectoryWriter(trajectoryPath(cfg.ThetaFilePrefix, tasknum), thetaHeader(model, cfg))
	if err != nil {
		return nil, err
	}
	defer tw.close(&err)
	dw, err := newTrajectoryWriter(trajectoryPath(cfg.DzAFilePrefix, tasknum), dzAHeader(model, cfg))
	if err != nil {
		return nil, err
	}
	defer dw.close(&err)

	t := 0
	stopS := debug.Trace(fmt.Sprintf("task %d algorithm S (%d iterations)", tasknum, cfg.SSteps))
	d, err := c.algorithmS(tw, &t)
	stopS()
	if err != nil {
		return nil, err
	}
	if err := tw.flush(); err != nil {
		return nil, err
	}
	if progress != nil {
		progress(Progress{Task: tasknum, Phase: "S", Iter: cfg.SSteps, Total: cfg.SSteps, Theta: c.theta})
	}

	if degenerate(d) {
		warn("degenerate model, skipping algorithm EE")
		return nil, ErrDegenerate
	}

	stopEE := debug.Trace(fmt.Sprintf("task %d algorithm EE (%d x %d iterations)", tasknum, cfg.EESteps, cfg.EEInnerSteps))
	err = c.algorithmEE(d, tw, dw, &t, tasknum, progress)
	stopEE()
	if err != nil {
		return nil, err
	}

	if cfg.OutputSimulatedNetwork {
		if err := writeNetworkFile(fmt.Sprintf("%s_%d.net", cfg.SimNetFilePrefix, tasknum), c.g); err != nil {
			return nil, err
		}
	}
	return c.theta, nil
}

func trajectoryPath(prefix string, tasknum int) string {
	return fmt.Sprintf("%s_%d.txt", prefix, tasknum)
}

func writeNetworkFile(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create network file: %w", err)
	}
	if err := g.WritePajek(f); err != nil {
		f.Close()
		return fmt.Errorf("write network file %s: %w", path, err)
	}
	return f.Close()
}

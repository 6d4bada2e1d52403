package estimation

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/debug"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
)

// SimSummary is the JSON sidecar written next to the simulation statistics
// file, describing the final sampled network.
type SimSummary struct {
	NumNodes   int                `json:"num_nodes"`
	NumArcs    int                `json:"num_arcs"`
	Samples    int                `json:"samples"`
	Interval   int                `json:"interval"`
	Burnin     int                `json:"burnin"`
	FinalStats map[string]float64 `json:"final_stats"`
}

// Simulate draws networks from the model at a fixed parameter vector: after
// SimBurnin burn-in proposals it takes SimSampleSize samples SimInterval
// proposals apart, writing the sufficient-statistic trajectory, optional
// Pajek network dumps, and a JSON summary. The chain starts from a clone of
// the initial graph, which is left unchanged; the final state is returned.
func Simulate(cfg *config.Config, initial *graph.Graph, model *changestats.Model, theta []float64, progress ProgressFunc) (final *graph.Graph, err error) {
	defer metrics.Timer(metrics.Simulation)()
	if len(theta) != model.N() {
		return nil, fmt.Errorf("theta has %d values for %d model parameters", len(theta), model.N())
	}

	warn := func(msg string) { fmt.Fprintf(os.Stderr, "Warning: simulation: %s\n", msg) }
	c := newChain(cfg, initial, model, 0, warn)
	c.theta = append([]float64(nil), theta...)

	z, err := model.ObservedStats(c.g)
	if err != nil {
		return nil, err
	}

	statsPath := cfg.StatsFilePrefix + ".txt"
	sw, werr := newTrajectoryWriter(statsPath, "t "+strings.Join(model.Names(), " "))
	if werr != nil {
		return nil, werr
	}
	defer sw.close(&err)

	runBatch := func(steps int) error {
		saved := c.cfg.SamplerSteps
		c.cfg.SamplerSteps = steps
		defer func() { c.cfg.SamplerSteps = saved }()
		if _, err := c.sample(true); err != nil {
			return err
		}
		for l := range z {
			z[l] += c.acc.Add[l] - c.acc.Del[l]
		}
		return nil
	}

	if cfg.SimBurnin > 0 {
		if err := runBatch(cfg.SimBurnin); err != nil {
			return nil, fmt.Errorf("simulation burn-in: %w", err)
		}
		debug.Log("simulation burn-in done: %d arcs", c.g.NumArcs())
	}

	t := cfg.SimBurnin
	for s := 0; s < cfg.SimSampleSize; s++ {
		if err := runBatch(cfg.SimInterval); err != nil {
			return nil, fmt.Errorf("simulation: %w", err)
		}
		t += cfg.SimInterval
		if err := sw.writeDzA(t, z, nil); err != nil {
			return nil, err
		}
		if err := sw.flush(); err != nil {
			return nil, err
		}
		if cfg.OutputSimulatedNetwork {
			if err := writeNetworkFile(fmt.Sprintf("%s_%d.net", cfg.SimNetFilePrefix, s), c.g); err != nil {
				return nil, err
			}
		}
		if progress != nil {
			progress(Progress{Task: 0, Phase: "sim", Iter: s + 1, Total: cfg.SimSampleSize})
		}
	}

	summary := SimSummary{
		NumNodes:   c.g.NumNodes(),
		NumArcs:    c.g.NumArcs(),
		Samples:    cfg.SimSampleSize,
		Interval:   cfg.SimInterval,
		Burnin:     cfg.SimBurnin,
		FinalStats: make(map[string]float64, model.N()),
	}
	for l, name := range model.Names() {
		summary.FinalStats[name] = z[l]
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode simulation summary: %w", err)
	}
	if err := os.WriteFile(cfg.StatsFilePrefix+".json", data, 0o644); err != nil {
		return nil, fmt.Errorf("write simulation summary: %w", err)
	}
	return c.g, nil
}

// LoadThetaFile reads a parameter file of "name value" lines (comments with
// '#') and returns the values ordered to match names. Every model parameter
// must be present; unknown names are an error.
func LoadThetaFile(path string, names []string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open theta file: %w", err)
	}
	defer f.Close()

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	theta := make([]float64, len(names))
	seen := make([]bool, len(names))

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s line %d: expected \"name value\"", path, lineNum)
		}
		pos, ok := index[fields[0]]
		if !ok {
			return nil, fmt.Errorf("%s line %d: unknown parameter %q", path, lineNum, fields[0])
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad value %q", path, lineNum, fields[1])
		}
		theta[pos] = v
		seen[pos] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading theta file: %w", err)
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%s: missing value for parameter %q", path, names[i])
		}
	}
	return theta, nil
}

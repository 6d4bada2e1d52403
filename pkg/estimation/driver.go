package estimation

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/debug"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
)

// TaskResult is the outcome of one estimation chain.
type TaskResult struct {
	Task  int
	Theta []float64 // nil when Err is set
	Err   error
}

// LoadData reads the observed network and all configured side files: node
// attributes, snowball zones and citation terms. Graph-dependent
// configuration checks happen here, once the data is known.
func LoadData(cfg *config.Config) (*graph.Graph, error) {
	defer metrics.Timer(metrics.GraphLoad)()
	if cfg.ArclistFile == "" {
		return nil, fmt.Errorf("no arclistFile configured")
	}
	g, err := graph.LoadPajekFile(cfg.ArclistFile, graph.PajekOptions{
		Directed: cfg.IsDirected,
		NumModeA: cfg.NumModeANodes,
		Sparse:   cfg.UseSparseTwoPath,
	})
	if err != nil {
		return nil, err
	}

	attrFiles := []struct {
		path string
		kind graph.AttrKind
	}{
		{cfg.BinattrFile, graph.BinaryAttr},
		{cfg.CatattrFile, graph.CategoricalAttr},
		{cfg.ContattrFile, graph.ContinuousAttr},
		{cfg.SetattrFile, graph.SetAttr},
	}
	for _, af := range attrFiles {
		if af.path == "" {
			continue
		}
		if err := g.LoadAttributesFile(af.path, af.kind); err != nil {
			return nil, err
		}
	}

	if cfg.UseConditionalEstimation {
		zones, err := graph.LoadIntColumnFile(cfg.ZoneFile)
		if err != nil {
			return nil, err
		}
		if err := g.SetZones(zones); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.ZoneFile, err)
		}
		if g.MaxZone() == 0 {
			return nil, fmt.Errorf("%s: conditional estimation needs more than one zone", cfg.ZoneFile)
		}
	}
	if cfg.CitationERGM {
		terms, err := graph.LoadIntColumnFile(cfg.TermFile)
		if err != nil {
			return nil, err
		}
		if err := g.SetTerms(terms); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.TermFile, err)
		}
	}
	debug.Log("loaded %s: %d nodes, %d arcs", cfg.ArclistFile, g.NumNodes(), g.NumArcs())
	return g, nil
}

// BuildModel resolves the configured parameter lists against the loaded
// graph and applies the model-dependent configuration checks.
func BuildModel(cfg *config.Config, g *graph.Graph) (*changestats.Model, error) {
	structural, attr, dyadic, interaction, err := cfg.ParamSpecs()
	if err != nil {
		return nil, err
	}
	model, err := changestats.BuildModel(g, structural, attr, dyadic, interaction)
	if err != nil {
		return nil, err
	}
	if cfg.UseIFDSampler && model.HasDensityTerm() {
		return nil, fmt.Errorf("useIFDsampler replaces the %s parameter; remove it from structParams", arcColumnName(cfg))
	}
	return model, nil
}

// Run executes cfg.NumTasks independent estimation chains concurrently, one
// goroutine per chain. A failing chain (including a degenerate one) does not
// stop the others; its error is carried in the result. The returned error is
// non-nil if any chain failed.
func Run(cfg *config.Config, observed *graph.Graph, model *changestats.Model, progress ProgressFunc) ([]TaskResult, error) {
	defer metrics.Timer(metrics.Estimation)()

	results := make([]TaskResult, cfg.NumTasks)
	var g errgroup.Group
	for task := 0; task < cfg.NumTasks; task++ {
		g.Go(func() error {
			theta, err := RunTask(cfg, observed, model, task, progress)
			results[task] = TaskResult{Task: task, Theta: theta, Err: err}
			return nil // chain failures are reported per task, not fatal
		})
	}
	_ = g.Wait() // closures never return errors; failures live in results

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "task %d failed: %v\n", r.Task, r.Err)
		}
	}
	if failed == cfg.NumTasks {
		return results, fmt.Errorf("all %d tasks failed", failed)
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d tasks failed", failed, cfg.NumTasks)
	}
	return results, nil
}

// SerialProgress wraps a ProgressFunc so concurrent tasks cannot interleave
// observer calls.
func SerialProgress(fn ProgressFunc) ProgressFunc {
	var mu sync.Mutex
	return func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		fn(p)
	}
}

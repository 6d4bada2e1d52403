// Command simestimnet draws simulated networks from an ERGM at a fixed
// parameter vector, for goodness-of-fit checking of estimated models. It
// shares its configuration format with estimnet; theta comes from a separate
// "name value" file.
//
// Usage:
//
//	simestimnet -theta theta.txt [options] config-file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/estimation"
	"github.com/vanderheijden86/estimnet/pkg/export"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
	"github.com/vanderheijden86/estimnet/pkg/version"
)

const (
	exitUsage      = 1
	exitConfig     = 2
	exitData       = 3
	exitSimulation = 4
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	thetaFile := flag.String("theta", "", "Parameter file of \"name value\" lines (required)")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	metricsFlag := flag.Bool("metrics", false, "Print timing metrics to stderr at exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: simestimnet -theta theta.txt [options] config-file")
		fmt.Println("\nSimulate networks from an ERGM at fixed parameters.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("simestimnet %s\n", version.Version)
		os.Exit(0)
	}
	if flag.NArg() != 1 || *thetaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: simestimnet -theta theta.txt [options] config-file")
		os.Exit(exitUsage)
	}

	code := run(flag.Arg(0), *thetaFile, *quiet)
	if *metricsFlag {
		metrics.WriteReport(os.Stderr)
	}
	os.Exit(code)
}

func run(configPath, thetaPath string, quiet bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	initial, err := loadInitial(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitData
	}
	model, err := estimation.BuildModel(&cfg, initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}
	theta, err := estimation.LoadThetaFile(thetaPath, model.Names())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitData
	}

	var progress estimation.ProgressFunc
	if !quiet {
		progress = func(p estimation.Progress) {
			fmt.Fprintf(os.Stderr, "sample %d/%d\n", p.Iter, p.Total)
		}
	}
	final, err := estimation.Simulate(&cfg, initial, model, theta, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitSimulation
	}

	if cfg.SnapshotFile != "" {
		err := export.SaveNetworkSnapshot(export.NetworkSnapshotOptions{
			Path:  cfg.SnapshotFile,
			Title: "simulated network",
			Graph: final,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: snapshot: %v\n", err)
			return exitData
		}
	}
	return 0
}

// loadInitial returns the simulation starting state: the configured network
// when arclistFile is set, otherwise an empty graph on numNodes nodes.
func loadInitial(cfg *config.Config) (*graph.Graph, error) {
	if cfg.ArclistFile != "" {
		return estimation.LoadData(cfg)
	}
	if cfg.NumNodes <= 0 {
		return nil, fmt.Errorf("simulation from an empty graph needs numNodes")
	}
	var opts []graph.Option
	if cfg.UseSparseTwoPath {
		opts = append(opts, graph.WithSparseTwoPaths())
	}
	if cfg.NumModeANodes > 0 {
		opts = append(opts, graph.WithModeSplit(cfg.NumModeANodes))
	}
	return graph.New(cfg.NumNodes, cfg.IsDirected, opts...), nil
}

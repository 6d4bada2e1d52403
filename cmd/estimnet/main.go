// Command estimnet estimates ERGM parameters for an observed network by the
// Equilibrium Expectation method. It reads a YAML or legacy text
// configuration, runs the configured number of independent MCMC chains, and
// writes per-task theta and dzA trajectory files.
//
// Usage:
//
//	estimnet [options] config-file
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"golang.org/x/term"

	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/estimation"
	"github.com/vanderheijden86/estimnet/pkg/export"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
	"github.com/vanderheijden86/estimnet/pkg/version"
)

// Exit codes: 1 usage, 2 configuration, 3 input data, 4 estimation failure
// (including degeneracy).
const (
	exitUsage      = 1
	exitConfig     = 2
	exitData       = 3
	exitEstimation = 4
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	taskFlag := flag.Int("task", -1, "Run only this task number (for external dispatchers)")
	monitorFlag := flag.Bool("monitor", false, "Show a live chain monitor (requires a terminal)")
	metricsFlag := flag.Bool("metrics", false, "Print timing metrics to stderr at exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: estimnet [options] config-file")
		fmt.Println("\nEquilibrium Expectation estimation for ERGMs.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("estimnet %s\n", version.Version)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: estimnet [options] config-file")
		os.Exit(exitUsage)
	}

	var profFile *os.File
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(exitUsage)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(exitUsage)
		}
		profFile = f
	}

	code := run(flag.Arg(0), *taskFlag, *monitorFlag)

	if profFile != nil {
		pprof.StopCPUProfile()
		profFile.Close()
	}
	if *metricsFlag {
		metrics.WriteReport(os.Stderr)
	}
	os.Exit(code)
}

func run(configPath string, onlyTask int, monitor bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	observed, err := estimation.LoadData(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitData
	}
	model, err := estimation.BuildModel(&cfg, observed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfig
	}

	if onlyTask >= 0 {
		// External dispatcher mode: one chain, this process.
		if _, err := estimation.RunTask(&cfg, observed, model, onlyTask, nil); err != nil {
			fmt.Fprintf(os.Stderr, "task %d failed: %v\n", onlyTask, err)
			return exitEstimation
		}
		return 0
	}

	var results []estimation.TaskResult
	var runErr error
	if monitor && term.IsTerminal(int(os.Stdout.Fd())) {
		results, runErr = runWithMonitor(&cfg, observed, model)
	} else {
		progress := estimation.SerialProgress(func(p estimation.Progress) {
			fmt.Fprintf(os.Stderr, "task %d: %s %d/%d (acceptance %.3f)\n",
				p.Task, p.Phase, p.Iter, p.Total, p.AccRate)
		})
		results, runErr = estimation.Run(&cfg, observed, model, progress)
	}

	if cfg.SQLiteExportFile != "" {
		var files []export.TrajectoryFile
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			files = append(files,
				export.TrajectoryFile{Kind: export.ThetaKind, Task: r.Task,
					Path: fmt.Sprintf("%s_%d.txt", cfg.ThetaFilePrefix, r.Task)},
				export.TrajectoryFile{Kind: export.DzAKind, Task: r.Task,
					Path: fmt.Sprintf("%s_%d.txt", cfg.DzAFilePrefix, r.Task)})
		}
		if len(files) > 0 {
			if err := export.TrajectoriesToSQLite(cfg.SQLiteExportFile, files); err != nil {
				fmt.Fprintf(os.Stderr, "Error: sqlite export: %v\n", err)
				return exitData
			}
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Estimation finished with failures: %v\n", runErr)
		return exitEstimation
	}
	return 0
}

package estimation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/testutil"
)

// testConfig returns a small, fast configuration writing into dir.
func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.SamplerSteps = 100
	cfg.SSteps = 20
	cfg.EESteps = 5
	cfg.EEInnerSteps = 10
	cfg.Seed = 42
	cfg.StructParams = []string{"Arc"}
	cfg.ThetaFilePrefix = filepath.Join(dir, "theta")
	cfg.DzAFilePrefix = filepath.Join(dir, "dzA")
	cfg.SimNetFilePrefix = filepath.Join(dir, "sim")
	cfg.StatsFilePrefix = filepath.Join(dir, "stats")
	return cfg
}

func buildTestModel(t *testing.T, cfg *config.Config, g *graph.Graph) *changestats.Model {
	t.Helper()
	model, err := BuildModel(cfg, g)
	if err != nil {
		t.Fatal(err)
	}
	return model
}

// Two runs with the same seed must produce byte-identical trajectories.
func TestDeterministicTrajectory(t *testing.T) {
	run := func(dir string) (string, string) {
		cfg := testConfig(dir)
		cfg.StructParams = []string{"Arc", "Reciprocity"}
		g := testutil.RandomGraph(t, 10, 12, true, 7)
		// A mutual dyad guarantees the reciprocity statistic moves.
		for _, a := range [][2]int{{0, 1}, {1, 0}} {
			if !g.IsArc(a[0], a[1]) {
				if err := g.InsertArc(a[0], a[1]); err != nil {
					t.Fatal(err)
				}
			}
		}
		model := buildTestModel(t, &cfg, g)
		if _, err := RunTask(&cfg, g, model, 0, nil); err != nil {
			t.Fatal(err)
		}
		theta, err := os.ReadFile(filepath.Join(dir, "theta_0.txt"))
		if err != nil {
			t.Fatal(err)
		}
		dzA, err := os.ReadFile(filepath.Join(dir, "dzA_0.txt"))
		if err != nil {
			t.Fatal(err)
		}
		return string(theta), string(dzA)
	}
	t1, d1 := run(t.TempDir())
	t2, d2 := run(t.TempDir())
	if t1 != t2 {
		t.Fatal("theta trajectories differ across identical seeded runs")
	}
	if d1 != d2 {
		t.Fatal("dzA trajectories differ across identical seeded runs")
	}
	if !strings.HasPrefix(t1, "t Arc Reciprocity AcceptanceRate\n") {
		t.Fatalf("unexpected theta header: %q", strings.SplitN(t1, "\n", 2)[0])
	}
	if !strings.HasPrefix(d1, "t Arc Reciprocity\n") {
		t.Fatalf("unexpected dzA header: %q", strings.SplitN(d1, "\n", 2)[0])
	}
}

// Distinct task numbers must give distinct chains under one master seed.
func TestTaskSeedsDiffer(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	g := testutil.RandomGraph(t, 10, 15, true, 2)
	model := buildTestModel(t, &cfg, g)
	if _, err := RunTask(&cfg, g, model, 0, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := RunTask(&cfg, g, model, 1, nil); err != nil {
		t.Fatal(err)
	}
	b0, _ := os.ReadFile(filepath.Join(dir, "theta_0.txt"))
	b1, _ := os.ReadFile(filepath.Join(dir, "theta_1.txt"))
	if string(b0) == string(b1) {
		t.Fatal("tasks 0 and 1 produced identical chains")
	}
}

// An attribute column that is all missing never changes its statistic, so
// Algorithm S leaves its derivative estimate at +Inf and the task aborts as
// degenerate without entering Algorithm EE.
func TestDegeneracyGuard(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.StructParams = []string{"Arc"}
	cfg.AttrParams = []string{"Sender(dead)"}

	g := testutil.RandomGraph(t, 8, 10, true, 6)
	col := make([]int, 8)
	for i := range col {
		col[i] = graph.BinNA
	}
	g.BinNames = []string{"dead"}
	g.BinAttr = [][]int{col}

	model := buildTestModel(t, &cfg, g)
	_, err := RunTask(&cfg, g, model, 0, nil)
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}

	// Algorithm S rows were written, but no EE rows follow.
	data, rerr := os.ReadFile(filepath.Join(dir, "theta_0.txt"))
	if rerr != nil {
		t.Fatal(rerr)
	}
	lines := strings.Count(strings.TrimSpace(string(data)), "\n")
	if lines != cfg.SSteps {
		t.Fatalf("theta file has %d data lines, want only the %d from algorithm S", lines, cfg.SSteps)
	}
}

func TestRunTaskDoesNotMutateObserved(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	g := testutil.RandomGraph(t, 10, 15, true, 4)
	arcsBefore := g.NumArcs()
	model := buildTestModel(t, &cfg, g)
	if _, err := RunTask(&cfg, g, model, 0, nil); err != nil {
		t.Fatal(err)
	}
	if g.NumArcs() != arcsBefore {
		t.Fatal("estimation mutated the observed graph")
	}
}

func TestBorisenkoUpdateRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.UseBorisenkoUpdate = true
	cfg.LearningRate = 0.01
	cfg.MinTheta = 0.01
	g := testutil.RandomGraph(t, 10, 12, true, 12)
	model := buildTestModel(t, &cfg, g)
	theta, err := RunTask(&cfg, g, model, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(theta) != model.N() {
		t.Fatalf("got %d parameters, want %d", len(theta), model.N())
	}
}

func TestIFDTrajectoryCarriesArcColumn(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.UseIFDSampler = true
	cfg.StructParams = []string{"Reciprocity", "AltInStars(2.0)"}
	g := testutil.RandomGraph(t, 10, 20, true, 33)
	model := buildTestModel(t, &cfg, g)
	if _, err := RunTask(&cfg, g, model, 0, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "theta_0.txt"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "t Reciprocity AltInStars Arc AcceptanceRate" {
		t.Fatalf("unexpected IFD theta header: %q", header)
	}
}

func TestIFDRejectsDensityTerm(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.UseIFDSampler = true
	cfg.StructParams = []string{"Arc", "Reciprocity"}
	g := graph.New(5, true)
	if _, err := BuildModel(&cfg, g); err == nil {
		t.Fatal("IFD with an explicit Arc term must be rejected")
	}
}

func TestOutputAllSteps(t *testing.T) {
	countLines := func(allSteps bool) int {
		dir := t.TempDir()
		cfg := testConfig(dir)
		cfg.OutputAllSteps = allSteps
		g := testutil.RandomGraph(t, 8, 10, true, 3)
		model := buildTestModel(t, &cfg, g)
		if _, err := RunTask(&cfg, g, model, 0, nil); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "dzA_0.txt"))
		if err != nil {
			t.Fatal(err)
		}
		return strings.Count(strings.TrimSpace(string(data)), "\n")
	}
	// Header excluded: outer-only writes one row per outer iteration.
	if got := countLines(false); got != 5 {
		t.Fatalf("outer-boundary mode wrote %d dzA rows, want 5", got)
	}
	if got := countLines(true); got != 5*10 {
		t.Fatalf("all-steps mode wrote %d dzA rows, want 50", got)
	}
}

func TestRunParallelTasks(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.NumTasks = 3
	g := testutil.RandomGraph(t, 10, 15, true, 5)
	model := buildTestModel(t, &cfg, g)
	results, err := Run(&cfg, g, model, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("task %d failed: %v", r.Task, r.Err)
		}
		if _, err := os.Stat(filepath.Join(dir, "theta_"+string(rune('0'+r.Task))+".txt")); err != nil {
			t.Fatalf("task %d trajectory missing: %v", r.Task, err)
		}
	}
}

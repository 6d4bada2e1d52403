package sampler

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/testutil"
)

func arcModel(t *testing.T, g *graph.Graph) *changestats.Model {
	t.Helper()
	name := "Edge"
	if g.Directed() {
		name = "Arc"
	}
	m, err := changestats.BuildModel(g, []changestats.ParamSpec{{Name: name}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func arcRecipModel(t *testing.T, g *graph.Graph) *changestats.Model {
	t.Helper()
	m, err := changestats.BuildModel(g,
		[]changestats.ParamSpec{{Name: "Arc"}, {Name: "Reciprocity"}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// On an empty graph with zero theta, adds always accept and deletes have no
// candidate, so the acceptance rate sits at the add-coin rate of one half.
func TestBasicZeroThetaEmptyGraph(t *testing.T) {
	g := graph.New(10, true)
	model := arcModel(t, g)
	theta := []float64{0}
	acc := NewAccumulators(model.N())
	opts := Options{Steps: 10000, PerformMove: false, Proposer: &Proposer{}}

	rate, err := Basic(g, model, theta, acc, opts, newRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if g.NumArcs() != 0 {
		t.Fatal("performMove=false must leave the graph untouched")
	}
	if math.Abs(rate-0.5) > 0.02 {
		t.Fatalf("acceptance rate = %g, want about 0.5", rate)
	}
	// Every accepted move was an add with Arc delta 1.
	if acc.Add[0] != rate*float64(opts.Steps) || acc.Del[0] != 0 {
		t.Fatalf("accumulators add=%g del=%g inconsistent with rate %g", acc.Add[0], acc.Del[0], rate)
	}
}

func TestBasicPerformMoveMutates(t *testing.T) {
	g := graph.New(8, true)
	model := arcModel(t, g)
	theta := []float64{2} // strongly favour density
	acc := NewAccumulators(model.N())
	opts := Options{Steps: 2000, PerformMove: true, Proposer: &Proposer{}}
	if _, err := Basic(g, model, theta, acc, opts, newRNG(1)); err != nil {
		t.Fatal(err)
	}
	if g.NumArcs() == 0 {
		t.Fatal("performMove=true with positive density theta must add arcs")
	}
	testutil.AssertArcListConsistent(t, g)
	testutil.AssertTwoPathCounts(t, g)
}

func TestBasicDeterminism(t *testing.T) {
	run := func() (float64, []float64, []float64) {
		g := testutil.RandomGraph(t, 12, 20, true, 77)
		model := arcRecipModel(t, g)
		acc := NewAccumulators(model.N())
		opts := Options{Steps: 3000, PerformMove: true, Proposer: &Proposer{}}
		rate, err := Basic(g, model, []float64{-0.5, 0.3}, acc, opts, newRNG(123))
		if err != nil {
			t.Fatal(err)
		}
		return rate, acc.Add, acc.Del
	}
	r1, a1, d1 := run()
	r2, a2, d2 := run()
	if r1 != r2 {
		t.Fatalf("acceptance rates differ: %g vs %g", r1, r2)
	}
	for l := range a1 {
		if a1[l] != a2[l] || d1[l] != d2[l] {
			t.Fatal("accumulators differ across identical seeded runs")
		}
	}
}

// With zero theta and V=0 every IFD proposal is accepted, so accepted moves
// alternate delete,add,... exactly and an even batch leaves the arc count
// unchanged.
func TestIFDAlternationPreservesArcCount(t *testing.T) {
	g := testutil.RandomGraph(t, 10, 20, true, 3)
	model, err := changestats.BuildModel(g,
		[]changestats.ParamSpec{{Name: "Reciprocity"}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	theta := []float64{0}
	acc := NewAccumulators(model.N())
	st := &IFDState{}
	opts := Options{Steps: 2000, PerformMove: true, Proposer: &Proposer{}, Warn: func(string) {}}

	before := g.NumArcs()
	rate, dzArc, err := IFD(g, model, theta, acc, opts, st, 0.1, newRNG(5))
	if err != nil {
		t.Fatal(err)
	}
	if rate != 1.0 {
		t.Fatalf("zero-theta IFD acceptance = %g, want 1", rate)
	}
	if dzArc != 0 {
		t.Fatalf("dzArc = %d, want 0 for an even fully-accepted batch", dzArc)
	}
	if g.NumArcs() != before {
		t.Fatalf("arc count %d, want %d after balanced alternation", g.NumArcs(), before)
	}
	if st.V != 0 {
		t.Fatalf("V = %g, want unchanged at 0", st.V)
	}
	testutil.AssertTwoPathCounts(t, g)
}

// The accepted-move ledger ties arc-count drift to dzArc in general.
func TestIFDArcDriftMatchesLedger(t *testing.T) {
	g := testutil.RandomGraph(t, 10, 15, true, 8)
	model := arcRecipModel(t, g)
	acc := NewAccumulators(model.N())
	st := &IFDState{V: 1.5} // biased toward adds
	opts := Options{Steps: 999, PerformMove: true, Proposer: &Proposer{}, Warn: func(string) {}}

	before := g.NumArcs()
	_, dzArc, err := IFD(g, model, []float64{0, 0.2}, acc, opts, st, 0.1, newRNG(9))
	if err != nil {
		t.Fatal(err)
	}
	if got := g.NumArcs() - before; got != -dzArc {
		t.Fatalf("arc drift %d does not match -dzArc %d", got, -dzArc)
	}
}

func TestIFDForcedAddOnEmptyGraph(t *testing.T) {
	g := graph.New(6, true)
	model := arcModel(t, g)
	var warned bool
	acc := NewAccumulators(model.N())
	st := &IFDState{}
	opts := Options{Steps: 10, PerformMove: false, Proposer: &Proposer{}, Warn: func(string) { warned = true }}
	if _, _, err := IFD(g, model, []float64{0}, acc, opts, st, 0.1, newRNG(2)); err != nil {
		t.Fatal(err)
	}
	if st.ForcedAdds == 0 {
		t.Fatal("expected forced add moves on an empty graph")
	}
	if !warned {
		t.Fatal("expected a forced-add warning")
	}
}

func TestIFDVUpdateOpposesImbalance(t *testing.T) {
	// A huge positive V accepts every add and rejects every delete, so the
	// correction must pull V down.
	g := testutil.RandomGraph(t, 10, 10, true, 4)
	model, err := changestats.BuildModel(g,
		[]changestats.ParamSpec{{Name: "Reciprocity"}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var warned bool
	acc := NewAccumulators(model.N())
	st := &IFDState{V: 50}
	opts := Options{Steps: 200, PerformMove: true, Proposer: &Proposer{}, Warn: func(string) { warned = true }}
	if _, _, err := IFD(g, model, []float64{0}, acc, opts, st, 0.1, newRNG(6)); err != nil {
		t.Fatal(err)
	}
	if st.V >= 50 {
		t.Fatalf("V = %g, want lowered from 50 when adds dominate", st.V)
	}
	if !warned {
		t.Fatal("expected the imbalance warning")
	}
}

func TestArcCorrection(t *testing.T) {
	g := testutil.RandomGraph(t, 10, 30, true, 1)
	p := &Proposer{}
	want := math.Log(float64(10*9-30) / float64(30+1))
	if got := ArcCorrection(g, p); math.Abs(got-want) > 1e-12 {
		t.Fatalf("ArcCorrection = %g, want %g", got, want)
	}
}

func TestTNTSampler(t *testing.T) {
	g := testutil.RandomGraph(t, 12, 24, true, 21)
	model := arcRecipModel(t, g)
	acc := NewAccumulators(model.N())
	opts := Options{Steps: 5000, PerformMove: true, Proposer: &Proposer{}}
	rate, err := TNT(g, model, []float64{-1, 0.5}, acc, opts, newRNG(31))
	if err != nil {
		t.Fatal(err)
	}
	if rate <= 0 || rate > 1 {
		t.Fatalf("acceptance rate = %g out of range", rate)
	}
	testutil.AssertArcListConsistent(t, g)
	testutil.AssertTwoPathCounts(t, g)
}

func TestProposerRetryBound(t *testing.T) {
	// Complete directed graph: no add candidate exists.
	g := graph.New(4, true)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				if err := g.InsertArc(i, j); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	p := &Proposer{MaxRetries: 200}
	_, _, err := p.AddCandidate(g, newRNG(7))
	if !errors.Is(err, ErrProposalExhausted) {
		t.Fatalf("err = %v, want ErrProposalExhausted", err)
	}
}

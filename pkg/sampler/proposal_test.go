package sampler

import (
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// Three waves: seeds {0,1}, wave 1 {2,3,4}, wave 2 (outermost) {5,6,7}.
func snowballGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(8, true)
	if err := g.SetZones([]int{0, 0, 1, 1, 1, 2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	for _, a := range [][2]int{{0, 2}, {1, 3}, {2, 4}, {3, 5}, {4, 6}, {0, 1}} {
		if err := g.InsertArc(a[0], a[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

// Over many proposals the snowball regime never offers an add between
// non-adjacent waves or outside the inner node set, and never offers a
// delete that would cut a node's last tie to its previous wave.
func TestSnowballProposals(t *testing.T) {
	g := snowballGraph(t)
	p := &Proposer{Regime: Snowball}
	rng := newRNG(11)

	for k := 0; k < 100000; k++ {
		i, j, err := p.AddCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		if g.Zone(i) == g.MaxZone() || g.Zone(j) == g.MaxZone() {
			t.Fatalf("add candidate (%d,%d) touches the outermost wave", i, j)
		}
		if d := g.Zone(i) - g.Zone(j); d > 1 || d < -1 {
			t.Fatalf("add candidate (%d,%d) spans non-adjacent waves", i, j)
		}
		if g.IsArc(i, j) || i == j {
			t.Fatalf("add candidate (%d,%d) is not a valid toggle", i, j)
		}
	}

	for k := 0; k < 100000; k++ {
		a, ok, err := p.DeleteCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("fixture has deletable inner arcs")
		}
		if g.Zone(a.I) == g.MaxZone() || g.Zone(a.J) == g.MaxZone() {
			t.Fatalf("delete candidate (%d,%d) is not an inner arc", a.I, a.J)
		}
		if g.Zone(a.J) == g.Zone(a.I)-1 && g.PrevWaveDegree(a.I) == 1 {
			t.Fatalf("delete candidate (%d,%d) would orphan node %d from its previous wave", a.I, a.J, a.I)
		}
		if g.Zone(a.I) == g.Zone(a.J)-1 && g.PrevWaveDegree(a.J) == 1 {
			t.Fatalf("delete candidate (%d,%d) would orphan node %d from its previous wave", a.I, a.J, a.J)
		}
	}
}

func TestCitationProposals(t *testing.T) {
	g := graph.New(6, true)
	if err := g.SetTerms([]int{0, 0, 1, 1, 2, 2}); err != nil {
		t.Fatal(err)
	}
	for _, a := range [][2]int{{4, 0}, {5, 1}, {0, 1}} {
		if err := g.InsertArc(a[0], a[1]); err != nil {
			t.Fatal(err)
		}
	}
	p := &Proposer{Regime: Citation}
	rng := newRNG(13)

	for k := 0; k < 20000; k++ {
		i, j, err := p.AddCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		if g.Term(i) != g.MaxTerm() {
			t.Fatalf("add candidate tail %d is not a max-term node", i)
		}
		if i == j || g.IsArc(i, j) {
			t.Fatalf("add candidate (%d,%d) is not a valid toggle", i, j)
		}
	}
	for k := 0; k < 20000; k++ {
		a, ok, err := p.DeleteCandidate(g, rng)
		if err != nil || !ok {
			t.Fatalf("delete candidate: ok=%v err=%v", ok, err)
		}
		if g.Term(a.I) != g.MaxTerm() {
			t.Fatalf("delete candidate (%d,%d) not sent by a max-term node", a.I, a.J)
		}
	}
}

func TestPlainForbidReciprocity(t *testing.T) {
	g := graph.New(5, true)
	if err := g.InsertArc(0, 1); err != nil {
		t.Fatal(err)
	}
	p := &Proposer{ForbidReciprocity: true}
	rng := newRNG(17)
	for k := 0; k < 20000; k++ {
		i, j, err := p.AddCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		if i == 1 && j == 0 {
			t.Fatal("candidate (1,0) violates forbidReciprocity")
		}
	}
}

func TestPlainAllowLoops(t *testing.T) {
	g := graph.New(3, true)
	p := &Proposer{AllowLoops: true}
	rng := newRNG(19)
	sawLoop := false
	for k := 0; k < 10000 && !sawLoop; k++ {
		i, j, err := p.AddCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		sawLoop = i == j
	}
	if !sawLoop {
		t.Fatal("allowLoops never proposed a loop")
	}
}

func TestBipartiteProposals(t *testing.T) {
	g := graph.New(6, false, graph.WithModeSplit(2))
	p := &Proposer{}
	rng := newRNG(23)
	for k := 0; k < 10000; k++ {
		i, j, err := p.AddCandidate(g, rng)
		if err != nil {
			t.Fatal(err)
		}
		if i >= 2 || j < 2 {
			t.Fatalf("candidate (%d,%d) is not cross-mode", i, j)
		}
	}
	if got := p.NumCandidateDyads(g); got != 2*4 {
		t.Fatalf("NumCandidateDyads = %d, want 8", got)
	}
}

func TestNumCandidateDyads(t *testing.T) {
	directed := graph.New(7, true)
	cases := []struct {
		name string
		p    Proposer
		want int
	}{
		{"plain", Proposer{}, 42},
		{"loops", Proposer{AllowLoops: true}, 49},
		{"forbid reciprocity", Proposer{ForbidReciprocity: true}, 21},
	}
	for _, tc := range cases {
		if got := tc.p.NumCandidateDyads(directed); got != tc.want {
			t.Errorf("%s: NumCandidateDyads = %d, want %d", tc.name, got, tc.want)
		}
	}

	undirected := graph.New(7, false)
	if got := (&Proposer{}).NumCandidateDyads(undirected); got != 21 {
		t.Errorf("undirected: NumCandidateDyads = %d, want 21", got)
	}
}

package graph

import "testing"

// Three waves on six nodes: seeds {0,1}, wave 1 {2,3}, wave 2 {4,5}.
func zoneFixture(t *testing.T) *Graph {
	t.Helper()
	g := New(6, true)
	if err := g.SetZones([]int{0, 0, 1, 1, 2, 2}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSetZones(t *testing.T) {
	g := zoneFixture(t)
	if g.MaxZone() != 2 {
		t.Fatalf("MaxZone = %d, want 2", g.MaxZone())
	}
	inner := g.InnerNodes()
	if len(inner) != 4 {
		t.Fatalf("inner nodes = %v, want the four nodes of waves 0 and 1", inner)
	}
	for _, i := range inner {
		if g.Zone(i) == g.MaxZone() {
			t.Fatalf("outermost node %d listed as inner", i)
		}
	}
	// Ordered dyads among {0,1,2,3} at most one wave apart: all 12.
	if g.NumInnerDyads() != 12 {
		t.Fatalf("NumInnerDyads = %d, want 12", g.NumInnerDyads())
	}
}

func TestZoneSideListsOnMutation(t *testing.T) {
	g := zoneFixture(t)
	mustInsert(t, g, 0, 2) // inner-inner
	mustInsert(t, g, 2, 4) // inner-outer
	mustInsert(t, g, 3, 1) // inner-inner, tail in wave 1

	if g.NumInnerArcs() != 2 {
		t.Fatalf("NumInnerArcs = %d, want 2", g.NumInnerArcs())
	}
	// Node 2 (wave 1) has one neighbour in wave 0 via arc 0->2.
	if g.PrevWaveDegree(2) != 1 {
		t.Fatalf("PrevWaveDegree(2) = %d, want 1", g.PrevWaveDegree(2))
	}
	// Node 3 (wave 1) is tail of 3->1 into wave 0.
	if g.PrevWaveDegree(3) != 1 {
		t.Fatalf("PrevWaveDegree(3) = %d, want 1", g.PrevWaveDegree(3))
	}
	// Node 4 (wave 2) gained a wave-1 neighbour via 2->4.
	if g.PrevWaveDegree(4) != 1 {
		t.Fatalf("PrevWaveDegree(4) = %d, want 1", g.PrevWaveDegree(4))
	}

	mustRemove(t, g, 0, 2)
	if g.NumInnerArcs() != 1 || g.PrevWaveDegree(2) != 0 {
		t.Fatal("zone side lists not updated on remove")
	}
}

func TestSetZonesAfterArcs(t *testing.T) {
	g := New(4, true)
	mustInsert(t, g, 0, 1)
	mustInsert(t, g, 1, 3)
	if err := g.SetZones([]int{0, 1, 1, 2}); err != nil {
		t.Fatal(err)
	}
	if g.NumInnerArcs() != 1 {
		t.Fatalf("NumInnerArcs = %d, want only the (0,1) arc", g.NumInnerArcs())
	}
	if g.PrevWaveDegree(1) != 1 || g.PrevWaveDegree(3) != 1 {
		t.Fatal("prev-wave degrees not rebuilt from existing arcs")
	}
}

func TestSetZonesErrors(t *testing.T) {
	g := New(3, true)
	if err := g.SetZones([]int{0, 1}); err == nil {
		t.Fatal("dimension mismatch must fail")
	}
	if err := g.SetZones([]int{0, -1, 1}); err == nil {
		t.Fatal("negative zone must fail")
	}
}

func TestSetTerms(t *testing.T) {
	g := New(5, true)
	mustInsert(t, g, 4, 0)
	mustInsert(t, g, 1, 2)
	if err := g.SetTerms([]int{0, 1, 1, 2, 2}); err != nil {
		t.Fatal(err)
	}
	if g.MaxTerm() != 2 {
		t.Fatalf("MaxTerm = %d, want 2", g.MaxTerm())
	}
	if len(g.MaxTermNodes()) != 2 {
		t.Fatalf("MaxTermNodes = %v, want nodes 3 and 4", g.MaxTermNodes())
	}
	if g.NumMaxTermSenderArcs() != 1 {
		t.Fatalf("NumMaxTermSenderArcs = %d, want only (4,0)", g.NumMaxTermSenderArcs())
	}

	mustInsert(t, g, 3, 1)
	if g.NumMaxTermSenderArcs() != 2 {
		t.Fatal("max-term sender list not updated on insert")
	}
	mustRemove(t, g, 4, 0)
	if g.NumMaxTermSenderArcs() != 1 || g.MaxTermSenderArc(0) != (Arc{3, 1}) {
		t.Fatal("max-term sender list not updated on remove")
	}
}

func TestSetTermsUndirected(t *testing.T) {
	g := New(3, false)
	if err := g.SetTerms([]int{0, 1, 1}); err == nil {
		t.Fatal("terms on an undirected graph must fail")
	}
}

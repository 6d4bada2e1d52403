package changestats

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

func registryGraph(directed bool) *graph.Graph {
	g := graph.New(5, directed)
	g.BinNames = []string{"gender"}
	g.BinAttr = [][]int{{0, 1, 1, 0, graph.BinNA}}
	g.CatNames = []string{"dept"}
	g.CatAttr = [][]int{{0, 1, 1, 0, 2}}
	g.ContNames = []string{"lat", "lon"}
	g.ContAttr = [][]float64{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}}
	g.SetNames = []string{"topics"}
	g.SetAttr = [][]graph.NodeSet{{nil, {}, {1: {}}, {1: {}, 2: {}}, nil}}
	return g
}

func TestBuildModelOrderingAndNames(t *testing.T) {
	g := registryGraph(true)
	m, err := BuildModel(g,
		[]ParamSpec{{Name: "Arc"}, {Name: "AltInStars", Args: []string{"3.5"}}},
		[]ParamSpec{{Name: "Sender", Args: []string{"gender"}}, {Name: "Matching", Args: []string{"dept"}}},
		[]ParamSpec{{Name: "GeoDistance", Args: []string{"lat", "lon"}}},
		[]ParamSpec{{Name: "MatchingInteraction", Args: []string{"dept", "dept"}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Arc", "AltInStars",
		"Sender.gender", "Matching.dept",
		"GeoDistance.lat.lon",
		"MatchingInteraction.dept.dept",
	}
	got := m.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d named %q, want %q", i, got[i], want[i])
		}
	}
	if !m.HasDensityTerm() {
		t.Fatal("model with Arc must report a density term")
	}
	if m.Stat(1).Kind() != Structural || m.Stat(2).Kind() != Attribute ||
		m.Stat(4).Kind() != Dyadic || m.Stat(5).Kind() != Interaction {
		t.Fatal("family ordering broken")
	}
}

func TestBuildModelErrors(t *testing.T) {
	directed := registryGraph(true)
	undirected := registryGraph(false)
	cases := []struct {
		name       string
		g          *graph.Graph
		structural []ParamSpec
		attr       []ParamSpec
		wantSubstr string
	}{
		{"unknown structural", directed, []ParamSpec{{Name: "Nope"}}, nil, "unknown structural"},
		{"edge on directed", directed, []ParamSpec{{Name: "Edge"}}, nil, "undirected"},
		{"arc on undirected", undirected, []ParamSpec{{Name: "Arc"}}, nil, "directed"},
		{"lambda on Arc", directed, []ParamSpec{{Name: "Arc", Args: []string{"2.0"}}}, nil, "no arguments"},
		{"bad lambda", directed, []ParamSpec{{Name: "AltInStars", Args: []string{"0.5"}}}, nil, "lambda"},
		{"unknown attr param", directed, nil, []ParamSpec{{Name: "Nope", Args: []string{"gender"}}}, "unknown attribute"},
		{"missing attr column", directed, nil, []ParamSpec{{Name: "Sender", Args: []string{"height"}}}, "not loaded"},
		{"attr arity", directed, nil, []ParamSpec{{Name: "Sender"}}, "exactly one"},
		{"sender on undirected", undirected, nil, []ParamSpec{{Name: "Sender", Args: []string{"gender"}}}, "directed"},
		{"empty model", directed, nil, nil, "no parameters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildModel(tc.g, tc.structural, tc.attr, nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSubstr)
			}
		})
	}
}

func TestHasDensityTermEdge(t *testing.T) {
	g := registryGraph(false)
	m, err := BuildModel(g, []ParamSpec{{Name: "Edge"}, {Name: "AltStars"}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasDensityTerm() {
		t.Fatal("Edge must count as the density term")
	}
	m2, err := BuildModel(g, []ParamSpec{{Name: "AltStars"}}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m2.HasDensityTerm() {
		t.Fatal("model without Edge must not report a density term")
	}
}

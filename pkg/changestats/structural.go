package changestats

import (
	"math"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// decay returns the geometric base 1 - 1/lambda shared by the alternating
// statistics.
func decay(lambda float64) float64 { return 1 - 1/lambda }

// changeArc: density term for directed graphs.
func changeArc(_ *graph.Graph, _, _ int, _ float64) float64 { return 1 }

// changeEdge: density term for undirected graphs.
func changeEdge(_ *graph.Graph, _, _ int, _ float64) float64 { return 1 }

// changeReciprocity counts the mutual dyad closed by adding i->j.
func changeReciprocity(g *graph.Graph, i, j int, _ float64) float64 {
	if i == j {
		return 0
	}
	if g.IsArc(j, i) {
		return 1
	}
	return 0
}

// changeAltInStars: alternating in-star statistic, driven by the in-degree
// the receiver holds before the toggle.
func changeAltInStars(g *graph.Graph, _, j int, lambda float64) float64 {
	return lambda * (1 - math.Pow(decay(lambda), float64(g.InDegree(j))))
}

// changeAltOutStars: alternating out-star statistic on the sender's
// out-degree.
func changeAltOutStars(g *graph.Graph, i, _ int, lambda float64) float64 {
	return lambda * (1 - math.Pow(decay(lambda), float64(g.OutDegree(i))))
}

// changeAltKTrianglesT: alternating transitive k-triangles. Adding i->j
// closes every two-path i->v->j as a new triangle base, and extends the
// k-triangle count of each base arc i->v with j->v present and each base
// v->j with v->i present.
func changeAltKTrianglesT(g *graph.Graph, i, j int, lambda float64) float64 {
	b := decay(lambda)
	delta := lambda * (1 - math.Pow(b, float64(g.MixTwoPaths(i, j))))
	for _, v := range g.OutNeighbors(i) {
		if v == i || v == j {
			continue
		}
		if g.IsArc(j, v) {
			delta += math.Pow(b, float64(g.MixTwoPaths(i, v)))
		}
	}
	for _, v := range g.InNeighbors(j) {
		if v == i || v == j {
			continue
		}
		if g.IsArc(v, i) {
			delta += math.Pow(b, float64(g.MixTwoPaths(v, j)))
		}
	}
	return delta
}

// changeAltTwoPathsT: alternating transitive two-paths. Adding i->j creates
// the two-paths i->j->v and u->i->j.
func changeAltTwoPathsT(g *graph.Graph, i, j int, lambda float64) float64 {
	b := decay(lambda)
	delta := 0.0
	for _, v := range g.OutNeighbors(j) {
		if v == i || v == j {
			continue
		}
		delta += math.Pow(b, float64(g.MixTwoPaths(i, v)))
	}
	for _, u := range g.InNeighbors(i) {
		if u == i || u == j {
			continue
		}
		delta += math.Pow(b, float64(g.MixTwoPaths(u, j)))
	}
	return delta
}

// changeSink: nodes with incoming but no outgoing arcs.
func changeSink(g *graph.Graph, i, j int, _ float64) float64 {
	if i == j {
		return 0
	}
	delta := 0.0
	if g.OutDegree(i) == 0 && g.InDegree(i) != 0 {
		delta-- // i stops being a sink
	}
	if g.OutDegree(j) == 0 && g.InDegree(j) == 0 {
		delta++ // isolated j becomes a sink
	}
	return delta
}

// changeSource: nodes with outgoing but no incoming arcs.
func changeSource(g *graph.Graph, i, j int, _ float64) float64 {
	if i == j {
		return 0
	}
	delta := 0.0
	if g.InDegree(j) == 0 && g.OutDegree(j) != 0 {
		delta-- // j stops being a source
	}
	if g.InDegree(i) == 0 && g.OutDegree(i) == 0 {
		delta++ // isolated i becomes a source
	}
	return delta
}

// changeIsolates counts nodes with no ties at all.
func changeIsolates(g *graph.Graph, i, j int, _ float64) float64 {
	delta := 0.0
	if g.Degree(i) == 0 {
		delta--
	}
	if i != j && g.Degree(j) == 0 {
		delta--
	}
	return delta
}

// changeAltStars: undirected alternating k-stars on both endpoint degrees.
func changeAltStars(g *graph.Graph, i, j int, lambda float64) float64 {
	b := decay(lambda)
	return lambda*(1-math.Pow(b, float64(g.Degree(i)))) +
		lambda*(1-math.Pow(b, float64(g.Degree(j))))
}

// changeAltTwoPaths: undirected alternating two-paths through each endpoint.
func changeAltTwoPaths(g *graph.Graph, i, j int, lambda float64) float64 {
	b := decay(lambda)
	delta := 0.0
	for _, v := range g.InNeighbors(j) {
		if v == i || v == j {
			continue
		}
		delta += math.Pow(b, float64(g.TwoPaths(i, v)))
	}
	for _, v := range g.InNeighbors(i) {
		if v == i || v == j {
			continue
		}
		delta += math.Pow(b, float64(g.TwoPaths(v, j)))
	}
	return delta
}

// changeAltKTriangles: undirected alternating k-triangles. Each common
// neighbour v of i and j closes a triangle and extends the counts on both of
// its base edges.
func changeAltKTriangles(g *graph.Graph, i, j int, lambda float64) float64 {
	b := decay(lambda)
	delta := lambda * (1 - math.Pow(b, float64(g.TwoPaths(i, j))))
	for _, v := range g.InNeighbors(i) {
		if v == i || v == j {
			continue
		}
		if g.IsArc(j, v) {
			delta += math.Pow(b, float64(g.TwoPaths(i, v))) +
				math.Pow(b, float64(g.TwoPaths(j, v)))
		}
	}
	return delta
}

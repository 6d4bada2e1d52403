package changestats

import (
	"math"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// A missing (NA) attribute value contributes 0: statistics that combine both
// endpoints' values return 0 when either is missing, and changeActivity adds
// only the endpoint values that are present.

func changeSender(g *graph.Graph, i, _ int, a int) float64 {
	v := g.BinAttr[a][i]
	if v == graph.BinNA {
		return 0
	}
	return float64(v)
}

func changeReceiver(g *graph.Graph, _, j int, a int) float64 {
	v := g.BinAttr[a][j]
	if v == graph.BinNA {
		return 0
	}
	return float64(v)
}

func changeInteraction(g *graph.Graph, i, j int, a int) float64 {
	vi, vj := g.BinAttr[a][i], g.BinAttr[a][j]
	if vi == graph.BinNA || vj == graph.BinNA {
		return 0
	}
	return float64(vi * vj)
}

// changeActivity: undirected binary activity of both endpoints.
func changeActivity(g *graph.Graph, i, j int, a int) float64 {
	delta := 0.0
	if v := g.BinAttr[a][i]; v != graph.BinNA {
		delta += float64(v)
	}
	if v := g.BinAttr[a][j]; v != graph.BinNA {
		delta += float64(v)
	}
	return delta
}

func changeMatching(g *graph.Graph, i, j int, a int) float64 {
	ci, cj := g.CatAttr[a][i], g.CatAttr[a][j]
	if ci == graph.CatNA || cj == graph.CatNA || ci != cj {
		return 0
	}
	return 1
}

func changeMatchingReciprocity(g *graph.Graph, i, j int, a int) float64 {
	if i == j || changeMatching(g, i, j, a) == 0 || !g.IsArc(j, i) {
		return 0
	}
	return 1
}

func changeContinuousSender(g *graph.Graph, i, _ int, a int) float64 {
	v := g.ContAttr[a][i]
	if graph.IsContNA(v) {
		return 0
	}
	return v
}

func changeContinuousReceiver(g *graph.Graph, _, j int, a int) float64 {
	v := g.ContAttr[a][j]
	if graph.IsContNA(v) {
		return 0
	}
	return v
}

func changeDiff(g *graph.Graph, i, j int, a int) float64 {
	vi, vj := g.ContAttr[a][i], g.ContAttr[a][j]
	if graph.IsContNA(vi) || graph.IsContNA(vj) {
		return 0
	}
	return math.Abs(vi - vj)
}

func changeJaccardSimilarity(g *graph.Graph, i, j int, a int) float64 {
	return graph.JaccardIndex(g.SetAttr[a][i], g.SetAttr[a][j])
}

const earthRadiusKm = 6371.0

// changeGeoDistance: great-circle distance in kilometres between the
// endpoints, from latitude/longitude columns in degrees.
func changeGeoDistance(g *graph.Graph, i, j int, latAttr, lonAttr int) float64 {
	lat1, lon1 := g.ContAttr[latAttr][i], g.ContAttr[lonAttr][i]
	lat2, lon2 := g.ContAttr[latAttr][j], g.ContAttr[lonAttr][j]
	if graph.IsContNA(lat1) || graph.IsContNA(lon1) || graph.IsContNA(lat2) || graph.IsContNA(lon2) {
		return 0
	}
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := phi2 - phi1
	dLam := (lon2 - lon1) * math.Pi / 180
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLam/2)*math.Sin(dLam/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// changeEuclideanDistance: planar distance between the endpoints from two
// coordinate columns.
func changeEuclideanDistance(g *graph.Graph, i, j int, xAttr, yAttr int) float64 {
	x1, y1 := g.ContAttr[xAttr][i], g.ContAttr[yAttr][i]
	x2, y2 := g.ContAttr[xAttr][j], g.ContAttr[yAttr][j]
	if graph.IsContNA(x1) || graph.IsContNA(y1) || graph.IsContNA(x2) || graph.IsContNA(y2) {
		return 0
	}
	return math.Hypot(x2-x1, y2-y1)
}

// changeMatchingInteraction: the dyad matches on both categorical columns.
func changeMatchingInteraction(g *graph.Graph, i, j int, a1, a2 int) float64 {
	if changeMatching(g, i, j, a1) == 0 || changeMatching(g, i, j, a2) == 0 {
		return 0
	}
	return 1
}

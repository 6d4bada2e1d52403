package graph

import "math"

// Missing-value sentinels. Continuous attributes use NaN.
const (
	BinNA = -1
	CatNA = -1
)

// NodeSet is a set-valued attribute for one node. A nil NodeSet means the
// value is missing; an allocated empty set means "none".
type NodeSet map[int]struct{}

// ContNA returns the continuous missing-value sentinel.
func ContNA() float64 { return math.NaN() }

// IsContNA reports whether a continuous value is the missing sentinel.
func IsContNA(v float64) bool { return math.IsNaN(v) }

// FindBinAttr returns the index of the named binary attribute.
func (g *Graph) FindBinAttr(name string) (int, bool) { return findName(g.BinNames, name) }

// FindCatAttr returns the index of the named categorical attribute.
func (g *Graph) FindCatAttr(name string) (int, bool) { return findName(g.CatNames, name) }

// FindContAttr returns the index of the named continuous attribute.
func (g *Graph) FindContAttr(name string) (int, bool) { return findName(g.ContNames, name) }

// FindSetAttr returns the index of the named set attribute.
func (g *Graph) FindSetAttr(name string) (int, bool) { return findName(g.SetNames, name) }

func findName(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// JaccardIndex computes |a n b| / |a u b| for two set attributes. Either set
// being missing, or both being empty, yields 0.
func JaccardIndex(a, b NodeSet) float64 {
	if a == nil || b == nil {
		return 0
	}
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for v := range small {
		if _, ok := large[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

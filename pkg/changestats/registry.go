package changestats

import (
	"fmt"
	"strconv"

	"github.com/vanderheijden86/estimnet/pkg/graph"
)

// DefaultLambda is the decay parameter used by alternating statistics when
// the configuration does not supply one.
const DefaultLambda = 2.0

// ParamSpec is one entry of a configuration parameter list: the statistic
// name and its raw arguments (a lambda for structural statistics, attribute
// names otherwise).
type ParamSpec struct {
	Name string
	Args []string
}

func (p ParamSpec) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	s := p.Name + "("
	for i, a := range p.Args {
		if i > 0 {
			s += ","
		}
		s += a
	}
	return s + ")"
}

type structuralEntry struct {
	fn        StructuralFunc
	hasLambda bool
	directed  bool // required direction; valid when dirOnly
	dirOnly   bool
}

var structuralTable = map[string]structuralEntry{
	"Arc":            {fn: changeArc, directed: true, dirOnly: true},
	"Reciprocity":    {fn: changeReciprocity, directed: true, dirOnly: true},
	"AltInStars":     {fn: changeAltInStars, hasLambda: true, directed: true, dirOnly: true},
	"AltOutStars":    {fn: changeAltOutStars, hasLambda: true, directed: true, dirOnly: true},
	"AltKTrianglesT": {fn: changeAltKTrianglesT, hasLambda: true, directed: true, dirOnly: true},
	"AltTwoPathsT":   {fn: changeAltTwoPathsT, hasLambda: true, directed: true, dirOnly: true},
	"Sink":           {fn: changeSink, directed: true, dirOnly: true},
	"Source":         {fn: changeSource, directed: true, dirOnly: true},
	"Isolates":       {fn: changeIsolates},

	"Edge":           {fn: changeEdge, directed: false, dirOnly: true},
	"AltStars":       {fn: changeAltStars, hasLambda: true, directed: false, dirOnly: true},
	"AltTwoPaths":    {fn: changeAltTwoPaths, hasLambda: true, directed: false, dirOnly: true},
	"AltKTriangles":  {fn: changeAltKTriangles, hasLambda: true, directed: false, dirOnly: true},
}

type attrFamily int

const (
	binaryFamily attrFamily = iota
	categoricalFamily
	continuousFamily
	setFamily
)

type attrEntry struct {
	fn       AttrFunc
	family   attrFamily
	directed bool
	dirOnly  bool
}

var attrTable = map[string]attrEntry{
	"Sender":              {fn: changeSender, family: binaryFamily, directed: true, dirOnly: true},
	"Receiver":            {fn: changeReceiver, family: binaryFamily, directed: true, dirOnly: true},
	"Interaction":         {fn: changeInteraction, family: binaryFamily},
	"Activity":            {fn: changeActivity, family: binaryFamily, directed: false, dirOnly: true},
	"Matching":            {fn: changeMatching, family: categoricalFamily},
	"MatchingReciprocity": {fn: changeMatchingReciprocity, family: categoricalFamily, directed: true, dirOnly: true},
	"ContinuousSender":    {fn: changeContinuousSender, family: continuousFamily, directed: true, dirOnly: true},
	"ContinuousReceiver":  {fn: changeContinuousReceiver, family: continuousFamily, directed: true, dirOnly: true},
	"Diff":                {fn: changeDiff, family: continuousFamily},
	"JaccardSimilarity":   {fn: changeJaccardSimilarity, family: setFamily},
}

type pairEntry struct {
	fn     PairFunc
	family attrFamily
}

var dyadicTable = map[string]pairEntry{
	"GeoDistance":       {fn: changeGeoDistance, family: continuousFamily},
	"EuclideanDistance": {fn: changeEuclideanDistance, family: continuousFamily},
}

var interactionTable = map[string]pairEntry{
	"MatchingInteraction": {fn: changeMatchingInteraction, family: categoricalFamily},
}

// BuildModel resolves the four parameter lists against the loaded graph and
// returns the bound model. Unknown names, wrong argument counts, unknown
// attribute names and direction mismatches are all configuration errors.
func BuildModel(g *graph.Graph, structural, attr, dyadic, interaction []ParamSpec) (*Model, error) {
	m := &Model{}
	for _, spec := range structural {
		entry, ok := structuralTable[spec.Name]
		if !ok {
			return nil, fmt.Errorf("unknown structural parameter %q", spec.Name)
		}
		if entry.dirOnly && entry.directed != g.Directed() {
			return nil, fmt.Errorf("structural parameter %q requires a %s graph", spec.Name, direction(entry.directed))
		}
		lambda := DefaultLambda
		switch {
		case len(spec.Args) == 0:
		case len(spec.Args) == 1 && entry.hasLambda:
			v, err := strconv.ParseFloat(spec.Args[0], 64)
			if err != nil || v <= 1 {
				return nil, fmt.Errorf("structural parameter %s: lambda must be a float > 1", spec)
			}
			lambda = v
		case entry.hasLambda:
			return nil, fmt.Errorf("structural parameter %s: want at most one lambda argument", spec)
		default:
			return nil, fmt.Errorf("structural parameter %s takes no arguments", spec)
		}
		m.stats = append(m.stats, Stat{
			name: spec.Name, kind: Structural,
			structuralFn: entry.fn, lambda: lambda,
		})
	}

	for _, spec := range attr {
		entry, ok := attrTable[spec.Name]
		if !ok {
			return nil, fmt.Errorf("unknown attribute parameter %q", spec.Name)
		}
		if entry.dirOnly && entry.directed != g.Directed() {
			return nil, fmt.Errorf("attribute parameter %q requires a %s graph", spec.Name, direction(entry.directed))
		}
		if len(spec.Args) != 1 {
			return nil, fmt.Errorf("attribute parameter %s: want exactly one attribute name", spec)
		}
		idx, err := resolveAttr(g, entry.family, spec.Args[0])
		if err != nil {
			return nil, fmt.Errorf("attribute parameter %s: %w", spec, err)
		}
		m.stats = append(m.stats, Stat{
			name: spec.Name + "." + spec.Args[0], kind: Attribute,
			attrFn: entry.fn, attr: idx,
		})
	}

	for _, spec := range dyadic {
		stat, err := buildPair(g, spec, dyadicTable, Dyadic, "dyadic")
		if err != nil {
			return nil, err
		}
		m.stats = append(m.stats, stat)
	}

	for _, spec := range interaction {
		stat, err := buildPair(g, spec, interactionTable, Interaction, "attribute-interaction")
		if err != nil {
			return nil, err
		}
		m.stats = append(m.stats, stat)
	}

	if m.N() == 0 {
		return nil, fmt.Errorf("model has no parameters")
	}
	for i := range m.stats {
		m.names = append(m.names, m.stats[i].name)
	}
	return m, nil
}

func buildPair(g *graph.Graph, spec ParamSpec, table map[string]pairEntry, kind Kind, what string) (Stat, error) {
	entry, ok := table[spec.Name]
	if !ok {
		return Stat{}, fmt.Errorf("unknown %s parameter %q", what, spec.Name)
	}
	if len(spec.Args) != 2 {
		return Stat{}, fmt.Errorf("%s parameter %s: want exactly two attribute names", what, spec)
	}
	a1, err := resolveAttr(g, entry.family, spec.Args[0])
	if err != nil {
		return Stat{}, fmt.Errorf("%s parameter %s: %w", what, spec, err)
	}
	a2, err := resolveAttr(g, entry.family, spec.Args[1])
	if err != nil {
		return Stat{}, fmt.Errorf("%s parameter %s: %w", what, spec, err)
	}
	return Stat{
		name: spec.Name + "." + spec.Args[0] + "." + spec.Args[1], kind: kind,
		pairFn: entry.fn, attr: a1, attr2: a2,
	}, nil
}

func resolveAttr(g *graph.Graph, family attrFamily, name string) (int, error) {
	var (
		idx int
		ok  bool
	)
	switch family {
	case binaryFamily:
		idx, ok = g.FindBinAttr(name)
	case categoricalFamily:
		idx, ok = g.FindCatAttr(name)
	case continuousFamily:
		idx, ok = g.FindContAttr(name)
	case setFamily:
		idx, ok = g.FindSetAttr(name)
	}
	if !ok {
		return 0, fmt.Errorf("attribute %q not loaded", name)
	}
	return idx, nil
}

func direction(directed bool) string {
	if directed {
		return "directed"
	}
	return "undirected"
}

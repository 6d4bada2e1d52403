package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AttrKind selects how an attribute file's columns are parsed.
type AttrKind int

const (
	// BinaryAttr columns hold 0/1 values, NA or -1 for missing.
	BinaryAttr AttrKind = iota
	// CategoricalAttr columns hold non-negative category codes, NA or -1
	// for missing.
	CategoricalAttr
	// ContinuousAttr columns hold floats, NA for missing.
	ContinuousAttr
	// SetAttr columns hold comma-separated element lists, "none" for the
	// empty set and NA for missing.
	SetAttr
)

// LoadAttributesFile reads a whitespace-separated attribute file (first line
// attribute names, one row per node) and appends its columns to the graph.
func (g *Graph) LoadAttributesFile(path string, kind AttrKind) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attribute file: %w", err)
	}
	defer f.Close()
	if err := g.ReadAttributes(f, kind); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadAttributes parses attribute columns from r and appends them to the
// graph. The row count must equal the node count.
func (g *Graph) ReadAttributes(r io.Reader, kind AttrKind) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading attributes: %w", err)
		}
		return fmt.Errorf("empty attribute file")
	}
	names := strings.Fields(scanner.Text())
	if len(names) == 0 {
		return fmt.Errorf("attribute header line is empty")
	}
	ncols := len(names)

	intCols := make([][]int, ncols)
	floatCols := make([][]float64, ncols)
	setCols := make([][]NodeSet, ncols)

	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != ncols {
			return fmt.Errorf("row %d: got %d values, want %d", row+1, len(fields), ncols)
		}
		if row >= g.n {
			return fmt.Errorf("more attribute rows than nodes (%d)", g.n)
		}
		for c, field := range fields {
			switch kind {
			case BinaryAttr, CategoricalAttr:
				v, err := parseIntAttr(field, kind)
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", row+1, names[c], err)
				}
				intCols[c] = append(intCols[c], v)
			case ContinuousAttr:
				v, err := parseContAttr(field)
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", row+1, names[c], err)
				}
				floatCols[c] = append(floatCols[c], v)
			case SetAttr:
				v, err := parseSetAttr(field)
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", row+1, names[c], err)
				}
				setCols[c] = append(setCols[c], v)
			}
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading attributes: %w", err)
	}
	if row != g.n {
		return fmt.Errorf("got %d attribute rows for %d nodes", row, g.n)
	}

	switch kind {
	case BinaryAttr:
		g.BinNames = append(g.BinNames, names...)
		g.BinAttr = append(g.BinAttr, intCols...)
	case CategoricalAttr:
		g.CatNames = append(g.CatNames, names...)
		g.CatAttr = append(g.CatAttr, intCols...)
	case ContinuousAttr:
		g.ContNames = append(g.ContNames, names...)
		g.ContAttr = append(g.ContAttr, floatCols...)
	case SetAttr:
		g.SetNames = append(g.SetNames, names...)
		g.SetAttr = append(g.SetAttr, setCols...)
	}
	return nil
}

func isNAToken(s string) bool {
	return strings.EqualFold(s, "NA")
}

func parseIntAttr(s string, kind AttrKind) (int, error) {
	if isNAToken(s) {
		return BinNA, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad integer value %q", s)
	}
	if v == -1 {
		return BinNA, nil
	}
	if kind == BinaryAttr && v != 0 && v != 1 {
		return 0, fmt.Errorf("binary value %d not in {0,1,-1}", v)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative category %d", v)
	}
	return v, nil
}

func parseContAttr(s string) (float64, error) {
	if isNAToken(s) {
		return ContNA(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad float value %q", s)
	}
	return v, nil
}

func parseSetAttr(s string) (NodeSet, error) {
	if isNAToken(s) {
		return nil, nil
	}
	set := make(NodeSet)
	if strings.EqualFold(s, "none") {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("bad set element %q", part)
		}
		set[v] = struct{}{}
	}
	return set, nil
}

// LoadIntColumnFile reads a single-column integer file with a one-line header
// (the zone and term file formats) and returns one value per row.
func LoadIntColumnFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%s: empty file", path)
	}
	var vals []int
	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row++
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad integer %q", path, row, line)
		}
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}

package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// PajekOptions configures reading of Pajek network files.
type PajekOptions struct {
	Directed bool
	// NumModeA marks the graph bipartite with the given first-mode size.
	NumModeA int
	// Sparse selects hash-backed two-path tables.
	Sparse bool
	// WarningHandler receives non-fatal messages (e.g. duplicate arcs).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)
}

// LoadPajekFile reads a Pajek arc-list file from disk.
func LoadPajekFile(path string, opts PajekOptions) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network file: %w", err)
	}
	defer f.Close()
	g, err := ReadPajek(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadPajek parses a Pajek arc list: a "*vertices N" header followed by an
// optional "*arcs" or "*edges" section of 1-based "i j" pairs. Node labels on
// vertex lines are ignored; duplicate pairs produce a warning and are
// skipped.
func ReadPajek(r io.Reader, opts PajekOptions) (*Graph, error) {
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { fmt.Fprintf(os.Stderr, "Warning: %s\n", msg) }
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var g *Graph
	inArcs := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "*vertices"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: malformed *vertices line", lineNum)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: bad vertex count %q", lineNum, fields[1])
			}
			var gopts []Option
			if opts.Sparse {
				gopts = append(gopts, WithSparseTwoPaths())
			}
			if opts.NumModeA > 0 {
				gopts = append(gopts, WithModeSplit(opts.NumModeA))
			}
			g = New(n, opts.Directed, gopts...)
		case strings.HasPrefix(lower, "*arcs"), strings.HasPrefix(lower, "*edges"):
			if g == nil {
				return nil, fmt.Errorf("line %d: %s before *vertices", lineNum, fields0(line))
			}
			inArcs = true
		case strings.HasPrefix(lower, "*"):
			inArcs = false
		default:
			if g == nil {
				return nil, fmt.Errorf("line %d: data before *vertices", lineNum)
			}
			if !inArcs {
				continue // vertex label lines
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: expected \"i j\" pair", lineNum)
			}
			i, err1 := strconv.Atoi(fields[0])
			j, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: non-integer node id", lineNum)
			}
			i-- // Pajek ids are 1-based
			j--
			if i < 0 || i >= g.n || j < 0 || j >= g.n {
				return nil, fmt.Errorf("line %d: node id out of range 1..%d", lineNum, g.n)
			}
			if g.IsArc(i, j) {
				warn(fmt.Sprintf("line %d: duplicate arc (%d,%d) skipped", lineNum, i+1, j+1))
				continue
			}
			if err := g.InsertArc(i, j); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading network: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("no *vertices header found")
	}
	return g, nil
}

func fields0(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// WritePajek writes the graph in the same arc-list format ReadPajek accepts.
func (g *Graph) WritePajek(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "*vertices %d\n", g.n)
	if g.directed {
		fmt.Fprintln(bw, "*arcs")
	} else {
		fmt.Fprintln(bw, "*edges")
	}
	for _, a := range g.allArcs {
		fmt.Fprintf(bw, "%d %d\n", a.I+1, a.J+1)
	}
	return bw.Flush()
}

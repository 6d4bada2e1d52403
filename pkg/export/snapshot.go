package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/estimnet/pkg/graph"
	"github.com/vanderheijden86/estimnet/pkg/metrics"
)

// NetworkSnapshotOptions controls network snapshot export behaviour.
type NetworkSnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string // Optional title rendered above the layout
	Graph  *graph.Graph
}

const (
	snapshotSize   = 900
	snapshotMargin = 60
	nodeRadius     = 5.0
)

// SaveNetworkSnapshot renders a static circular-layout snapshot (SVG or PNG)
// of a sampled network with a one-line summary. Intended for quick visual
// goodness-of-fit checks, not publication graphics.
func SaveNetworkSnapshot(opts NetworkSnapshotOptions) error {
	defer metrics.Timer(metrics.Export)()
	if opts.Graph == nil {
		return fmt.Errorf("no graph to export")
	}
	if opts.Graph.NumNodes() == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("no output path given")
	}

	if format == "svg" {
		return saveSVG(opts)
	}
	return savePNG(opts)
}

// layout places nodes on a circle; bipartite graphs use two concentric
// rings so cross-mode ties stay readable.
func layout(g *graph.Graph) [][2]float64 {
	n := g.NumNodes()
	pos := make([][2]float64, n)
	cx, cy := float64(snapshotSize)/2, float64(snapshotSize)/2
	rOuter := float64(snapshotSize)/2 - snapshotMargin
	for i := 0; i < n; i++ {
		r := rOuter
		angle := 2 * math.Pi * float64(i) / float64(n)
		if a := g.NumModeA(); a > 0 {
			if i < a {
				r = rOuter * 0.55
				angle = 2 * math.Pi * float64(i) / float64(a)
			} else {
				angle = 2 * math.Pi * float64(i-a) / float64(n-a)
			}
		}
		pos[i] = [2]float64{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pos
}

func summaryLine(g *graph.Graph, title string) string {
	kind := "edges"
	if g.Directed() {
		kind = "arcs"
	}
	s := fmt.Sprintf("%d nodes, %d %s", g.NumNodes(), g.NumArcs(), kind)
	if title != "" {
		s = title + " — " + s
	}
	return s
}

func saveSVG(opts NetworkSnapshotOptions) error {
	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	g := opts.Graph
	pos := layout(g)
	canvas := svg.New(f)
	canvas.Start(snapshotSize, snapshotSize)
	canvas.Rect(0, 0, snapshotSize, snapshotSize, "fill:white")
	canvas.Text(snapshotMargin/2, snapshotMargin/2, summaryLine(g, opts.Title),
		"font-family:monospace;font-size:14px;fill:#333")
	for k := 0; k < g.NumArcs(); k++ {
		a := g.Arc(k)
		p, q := pos[a.I], pos[a.J]
		canvas.Line(int(p[0]), int(p[1]), int(q[0]), int(q[1]),
			"stroke:#8899aa;stroke-width:0.6;stroke-opacity:0.5")
	}
	for i := 0; i < g.NumNodes(); i++ {
		canvas.Circle(int(pos[i][0]), int(pos[i][1]), int(nodeRadius),
			"fill:#3b6ea5;stroke:white;stroke-width:1")
	}
	canvas.End()
	return nil
}

func savePNG(opts NetworkSnapshotOptions) error {
	g := opts.Graph
	pos := layout(g)
	dc := gg.NewContext(snapshotSize, snapshotSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGBA(0.53, 0.6, 0.67, 0.5)
	dc.SetLineWidth(0.6)
	for k := 0; k < g.NumArcs(); k++ {
		a := g.Arc(k)
		p, q := pos[a.I], pos[a.J]
		dc.DrawLine(p[0], p[1], q[0], q[1])
		dc.Stroke()
	}

	dc.SetRGB(0.23, 0.43, 0.65)
	for i := 0; i < g.NumNodes(); i++ {
		dc.DrawCircle(pos[i][0], pos[i][1], nodeRadius)
		dc.Fill()
	}

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawString(summaryLine(g, opts.Title), snapshotMargin/2, snapshotMargin/2)

	if err := dc.SavePNG(opts.Path); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

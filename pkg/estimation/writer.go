package estimation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/vanderheijden86/estimnet/pkg/changestats"
	"github.com/vanderheijden86/estimnet/pkg/config"
)

// trajectoryWriter appends whitespace-separated trajectory rows to a text
// file. Rows are buffered; callers flush at outer-iteration boundaries so a
// killed run loses at most one outer iteration.
type trajectoryWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func newTrajectoryWriter(path, header string) (*trajectoryWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trajectory file: %w", err)
	}
	w := &trajectoryWriter{f: f, bw: bufio.NewWriter(f)}
	if _, err := fmt.Fprintln(w.bw, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write trajectory header: %w", err)
	}
	return w, nil
}

// writeTheta writes a parameter row: iteration, each theta, the optional
// IFD arc column, and the acceptance rate.
func (w *trajectoryWriter) writeTheta(t int, theta []float64, arc *float64, accRate float64) error {
	if _, err := fmt.Fprintf(w.bw, "%d", t); err != nil {
		return fmt.Errorf("write trajectory row: %w", err)
	}
	for _, v := range theta {
		fmt.Fprintf(w.bw, " %g", v)
	}
	if arc != nil {
		fmt.Fprintf(w.bw, " %g", *arc)
	}
	if _, err := fmt.Fprintf(w.bw, " %g\n", accRate); err != nil {
		return fmt.Errorf("write trajectory row: %w", err)
	}
	return nil
}

// writeDzA writes a statistic-drift row: iteration, each accumulator, and
// the optional IFD arc drift column.
func (w *trajectoryWriter) writeDzA(t int, dzA []float64, arc *float64) error {
	if _, err := fmt.Fprintf(w.bw, "%d", t); err != nil {
		return fmt.Errorf("write trajectory row: %w", err)
	}
	for _, v := range dzA {
		fmt.Fprintf(w.bw, " %g", v)
	}
	if arc != nil {
		fmt.Fprintf(w.bw, " %g", *arc)
	}
	if _, err := fmt.Fprintln(w.bw); err != nil {
		return fmt.Errorf("write trajectory row: %w", err)
	}
	return nil
}

func (w *trajectoryWriter) flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush trajectory file: %w", err)
	}
	return nil
}

// close flushes and closes, folding any failure into *errp if it is still
// nil (for use with defer).
func (w *trajectoryWriter) close(errp *error) {
	if err := w.bw.Flush(); err != nil && *errp == nil {
		*errp = fmt.Errorf("flush trajectory file: %w", err)
	}
	if err := w.f.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close trajectory file: %w", err)
	}
}

// arcColumnName is the implicit density column reported under IFD.
func arcColumnName(cfg *config.Config) string {
	if cfg.IsDirected {
		return "Arc"
	}
	return "Edge"
}

func thetaHeader(m *changestats.Model, cfg *config.Config) string {
	cols := append([]string{"t"}, m.Names()...)
	if cfg.UseIFDSampler {
		cols = append(cols, arcColumnName(cfg))
	}
	cols = append(cols, "AcceptanceRate")
	return strings.Join(cols, " ")
}

func dzAHeader(m *changestats.Model, cfg *config.Config) string {
	cols := append([]string{"t"}, m.Names()...)
	if cfg.UseIFDSampler {
		cols = append(cols, arcColumnName(cfg))
	}
	return strings.Join(cols, " ")
}

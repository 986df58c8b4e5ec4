// Package visit writes the observational VTK dumps as uniformly spaced
// STRUCTURED_POINTS datasets (`tea.<x>.<y>.<step>.vtk` plus a
// `tea.visit` index). No VTK-writing
// library exists anywhere in the example corpus, so this
// is built directly on bufio/os — see DESIGN.md for the standard-
// library justification.
package visit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/tealeaf/chunk"
)

// Writer emits per-chunk VTK dumps and maintains the tea.visit index.
type Writer struct {
	dir       string
	frequency int
	index     []string
}

// NewWriter creates a writer rooted at dir, gated by the deck's
// visit_frequency directive (0 disables all output).
func NewWriter(dir string, frequency int) *Writer {
	return &Writer{dir: dir, frequency: frequency}
}

// Enabled reports whether step should produce a dump.
func (w *Writer) Enabled(step int) bool {
	return w.frequency > 0 && step%w.frequency == 0
}

// WriteChunk writes one chunk's U field as a VTK STRUCTURED_POINTS
// dataset for the given step, returning the file's base name so the
// caller can add it to the index.
func (w *Writer) WriteChunk(c *chunk.Chunk, step int) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("visit: creating output dir: %w", err)
	}

	name := fmt.Sprintf("tea.%d.%d.%d.vtk", c.Coord.X, c.Coord.Y, step)
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("visit: creating %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	kMin, kMax, jMin, jMax := c.InteriorBounds()
	nx, ny := kMax-kMin, jMax-jMin

	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(bw, "tealeaf chunk (%d,%d) step %d\n", c.Coord.X, c.Coord.Y, step)
	fmt.Fprintf(bw, "ASCII\nDATASET STRUCTURED_POINTS\n")
	fmt.Fprintf(bw, "DIMENSIONS %d %d 1\n", nx, ny)
	fmt.Fprintf(bw, "ORIGIN %d %d 0\nSPACING 1 1 1\n", c.Left, c.Bottom)
	fmt.Fprintf(bw, "POINT_DATA %d\nSCALARS u double 1\nLOOKUP_TABLE default\n", nx*ny)

	for j := jMin; j < jMax; j++ {
		for k := kMin; k < kMax; k++ {
			fmt.Fprintf(bw, "%g\n", c.U[c.Index(k, j)])
		}
	}

	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("visit: flushing %s: %w", path, err)
	}

	w.index = append(w.index, name)
	return name, nil
}

// WriteIndex writes the tea.visit file listing every dump emitted so
// far, purely observational.
func (w *Writer) WriteIndex() error {
	path := filepath.Join(w.dir, "tea.visit")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("visit: creating index %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, name := range w.index {
		fmt.Fprintln(bw, name)
	}
	return bw.Flush()
}

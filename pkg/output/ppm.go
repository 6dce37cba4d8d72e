// Package output encodes rendered scanlines as image files.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// PPMWriter streams scanlines as a plain-text (P3) PPM image. Output is
// buffered; call Flush after the last row.
type PPMWriter struct {
	w *bufio.Writer
}

// NewPPMWriter creates a PPM writer on top of w
func NewPPMWriter(w io.Writer) *PPMWriter {
	return &PPMWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the P3 magic number, the dimensions and the maximum
// channel value.
func (p *PPMWriter) WriteHeader(width, height int) error {
	_, err := fmt.Fprintf(p.w, "P3\n%d %d\n255\n", width, height)
	return err
}

// WriteRow writes one "r g b" line per pixel
func (p *PPMWriter) WriteRow(y int, row []renderer.RGB) error {
	for _, c := range row {
		if _, err := fmt.Fprintf(p.w, "%d %d %d\n", c.R, c.G, c.B); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (p *PPMWriter) Flush() error {
	return p.w.Flush()
}

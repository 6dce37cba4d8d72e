package output

import (
	"errors"
	"fmt"
	"image/png"
	"io"
)

// PNGWriter collects scanlines in memory and encodes them as PNG on Flush
type PNGWriter struct {
	ImageWriter
	w io.Writer
}

// NewPNGWriter creates a PNG writer that encodes to w
func NewPNGWriter(w io.Writer) *PNGWriter {
	return &PNGWriter{w: w}
}

// Flush encodes the image as PNG
func (p *PNGWriter) Flush() error {
	if p.img == nil {
		return errors.New("no image to encode")
	}
	if err := png.Encode(p.w, p.img); err != nil {
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	return nil
}

package output

import (
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ImageWriter collects scanlines into an in-memory RGBA image
type ImageWriter struct {
	img *image.RGBA
}

// NewImageWriter creates an empty image writer
func NewImageWriter() *ImageWriter {
	return &ImageWriter{}
}

// WriteHeader allocates the image
func (iw *ImageWriter) WriteHeader(width, height int) error {
	iw.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// WriteRow copies row into scanline y of the image
func (iw *ImageWriter) WriteRow(y int, row []renderer.RGB) error {
	if iw.img == nil {
		return fmt.Errorf("row %d written before the header", y)
	}
	for x, c := range row {
		iw.img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return nil
}

// Image returns the image rendered so far, or nil before WriteHeader
func (iw *ImageWriter) Image() *image.RGBA {
	return iw.img
}

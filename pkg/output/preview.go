package output

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
)

// Thumbnail scales img down to at most maxWidth pixels wide, keeping the
// aspect ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxWidth uint) image.Image {
	if maxWidth == 0 || uint(img.Bounds().Dx()) <= maxWidth {
		return img
	}
	return resize.Resize(maxWidth, 0, img, resize.Lanczos3)
}

// WritePreview writes a PNG thumbnail of img to path
func WritePreview(path string, img image.Image, maxWidth uint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("while creating preview file: %w", err)
	}

	if err := png.Encode(f, Thumbnail(img, maxWidth)); err != nil {
		f.Close()
		return fmt.Errorf("while encoding preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("while closing preview file: %w", err)
	}
	return nil
}

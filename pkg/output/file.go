package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrUnsupportedFormat is returned for output paths with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Stdout is the output path that streams PPM to standard output
const Stdout = "-"

// Writer is a RowWriter that buffers its output until Flush
type Writer interface {
	renderer.RowWriter
	Flush() error
}

// FileWriter writes the rendered image to a file, choosing the encoding from
// the file extension.
type FileWriter struct {
	Writer
	path string
	file *os.File
}

// NewFileWriter creates path and returns a writer for it. ".ppm" selects
// plain PPM and ".png" selects PNG. The path "-" streams PPM to stdout.
func NewFileWriter(path string) (*FileWriter, error) {
	if path == Stdout {
		return &FileWriter{Writer: NewPPMWriter(os.Stdout), path: path}, nil
	}

	var newWriter func(f *os.File) Writer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ppm":
		newWriter = func(f *os.File) Writer { return NewPPMWriter(f) }
	case ".png":
		newWriter = func(f *os.File) Writer { return NewPNGWriter(f) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("while creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("while creating output file: %w", err)
	}
	return &FileWriter{Writer: newWriter(f), path: path, file: f}, nil
}

// Path returns the path the writer was created for
func (fw *FileWriter) Path() string {
	return fw.path
}

// Close flushes buffered output and closes the file
func (fw *FileWriter) Close() error {
	flushErr := fw.Flush()
	if fw.file == nil {
		return flushErr
	}
	closeErr := fw.file.Close()
	if flushErr != nil {
		return fmt.Errorf("while flushing %s: %w", fw.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("while closing %s: %w", fw.path, closeErr)
	}
	return nil
}

package output

import "github.com/df07/go-weekend-raytracer/pkg/renderer"

type multiWriter struct {
	writers []renderer.RowWriter
}

func (m *multiWriter) WriteHeader(width, height int) error {
	for _, w := range m.writers {
		if err := w.WriteHeader(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWriter) WriteRow(y int, row []renderer.RGB) error {
	for _, w := range m.writers {
		if err := w.WriteRow(y, row); err != nil {
			return err
		}
	}
	return nil
}

// MultiWriter duplicates every header and row to all writers, in order. The
// first error stops the call and is returned.
func MultiWriter(writers ...renderer.RowWriter) renderer.RowWriter {
	all := make([]renderer.RowWriter, 0, len(writers))
	for _, w := range writers {
		if mw, ok := w.(*multiWriter); ok {
			all = append(all, mw.writers...)
		} else {
			all = append(all, w)
		}
	}
	return &multiWriter{writers: all}
}

package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// MultiWriter writes every p to all its writers. A failing writer does not keep p from
// the others; all failures are returned combined.
type MultiWriter struct {
	writers []io.Writer
}

// NewMultiWriter skips nil writers.
func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

func (mw *MultiWriter) Len() int {
	return len(mw.writers)
}

// Write reports len(p) when at least one writer took all of p.
func (mw *MultiWriter) Write(p []byte) (int, error) {
	var (
		err       error
		delivered bool
	)
	for _, w := range mw.writers {
		n, werr := w.Write(p)
		if werr == nil && n < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delivered = true
	}

	if !delivered {
		return 0, err
	}
	return len(p), err
}

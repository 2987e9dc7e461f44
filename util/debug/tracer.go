package debug

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// traceBytes is the number of leading bytes logged for each read and write.
const traceBytes = 16

// Tracer wraps a file-like value and logs every read, write and seek at
// trace level.
type Tracer[T any] struct {
	inner T
	log   *logrus.Entry
}

// Assert that the Tracer struct satisfies the io interfaces it forwards.
var _ io.ReadWriteSeeker = &Tracer[io.ReadWriteSeeker]{}
var _ io.Closer = &Tracer[io.Closer]{}

// NewTracer wraps inner. Log lines carry a "file" field set to name.
func NewTracer[T any](inner T, log *logrus.Entry, name string) *Tracer[T] {
	return &Tracer[T]{inner: inner, log: log.WithField("file", name)}
}

func head(p []byte) string {
	if len(p) > traceBytes {
		return fmt.Sprintf("%x...", p[:traceBytes])
	}
	return fmt.Sprintf("%x", p)
}

func (t *Tracer[T]) entry(err error) *logrus.Entry {
	if err != nil {
		return t.log.WithError(err)
	}
	return t.log
}

func (t *Tracer[T]) Read(p []byte) (int, error) {
	r, ok := any(t.inner).(io.Reader)
	if !ok {
		return 0, fmt.Errorf("%T is not an io.Reader", t.inner)
	}
	n, err := r.Read(p)
	t.entry(err).Tracef("Read(%d) = %d %s", len(p), n, head(p[:n]))
	return n, err
}

func (t *Tracer[T]) Write(p []byte) (int, error) {
	w, ok := any(t.inner).(io.Writer)
	if !ok {
		return 0, fmt.Errorf("%T is not an io.Writer", t.inner)
	}
	n, err := w.Write(p)
	t.entry(err).Tracef("Write(%d) = %d %s", len(p), n, head(p[:n]))
	return n, err
}

func (t *Tracer[T]) Seek(offset int64, whence int) (int64, error) {
	s, ok := any(t.inner).(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("%T is not an io.Seeker", t.inner)
	}
	pos, err := s.Seek(offset, whence)
	t.entry(err).Tracef("Seek(%d, %d) = %d", offset, whence, pos)
	return pos, err
}

func (t *Tracer[T]) Close() error {
	c, ok := any(t.inner).(io.Closer)
	if !ok {
		return fmt.Errorf("%T is not an io.Closer", t.inner)
	}
	t.log.Trace("Close()")
	return c.Close()
}

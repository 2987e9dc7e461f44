package util

import (
	"errors"
	"fmt"
	"io"
)

var ErrNegativeOffset = errors.New("membuf: negative offset")

// Membuf is an in-memory file. Writes past the end grow it, and reads and
// writes share one position like an *os.File.
type Membuf struct {
	buf []byte
	pos int64
}

// Assert that the Membuf struct satisfies the io.ReadWriteSeeker interface.
var _ io.ReadWriteSeeker = &Membuf{}

// NewMembuf creates an empty Membuf.
func NewMembuf() *Membuf {
	return &Membuf{}
}

// NewMembufBytes creates a Membuf holding a copy of b, positioned at the
// start.
func NewMembufBytes(b []byte) *Membuf {
	return &Membuf{buf: append([]byte{}, b...)}
}

func (m *Membuf) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *Membuf) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *Membuf) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.pos + offset
	case io.SeekEnd:
		pos = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, ErrNegativeOffset
	}
	m.pos = pos
	return pos, nil
}

// Truncate changes the size of the buffer. The position is unchanged.
func (m *Membuf) Truncate(size int64) error {
	if size < 0 {
		return ErrNegativeOffset
	}
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	m.buf = append(m.buf, make([]byte, size-int64(len(m.buf)))...)
	return nil
}

// Len returns the size of the buffer.
func (m *Membuf) Len() int {
	return len(m.buf)
}

// Bytes returns the contents of the buffer. The slice is only valid until
// the next write.
func (m *Membuf) Bytes() []byte {
	return m.buf
}

package util

import (
	"io"
	"math/rand"
)

// RandomReader is an io.Reader that returns Size pseudo-random bytes from a
// seeded math/rand source. Two readers with the same seed return the same
// bytes, which makes them useful as test and benchmark input.
type RandomReader struct {
	Size int64
	rng  *rand.Rand
}

// Assert that RandomReader implements the io.Reader interface.
var _ io.Reader = &RandomReader{}

// NewRandomReader returns a reader of size bytes seeded with seed.
func NewRandomReader(size, seed int64) *RandomReader {
	return &RandomReader{Size: size, rng: rand.New(rand.NewSource(seed))}
}

// Read implements io.Reader
func (r *RandomReader) Read(p []byte) (int, error) {
	if r.Size <= 0 {
		return 0, io.EOF
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(1))
	}
	n := len(p)
	if r.Size < int64(n) {
		n = int(r.Size)
	}
	r.Size -= int64(n)
	return r.rng.Read(p[:n])
}

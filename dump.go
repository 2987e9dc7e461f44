package mincrypt

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OhanaFS/mincrypt/asymmetric"
)

// VectorDump is a diagnostic snapshot of a session's key material.
type VectorDump struct {
	Version    string            `msgpack:"version"`
	Mode       string            `msgpack:"mode"`
	Encoding   string            `msgpack:"encoding"`
	SimpleMode bool              `msgpack:"simple_mode"`
	IVal       uint64            `msgpack:"ival"`
	Vector     []uint32          `msgpack:"vector"`
	KeyBits    int               `msgpack:"key_bits,omitempty"`
	KeyPrivate bool              `msgpack:"key_private,omitempty"`
	Pairs      []asymmetric.Pair `msgpack:"pairs,omitempty"`
}

// Snapshot returns the current state of the session. The snapshot holds
// secret material.
func (s *Session) Snapshot() (*VectorDump, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.schedule.Size() == 0 {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}

	d := &VectorDump{
		Version:    Version().String(),
		Mode:       Symmetric.String(),
		Encoding:   s.encoding.String(),
		SimpleMode: s.simple,
		IVal:       s.schedule.IVal(),
		Vector:     s.schedule.Vector(),
	}
	if s.shift != nil {
		d.Mode = Asymmetric.String()
		if km, ok := s.shift.(*asymmetric.KeyMaterial); ok {
			d.KeyBits = km.Bits
			d.KeyPrivate = km.Private
			d.Pairs = append([]asymmetric.Pair{}, km.Pairs...)
		}
	}
	return d, nil
}

// DumpVectors writes a zstd-compressed msgpack snapshot of the session to w.
func (s *Session) DumpVectors(w io.Writer) error {
	d, err := s.Snapshot()
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(d); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode vector dump: %w", err)
	}
	return zw.Close()
}

// DumpVectorsFile writes the snapshot to path, readable only by the owner.
func (s *Session) DumpVectorsFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := s.DumpVectors(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// ReadVectorDump reads a snapshot written by DumpVectors.
func ReadVectorDump(r io.Reader) (*VectorDump, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer zr.Close()

	d := &VectorDump{}
	if err := msgpack.NewDecoder(zr).Decode(d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return d, nil
}

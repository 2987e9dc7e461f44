package mincrypt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OhanaFS/mincrypt/header"
)

type VerificationResult struct {
	// Chunks is the number of chunks found.
	Chunks int
	// PlainSize is the total plaintext size declared by the chunk headers.
	PlainSize int64
	// BrokenChunks holds the ids of chunks that failed their integrity check,
	// starting from one.
	BrokenChunks []uint32
	// AllGood specifies whether every chunk decrypted and matched its CRC.
	AllGood bool
}

// ChunkInfo describes one chunk found by WalkChunks.
type ChunkInfo struct {
	// ID is the chunk id the file codec assigned, starting from one.
	ID uint32
	// Offset is the position of the chunk header in the stream.
	Offset int64
	// Header is the parsed chunk header.
	Header header.Header
	// Preview holds up to the first 64 bytes of the payload.
	Preview []byte
}

const previewSize = 64

// WalkChunks reads the chunk headers in r, starting at its current offset,
// and calls fn for each chunk. No keystream is needed. A walk stops at the
// first chunk that cannot be framed, or when fn returns an error.
func WalkChunks(r io.ReadSeeker, fn func(ChunkInfo) error) error {
	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to get input offset: %w", err)
	}

	headerBuf := make([]byte, HeaderSize)
	for id := uint32(1); ; id++ {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to chunk %d: %w", id, err)
		}

		// Read the header
		n, err := io.ReadFull(r, headerBuf)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: chunk %d: header is %d bytes", ErrFormat, id, n)
		}
		if err != nil {
			return fmt.Errorf("failed to read header of chunk %d: %w", id, err)
		}

		info := ChunkInfo{ID: id, Offset: offset}
		if err := info.Header.UnmarshalBinary(headerBuf); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", ErrFormat, id, err)
		}

		// Read the start of the payload
		size := info.Header.PayloadSize()
		if size > previewSize {
			size = previewSize
		}
		info.Preview = make([]byte, size)
		if _, err := io.ReadFull(r, info.Preview); err != nil {
			return fmt.Errorf("%w: chunk %d: payload truncated", ErrFormat, id)
		}

		if err := fn(info); err != nil {
			return err
		}
		offset += int64(info.Header.ChunkSize())
	}
}

// VerifyStream reads through every chunk in r and checks its CRC without
// writing any plaintext. Broken chunks are reported in the result; an error
// is only returned when the stream cannot be framed or read at all.
func (s *Session) VerifyStream(ctx context.Context, r io.ReadSeeker) (*VerificationResult, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}

	result := &VerificationResult{
		BrokenChunks: []uint32{},
	}

	buf := make([]byte, HeaderSize+EncodedChunkSize)
	err := WalkChunks(r, func(info ChunkInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Read the whole chunk
		size := info.Header.ChunkSize()
		if size > len(buf) {
			buf = make([]byte, size)
		}
		if _, err := r.Seek(info.Offset, io.SeekStart); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, buf[:size]); err != nil {
			return fmt.Errorf("%w: chunk %d: payload truncated", ErrFormat, info.ID)
		}

		result.Chunks++
		result.PlainSize += int64(info.Header.OriginalSize)

		s.mu.RLock()
		_, _, err := s.decrypt(buf[:size], info.ID, true)
		s.mu.RUnlock()
		if errors.Is(err, ErrIntegrity) {
			// Mark the chunk as broken
			result.BrokenChunks = append(result.BrokenChunks, info.ID)
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	result.AllGood = len(result.BrokenChunks) == 0
	return result, nil
}

// VerifyFile verifies the encrypted file at path.
func (s *Session) VerifyFile(ctx context.Context, path string) (*VerificationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.VerifyStream(ctx, f)
}

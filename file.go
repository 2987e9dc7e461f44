package mincrypt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt/header"
	"github.com/OhanaFS/mincrypt/util/debug"
)

// Result describes a finished stream or file operation.
type Result struct {
	// Chunks is the number of chunks processed.
	Chunks int
	// BytesIn is the number of input bytes consumed.
	BytesIn int64
	// BytesOut is the number of bytes written.
	BytesOut int64
}

// Credentials, when passed to a file operation, derive a fresh keystream
// before the files are opened.
type Credentials struct {
	Salt       []byte
	Password   []byte
	Multiplier int
}

func (s *Session) draw(progress, total int64) {
	if s.progress == nil {
		return
	}
	if err := s.progress(progress, total); err != nil {
		s.log.WithError(err).Debug("failed to draw progress")
	}
}

// EncryptStream reads r to the end and writes one chunk per ChunkSize bytes
// to w. Chunk ids start at 1. Writers are not closed.
func (s *Session) EncryptStream(ctx context.Context, r io.Reader, w io.Writer) (*Result, error) {
	return s.encryptStream(ctx, r, w, -1)
}

func (s *Session) encryptStream(ctx context.Context, r io.Reader, w io.Writer, total int64) (*Result, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}

	res := &Result{}
	block := make([]byte, ChunkSize)
	var ids ChunkCounter

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Read a full chunk, or whatever is left
		n, rerr := io.ReadFull(r, block)
		if rerr == io.EOF {
			break
		}
		if rerr != nil && rerr != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("failed to read data: %w", rerr)
		}

		id := ids.Next()
		out, err := s.Encrypt(block[:n], id)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt chunk %d: %w", id, err)
		}
		if _, err := w.Write(out); err != nil {
			return nil, fmt.Errorf("failed to write chunk %d: %w", id, err)
		}

		res.Chunks++
		res.BytesIn += int64(n)
		res.BytesOut += int64(len(out))
		s.draw(res.BytesIn, total)

		if rerr == io.ErrUnexpectedEOF {
			break
		}
	}
	s.draw(-1, -1)

	s.log.WithFields(logrus.Fields{
		"chunks": res.Chunks,
		"in":     res.BytesIn,
		"out":    res.BytesOut,
	}).Debug("stream encrypted")
	return res, nil
}

// DecryptStream decrypts the chunks in r, starting at its current offset,
// and writes the plaintext to w. After every chunk the reader is moved to the
// end of that chunk as declared by its header. In simple mode the reader is
// consumed sequentially instead and only binary chunks are accepted.
//
// An empty input is not an error. On error, w may hold the plaintext of the
// chunks before the failing one.
func (s *Session) DecryptStream(ctx context.Context, r io.ReadSeeker, w io.Writer) (*Result, error) {
	return s.decryptStream(ctx, r, w, -1)
}

func (s *Session) decryptStream(ctx context.Context, r io.ReadSeeker, w io.Writer, total int64) (*Result, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}
	simple := s.SimpleMode()

	bufSize := HeaderSize + EncodedChunkSize
	if simple {
		bufSize = HeaderSize + ChunkSize
	}
	buf := make([]byte, bufSize)

	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get input offset: %w", err)
	}

	res := &Result{}
	var ids ChunkCounter
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !simple {
			if _, err := r.Seek(offset, io.SeekStart); err != nil {
				return nil, fmt.Errorf("failed to seek to chunk at %d: %w", offset, err)
			}
		}

		n, rerr := io.ReadFull(r, buf)
		if rerr == io.EOF {
			break
		}
		if rerr != nil && rerr != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("failed to read data: %w", rerr)
		}

		id := ids.Next()
		if simple && n > 3 && header.Encoding(buf[3]) != header.Binary {
			return nil, fmt.Errorf("%w: chunk %d is not binary, simple mode cannot read it",
				ErrParameter, id)
		}

		plain, used, err := s.Decrypt(buf[:n], id)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt chunk %d: %w", id, err)
		}
		if _, err := w.Write(plain); err != nil {
			return nil, fmt.Errorf("failed to write chunk %d: %w", id, err)
		}

		offset += int64(used)
		res.Chunks++
		res.BytesIn += int64(used)
		res.BytesOut += int64(len(plain))
		s.draw(res.BytesIn, total)

		if simple && rerr == io.ErrUnexpectedEOF {
			break
		}
	}
	s.draw(-1, -1)

	s.log.WithFields(logrus.Fields{
		"chunks": res.Chunks,
		"in":     res.BytesIn,
		"out":    res.BytesOut,
	}).Debug("stream decrypted")
	return res, nil
}

type streamFunc func(ctx context.Context, in io.ReadSeeker, out io.Writer, total int64) (*Result, error)

// EncryptFile encrypts the file at in into out. If creds is not nil a new
// keystream is derived first. The output is removed if anything fails.
func (s *Session) EncryptFile(ctx context.Context, in, out string, creds *Credentials) (*Result, error) {
	return s.processFile(ctx, in, out, creds,
		func(ctx context.Context, f io.ReadSeeker, w io.Writer, total int64) (*Result, error) {
			return s.encryptStream(ctx, f, w, total)
		})
}

// DecryptFile decrypts the file at in into out. If creds is not nil a new
// keystream is derived first. The output is removed if anything fails, so
// no partial plaintext is left behind.
func (s *Session) DecryptFile(ctx context.Context, in, out string, creds *Credentials) (*Result, error) {
	return s.processFile(ctx, in, out, creds,
		func(ctx context.Context, f io.ReadSeeker, w io.Writer, total int64) (*Result, error) {
			return s.decryptStream(ctx, f, w, total)
		})
}

func (s *Session) processFile(ctx context.Context, in, out string, creds *Credentials, fn streamFunc) (*Result, error) {
	if creds != nil {
		if err := s.SetPassword(creds.Salt, creds.Password, creds.Multiplier); err != nil {
			return nil, err
		}
	}
	if !s.Ready() {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}

	inFile, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	stat, err := inFile.Stat()
	if err != nil {
		return nil, err
	}
	if outStat, err := os.Stat(out); err == nil && os.SameFile(stat, outStat) {
		return nil, fmt.Errorf("%w: input and output are the same file", ErrParameter)
	}

	outFile, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var src io.ReadSeeker = inFile
	var dst io.Writer = outFile
	if s.traceIO {
		src = debug.NewTracer(inFile, s.log, in)
		dst = debug.NewTracer(outFile, s.log, out)
	}

	bw := bufio.NewWriterSize(dst, HeaderSize+EncodedChunkSize)
	res, err := fn(ctx, src, bw, stat.Size())
	if err == nil {
		err = bw.Flush()
	}
	if cerr := outFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(out); rerr != nil {
			s.log.WithError(rerr).Warnf("failed to remove partial output %s", out)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"in":     in,
		"out":    out,
		"chunks": res.Chunks,
	}).Debug("file processed")
	return res, nil
}

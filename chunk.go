package mincrypt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt/crc"
	"github.com/OhanaFS/mincrypt/header"
)

var errTruncated = errors.New("chunk is truncated")

// shiftByte picks the asymmetric shift for a chunk.
func shiftByte(sum uint32) byte {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(sum)))
	return byte(rng.Uint32() + sum)
}

// Encrypt encrypts block as the chunk with the given id and returns the
// framed chunk. Ids must not be reused for different data under the same
// keystream.
func (s *Session) Encrypt(block []byte, id uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.schedule.Size() == 0 {
		return nil, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}
	if len(block) == 0 {
		return nil, fmt.Errorf("%w: empty block", ErrParameter)
	}
	if len(block) > maxBlockSize {
		return nil, fmt.Errorf("%w: block of %d bytes", ErrResourceExhausted, len(block))
	}

	hdr := header.NewHeader()
	hdr.Encoding = s.encoding
	hdr.OriginalSize = uint32(len(block))
	hdr.CRC = crc.Sum(block)

	payload := make([]byte, len(block))
	if err := s.schedule.Process(payload, block, hdr.CRC, id); err != nil {
		return nil, err
	}

	if s.shift != nil {
		if !s.shift.CanEncrypt() {
			return nil, fmt.Errorf("%w: a public key is required to encrypt", ErrNotInitialized)
		}
		shift := shiftByte(hdr.CRC)
		v, err := s.shift.EncryptShift(id, shift)
		if err != nil {
			return nil, err
		}
		hdr.Shift = v
		for i := range payload {
			payload[i] += shift
		}
	}

	var out []byte
	if hdr.Encoding == header.Base64 {
		hdr.EncodedSize = uint32(base64.StdEncoding.EncodedLen(len(payload)))
		out = make([]byte, HeaderSize+int(hdr.EncodedSize))
		base64.StdEncoding.Encode(out[HeaderSize:], payload)
	} else {
		out = make([]byte, HeaderSize+len(payload))
		copy(out[HeaderSize:], payload)
	}
	hdr.Put(out)

	s.log.WithFields(logrus.Fields{
		"id":       id,
		"size":     hdr.OriginalSize,
		"encoding": hdr.Encoding,
		"crc":      fmt.Sprintf("%08x", hdr.CRC),
		"shift":    hdr.Shift,
	}).Debug("chunk encrypted")

	return out, nil
}

// Decrypt decrypts the chunk at the start of data with the given id. It
// returns the plaintext and the number of bytes of data the chunk occupies.
// Bytes after the chunk are ignored.
func (s *Session) Decrypt(data []byte, id uint32) ([]byte, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plain, n, err := s.decrypt(data, id, !s.simple)
	if err != nil {
		return nil, 0, err
	}
	return plain, n, nil
}

// decrypt is Decrypt without locking. The consumed size is returned with
// integrity errors so a caller can skip over a broken chunk.
func (s *Session) decrypt(data []byte, id uint32, check bool) ([]byte, int, error) {
	if s.schedule.Size() == 0 {
		return nil, 0, fmt.Errorf("%w: no keystream", ErrNotInitialized)
	}

	var hdr header.Header
	if err := hdr.UnmarshalBinary(data); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if hdr.OriginalSize == 0 {
		return nil, 0, fmt.Errorf("%w: chunk declares no data", ErrFormat)
	}
	consumed := hdr.ChunkSize()
	if len(data) < consumed {
		return nil, 0, fmt.Errorf("%w: %w: %d of %d bytes", ErrFormat, errTruncated, len(data), consumed)
	}

	raw := data[HeaderSize:consumed]
	var payload []byte
	if hdr.Encoding == header.Base64 {
		payload = make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
		n, err := base64.StdEncoding.Decode(payload, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		if n != int(hdr.OriginalSize) {
			return nil, 0, fmt.Errorf("%w: base64 payload decodes to %d bytes, want %d",
				ErrFormat, n, hdr.OriginalSize)
		}
		payload = payload[:n]
	} else {
		payload = make([]byte, hdr.OriginalSize)
		copy(payload, raw)
	}

	if hdr.Shift != 0 {
		if s.shift == nil || !s.shift.CanDecrypt() {
			return nil, 0, fmt.Errorf("%w: a private key is required to decrypt", ErrNotInitialized)
		}
		shift, err := s.shift.DecryptShift(id, hdr.Shift)
		if err != nil {
			return nil, consumed, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		for i := range payload {
			payload[i] -= shift
		}
	}

	if err := s.schedule.Process(payload, payload, hdr.CRC, id); err != nil {
		return nil, 0, err
	}

	if check {
		if sum := crc.Sum(payload); sum != hdr.CRC {
			return nil, consumed, fmt.Errorf("%w: chunk %d crc %08x, want %08x",
				ErrIntegrity, id, sum, hdr.CRC)
		}
	}

	s.log.WithFields(logrus.Fields{
		"id":       id,
		"size":     hdr.OriginalSize,
		"encoding": hdr.Encoding,
		"consumed": consumed,
	}).Debug("chunk decrypted")

	return payload, consumed, nil
}

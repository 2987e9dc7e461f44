package header

import (
	"encoding"
	"encoding/binary"
	"errors"
)

// Encoding identifies how a chunk payload is stored.
type Encoding byte

const (
	// Binary stores the transformed bytes as-is.
	Binary Encoding = 0x10
	// Base64 stores the transformed bytes as standard base64 text.
	Base64 Encoding = 0x11
)

func (e Encoding) Valid() bool {
	return e == Binary || e == Base64
}

func (e Encoding) String() string {
	switch e {
	case Binary:
		return "binary"
	case Base64:
		return "base64"
	}
	return "unknown"
}

// Header describes the header of an encrypted chunk. All integers are stored
// big-endian.
type Header struct {
	// Magic identifies the data as a mincrypt chunk.
	Magic [3]byte
	// Encoding is the payload encoding type.
	Encoding Encoding
	// OriginalSize is the size of the chunk plaintext.
	OriginalSize uint32
	// EncodedSize is the size of the base64 payload. It is reserved and zero
	// for binary chunks.
	EncodedSize uint32
	// CRC is the CRC-32 register of the plaintext.
	CRC uint32
	// Shift is the asymmetrically encrypted shift byte, or zero when the chunk
	// was encrypted without key material.
	Shift uint32
}

// HeaderSize is the size of the header in bytes.
const HeaderSize = 3 + 1 + 4 + 4 + 4 + 4

var _ encoding.BinaryMarshaler = (*Header)(nil)
var _ encoding.BinaryUnmarshaler = (*Header)(nil)

var (
	MagicBytes = [3]byte{'C', 'A', 'F'}

	ErrInvalidHeaderSize = errors.New("invalid header size")
	ErrUnrecognizedMagic = errors.New("unrecognized magic bytes")
	ErrUnknownEncoding   = errors.New("unknown encoding type")
)

func NewHeader() *Header {
	return &Header{
		Magic:    MagicBytes,
		Encoding: Binary,
	}
}

// PayloadSize returns the number of payload bytes following the header.
func (h *Header) PayloadSize() int {
	if h.Encoding == Base64 {
		return int(h.EncodedSize)
	}
	return int(h.OriginalSize)
}

// ChunkSize returns the total on-wire size of the chunk, header included.
func (h *Header) ChunkSize() int {
	return HeaderSize + h.PayloadSize()
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.Put(buf)
	return buf, nil
}

// Put writes the header into the first HeaderSize bytes of buf.
func (h *Header) Put(buf []byte) {
	copy(buf[:3], h.Magic[:])
	buf[3] = byte(h.Encoding)
	binary.BigEndian.PutUint32(buf[4:8], h.OriginalSize)
	if h.Encoding == Base64 {
		binary.BigEndian.PutUint32(buf[8:12], h.EncodedSize)
	} else {
		binary.BigEndian.PutUint32(buf[8:12], 0)
	}
	binary.BigEndian.PutUint32(buf[12:16], h.CRC)
	binary.BigEndian.PutUint32(buf[16:20], h.Shift)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (h *Header) UnmarshalBinary(data []byte) error {
	// Make sure the header is the correct size.
	if len(data) < HeaderSize {
		return ErrInvalidHeaderSize
	}

	// Check the magic bytes.
	for i, b := range data[:3] {
		if b != MagicBytes[i] {
			return ErrUnrecognizedMagic
		}
	}

	// Check the encoding type.
	enc := Encoding(data[3])
	if !enc.Valid() {
		return ErrUnknownEncoding
	}

	// Copy the header data.
	copy(h.Magic[:], data[:3])
	h.Encoding = enc
	h.OriginalSize = binary.BigEndian.Uint32(data[4:8])
	h.EncodedSize = binary.BigEndian.Uint32(data[8:12])
	h.CRC = binary.BigEndian.Uint32(data[12:16])
	h.Shift = binary.BigEndian.Uint32(data[16:20])
	return nil
}

// Mincrypt is a small file and block encryption codec. Data is split into
// chunks, each transformed with a password-derived keystream, framed with a
// fixed header carrying the plaintext CRC, and optionally bound to an
// asymmetric key pair through an encrypted per-chunk shift byte.
//
// Mincrypt is not a vetted cipher. It exists to read and write the mincrypt
// container format.
package mincrypt

import (
	"encoding/base64"
	"errors"

	"github.com/OhanaFS/mincrypt/header"
	"github.com/OhanaFS/mincrypt/keystream"
	"github.com/OhanaFS/mincrypt/version"
)

const (
	// ChunkSize is the plaintext size of a full chunk.
	ChunkSize = keystream.BlockSize
	// HeaderSize is the size of the chunk header in bytes.
	HeaderSize = header.HeaderSize
	// DefaultMultiplier is the vector multiplier used when a negative one is
	// requested.
	DefaultMultiplier = keystream.DefaultMultiplier
	// maxBlockSize bounds a single block so its base64 size fits the header.
	maxBlockSize = 1 << 30
)

// DefaultSalt is the salt used by the command line tool when none is given.
var DefaultSalt = []byte("CAF")

// EncodedChunkSize is the payload size of a full base64 chunk.
var EncodedChunkSize = base64.StdEncoding.EncodedLen(ChunkSize)

// Re-exported encodings.
const (
	Binary = header.Binary
	Base64 = header.Base64
)

// Mode is the operating mode of a session.
type Mode int

const (
	// Symmetric sessions use the keystream only.
	Symmetric Mode = iota
	// Asymmetric sessions additionally bind each chunk to key material.
	Asymmetric
)

func (m Mode) String() string {
	if m == Asymmetric {
		return "asymmetric"
	}
	return "symmetric"
}

var (
	// ErrNotInitialized is returned when a cipher operation runs before the
	// keystream or the required key material has been set up.
	ErrNotInitialized = errors.New("mincrypt: session not initialized")
	// ErrFormat is returned for data that is not a valid mincrypt chunk or key.
	ErrFormat = errors.New("mincrypt: invalid format")
	// ErrIntegrity is returned when a chunk fails its CRC check, which means
	// the password, the salt or the data is wrong.
	ErrIntegrity = errors.New("mincrypt: integrity check failed")
	// ErrResourceExhausted is returned for buffers that are too large.
	ErrResourceExhausted = errors.New("mincrypt: resource exhausted")
	// ErrParameter is returned for invalid arguments.
	ErrParameter = errors.New("mincrypt: invalid parameter")
)

// Version returns the library version.
func Version() version.Version {
	return version.Current
}

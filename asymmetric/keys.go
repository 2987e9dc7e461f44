// Package asymmetric implements the RSA-like key pairs that bind chunks to a
// key: each chunk's shift byte is encrypted with the public exponent of one
// pair and recovered with the matching private exponent.
package asymmetric

import (
	"errors"
	"fmt"

	"github.com/OhanaFS/mincrypt/numtheory"
)

var (
	ErrEmptyKey         = errors.New("key material holds no pairs")
	ErrNotPublic        = errors.New("public exponent not loaded")
	ErrNotPrivate       = errors.New("private exponent not loaded")
	ErrShiftOutOfRange  = errors.New("shift value out of range for key")
	ErrUnsupportedBits  = errors.New("unsupported key length")
	ErrIterationsLimit  = errors.New("key generation exceeded its iteration limit")
	ErrInvalidPair      = errors.New("invalid key pair")
	ErrMalformedHeader  = errors.New("malformed key file header")
	ErrMalformedBody    = errors.New("malformed key file body")
	ErrMissingFooter    = errors.New("key file footer missing")
	ErrUnsupportedFile  = errors.New("key file version is newer than this reader")
	ErrWordCountInvalid = errors.New("key file word count does not match key length")
)

// SupportedBits lists the key lengths that can be generated and read.
var SupportedBits = []int{128, 256, 512, 1024, 2048, 4096}

// IsSupportedBits reports whether bits is a supported key length.
func IsSupportedBits(bits int) bool {
	for _, b := range SupportedBits {
		if b == bits {
			return true
		}
	}
	return false
}

// PairCount returns the number of pairs in a key of the given length.
func PairCount(bits int) int {
	return bits / 32
}

// ShiftCipher encrypts and decrypts the per-chunk shift byte. Chunk framing
// only depends on this interface, so the toy scheme below can be replaced.
type ShiftCipher interface {
	// EncryptShift encrypts shift for chunk id.
	EncryptShift(id uint32, shift byte) (uint32, error)
	// DecryptShift recovers the shift byte of chunk id.
	DecryptShift(id uint32, value uint32) (byte, error)
	// CanEncrypt reports whether a public exponent is available.
	CanEncrypt() bool
	// CanDecrypt reports whether a private exponent is available.
	CanDecrypt() bool
}

// Pair is one modulus with its exponents. P and Q are only known on the
// private side; E is only known on the public side unless the pair was
// just generated.
type Pair struct {
	P uint32
	Q uint32
	N uint32
	E uint32
	D uint32
}

// Packed returns the private key word (P << 16) | Q.
func (p Pair) Packed() uint32 {
	return p.P<<16 | p.Q
}

// unpack fills P, Q and N from a packed private key word.
func unpack(word uint32) Pair {
	p, q := word>>16, word&0xffff
	return Pair{P: p, Q: q, N: p * q}
}

// KeyMaterial is one side of a key pair as loaded from a key file.
type KeyMaterial struct {
	// Private is true for private key material.
	Private bool
	// Bits is the declared key length.
	Bits int
	// Pairs are indexed by chunk id modulo their count.
	Pairs []Pair
}

var _ ShiftCipher = (*KeyMaterial)(nil)

// Len returns the number of pairs.
func (k *KeyMaterial) Len() int {
	if k == nil {
		return 0
	}
	return len(k.Pairs)
}

func (k *KeyMaterial) pair(id uint32) (Pair, error) {
	if k.Len() == 0 {
		return Pair{}, ErrEmptyKey
	}
	return k.Pairs[int(id%uint32(len(k.Pairs)))], nil
}

func (k *KeyMaterial) CanEncrypt() bool {
	return k.Len() > 0 && k.Pairs[0].E != 0
}

func (k *KeyMaterial) CanDecrypt() bool {
	return k.Len() > 0 && k.Pairs[0].D != 0
}

// EncryptShift encrypts shift with the public exponent of pair id mod Len.
func (k *KeyMaterial) EncryptShift(id uint32, shift byte) (uint32, error) {
	p, err := k.pair(id)
	if err != nil {
		return 0, err
	}
	if p.E == 0 {
		return 0, ErrNotPublic
	}
	return uint32(numtheory.ModPow(uint64(shift), uint64(p.E), uint64(p.N))), nil
}

// DecryptShift recovers the shift byte with the private exponent of pair id
// mod Len.
func (k *KeyMaterial) DecryptShift(id uint32, value uint32) (byte, error) {
	p, err := k.pair(id)
	if err != nil {
		return 0, err
	}
	if p.D == 0 {
		return 0, ErrNotPrivate
	}
	if value >= p.N {
		return 0, fmt.Errorf("%w: %d >= %d", ErrShiftOutOfRange, value, p.N)
	}

	shift := numtheory.ModPow(uint64(value), uint64(p.D), uint64(p.N))
	if shift > 0xff {
		return 0, fmt.Errorf("%w: decrypted to %d", ErrShiftOutOfRange, shift)
	}
	return byte(shift), nil
}

// KeyPair is a freshly generated key with both exponents.
type KeyPair struct {
	Bits  int
	Pairs []Pair
}

// Public returns the public side of the key.
func (kp *KeyPair) Public() *KeyMaterial {
	km := &KeyMaterial{Bits: kp.Bits, Pairs: make([]Pair, len(kp.Pairs))}
	for i, p := range kp.Pairs {
		km.Pairs[i] = Pair{N: p.N, E: p.E}
	}
	return km
}

// Private returns the private side of the key.
func (kp *KeyPair) Private() *KeyMaterial {
	km := &KeyMaterial{Private: true, Bits: kp.Bits, Pairs: make([]Pair, len(kp.Pairs))}
	for i, p := range kp.Pairs {
		km.Pairs[i] = Pair{P: p.P, Q: p.Q, N: p.N, D: p.D}
	}
	return km
}

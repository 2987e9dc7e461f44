// Package keystream derives the initialization vector material used by the
// chunk transform from a salt, a password and a vector multiplier.
package keystream

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	// BlockSize is the plaintext size of a full chunk.
	BlockSize = 1 << 17
	// DefaultMultiplier is used when a negative multiplier is requested.
	DefaultMultiplier = 0x20
)

var (
	ErrEmptySalt      = errors.New("salt must not be empty")
	ErrEmptyPassword  = errors.New("password must not be empty")
	ErrPasswordNUL    = errors.New("password must not contain NUL bytes")
	ErrZeroMultiplier = errors.New("vector multiplier must be at least 1")
	ErrTooLarge       = errors.New("vector would be too large")
	ErrSizeMismatch   = errors.New("source and destination sizes differ")
	ErrEmptySchedule  = errors.New("schedule holds no vector")
)

// maxVectorSize bounds the number of words in a schedule.
const maxVectorSize = 1 << 26

var log = logrus.WithField("component", "keystream")

// Schedule is the keystream material derived from a password. A Schedule is
// read-only once derived and may be shared between goroutines.
type Schedule struct {
	iv   []uint32
	ival uint64
}

// nearestPowerOfTwo returns the smallest power of two greater than value and
// the number of bits below its top bit.
func nearestPowerOfTwo(value int) (int, int) {
	val, bits := 1, 0
	for val <= value {
		val *= 2
		bits++
	}
	return val, bits - 1
}

// pow32 returns base**exp modulo 2^32.
func pow32(base, exp uint32) uint32 {
	result := uint32(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// Derive builds a schedule from salt, password and multiplier. A negative
// multiplier selects DefaultMultiplier.
func Derive(salt, password []byte, multiplier int) (*Schedule, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	// Every password byte is used as a divisor below.
	if bytes.IndexByte(password, 0) >= 0 {
		return nil, ErrPasswordNUL
	}
	if multiplier < 0 {
		multiplier = DefaultMultiplier
	}
	if multiplier == 0 {
		return nil, ErrZeroMultiplier
	}
	if len(salt)*len(password) > maxVectorSize/multiplier {
		return nil, fmt.Errorf("%w: %d x %d x %d words",
			ErrTooLarge, len(salt), len(password), multiplier)
	}

	size := len(salt) * len(password) * multiplier
	_, bits := nearestPowerOfTwo(BlockSize)

	var iSalt uint32
	for i, b := range salt {
		iSalt += pow32(uint32(b), uint32(i+1)) * uint32(bits)
	}

	var initial uint32
	passSum := 0
	for i, b := range password {
		passSum += int(b)
		initial += (uint32(b) + iSalt) << (uint(i+1) & 31)
	}

	lenPass := len(password)
	iv := make([]uint32, size)
	sum := uint64(0)
	for k := range iv {
		val := int(password[k%lenPass])
		base := uint32(password[(passSum-val)%lenPass])
		exp := uint32((passSum + k) / val)
		iv[k] = initial + iSalt + pow32(base, exp)
		sum += uint64(iv[k])
	}

	s := &Schedule{
		iv:   iv,
		ival: uint64(initial) + sum,
	}
	log.WithFields(logrus.Fields{
		"bits":     bits,
		"elements": size,
	}).Debugf("vector generated, iSalt = %#x, initial = %#x, ival = %#x",
		iSalt, initial, s.ival)

	return s, nil
}

// Size returns the number of words in the vector.
func (s *Schedule) Size() int {
	if s == nil {
		return 0
	}
	return len(s.iv)
}

// IVal returns the aggregate scalar of the schedule.
func (s *Schedule) IVal() uint64 {
	return s.ival
}

// Vector returns a copy of the vector words.
func (s *Schedule) Vector() []uint32 {
	out := make([]uint32, len(s.iv))
	copy(out, s.iv)
	return out
}

// Process transforms src into dst for the chunk with the given plaintext CRC
// register and id. Applying Process with the same crc and id to its own
// output restores the input.
//
// The vector word is shifted as a 32-bit value by (id*size + i) mod 32, so
// the shift never reaches the word width.
func (s *Schedule) Process(dst, src []byte, crc uint32, id uint32) error {
	if s.Size() == 0 {
		return ErrEmptySchedule
	}
	if len(dst) != len(src) {
		return ErrSizeMismatch
	}

	size := uint32(len(src))
	n := len(s.iv)
	base := s.ival - uint64(crc)
	for i, b := range src {
		shift := (id*size + uint32(i)) & 31
		mask := uint64(s.iv[i%n] << shift)
		dst[i] = byte(base - mask - uint64(b))
	}
	return nil
}

// Wipe zeroes the schedule. It must not be used afterwards.
func (s *Schedule) Wipe() {
	for i := range s.iv {
		s.iv[i] = 0
	}
	s.iv = nil
	s.ival = 0
}

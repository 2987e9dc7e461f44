// Package numtheory implements the small number-theory toolkit behind the
// asymmetric shift keys: trial-division primality, nearest-prime search,
// bit-string arithmetic and linear modular exponentiation.
//
// None of this is meant to be fast or strong. Key files and chunk headers
// depend on the exact results, so the algorithms are kept as they are.
package numtheory

import (
	"errors"
	"math"
	"strconv"
)

// Direction selects which way NearestPrime scans.
type Direction int

const (
	Bigger Direction = iota + 1
	Smaller
)

var (
	ErrPrimeNotFound    = errors.New("no prime found in range")
	ErrInvalidDirection = errors.New("invalid search direction")
	ErrInvalidBitRange  = errors.New("bit range must be within [0, 63]")
)

// IsPrime reports whether n is prime using odd trial divisors up to sqrt(n).
// Even numbers, including 2, are never reported as prime.
func IsPrime(n uint64) bool {
	return isPrimeSince(3, n)
}

func isPrimeSince(start, n uint64) bool {
	if n < 3 || n%2 == 0 {
		return false
	}
	for d := start; d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// NearestPrime scans linearly from n in the given direction, n included,
// until it finds a prime.
func NearestPrime(n uint64, dir Direction) (uint64, error) {
	switch dir {
	case Bigger:
		for i := n; i < math.MaxUint64; i++ {
			if IsPrime(i) {
				return i, nil
			}
		}
	case Smaller:
		for i := n; i > 0; i-- {
			if IsPrime(i) {
				return i, nil
			}
		}
	default:
		return 0, ErrInvalidDirection
	}
	return 0, ErrPrimeNotFound
}

// PrimesInRange returns every prime in [start, end].
func PrimesInRange(start, end uint64) []uint64 {
	var primes []uint64
	for i := start; i <= end; i++ {
		if IsPrime(i) {
			primes = append(primes, i)
		}
		if i == math.MaxUint64 {
			break
		}
	}
	return primes
}

// PrimesInBitRange returns every prime in [2^start, 2^end].
func PrimesInBitRange(start, end int) ([]uint64, error) {
	if start < 0 || start > 63 || end < 0 || end > 63 {
		return nil, ErrInvalidBitRange
	}
	return PrimesInRange(uint64(1)<<start, uint64(1)<<end), nil
}

// PrimeElements returns the prime decimal prefixes of n, shortest first. For
// 2357 that is 23 and 2357.
func PrimeElements(n uint64) []uint64 {
	digits := strconv.FormatUint(n, 10)

	var primes []uint64
	for i := 1; i <= len(digits); i++ {
		prefix, err := strconv.ParseUint(digits[:i], 10, 64)
		if err != nil {
			break
		}
		if IsPrime(prefix) {
			primes = append(primes, prefix)
		}
	}
	return primes
}

// ModPow raises base to exp with a reduction modulo mod whenever the
// accumulator exceeds mod. It runs in O(exp). An exponent below 2 returns
// base unchanged.
func ModPow(base, exp, mod uint64) uint64 {
	val := base
	for i := uint64(1); i < exp; i++ {
		val *= base
		if val > mod {
			val %= mod
		}
	}
	return val
}

// ModInverse finds the smallest i in [0, limit) with i*e mod m == 1 by linear
// scan. It returns 0 when there is none.
func ModInverse(e, m, limit uint64) uint64 {
	if m < 2 {
		return 0
	}
	for i := uint64(0); i < limit; i++ {
		if (i*e)%m == 1 {
			return i
		}
	}
	return 0
}

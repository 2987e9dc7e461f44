package numtheory_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OhanaFS/mincrypt/numtheory"
)

func TestIsPrime(t *testing.T) {
	assert := assert.New(t)

	primes := []uint64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 97, 7919, 65521, 2357}
	for _, p := range primes {
		assert.True(numtheory.IsPrime(p), "%d should be prime", p)
	}

	composites := []uint64{0, 1, 2, 4, 9, 15, 21, 25, 49, 91, 7917, 65535, 1 << 20}
	for _, c := range composites {
		assert.False(numtheory.IsPrime(c), "%d should not be prime", c)
	}
}

func TestNearestPrime(t *testing.T) {
	assert := assert.New(t)

	p, err := numtheory.NearestPrime(24, numtheory.Bigger)
	assert.NoError(err)
	assert.Equal(uint64(29), p)

	p, err = numtheory.NearestPrime(24, numtheory.Smaller)
	assert.NoError(err)
	assert.Equal(uint64(23), p)

	p, err = numtheory.NearestPrime(31, numtheory.Smaller)
	assert.NoError(err)
	assert.Equal(uint64(31), p)

	_, err = numtheory.NearestPrime(2, numtheory.Smaller)
	assert.ErrorIs(err, numtheory.ErrPrimeNotFound)

	_, err = numtheory.NearestPrime(10, numtheory.Direction(0))
	assert.ErrorIs(err, numtheory.ErrInvalidDirection)
}

func TestPrimeRanges(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]uint64{11, 13, 17, 19}, numtheory.PrimesInRange(10, 20))

	primes, err := numtheory.PrimesInBitRange(4, 5)
	assert.NoError(err)
	assert.Equal([]uint64{17, 19, 23, 29, 31}, primes)

	_, err = numtheory.PrimesInBitRange(-1, 5)
	assert.ErrorIs(err, numtheory.ErrInvalidBitRange)
	_, err = numtheory.PrimesInBitRange(1, 64)
	assert.ErrorIs(err, numtheory.ErrInvalidBitRange)
}

func TestPrimeElements(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]uint64{23, 2357}, numtheory.PrimeElements(2357))
	assert.Equal([]uint64{3, 31, 317}, numtheory.PrimeElements(317))
	assert.Empty(numtheory.PrimeElements(8))
}

func TestModPow(t *testing.T) {
	assert := assert.New(t)

	mod := uint64(3233) // 61 * 53
	for _, base := range []uint64{2, 65, 123, 255} {
		for _, exp := range []uint64{2, 3, 17, 413, 2753} {
			want := new(big.Int).Exp(
				new(big.Int).SetUint64(base),
				new(big.Int).SetUint64(exp),
				new(big.Int).SetUint64(mod),
			).Uint64()
			assert.Equal(want, numtheory.ModPow(base, exp, mod)%mod,
				"%d^%d mod %d", base, exp, mod)
		}
	}

	// Textbook RSA pair for n = 3233.
	c := numtheory.ModPow(65, 17, mod)
	assert.Equal(uint64(2790), c)
	assert.Equal(uint64(65), numtheory.ModPow(c, 2753, mod))

	// Exponents below two leave the base alone.
	assert.Equal(uint64(5000), numtheory.ModPow(5000, 1, mod))
}

func TestModInverse(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(2753), numtheory.ModInverse(17, 3120, 3233))
	assert.Equal(uint64(0), numtheory.ModInverse(6, 3120, 3233))
	assert.Equal(uint64(0), numtheory.ModInverse(3, 1, 10))
}

func TestBits(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0", numtheory.NumToBits(0))
	assert.Equal("1", numtheory.NumToBits(1))
	assert.Equal("100", numtheory.NumToBits(4))
	assert.Equal("101", numtheory.NumToBits(5))

	assert.Equal(uint64(5), numtheory.BitsToNum("101", 3))
	assert.Equal(uint64(20), numtheory.BitsToNum("101", 5))
	assert.Equal(uint64(2), numtheory.BitsToNum("101", 2))
	assert.Equal(uint64(0xffffffffffffffff), numtheory.BitsToNum(strings.Repeat("1", 70), 80))

	assert.Equal("10100", numtheory.AlignBits("101", 5))
	assert.Equal("10", numtheory.AlignBits("101", 2))

	assert.Equal("0100000110000010", numtheory.BytesToBits([]byte("A\x82")))

	assert.Equal(3, numtheory.CountBits("10101", true))
	assert.Equal(2, numtheory.CountBits("10101", false))

	for n := uint64(1); n < 1000; n += 37 {
		s := numtheory.NumToBits(n)
		assert.Equal(n, numtheory.BitsToNum(s, len(s)))
	}
}

func TestApply(t *testing.T) {
	assert := assert.New(t)

	a, b := "1100", "1010"

	out, err := numtheory.Apply(a, b, numtheory.OpOr)
	assert.NoError(err)
	assert.Equal("1110", out)

	out, err = numtheory.Apply(a, b, numtheory.OpAnd)
	assert.NoError(err)
	assert.Equal("1000", out)

	out, err = numtheory.Apply(a, b, numtheory.OpXor)
	assert.NoError(err)
	assert.Equal("0110", out)

	_, err = numtheory.Apply("1", "10", numtheory.OpXor)
	assert.ErrorIs(err, numtheory.ErrLengthMismatch)
	_, err = numtheory.Apply("1", "1", numtheory.Operation(9))
	assert.ErrorIs(err, numtheory.ErrInvalidOperation)
	_, err = numtheory.Apply("1x", "10", numtheory.OpOr)
	assert.ErrorIs(err, numtheory.ErrInvalidBit)

	assert.Equal("XOR", numtheory.OpXor.String())
}

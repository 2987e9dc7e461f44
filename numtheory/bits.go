package numtheory

import (
	"errors"
	"math/bits"
	"strings"
)

// Operation is a bitwise operator applied to two bit strings.
type Operation int

const (
	OpOr Operation = iota + 1
	OpAnd
	OpXor
)

func (op Operation) String() string {
	switch op {
	case OpOr:
		return "OR"
	case OpAnd:
		return "AND"
	case OpXor:
		return "XOR"
	}
	return "UNKNOWN"
}

var (
	ErrLengthMismatch   = errors.New("bit strings differ in length")
	ErrInvalidOperation = errors.New("invalid binary operation")
	ErrInvalidBit       = errors.New("bit strings may only contain '0' and '1'")
)

// NumToBits returns the binary representation of code, most significant bit
// first, without leading zeros. Zero is "0".
func NumToBits(code uint64) string {
	n := bits.Len64(code)
	if n == 0 {
		return "0"
	}

	var b strings.Builder
	b.Grow(n)
	for i := n - 1; i >= 0; i-- {
		if code&(1<<uint(i)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// BitsToNum reads a bit string of the given width, most significant bit
// first. Longer strings are truncated and shorter ones are padded on the right
// with zeros. Widths above 64 are clamped.
func BitsToNum(s string, width int) uint64 {
	if width > 64 {
		width = 64
	}

	var ret uint64
	for i := 0; i < width; i++ {
		ret <<= 1
		if i < len(s) && s[i] == '1' {
			ret |= 1
		}
	}
	return ret
}

// AlignBits returns s truncated or zero-padded on the right to exactly width
// characters.
func AlignBits(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat("0", width-len(s))
}

// BytesToBits returns the bits of p, eight per byte, most significant first.
func BytesToBits(p []byte) string {
	var b strings.Builder
	b.Grow(len(p) * 8)
	for _, c := range p {
		for i := 7; i >= 0; i-- {
			if c&(1<<uint(i)) != 0 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

// CountBits counts the characters of s that are '1' when set is true, or '0'
// otherwise.
func CountBits(s string, set bool) int {
	want := byte('0')
	if set {
		want = '1'
	}
	return strings.Count(s, string(want))
}

// Apply combines two bit strings of equal length with op.
func Apply(a, b string, op Operation) (string, error) {
	if len(a) != len(b) {
		return "", ErrLengthMismatch
	}
	if op != OpOr && op != OpAnd && op != OpXor {
		return "", ErrInvalidOperation
	}

	out := make([]byte, len(a))
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if (x != '0' && x != '1') || (y != '0' && y != '1') {
			return "", ErrInvalidBit
		}
		one := false
		switch op {
		case OpOr:
			one = x == '1' || y == '1'
		case OpAnd:
			one = x == '1' && y == '1'
		case OpXor:
			one = x != y
		}
		if one {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out), nil
}

package asymmetric

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt/numtheory"
)

const (
	// primeRange bounds the random starting point of the prime search.
	primeRange = 1 << 10
	// minPrime is the smallest prime accepted for p and q.
	minPrime = 17
	// DefaultMaxIterations caps the number of rejected candidates.
	DefaultMaxIterations = 1000
)

var log = logrus.WithField("component", "asymmetric")

// GenerateOptions configures key generation.
type GenerateOptions struct {
	// Bits is the key length, one of SupportedBits.
	Bits int
	// Salt and Password are mixed into the generator seed.
	Salt     []byte
	Password []byte
	// Seed makes generation reproducible. Zero seeds from the clock.
	Seed int64
	// MaxIterations caps the number of rejected candidate pairs. Zero uses
	// DefaultMaxIterations.
	MaxIterations int
}

type generator struct {
	rng   *rand.Rand
	clock uint64
}

// Generate creates a key pair with bits/32 prime pairs. Every pair is checked
// by encrypting and decrypting a probe value before it is accepted.
func Generate(opts GenerateOptions) (*KeyPair, error) {
	if !IsSupportedBits(opts.Bits) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBits, opts.Bits)
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	g := &generator{}
	seed := opts.Seed
	if seed == 0 {
		now := time.Now()
		seed = now.UnixNano()
		g.clock = uint64(now.Unix())
	} else {
		g.clock = uint64(seed)
	}
	if g.clock == 0 {
		g.clock = 1
	}
	g.rng = rand.New(rand.NewSource(seed))

	reseed, err := g.mix(opts.Salt, opts.Password)
	if err != nil {
		return nil, err
	}
	g.rng = rand.New(rand.NewSource(reseed))

	count := PairCount(opts.Bits)
	kp := &KeyPair{Bits: opts.Bits, Pairs: make([]Pair, 0, count)}
	rejected := 0
	for len(kp.Pairs) < count {
		p, ok := g.candidate()
		if !ok {
			rejected++
			if rejected > maxIter {
				return nil, fmt.Errorf("%w: %d pairs of %d after %d rejects",
					ErrIterationsLimit, len(kp.Pairs), count, rejected)
			}
			continue
		}
		kp.Pairs = append(kp.Pairs, p)
	}

	log.WithFields(logrus.Fields{
		"bits":     opts.Bits,
		"pairs":    count,
		"rejected": rejected,
	}).Debug("key pair generated")
	return kp, nil
}

// mix folds salt and password into a new seed. Their bit patterns are
// combined with a random operator and the prime decimal prefixes of the
// result are summed.
func (g *generator) mix(salt, password []byte) (int64, error) {
	sbits := numtheory.AlignBits(numtheory.BytesToBits(salt), 64)
	pbits := numtheory.AlignBits(numtheory.BytesToBits(password), 64)

	op := numtheory.Operation(g.rng.Intn(3) + 1)
	combined, err := numtheory.Apply(sbits, pbits, op)
	if err != nil {
		return 0, err
	}

	sum := g.rng.Uint64() >> 1
	for _, p := range numtheory.PrimeElements(numtheory.BitsToNum(combined, 64)) {
		sum += p
	}
	log.Debugf("seed mixed with %s of salt and password", op)
	return int64(sum % g.clock), nil
}

func (g *generator) direction() numtheory.Direction {
	if g.rng.Intn(2) == 0 {
		return numtheory.Bigger
	}
	return numtheory.Smaller
}

func (g *generator) prime() (uint64, bool) {
	p, err := numtheory.NearestPrime(uint64(g.rng.Intn(primeRange)), g.direction())
	if err != nil {
		return 0, false
	}
	if p < minPrime {
		if p, err = numtheory.NearestPrime(p+minPrime, numtheory.Bigger); err != nil {
			return 0, false
		}
	}
	return p, true
}

// candidate draws one pair. It reports false when the draw is rejected.
func (g *generator) candidate() (Pair, bool) {
	p, ok := g.prime()
	if !ok {
		return Pair{}, false
	}
	q, ok := g.prime()
	if !ok || p == q {
		return Pair{}, false
	}

	n := p * q
	phi := (p - 1) * (q - 1)
	e, err := numtheory.NearestPrime(g.rng.Uint64()%phi, g.direction())
	if err != nil || e < 3 || e >= phi || phi%e == 0 {
		return Pair{}, false
	}
	d := numtheory.ModInverse(e, phi, n)
	if d == 0 {
		return Pair{}, false
	}

	pair := Pair{P: uint32(p), Q: uint32(q), N: uint32(n), E: uint32(e), D: uint32(d)}
	if !selfTest(pair) {
		return Pair{}, false
	}
	return pair, true
}

// selfTestProbes are the shift values every pair must round trip.
var selfTestProbes = []byte{0, 1, 2, 127, 254, 255}

func selfTest(p Pair) bool {
	km := &KeyMaterial{Pairs: []Pair{p}}
	for _, x := range selfTestProbes {
		v, err := km.EncryptShift(0, x)
		if err != nil {
			return false
		}
		y, err := km.DecryptShift(0, v)
		if err != nil || y != x {
			return false
		}
	}
	return true
}

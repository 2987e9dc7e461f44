package asymmetric_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OhanaFS/mincrypt/asymmetric"
	"github.com/OhanaFS/mincrypt/numtheory"
)

func generate(t *testing.T, bits int) *asymmetric.KeyPair {
	t.Helper()
	kp, err := asymmetric.Generate(asymmetric.GenerateOptions{
		Bits:     bits,
		Salt:     []byte("CAF"),
		Password: []byte("hunter2"),
		Seed:     42,
	})
	require.NoError(t, err)
	return kp
}

func TestGenerate(t *testing.T) {
	assert := assert.New(t)

	kp := generate(t, 128)
	assert.Equal(128, kp.Bits)
	assert.Len(kp.Pairs, 4)

	for _, p := range kp.Pairs {
		assert.True(numtheory.IsPrime(uint64(p.P)), "p = %d", p.P)
		assert.True(numtheory.IsPrime(uint64(p.Q)), "q = %d", p.Q)
		assert.Less(p.P, uint32(1<<16))
		assert.Less(p.Q, uint32(1<<16))
		assert.Equal(p.P*p.Q, p.N)
		assert.Greater(p.N, uint32(0xff))
	}

	// The same seed yields the same key.
	again := generate(t, 128)
	assert.Equal(kp.Pairs, again.Pairs)

	_, err := asymmetric.Generate(asymmetric.GenerateOptions{Bits: 100})
	assert.ErrorIs(err, asymmetric.ErrUnsupportedBits)
	_, err = asymmetric.Generate(asymmetric.GenerateOptions{Bits: 8192})
	assert.ErrorIs(err, asymmetric.ErrUnsupportedBits)
}

func TestShiftRoundTrip(t *testing.T) {
	assert := assert.New(t)

	kp := generate(t, 256)
	pub, priv := kp.Public(), kp.Private()

	assert.True(pub.CanEncrypt())
	assert.False(pub.CanDecrypt())
	assert.True(priv.CanDecrypt())
	assert.False(priv.CanEncrypt())

	for id := uint32(0); id < uint32(2*pub.Len()); id++ {
		for x := 0; x < 256; x += 17 {
			v, err := pub.EncryptShift(id, byte(x))
			if !assert.NoError(err) {
				return
			}
			assert.Less(v, pub.Pairs[int(id)%pub.Len()].N)

			y, err := priv.DecryptShift(id, v)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(byte(x), y)
		}
	}
}

func TestShiftErrors(t *testing.T) {
	assert := assert.New(t)

	kp := generate(t, 128)
	pub, priv := kp.Public(), kp.Private()

	_, err := pub.DecryptShift(0, 1)
	assert.ErrorIs(err, asymmetric.ErrNotPrivate)
	_, err = priv.EncryptShift(0, 1)
	assert.ErrorIs(err, asymmetric.ErrNotPublic)

	_, err = priv.DecryptShift(0, priv.Pairs[0].N)
	assert.ErrorIs(err, asymmetric.ErrShiftOutOfRange)

	var empty asymmetric.KeyMaterial
	_, err = empty.EncryptShift(0, 1)
	assert.ErrorIs(err, asymmetric.ErrEmptyKey)
}

func TestKeyFileRoundTrip(t *testing.T) {
	assert := assert.New(t)

	kp := generate(t, 512)
	dir := t.TempDir()

	pubPath := filepath.Join(dir, "key.pub")
	privPath := filepath.Join(dir, "key")
	require.NoError(t, asymmetric.SaveKeyFile(pubPath, kp.Public()))
	require.NoError(t, asymmetric.SaveKeyFile(privPath, kp.Private()))

	pub, err := asymmetric.LoadKeyFile(pubPath)
	require.NoError(t, err)
	assert.False(pub.Private)
	assert.Equal(512, pub.Bits)
	assert.Equal(kp.Public().Pairs, pub.Pairs)

	priv, err := asymmetric.LoadKeyFile(privPath)
	require.NoError(t, err)
	assert.True(priv.Private)
	assert.Equal(kp.Private().Pairs, priv.Pairs)
}

func TestKeyFileFormat(t *testing.T) {
	assert := assert.New(t)

	km := &asymmetric.KeyMaterial{
		Bits:  128,
		Pairs: []asymmetric.Pair{{N: 3233, E: 17}, {N: 3233, E: 17}, {N: 3233, E: 17}, {N: 3233, E: 17}},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, asymmetric.WriteKeyFile(buf, km))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal([]string{
		"--- MINCRYPT 0.1.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---",
		"00000ca1 00000011 00000ca1 00000011 00000ca1 00000011 00000ca1 00000011",
		"--- END OF MINCRYPT PUBLIC KEY ---",
	}, lines)

	priv := &asymmetric.KeyMaterial{
		Private: true,
		Bits:    128,
		Pairs:   make([]asymmetric.Pair, 4),
	}
	for i := range priv.Pairs {
		priv.Pairs[i] = asymmetric.Pair{P: 61, Q: 53, N: 3233, D: 2753}
	}
	buf.Reset()
	require.NoError(t, asymmetric.WriteKeyFile(buf, priv))
	assert.Contains(buf.String(), "003d0035 00000ac1")

	read, err := asymmetric.ReadKeyFile(buf)
	require.NoError(t, err)
	assert.Equal(priv.Pairs, read.Pairs)
}

func TestReadKeyFileErrors(t *testing.T) {
	assert := assert.New(t)

	body := "00000ca1 00000011 00000ca1 00000011 00000ca1 00000011 00000ca1 00000011\n"
	foot := "--- END OF MINCRYPT PUBLIC KEY ---\n"

	tests := []struct {
		name string
		file string
		err  error
	}{
		{"empty", "", asymmetric.ErrMalformedHeader},
		{"garbage header", "hello\n", asymmetric.ErrMalformedHeader},
		{"newer version", "--- MINCRYPT 9.0.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\n" + body + foot,
			asymmetric.ErrUnsupportedFile},
		{"bad bits", "--- MINCRYPT 0.1.0 PUBLIC KEY FOR 100-BIT KEYLENGTH ---\n" + body + foot,
			asymmetric.ErrUnsupportedBits},
		{"no footer", "--- MINCRYPT 0.1.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\n" + body,
			asymmetric.ErrMissingFooter},
		{"wrong footer", "--- MINCRYPT 0.1.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\n" + body +
			"--- END OF MINCRYPT PRIVATE KEY ---\n", asymmetric.ErrMalformedBody},
		{"short word", "--- MINCRYPT 0.1.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\nca1\n" + foot,
			asymmetric.ErrMalformedBody},
		{"too few words", "--- MINCRYPT 0.1.0 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\n00000ca1 00000011\n" + foot,
			asymmetric.ErrWordCountInvalid},
	}

	for _, tt := range tests {
		_, err := asymmetric.ReadKeyFile(strings.NewReader(tt.file))
		assert.ErrorIs(err, tt.err, tt.name)
	}
}

func TestParseFileHeader(t *testing.T) {
	assert := assert.New(t)

	h, err := asymmetric.ParseFileHeader("--- MINCRYPT 0.1.0 PRIVATE KEY FOR 4096-BIT KEYLENGTH ---")
	require.NoError(t, err)
	assert.True(h.Private)
	assert.Equal(4096, h.Bits)
	assert.Equal("0.1.0", h.Version.String())
	assert.Equal("--- MINCRYPT 0.1.0 PRIVATE KEY FOR 4096-BIT KEYLENGTH ---", h.String())
}

package mincrypt_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/header"
	"github.com/OhanaFS/mincrypt/numtheory"
	"github.com/OhanaFS/mincrypt/util"
)

func generateKeys(t *testing.T) (priv, pub string) {
	t.Helper()
	dir := t.TempDir()
	priv = filepath.Join(dir, "mincrypt.key")
	pub = filepath.Join(dir, "mincrypt.pub")
	_, err := mincrypt.GenerateKeys(mincrypt.KeyOptions{
		Bits:     128,
		Salt:     []byte("CAF"),
		Password: []byte("hunter2"),
		Seed:     7,
	}, priv, pub)
	require.NoError(t, err)
	return priv, pub
}

func TestGenerateKeys(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	priv := filepath.Join(dir, "key")
	pub := filepath.Join(dir, "key.pub")
	kp, err := mincrypt.GenerateKeys(mincrypt.KeyOptions{
		Bits:     256,
		Salt:     []byte("CAF"),
		Password: []byte("hunter2"),
	}, priv, pub)
	require.NoError(t, err)
	assert.Len(kp.Pairs, 8)

	for _, p := range kp.Pairs {
		for _, x := range []uint64{0, 1, 42, 200, 255} {
			n := uint64(p.N)
			c := numtheory.ModPow(x, uint64(p.E), n)
			assert.Equal(x, numtheory.ModPow(c, uint64(p.D), n))
		}
	}

	s, err := mincrypt.NewSession(nil)
	require.NoError(t, err)
	assert.NoError(s.LoadKeyFile(pub))
	assert.Equal(mincrypt.Asymmetric, s.Mode())
	assert.NoError(s.LoadKeyFile(priv))

	// Bad arguments leave no files behind.
	other := filepath.Join(dir, "other")
	_, err = mincrypt.GenerateKeys(mincrypt.KeyOptions{Bits: 100}, other, other+".pub")
	assert.ErrorIs(err, mincrypt.ErrParameter)
	_, err = os.Stat(other)
	assert.True(os.IsNotExist(err))

	_, err = mincrypt.GenerateKeys(mincrypt.KeyOptions{Bits: 128}, other, other)
	assert.ErrorIs(err, mincrypt.ErrParameter)
}

func TestLoadKeyFileErrors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	s, err := mincrypt.NewSession(nil)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("--- MINCRYPT 9.9.9 PUBLIC KEY FOR 128-BIT KEYLENGTH ---\n"), 0644))
	err = s.LoadKeyFile(bad)
	assert.ErrorIs(err, mincrypt.ErrFormat)
	assert.Equal(mincrypt.Symmetric, s.Mode())

	err = s.LoadKeyFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestAsymmetricRoundTrip(t *testing.T) {
	assert := assert.New(t)

	priv, pub := generateKeys(t)
	input, err := io.ReadAll(util.NewRandomReader(2*mincrypt.ChunkSize+99, 5))
	require.NoError(t, err)

	for _, enc := range []header.Encoding{mincrypt.Binary, mincrypt.Base64} {
		encS := newSession(t, &mincrypt.Options{Encoding: enc}, 32)
		require.NoError(t, encS.LoadKeyFile(pub))
		decS := newSession(t, nil, 32)
		require.NoError(t, decS.LoadKeyFile(priv))

		sealed := util.NewMembuf()
		_, err := encS.EncryptStream(context.Background(), bytes.NewReader(input), sealed)
		require.NoError(t, err)

		_, err = sealed.Seek(0, io.SeekStart)
		require.NoError(t, err)
		output := &bytes.Buffer{}
		_, err = decS.DecryptStream(context.Background(), sealed, output)
		require.NoError(t, err)
		assert.Equal(input, output.Bytes(), "%s asymmetric round trip", enc)

		// A public key cannot decrypt.
		_, err = sealed.Seek(0, io.SeekStart)
		require.NoError(t, err)
		_, err = encS.DecryptStream(context.Background(), sealed, io.Discard)
		assert.ErrorIs(err, mincrypt.ErrNotInitialized)

		// A private key cannot encrypt.
		_, err = decS.Encrypt([]byte("hello"), 1)
		assert.ErrorIs(err, mincrypt.ErrNotInitialized)
	}
}

func TestAsymmetricWithoutKey(t *testing.T) {
	assert := assert.New(t)

	_, pub := generateKeys(t)
	s := newSession(t, nil, 32)
	require.NoError(t, s.LoadKeyFile(pub))

	sealed := util.NewMembuf()
	_, err := s.EncryptStream(context.Background(),
		util.NewRandomReader(3*mincrypt.ChunkSize, 6), sealed)
	require.NoError(t, err)

	_, err = sealed.Seek(0, io.SeekStart)
	require.NoError(t, err)
	plain := newSession(t, nil, 32)
	_, err = plain.DecryptStream(context.Background(), sealed, io.Discard)
	assert.ErrorIs(err, mincrypt.ErrNotInitialized)
}

package mincrypt_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util"
)

func TestVerify(t *testing.T) {
	assert := assert.New(t)

	// Generate some input
	input, err := io.ReadAll(util.NewRandomReader(2*mincrypt.ChunkSize+500, 3))
	require.NoError(t, err)

	s := newSession(t, nil, 32)
	file := util.NewMembuf()
	_, err = s.EncryptStream(context.Background(), bytes.NewReader(input), file)
	require.NoError(t, err)

	// Verify the file
	_, err = file.Seek(0, io.SeekStart)
	require.NoError(t, err)
	vres, err := s.VerifyStream(context.Background(), file)
	assert.NoError(err)
	assert.Equal(mincrypt.VerificationResult{
		Chunks:       3,
		PlainSize:    int64(len(input)),
		BrokenChunks: []uint32{},
		AllGood:      true,
	}, *vres)

	// Damage the second and third chunks
	full := int64(mincrypt.HeaderSize + mincrypt.ChunkSize)
	_, err = file.Seek(full+mincrypt.HeaderSize+1024, io.SeekStart)
	require.NoError(t, err)
	_, err = file.Write([]byte("blah"))
	require.NoError(t, err)
	_, err = file.Seek(2*full+mincrypt.HeaderSize+10, io.SeekStart)
	require.NoError(t, err)
	_, err = file.Write([]byte("asdf"))
	require.NoError(t, err)

	_, err = file.Seek(0, io.SeekStart)
	require.NoError(t, err)
	vres, err = s.VerifyStream(context.Background(), file)
	assert.NoError(err)
	assert.Equal(mincrypt.VerificationResult{
		Chunks:       3,
		PlainSize:    int64(len(input)),
		BrokenChunks: []uint32{2, 3},
		AllGood:      false,
	}, *vres)

	// Damage the header
	_, err = file.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = file.Write([]byte("meow"))
	require.NoError(t, err)

	_, err = file.Seek(0, io.SeekStart)
	require.NoError(t, err)
	vres, err = s.VerifyStream(context.Background(), file)
	assert.Nil(vres)
	assert.ErrorIs(err, mincrypt.ErrFormat)
}

func TestWalkChunks(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, &mincrypt.Options{Encoding: mincrypt.Base64}, 32)
	sink := util.NewMembuf()
	_, err := s.EncryptStream(context.Background(),
		util.NewRandomReader(mincrypt.ChunkSize+100, 4), sink)
	require.NoError(t, err)

	_, err = sink.Seek(0, io.SeekStart)
	require.NoError(t, err)

	var infos []mincrypt.ChunkInfo
	err = mincrypt.WalkChunks(sink, func(info mincrypt.ChunkInfo) error {
		infos = append(infos, info)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(uint32(1), infos[0].ID)
	assert.Equal(int64(0), infos[0].Offset)
	assert.Equal(mincrypt.Base64, infos[0].Header.Encoding)
	assert.Equal(uint32(mincrypt.ChunkSize), infos[0].Header.OriginalSize)
	assert.Equal(uint32(mincrypt.EncodedChunkSize), infos[0].Header.EncodedSize)
	assert.Len(infos[0].Preview, 64)

	assert.Equal(uint32(2), infos[1].ID)
	assert.Equal(int64(mincrypt.HeaderSize+mincrypt.EncodedChunkSize), infos[1].Offset)
	assert.Equal(uint32(100), infos[1].Header.OriginalSize)
}

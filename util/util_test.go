package util_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OhanaFS/mincrypt/util"
)

func TestMembuf(t *testing.T) {
	assert := assert.New(t)

	m := util.NewMembuf()
	n, err := m.Write([]byte("hello world"))
	assert.NoError(err)
	assert.Equal(11, n)

	_, err = m.Seek(6, io.SeekStart)
	assert.NoError(err)
	_, err = m.Write([]byte("there, you"))
	assert.NoError(err)
	assert.Equal("hello there, you", string(m.Bytes()))

	// Writing past the end leaves a zero gap.
	_, err = m.Seek(2, io.SeekEnd)
	assert.NoError(err)
	_, err = m.Write([]byte("!"))
	assert.NoError(err)
	assert.Equal("hello there, you\x00\x00!", string(m.Bytes()))

	_, err = m.Seek(-1, io.SeekStart)
	assert.ErrorIs(err, util.ErrNegativeOffset)

	_, err = m.Seek(0, io.SeekStart)
	assert.NoError(err)
	b, err := io.ReadAll(m)
	assert.NoError(err)
	assert.Equal(m.Bytes(), b)

	assert.NoError(m.Truncate(5))
	assert.Equal(5, m.Len())

	c := util.NewMembufBytes([]byte("abc"))
	b, err = io.ReadAll(c)
	assert.NoError(err)
	assert.Equal("abc", string(b))
}

func TestRandomReader(t *testing.T) {
	assert := assert.New(t)

	a, err := io.ReadAll(util.NewRandomReader(1000, 9))
	assert.NoError(err)
	assert.Len(a, 1000)

	b, err := io.ReadAll(util.NewRandomReader(1000, 9))
	assert.NoError(err)
	assert.Equal(a, b)

	c, err := io.ReadAll(util.NewRandomReader(1000, 10))
	assert.NoError(err)
	assert.NotEqual(a, c)
}

func TestFormatSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("512 B", util.FormatSize(512))
	assert.Equal("1.5 KiB", util.FormatSize(1536))
	assert.Equal("128.0 KiB", util.FormatSize(128*1024))
	assert.Equal("3.0 MiB", util.FormatSize(3*1024*1024))
	assert.Equal("2.0 GiB", util.FormatSize(2*1024*1024*1024))
	assert.Equal("1.0 MiB/s", util.FormatRate(2*1024*1024, 2))
	assert.Equal("-", util.FormatRate(10, 0))
}

package mincrypt_test

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OhanaFS/mincrypt"
)

func TestExitCode(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{mincrypt.ErrNotInitialized, 1},
		{fmt.Errorf("chunk 3: %w", mincrypt.ErrFormat), 2},
		{fmt.Errorf("chunk 3: %w", mincrypt.ErrIntegrity), 3},
		{mincrypt.ErrResourceExhausted, 4},
		{mincrypt.ErrParameter, 5},
		{errors.New("something else"), 6},
		{&os.PathError{Op: "open", Path: "x", Err: syscall.EACCES}, -int(syscall.EACCES)},
	}

	for _, tt := range tests {
		assert.Equal(tt.code, mincrypt.ExitCode(tt.err), "%v", tt.err)
	}
}

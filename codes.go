package mincrypt

import (
	"errors"
	"syscall"
)

// Exit codes for errors that do not come from the platform.
const (
	CodeOK             = 0
	CodeNotInitialized = 1
	CodeFormat         = 2
	CodeIntegrity      = 3
	CodeResource       = 4
	CodeParameter      = 5
	CodeOther          = 6
)

// ExitCode maps err to a process exit code. Platform errors map to their
// negated errno, mincrypt errors to small positive codes.
func ExitCode(err error) int {
	if err == nil {
		return CodeOK
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return -int(errno)
	}

	switch {
	case errors.Is(err, ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, ErrFormat):
		return CodeFormat
	case errors.Is(err, ErrIntegrity):
		return CodeIntegrity
	case errors.Is(err, ErrResourceExhausted):
		return CodeResource
	case errors.Is(err, ErrParameter):
		return CodeParameter
	}
	return CodeOther
}

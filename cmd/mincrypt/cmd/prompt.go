package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/OhanaFS/mincrypt"
)

var (
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", mincrypt.ErrParameter)
	ErrEmptyPassword    = fmt.Errorf("%w: password must not be empty", mincrypt.ErrParameter)
)

// stdin is shared so that lines read for the salt are not lost to the
// password prompt when input is piped.
var stdin = bufio.NewReader(os.Stdin)

// readLine reads one line from stdin, echoing when stdin is a terminal.
func readLine(prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
	}
	line, err := stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret reads one line from stdin without echo.
func readSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := readLine("")
		return []byte(line), err
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	return b, err
}

// readPassword returns the password from file, or prompts for it. With
// confirm set the prompt asks twice.
func readPassword(file string, confirm bool) ([]byte, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		b = bytes.TrimRight(b, "\r\n")
		if len(b) == 0 {
			return nil, ErrEmptyPassword
		}
		return b, nil
	}

	pw, err := readSecret("Password: ")
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, ErrEmptyPassword
	}
	if confirm && term.IsTerminal(int(os.Stdin.Fd())) {
		again, err := readSecret("Confirm password: ")
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(pw, again) {
			return nil, ErrPasswordMismatch
		}
	}
	return pw, nil
}

// readSalt returns the configured salt, or prompts for it. An empty answer
// selects mincrypt.DefaultSalt.
func readSalt(cfg *Config) ([]byte, error) {
	if cfg.Salt != "" {
		return []byte(cfg.Salt), nil
	}
	s, err := readLine(fmt.Sprintf("Salt [%s]: ", mincrypt.DefaultSalt))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if s == "" {
		return mincrypt.DefaultSalt, nil
	}
	return []byte(s), nil
}

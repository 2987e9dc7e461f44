package mincrypt

import (
	"errors"
	"fmt"
	"os"

	"github.com/OhanaFS/mincrypt/asymmetric"
)

// KeyOptions specifies options for GenerateKeys.
type KeyOptions struct {
	// Bits is the key length. It must be one of asymmetric.SupportedBits.
	Bits int
	// Salt and Password are mixed into the key generator.
	Salt     []byte
	Password []byte
	// Seed makes generation reproducible. Zero seeds from the clock.
	Seed int64
}

// GenerateKeys generates a key pair and writes the private key to privPath
// and the public key to pubPath. Neither file is left behind on failure.
func GenerateKeys(opts KeyOptions, privPath, pubPath string) (*asymmetric.KeyPair, error) {
	if privPath == pubPath {
		return nil, fmt.Errorf("%w: private and public key paths are the same", ErrParameter)
	}

	kp, err := asymmetric.Generate(asymmetric.GenerateOptions{
		Bits:     opts.Bits,
		Salt:     opts.Salt,
		Password: opts.Password,
		Seed:     opts.Seed,
	})
	if err != nil {
		if errors.Is(err, asymmetric.ErrUnsupportedBits) {
			return nil, fmt.Errorf("%w: %w", ErrParameter, err)
		}
		return nil, classifyKeyError(err)
	}

	if err := asymmetric.SaveKeyFile(privPath, kp.Private()); err != nil {
		os.Remove(privPath)
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := asymmetric.SaveKeyFile(pubPath, kp.Public()); err != nil {
		os.Remove(privPath)
		os.Remove(pubPath)
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}

	return kp, nil
}

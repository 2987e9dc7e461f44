package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util"
)

var (
	DecryptCmd    = flag.NewFlagSet("decrypt", flag.ExitOnError)
	decInput      = DecryptCmd.String("in", "", "path to the encrypted file")
	decOutput     = DecryptCmd.String("out", "", "path to the output file (default <in> without "+EncryptedSuffix+")")
	decSimple     = DecryptCmd.Bool("simple", false, "skip CRC checks and read chunks sequentially (binary files only)")
	decPrivateKey = DecryptCmd.String("key", "", "private key file for asymmetric mode")
	decCommon     = addCommonFlags(DecryptCmd)
)

// decryptedName picks an output name for an encrypted input.
func decryptedName(in string) string {
	if out := strings.TrimSuffix(in, EncryptedSuffix); out != in && out != "" {
		return out
	}
	return in + ".out"
}

func RunDecryptCmd(ctx context.Context) int {
	log := logrus.WithField("cmd", DecryptCmd.Name())

	cfg, err := decCommon.load()
	if err != nil {
		return fail(log, "Failed to load config", err)
	}
	if *decSimple {
		cfg.SimpleMode = true
	}
	if *decPrivateKey != "" {
		cfg.PrivateKey = *decPrivateKey
	}
	// The encoding of every chunk is read from its header.
	cfg.Encoding = mincrypt.Binary.String()
	if err := requireFlag(DecryptCmd, "in", *decInput); err != nil {
		return fail(log, "Invalid options", err)
	}
	output := *decOutput
	if output == "" {
		output = decryptedName(*decInput)
	}

	s, err := decCommon.newSession(cfg, false)
	if err != nil {
		return fail(log, "Failed to set up session", err)
	}
	defer s.Cleanup()

	if cfg.PrivateKey != "" {
		if err := s.LoadKeyFile(cfg.PrivateKey); err != nil {
			return fail(log, "Failed to load private key", err)
		}
	}

	log.WithFields(logrus.Fields{
		"in":     *decInput,
		"out":    output,
		"simple": cfg.SimpleMode,
		"mode":   s.Mode(),
	}).Info("Decrypting file...")
	res, err := s.DecryptFile(ctx, *decInput, output, nil)
	if err != nil {
		return fail(log, "Failed to decrypt file", err)
	}

	log.Infof("Decrypted %d chunks into %s", res.Chunks, util.FormatSize(res.BytesOut))
	return mincrypt.CodeOK
}

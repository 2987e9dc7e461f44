package cmd

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util"
)

// EncryptedSuffix is appended to the input name when -out is not given.
const EncryptedSuffix = ".mcr"

var (
	EncryptCmd   = flag.NewFlagSet("encrypt", flag.ExitOnError)
	encInput     = EncryptCmd.String("in", "", "path to the input file")
	encOutput    = EncryptCmd.String("out", "", "path to the output file (default <in>"+EncryptedSuffix+")")
	encEncoding  = EncryptCmd.String("encoding", "", "chunk encoding, binary or base64")
	encPublicKey = EncryptCmd.String("key", "", "public key file for asymmetric mode")
	encCommon    = addCommonFlags(EncryptCmd)
)

func RunEncryptCmd(ctx context.Context) int {
	log := logrus.WithField("cmd", EncryptCmd.Name())

	cfg, err := encCommon.load()
	if err != nil {
		return fail(log, "Failed to load config", err)
	}
	if *encEncoding != "" {
		cfg.Encoding = *encEncoding
	}
	if *encPublicKey != "" {
		cfg.PublicKey = *encPublicKey
	}
	cfg.SimpleMode = false
	if err := cfg.Validate(); err != nil {
		return fail(log, "Invalid options", err)
	}
	if err := requireFlag(EncryptCmd, "in", *encInput); err != nil {
		return fail(log, "Invalid options", err)
	}
	output := *encOutput
	if output == "" {
		output = *encInput + EncryptedSuffix
	}

	s, err := encCommon.newSession(cfg, true)
	if err != nil {
		return fail(log, "Failed to set up session", err)
	}
	defer s.Cleanup()

	if cfg.PublicKey != "" {
		if err := s.LoadKeyFile(cfg.PublicKey); err != nil {
			return fail(log, "Failed to load public key", err)
		}
	}

	log.WithFields(logrus.Fields{
		"in":       *encInput,
		"out":      output,
		"encoding": cfg.Encoding,
		"mode":     s.Mode(),
	}).Info("Encrypting file...")
	res, err := s.EncryptFile(ctx, *encInput, output, nil)
	if err != nil {
		return fail(log, "Failed to encrypt file", err)
	}

	log.Infof("Encrypted %s into %d chunks (%s)",
		util.FormatSize(res.BytesIn), res.Chunks, util.FormatSize(res.BytesOut))
	return mincrypt.CodeOK
}

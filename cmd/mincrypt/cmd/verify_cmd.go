package cmd

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util"
)

var (
	VerifyCmd    = flag.NewFlagSet("verify", flag.ExitOnError)
	vfInput      = VerifyCmd.String("in", "", "path to the encrypted file")
	vfPrivateKey = VerifyCmd.String("key", "", "private key file for asymmetric files")
	vfCommon     = addCommonFlags(VerifyCmd)
)

func RunVerifyCmd(ctx context.Context) int {
	log := logrus.WithField("cmd", VerifyCmd.Name())

	cfg, err := vfCommon.load()
	if err != nil {
		return fail(log, "Failed to load config", err)
	}
	if *vfPrivateKey != "" {
		cfg.PrivateKey = *vfPrivateKey
	}
	cfg.SimpleMode = false
	cfg.Encoding = mincrypt.Binary.String()
	if err := requireFlag(VerifyCmd, "in", *vfInput); err != nil {
		return fail(log, "Invalid options", err)
	}

	s, err := vfCommon.newSession(cfg, false)
	if err != nil {
		return fail(log, "Failed to set up session", err)
	}
	defer s.Cleanup()

	if cfg.PrivateKey != "" {
		if err := s.LoadKeyFile(cfg.PrivateKey); err != nil {
			return fail(log, "Failed to load private key", err)
		}
	}

	res, err := s.VerifyFile(ctx, *vfInput)
	if err != nil {
		return fail(log, "Failed to verify file", err)
	}

	log.WithFields(logrus.Fields{
		"chunks": res.Chunks,
		"size":   util.FormatSize(res.PlainSize),
	}).Info("Verification finished")
	if !res.AllGood {
		log.Errorf("Broken chunks: %v", res.BrokenChunks)
		return mincrypt.CodeIntegrity
	}
	log.Info("All chunks are intact")
	return mincrypt.CodeOK
}

package cmd

import (
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
)

var (
	KeygenCmd = flag.NewFlagSet("keygen", flag.ExitOnError)
	kgBits    = KeygenCmd.Int("bits", 1024, "key length: 128, 256, 512, 1024, 2048 or 4096")
	kgOutput  = KeygenCmd.String("out", "mincrypt", "key file base name; writes <out>.key and <out>.pub")
	kgSeed    = KeygenCmd.Int64("seed", 0, "generator seed for reproducible keys, 0 for the clock")
	kgCommon  = addCommonFlags(KeygenCmd)
)

func RunKeygenCmd() int {
	log := logrus.WithField("cmd", KeygenCmd.Name())

	cfg, err := kgCommon.load()
	if err != nil {
		return fail(log, "Failed to load config", err)
	}
	salt, err := readSalt(cfg)
	if err != nil {
		return fail(log, "Failed to read salt", err)
	}
	password, err := readPassword(*kgCommon.passwordFile, true)
	if err != nil {
		return fail(log, "Failed to read password", err)
	}

	privPath, pubPath := *kgOutput+".key", *kgOutput+".pub"
	log.Infof("Generating %d-bit key pair...", *kgBits)
	start := time.Now()
	kp, err := mincrypt.GenerateKeys(mincrypt.KeyOptions{
		Bits:     *kgBits,
		Salt:     salt,
		Password: password,
		Seed:     *kgSeed,
	}, privPath, pubPath)
	if err != nil {
		return fail(log, "Failed to generate keys", err)
	}

	log.WithFields(logrus.Fields{
		"pairs":   len(kp.Pairs),
		"private": privPath,
		"public":  pubPath,
	}).Infof("Key pair generated in %v", time.Since(start).Round(time.Millisecond))
	return mincrypt.CodeOK
}

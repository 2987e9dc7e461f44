package cmd

import (
	"bytes"
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util"
)

var (
	BenchCmd    = flag.NewFlagSet("bench", flag.ExitOnError)
	bThreads    = BenchCmd.Int("threads", 1, "number of threads")
	bInputSize  = BenchCmd.Int64("input-size", 10*1024*1024, "size of the input in bytes")
	bEncoding   = BenchCmd.String("encoding", "binary", "chunk encoding, binary or base64")
	bMultiplier = BenchCmd.Int("multiplier", -1, "vector multiplier, negative for the default")
)

// BenchResult is the time taken by one benchmark round.
type BenchResult struct {
	Encrypt time.Duration
	Decrypt time.Duration
	Size    int64
}

// RunBench encrypts and decrypts size pseudo-random bytes in memory with a
// throwaway password.
func RunBench(ctx context.Context, cfg *Config, size, seed int64) (*BenchResult, error) {
	enc, err := cfg.EncodingType()
	if err != nil {
		return nil, err
	}
	s, err := mincrypt.NewSession(&mincrypt.Options{Encoding: enc})
	if err != nil {
		return nil, err
	}
	defer s.Cleanup()

	password := make([]byte, 16)
	if _, err := rand.Read(password); err != nil {
		return nil, err
	}
	// Passwords must not contain NUL bytes.
	for i := range password {
		password[i] |= 1
	}
	if err := s.SetPassword(mincrypt.DefaultSalt, password, cfg.Multiplier); err != nil {
		return nil, err
	}

	input := util.NewRandomReader(size, seed)
	encrypted := util.NewMembuf()

	startTime := time.Now()
	if _, err := s.EncryptStream(ctx, input, encrypted); err != nil {
		return nil, err
	}
	encDuration := time.Since(startTime)

	if _, err := encrypted.Seek(0, 0); err != nil {
		return nil, err
	}
	decrypted := bytes.NewBuffer(make([]byte, 0, size))
	startTime = time.Now()
	res, err := s.DecryptStream(ctx, encrypted, decrypted)
	if err != nil {
		return nil, err
	}
	decDuration := time.Since(startTime)
	if res.BytesOut != size {
		return nil, fmt.Errorf("decrypted %d bytes, expected %d", res.BytesOut, size)
	}

	return &BenchResult{Encrypt: encDuration, Decrypt: decDuration, Size: size}, nil
}

func RunBenchCmd(ctx context.Context) int {
	log := logrus.WithField("cmd", BenchCmd.Name())

	cfg := DefaultConfig()
	cfg.Encoding = *bEncoding
	cfg.Multiplier = *bMultiplier
	if err := cfg.Validate(); err != nil {
		return fail(log, "Invalid options", err)
	}
	if *bThreads < 1 || *bInputSize < 1 {
		return fail(log, "Invalid options", fmt.Errorf("%w: -threads and -input-size must be positive", mincrypt.ErrParameter))
	}

	log.Infof("Running benchmark with %s of %s input on %d threads",
		util.FormatSize(*bInputSize), cfg.Encoding, *bThreads)

	// Run the benchmark on each thread
	var results []*BenchResult
	var lock sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < *bThreads; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			res, err := RunBench(ctx, cfg, *bInputSize, seed)
			if err != nil {
				log.WithError(err).Error("Error running benchmark")
				return
			}
			lock.Lock()
			results = append(results, res)
			lock.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()

	if len(results) == 0 {
		log.Error("No benchmark round finished")
		return mincrypt.CodeOther
	}

	// Report the results
	var encTotal, decTotal time.Duration
	for _, res := range results {
		encTotal += res.Encrypt
		decTotal += res.Decrypt
	}
	n := time.Duration(len(results))
	encAvg, decAvg := encTotal/n, decTotal/n
	total := *bInputSize * int64(len(results))

	log.Infof("Encrypt: average %v, speed %s", encAvg, util.FormatRate(total, encAvg.Seconds()))
	log.Infof("Decrypt: average %v, speed %s", decAvg, util.FormatRate(total, decAvg.Seconds()))
	if len(results) != *bThreads {
		return mincrypt.CodeOther
	}
	return mincrypt.CodeOK
}

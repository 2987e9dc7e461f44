package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
	"github.com/OhanaFS/mincrypt/util/debug"
)

var (
	InspectCmd   = flag.NewFlagSet("inspect", flag.ExitOnError)
	insInput     = InspectCmd.String("in", "", "path to the encrypted file")
	insMaxChunks = InspectCmd.Int("n", 0, "stop after this many chunks, 0 for all")
	insHexdump   = InspectCmd.Bool("hexdump", false, "dump the start of every payload")
)

var errStopWalk = errors.New("stop")

// Inspect prints the chunk headers of the encrypted stream r to w.
func Inspect(w io.Writer, r io.ReadSeeker, maxChunks int, hexdump bool) (int, error) {
	count := 0
	err := mincrypt.WalkChunks(r, func(info mincrypt.ChunkInfo) error {
		h := info.Header
		fmt.Fprintf(w, "chunk %d @ %d: %s, %d bytes, payload %d, crc %08x, shift %d\n",
			info.ID, info.Offset, h.Encoding, h.OriginalSize, h.PayloadSize(), h.CRC, h.Shift)
		if hexdump {
			if err := debug.Hexdump(w, info.Preview, info.Offset+mincrypt.HeaderSize); err != nil {
				return err
			}
		}
		count++
		if maxChunks > 0 && count >= maxChunks {
			return errStopWalk
		}
		return nil
	})
	if errors.Is(err, errStopWalk) {
		err = nil
	}
	return count, err
}

func RunInspectCmd() int {
	log := logrus.WithField("cmd", InspectCmd.Name())

	if err := requireFlag(InspectCmd, "in", *insInput); err != nil {
		return fail(log, "Invalid options", err)
	}
	f, err := os.Open(*insInput)
	if err != nil {
		return fail(log, "Failed to open file", err)
	}
	defer f.Close()

	n, err := Inspect(os.Stdout, f, *insMaxChunks, *insHexdump)
	if err != nil {
		return fail(log, fmt.Sprintf("Stopped after %d chunks", n), err)
	}
	return mincrypt.CodeOK
}

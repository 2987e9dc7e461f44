package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/OhanaFS/mincrypt"
)

var (
	DumpCmd     = flag.NewFlagSet("dump", flag.ExitOnError)
	dumpOutput  = DumpCmd.String("out", "mincrypt.dump", "path to write the vector dump to")
	dumpRead    = DumpCmd.String("read", "", "print a summary of an existing dump instead of writing one")
	dumpKey     = DumpCmd.String("key", "", "key file to include in the dump")
	dumpCommon  = addCommonFlags(DumpCmd)
	dumpPreview = 8
)

// PrintDump writes a summary of d to w.
func PrintDump(w io.Writer, d *mincrypt.VectorDump) {
	fmt.Fprintf(w, "version:  %s\n", d.Version)
	fmt.Fprintf(w, "mode:     %s\n", d.Mode)
	fmt.Fprintf(w, "encoding: %s (simple mode %t)\n", d.Encoding, d.SimpleMode)
	fmt.Fprintf(w, "ival:     %#016x\n", d.IVal)
	fmt.Fprintf(w, "vector:   %d words", len(d.Vector))
	for i, v := range d.Vector {
		if i == dumpPreview {
			fmt.Fprint(w, " ...")
			break
		}
		fmt.Fprintf(w, " %08x", v)
	}
	fmt.Fprintln(w)
	if len(d.Pairs) > 0 {
		kind := "public"
		if d.KeyPrivate {
			kind = "private"
		}
		fmt.Fprintf(w, "key:      %d-bit %s, %d pairs\n", d.KeyBits, kind, len(d.Pairs))
	}
}

func RunDumpCmd() int {
	log := logrus.WithField("cmd", DumpCmd.Name())

	if *dumpRead != "" {
		f, err := os.Open(*dumpRead)
		if err != nil {
			return fail(log, "Failed to open dump", err)
		}
		defer f.Close()
		d, err := mincrypt.ReadVectorDump(f)
		if err != nil {
			return fail(log, "Failed to read dump", err)
		}
		PrintDump(os.Stdout, d)
		return mincrypt.CodeOK
	}

	cfg, err := dumpCommon.load()
	if err != nil {
		return fail(log, "Failed to load config", err)
	}
	s, err := dumpCommon.newSession(cfg, false)
	if err != nil {
		return fail(log, "Failed to set up session", err)
	}
	defer s.Cleanup()

	if *dumpKey != "" {
		if err := s.LoadKeyFile(*dumpKey); err != nil {
			return fail(log, "Failed to load key", err)
		}
	}
	if err := s.DumpVectorsFile(*dumpOutput); err != nil {
		return fail(log, "Failed to dump vectors", err)
	}

	log.Warnf("Vectors written to %s; the dump holds secret key material", *dumpOutput)
	return mincrypt.CodeOK
}

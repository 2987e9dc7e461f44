package asymmetric

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OhanaFS/mincrypt/version"
)

const wordsPerLine = 8

// FileHeader is the first line of a key file.
type FileHeader struct {
	Version version.Version
	Private bool
	Bits    int
}

func kindName(private bool) string {
	if private {
		return "PRIVATE"
	}
	return "PUBLIC"
}

func (h FileHeader) String() string {
	return fmt.Sprintf("--- MINCRYPT %s %s KEY FOR %d-BIT KEYLENGTH ---",
		h.Version, kindName(h.Private), h.Bits)
}

func footer(private bool) string {
	return fmt.Sprintf("--- END OF MINCRYPT %s KEY ---", kindName(private))
}

// ParseFileHeader parses a key file header line.
func ParseFileHeader(line string) (*FileHeader, error) {
	f := strings.Fields(line)
	if len(f) != 9 || f[0] != "---" || f[1] != "MINCRYPT" || f[4] != "KEY" ||
		f[5] != "FOR" || f[7] != "KEYLENGTH" || f[8] != "---" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}

	v, err := version.Parse(f[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	h := &FileHeader{Version: v}
	switch f[3] {
	case "PRIVATE":
		h.Private = true
	case "PUBLIC":
	default:
		return nil, fmt.Errorf("%w: unknown key type %q", ErrMalformedHeader, f[3])
	}

	bits, ok := strings.CutSuffix(f[6], "-BIT")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, f[6])
	}
	if h.Bits, err = strconv.Atoi(bits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	return h, nil
}

func encodeWord(w uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], w)
	return hex.EncodeToString(b[:])
}

func decodeWord(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("%w: word %q", ErrMalformedBody, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return binary.BigEndian.Uint32(b), nil
}

// WriteKeyFile writes km in the key file text format.
func WriteKeyFile(w io.Writer, km *KeyMaterial) error {
	if km.Len() == 0 {
		return ErrEmptyKey
	}
	if len(km.Pairs) != PairCount(km.Bits) {
		return fmt.Errorf("%w: %d pairs for %d bits", ErrWordCountInvalid, len(km.Pairs), km.Bits)
	}

	words := make([]uint32, 0, 2*len(km.Pairs))
	for _, p := range km.Pairs {
		if km.Private {
			words = append(words, p.Packed(), p.D)
		} else {
			words = append(words, p.N, p.E)
		}
	}

	bw := bufio.NewWriter(w)
	h := FileHeader{Version: version.Current, Private: km.Private, Bits: km.Bits}
	fmt.Fprintln(bw, h.String())
	for i := 0; i < len(words); i += wordsPerLine {
		end := i + wordsPerLine
		if end > len(words) {
			end = len(words)
		}
		line := make([]string, 0, wordsPerLine)
		for _, w := range words[i:end] {
			line = append(line, encodeWord(w))
		}
		fmt.Fprintln(bw, strings.Join(line, " "))
	}
	fmt.Fprintln(bw, footer(km.Private))
	return bw.Flush()
}

// ReadKeyFile parses a key file. The header is checked before the body is
// read: files written by a newer version and unsupported key lengths are
// rejected.
func ReadKeyFile(r io.Reader) (*KeyMaterial, error) {
	sc := bufio.NewScanner(r)

	var h *FileHeader
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var err error
		if h, err = ParseFileHeader(line); err != nil {
			return nil, err
		}
		break
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("%w: empty key file", ErrMalformedHeader)
	}
	if h.Version.Newer(version.Current) {
		return nil, fmt.Errorf("%w: %s > %s", ErrUnsupportedFile, h.Version, version.Current)
	}
	if !IsSupportedBits(h.Bits) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBits, h.Bits)
	}

	var words []uint32
	done := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "---") {
			if line != footer(h.Private) {
				return nil, fmt.Errorf("%w: %q", ErrMalformedBody, line)
			}
			done = true
			break
		}
		for _, f := range strings.Fields(line) {
			w, err := decodeWord(f)
			if err != nil {
				return nil, err
			}
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrMissingFooter
	}

	count := PairCount(h.Bits)
	if len(words) != 2*count {
		return nil, fmt.Errorf("%w: %d words for %d bits", ErrWordCountInvalid, len(words), h.Bits)
	}

	km := &KeyMaterial{Private: h.Private, Bits: h.Bits, Pairs: make([]Pair, count)}
	for i := range km.Pairs {
		a, b := words[2*i], words[2*i+1]
		var p Pair
		if h.Private {
			p = unpack(a)
			p.D = b
			if p.P < 3 || p.Q < 3 || p.D == 0 {
				return nil, fmt.Errorf("%w: private pair %d", ErrInvalidPair, i)
			}
		} else {
			p = Pair{N: a, E: b}
			if p.N <= 0xff || p.E == 0 {
				return nil, fmt.Errorf("%w: public pair %d", ErrInvalidPair, i)
			}
		}
		km.Pairs[i] = p
	}
	return km, nil
}

// SaveKeyFile writes km to path, readable only by the owner.
func SaveKeyFile(path string, km *KeyMaterial) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := WriteKeyFile(f, km); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadKeyFile reads key material from path.
func LoadKeyFile(path string) (*KeyMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKeyFile(f)
}

// Package debug holds helpers for looking at raw chunk data.
package debug

import (
	"fmt"
	"io"
	"strings"
)

const bytesPerLine = 16

// Hexdump writes a hexdump of data to w. Offsets start at base.
func Hexdump(w io.Writer, data []byte, base int64) error {
	var line strings.Builder
	for i := 0; i < len(data); i += bytesPerLine {
		line.Reset()
		fmt.Fprintf(&line, "%08x  ", base+int64(i))
		for j := 0; j < bytesPerLine; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&line, "%02x ", data[i+j])
			} else {
				line.WriteString("   ")
			}
			if j%8 == 7 {
				line.WriteByte(' ')
			}
		}
		line.WriteByte('|')
		for j := 0; j < bytesPerLine && i+j < len(data); j++ {
			if c := data[i+j]; c >= 32 && c < 127 {
				line.WriteByte(c)
			} else {
				line.WriteByte('.')
			}
		}
		line.WriteString("|\n")
		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

package util

import "fmt"

var sizeUnits = []string{"KiB", "MiB", "GiB", "TiB"}

// FormatSize returns a human-readable string representation of a size in bytes.
func FormatSize(size int64) string {
	if size < 1024 && size > -1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size) / 1024
	unit := 0
	for (value >= 1024 || value <= -1024) && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// FormatRate returns a human-readable throughput for size bytes processed in
// the given number of seconds.
func FormatRate(size int64, seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return FormatSize(int64(float64(size)/seconds)) + "/s"
}

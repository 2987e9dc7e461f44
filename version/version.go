// Package version describes the mincrypt library and file format version.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor.micro triple.
type Version struct {
	Major int
	Minor int
	Micro int
}

// Current is the version of this library. Key files written by newer
// versions are rejected by readers of an older one.
var Current = Version{Major: 0, Minor: 1, Micro: 0}

var ErrInvalidVersion = errors.New("invalid version string")

// Parse parses a "major.minor.micro" string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 0xff {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Micro: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Code packs the version into a single integer, one byte per component.
func (v Version) Code() int64 {
	return int64(v.Major)<<16 | int64(v.Minor)<<8 | int64(v.Micro)
}

// Newer reports whether v is newer than other.
func (v Version) Newer(other Version) bool {
	return v.Code() > other.Code()
}

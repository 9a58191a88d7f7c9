package util

import (
	"fmt"
	"regexp"
	"strconv"
)

type Version struct {
	Major uint
	Minor uint
	Patch uint
}

// ToolVersion is the version of this tool.
var ToolVersion = Version{1, 2, 0}

var versionRegexp = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)$`)

// ParseVersion parses a version string of the form `vMAJOR.MINOR.PATCH`.
func ParseVersion(s string) (Version, error) {
	match := versionRegexp.FindStringSubmatch(s)
	if match == nil {
		return Version{}, fmt.Errorf("invalid version string %q", s)
	}

	parts := []uint{}
	for _, m := range match[1:] {
		part, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			return Version{}, err
		}
		parts = append(parts, uint(part))
	}
	return Version{parts[0], parts[1], parts[2]}, nil
}

// Less reports whether v is an older version than other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
	ErrNotCephBanner     = errors.New("string is not a ceph version banner")
)

// Version represents a semantic version number with Major, Minor, and Patch
// components. It supports flexible precision (1, 2, or 3 components) and
// preserves additional metadata such as rc suffixes (e.g., "-rc1").
// The Precision field indicates how many components are significant for
// comparisons.
type Version struct {
	Major int `json:"major,omitempty" yaml:"major,omitempty"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision indicates how many components are significant (1, 2, or 3)
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Extras stores additional version metadata like "-rc1"
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the string representation of the Version respecting its
// precision. Extras are not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return fmt.Sprintf("%d", v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses a version string into a Version struct.
// Supported formats: "1", "1.2", "1.2.3", "v1.2.3", "1.2.3-suffix".
// The "v" prefix is optional and stripped if present. Metadata after '-' or
// '+' is preserved in the Extras field.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	// Extract extras first so suffixes containing dots don't confuse the
	// component split. A '-' only starts extras when preceded by a digit.
	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prevCh := s[i-1]
			if prevCh >= '0' && prevCh <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// CephVersion is the parsed form of a `ceph --version` banner.
type CephVersion struct {
	Version  Version `json:"version" yaml:"version"`
	SHA      string  `json:"sha,omitempty" yaml:"sha,omitempty"`
	Codename string  `json:"codename,omitempty" yaml:"codename,omitempty"`
}

// ParseBanner parses the output of `ceph --version` into a CephVersion.
// Expected shape:
//
//	ceph version 12.2.5 (cad919881333ac92274171586c827e01f554a70a) luminous (stable)
//
// Older releases omit the sha and codename; both are optional.
func ParseBanner(s string) (CephVersion, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 3 || fields[0] != "ceph" || fields[1] != "version" {
		return CephVersion{}, fmt.Errorf("%w: %q", ErrNotCephBanner, s)
	}

	v, err := ParseVersion(fields[2])
	if err != nil {
		return CephVersion{}, fmt.Errorf("parsing %q: %w", fields[2], err)
	}

	cv := CephVersion{Version: v}
	for _, f := range fields[3:] {
		if strings.HasPrefix(f, "(") && strings.HasSuffix(f, ")") {
			inner := strings.Trim(f, "()")
			if cv.SHA == "" && isHex(inner) {
				cv.SHA = inner
			}
			continue
		}
		if cv.Codename == "" {
			cv.Codename = f
		}
	}
	return cv, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// EqualsOrNewer returns true if v is equal to or newer than other.
// Comparison is performed up to the precision of v; Version{Major:12,
// Minor:2, Precision:2} matches any 12.2.x version.
func (v Version) EqualsOrNewer(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Precision == 1 {
		return true
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	if v.Precision == 2 {
		return true
	}
	return v.Patch >= other.Patch
}

// Equals returns true if v exactly equals other (all components match).
// Unlike EqualsOrNewer, this ignores precision and compares all fields.
func (v Version) Equals(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

// Compare returns an integer comparing two versions:
// -1 if v < other, 0 if v == other, 1 if v > other.
// The lower of the two precisions bounds the comparison.
func (v Version) Compare(other Version) int {
	precision := v.Precision
	if other.Precision < precision {
		precision = other.Precision
	}

	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if precision == 1 {
		return 0
	}

	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if precision == 2 {
		return 0
	}

	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// IsValid returns true if the version has valid values.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package openvino describes the inference runtime releases a pipeline can
// require. Releases are tagged "<year>.<release>"; releases of the same year
// share a blob format and are compatible with each other.
package openvino

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Version is a runtime release. The zero Version means "no requirement".
type Version struct {
	v *semver.Version
}

var supported = []string{"2020.3", "2020.4", "2021.1", "2021.2", "2021.3", "2021.4"}

// tagRegex matches a bare "<year>.<release>" tag.
var tagRegex = regexp.MustCompile(`^\d+\.\d+$`)

// Parse parses a "<year>.<release>" tag.
func Parse(tag string) (Version, error) {
	if !tagRegex.MatchString(tag) {
		return Version{}, fmt.Errorf("invalid runtime version %q: expected <year>.<release>", tag)
	}
	v, err := semver.StrictNewVersion(tag + ".0")
	if err != nil {
		return Version{}, fmt.Errorf("invalid runtime version %q: %w", tag, err)
	}
	return Version{v: v}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(tag string) Version {
	v, err := Parse(tag)
	if err != nil {
		panic(err)
	}
	return v
}

// FromParts builds the version for a release year and number.
func FromParts(year, release uint32) Version {
	return MustParse(fmt.Sprintf("%d.%d", year, release))
}

// IsZero reports whether v is the "no requirement" value.
func (v Version) IsZero() bool { return v.v == nil }

// Year is the major component of the release tag.
func (v Version) Year() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

// Release is the minor component of the release tag.
func (v Version) Release() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Minor()
}

func (v Version) String() string {
	if v.v == nil {
		return "none"
	}
	return fmt.Sprintf("%d.%d", v.v.Major(), v.v.Minor())
}

// Compare returns -1, 0 or 1. The zero Version sorts before every release.
func (v Version) Compare(o Version) int {
	switch {
	case v.v == nil && o.v == nil:
		return 0
	case v.v == nil:
		return -1
	case o.v == nil:
		return 1
	}
	return v.v.Compare(o.v)
}

// Equal reports whether both values name the same release.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Compatible reports whether a and b can run on the same runtime.
func Compatible(a, b Version) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	return a.Year() == b.Year()
}

// Supported returns every release the builder knows about, oldest first.
func Supported() []Version {
	out := make([]Version, 0, len(supported))
	for _, tag := range supported {
		out = append(out, MustParse(tag))
	}
	return out
}

// IsSupported reports whether v is a known release.
func IsSupported(v Version) bool {
	for _, s := range Supported() {
		if s.Equal(v) {
			return true
		}
	}
	return false
}

// Latest is the newest supported release.
func Latest() Version {
	return MustParse(supported[len(supported)-1])
}

// MarshalText encodes the release tag.
func (v Version) MarshalText() ([]byte, error) {
	if v.v == nil {
		return []byte{}, nil
	}
	return []byte(v.String()), nil
}

// UnmarshalText decodes a release tag; an empty tag is the zero Version.
func (v *Version) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*v = Version{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

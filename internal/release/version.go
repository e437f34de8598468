package release

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// versionRegex matches a bare three-part numeric version (no "v" prefix, no whitespace)
var versionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a validated X.Y.Z version string.
// The only way to obtain a non-empty Version is ParseVersion.
type Version string

// String returns the version text
func (v Version) String() string {
	return string(v)
}

// ParseVersion validates s and returns it as a Version.
// Input is not trimmed: surrounding whitespace is rejected.
func ParseVersion(s string) (Version, error) {
	if !versionRegex.MatchString(s) {
		return "", fmt.Errorf("%w: %q (use X.Y.Z, e.g. 0.8.4)", ErrInvalidVersionFormat, s)
	}
	return Version(s), nil
}

// ValidateVersion reports whether s is a valid X.Y.Z version
func ValidateVersion(s string) error {
	_, err := ParseVersion(s)
	return err
}

// IsOlder reports whether v sorts strictly before other.
// Used only for advisory warnings; releases never depend on it.
func (v Version) IsOlder(other Version) bool {
	a, errA := semver.NewVersion(string(v))
	b, errB := semver.NewVersion(string(other))
	if errA != nil || errB != nil {
		return false
	}
	return a.LessThan(b)
}

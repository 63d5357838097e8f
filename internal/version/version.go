package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These are set during the build via -ldflags.
var (
	BuildDate    = "unknown"
	BuildVersion = "0.0.0"
	Commit       = "unknown"
)

// BaseVersion returns the base version of the application in the
// form "vMAJOR.MINOR". It falls back to "unknown" when the build
// version does not parse as semver.
func BaseVersion() string {
	v, err := semver.NewVersion(BuildVersion)
	if err != nil {
		return "unknown"
	}

	return fmt.Sprintf("v%d.%d", v.Major(), v.Minor())
}

// BaseVersionAuthoritative returns the base version and whether it
// comes from an injected build version rather than the default.
func BaseVersionAuthoritative() (string, bool) {
	_, err := semver.NewVersion(BuildVersion)
	authoritative := err == nil && BuildVersion != "0.0.0"
	return BaseVersion(), authoritative
}

// Current returns the build version as a semver value. Theme engine
// constraints are checked against it.
func Current() (*semver.Version, error) {
	return semver.NewVersion(BuildVersion)
}

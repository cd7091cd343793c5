package release

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
)

// InitialVersion is suggested when there is no usable previous version.
const InitialVersion = "1.0.0"

var (
	strictVersion  = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)
	lenientVersion = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:[-+].*)?$`)
)

// SuggestNext proposes the version after last by incrementing the patch
// number. With no previous release, or a version the policy does not
// recognize, it returns InitialVersion.
//
// Strict accepts only MAJOR.MINOR.PATCH, so "2.5.0-beta" resets to 1.0.0.
// Lenient also accepts a leading "v" and pre-release or build suffixes:
// "2.5.0-beta" becomes "2.5.1".
func SuggestNext(last *Release, policy config.VersionPolicy) string {
	if last == nil {
		return InitialVersion
	}

	pattern := strictVersion
	if policy == config.VersionLenient {
		pattern = lenientVersion
	}

	m := pattern.FindStringSubmatch(last.Version)
	if m == nil {
		return InitialVersion
	}

	major, err1 := strconv.ParseUint(m[1], 10, 64)
	minor, err2 := strconv.ParseUint(m[2], 10, 64)
	patch, err3 := strconv.ParseUint(m[3], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || patch == ^uint64(0) {
		return InitialVersion
	}

	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}

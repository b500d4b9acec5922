// Package actionref classifies how strongly an action reference is pinned.
package actionref

import (
	"regexp"
	"strings"
)

// Classification is the pinning strength of an action reference.
type Classification string

const (
	// Unpinned references have no @version segment.
	Unpinned Classification = "unpinned"
	// FloatingBranch references track a mutable branch alias such as main.
	FloatingBranch Classification = "floating-branch"
	// FloatingTag references use a version-like tag that may be moved, e.g. v4.
	FloatingTag Classification = "floating-tag"
	// PinnedSHA references name a commit hash.
	PinnedSHA Classification = "pinned-sha"
	// Tagged references use any other named release tag.
	Tagged Classification = "tagged"
)

// floatingBranches are compared case-insensitively.
var floatingBranches = map[string]bool{
	"main":   true,
	"master": true,
	"latest": true,
	"edge":   true,
}

var (
	versionTagPattern = regexp.MustCompile(`^v?\d+(\.\d+)*$`)
	commitSHAPattern  = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)
)

// Classify returns the pinning class of ref. The checks run in a fixed order:
// an all-digit version such as "123456" is a floating tag, not a short SHA.
func Classify(ref string) Classification {
	_, version, found := strings.Cut(ref, "@")
	if !found {
		return Unpinned
	}

	switch {
	case floatingBranches[strings.ToLower(version)]:
		return FloatingBranch
	case versionTagPattern.MatchString(version):
		return FloatingTag
	case commitSHAPattern.MatchString(version):
		return PinnedSHA
	default:
		return Tagged
	}
}

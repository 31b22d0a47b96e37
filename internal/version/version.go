// Package version models package versions and release bump policies.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/conn-castle/release-train/internal/messages"
)

// Version holds a package version in both its full form (including build
// metadata) and its bare form (build metadata stripped), with pre-rendered
// string forms. Bare is always derivable from Full by clearing metadata.
type Version struct {
	Full     semver.Version
	Bare     semver.Version
	FullText string
	BareText string
}

// New builds a Version from a parsed semantic version.
func New(full semver.Version) Version {
	bare, err := full.SetMetadata("")
	if err != nil {
		// Clearing metadata cannot produce an invalid version.
		bare = full
	}
	return Version{
		Full:     full,
		Bare:     bare,
		FullText: full.String(),
		BareText: bare.String(),
	}
}

// Parse builds a Version from its string form.
func Parse(text string) (Version, error) {
	parsed, err := semver.StrictNewVersion(text)
	if err != nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidFmt, text, err)
	}
	return New(*parsed), nil
}

// IsPrerelease reports whether the full version carries a pre-release component.
func (v Version) IsPrerelease() bool {
	return v.Full.Prerelease() != ""
}

// Metadata returns the build metadata of the full version, empty when none.
func (v Version) Metadata() string {
	return v.Full.Metadata()
}

// WithMetadata returns a copy of v with the build metadata replaced.
// An empty metadata argument clears it.
func (v Version) WithMetadata(metadata string) (Version, error) {
	full, err := v.Full.SetMetadata(metadata)
	if err != nil {
		return Version{}, fmt.Errorf(messages.VersionInvalidMetadataFmt, metadata, err)
	}
	return New(full), nil
}

// Compare orders v against other by full version precedence.
func (v Version) Compare(other Version) int {
	return v.Full.Compare(&other.Full)
}

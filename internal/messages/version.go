package messages

// Version messages for parsing, bump levels, and metadata policies.
const (
	VersionInvalidFmt               = "invalid version %q: %w"
	VersionInvalidMetadataFmt       = "invalid build metadata %q: %w"
	VersionUnknownLevelFmt          = "unknown bump level %q (expected major, minor, patch, release, rc, beta, or alpha)"
	VersionNotPrereleaseFmt         = "%s is not a pre-release version, nothing to release"
	VersionPrereleaseDowngradeFmt   = "cannot move to pre-release track %q from %s"
	VersionMetadataRequiredFmt      = "`%s` requires the metadata to be overridden"
	VersionUnknownMetadataPolicyFmt = "unknown metadata policy %q (expected optional, required, ignore, or persistent)"
)

package messages

// Git and workspace metadata messages.
const (
	GitCommandFailedFmt  = "git %s: %s"
	GitCommandErrFmt     = "git %s: %w"
	GitInvalidTagGlobFmt = "invalid tag glob %q: %w"
	GitBehindCountFmt    = "unexpected rev-list output %q"

	WorkspaceInvalidMetadataFmt = "invalid workspace metadata: %w"
	WorkspaceMetadataCmdEmpty   = "workspace metadata command is empty"
	WorkspaceMetadataCmdFmt     = "workspace metadata command %s: %w"
)

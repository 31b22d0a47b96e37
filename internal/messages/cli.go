package messages

// CLI command strings.
const (
	RootUse   = "rt"
	RootShort = "Coordinated version bumping, tagging, and publishing for workspaces"

	PlanUse   = "plan"
	PlanShort = "Preview the computed release plan without side effects"

	PublishUse   = "publish"
	PublishShort = "Publish the selected packages, skipping already-published versions"

	VersionUse   = "version"
	VersionShort = "Print version information"

	// VersionTemplate is used for cobra's --version output.
	VersionTemplate = "{{.Version}}\n"
)

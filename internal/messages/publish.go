package messages

// Planning, pre-flight, and publish orchestration messages.
const (
	PlanUnknownPackageFmt = "workspace member %s not present in metadata"
	PlanInvalidVersionFmt = "package %s: %v"

	PublishNoPackages           = "no packages selected"
	PublishAlreadyPublishedFmt  = "disabled due to previous publish (%s), skipping %s"
	PublishDirtyTree            = "uncommitted changes detected, please commit before release"
	PublishDetachedHead         = "cannot release from a detached HEAD"
	PublishInvalidBranchGlobFmt = "invalid allow-branch glob %q: %w"
	PublishBranchNotAllowedFmt  = "cannot release from branch %s, see `allow-branch`"
	PublishBehindUpstreamFmt    = "branch is behind its upstream by %d commits"
	PublishMetadataRequiredFmt  = "`%s` requires build metadata but none was planned"
	PublishRateLimitNewFmt      = "publishing %d new packages exceeds the registry burst limit of %d; raise `rate-limit-new` deliberately if intended"
	PublishRateLimitExistingFmt = "publishing %d package updates exceeds the registry burst limit of %d; raise `rate-limit-existing` deliberately if intended"
	PublishDryRunFailed         = "dry-run checks failed, aborting"
	PublishDryRunHint           = "aborting release due to dry run; re-run with `--execute` to publish"

	ShellConfirmRequiresTerminal = "confirmation requires an interactive terminal; pass --no-confirm for scripted runs"
	ShellConfirmFailedFmt        = "confirmation prompt failed: %w"
)

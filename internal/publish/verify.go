package publish

import (
	"fmt"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/gitutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/plan"
	"github.com/conn-castle/release-train/internal/registry"
	"github.com/conn-castle/release-train/internal/shell"
	"github.com/conn-castle/release-train/internal/version"

	"github.com/gobwas/glob"
)

// failCheck reports a pre-flight problem. A dry run records it and
// continues so the operator sees every problem at once; a real run stops.
func failCheck(out *shell.Shell, dryRun bool, warnOnly bool, message string) (bool, error) {
	if warnOnly || dryRun {
		if warnOnly {
			out.Warn(message)
		} else {
			out.Error(message)
		}
		return false, nil
	}
	out.Error(message)
	return false, ErrVerifyFailed
}

// verifyGitClean checks for uncommitted changes in the working tree.
func verifyGitClean(out *shell.Shell, repo gitutil.Repo, root string, dryRun bool) (bool, error) {
	clean, err := repo.IsClean(root)
	if err != nil {
		return false, err
	}
	if clean {
		return true, nil
	}
	return failCheck(out, dryRun, false, messages.PublishDirtyTree)
}

// verifyBranch checks the current branch against the configured allowlist.
// An empty allowlist permits any branch.
func verifyBranch(out *shell.Shell, repo gitutil.Repo, root string, wsConfig *config.Config, dryRun bool) (bool, error) {
	allowed := wsConfig.AllowBranch
	if len(allowed) == 0 {
		return true, nil
	}
	branch, err := repo.CurrentBranch(root)
	if err != nil {
		return false, err
	}
	if branch == "" {
		return failCheck(out, dryRun, false, messages.PublishDetachedHead)
	}
	for _, pattern := range allowed {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf(messages.PublishInvalidBranchGlobFmt, pattern, err)
		}
		if matcher.Match(branch) {
			return true, nil
		}
	}
	return failCheck(out, dryRun, false, fmt.Sprintf(messages.PublishBranchNotAllowedFmt, branch))
}

// verifyNotBehind warns when the branch trails its upstream; a stale branch
// risks tagging an outdated commit but is not fatal on its own.
func verifyNotBehind(out *shell.Shell, repo gitutil.Repo, root string, dryRun bool) (bool, error) {
	behind, err := repo.CommitsBehind(root)
	if err != nil {
		return false, err
	}
	if behind == 0 {
		return true, nil
	}
	return failCheck(out, dryRun, true, fmt.Sprintf(messages.PublishBehindUpstreamFmt, behind))
}

// verifyMetadata checks that packages with a required-metadata policy ended
// planning with metadata attached.
func verifyMetadata(out *shell.Shell, selected []*plan.Release, dryRun bool) (bool, error) {
	ok := true
	for _, pkg := range selected {
		policy, err := pkg.Config.MetadataPolicy()
		if err != nil {
			return false, err
		}
		if policy != version.MetadataRequired {
			continue
		}
		if pkg.BaseVersion().Metadata() == "" {
			checkOK, err := failCheck(out, dryRun, false,
				fmt.Sprintf(messages.PublishMetadataRequiredFmt, pkg.Meta.Name))
			if err != nil {
				return false, err
			}
			ok = ok && checkOK
		}
	}
	return ok, nil
}

// verifyRateLimit counts never-published and already-known packages in the
// batch against the registry's burst limits and refuses runs that would
// trip them.
func verifyRateLimit(out *shell.Shell, selected []*plan.Release, index *registry.Index, wsConfig *config.Config, dryRun bool) (bool, error) {
	newPackages := 0
	existingPackages := 0
	for _, pkg := range selected {
		if !pkg.Config.PublishEnabled() {
			continue
		}
		registryName := pkg.Config.RegistryName()
		if registryName != "" {
			// Unknown registry limits; nothing to count.
			continue
		}
		known, err := index.HasPackage(registryName, pkg.Meta.Name)
		if err != nil {
			return false, err
		}
		if known {
			existingPackages++
		} else {
			newPackages++
		}
	}

	ok := true
	if limit := wsConfig.NewPackagesLimit(); newPackages > limit {
		checkOK, err := failCheck(out, dryRun, false,
			fmt.Sprintf(messages.PublishRateLimitNewFmt, newPackages, limit))
		if err != nil {
			return false, err
		}
		ok = ok && checkOK
	}
	if limit := wsConfig.ExistingPackagesLimit(); existingPackages > limit {
		checkOK, err := failCheck(out, dryRun, false,
			fmt.Sprintf(messages.PublishRateLimitExistingFmt, existingPackages, limit))
		if err != nil {
			return false, err
		}
		ok = ok && checkOK
	}
	return ok, nil
}

// Package publish sequences the release: plan loading, exclusion, skip of
// already-published versions, pre-flight verification, operator confirmation,
// and the dependency-ordered publish loop.
package publish

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/gitutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/plan"
	"github.com/conn-castle/release-train/internal/registry"
	"github.com/conn-castle/release-train/internal/replace"
	"github.com/conn-castle/release-train/internal/shell"
	"github.com/conn-castle/release-train/internal/template"
	"github.com/conn-castle/release-train/internal/workspace"
)

// Sentinel errors mapped to distinct process exit codes by the CLI.
var (
	// ErrNoPackages means nothing was selected for release.
	ErrNoPackages = errors.New("no packages selected")
	// ErrPublishFailed means the external publish invocation reported failure.
	ErrPublishFailed = errors.New("publish failed")
	// ErrVerifyFailed means a pre-flight check failed on a real run.
	ErrVerifyFailed = errors.New("verification failed")
	// ErrAborted means the operator declined the confirmation prompt.
	ErrAborted = errors.New("release aborted")
)

// GraceSleepEnv overrides the configured post-publish delay, in seconds.
const GraceSleepEnv = "PUBLISH_GRACE_SLEEP"

// Step is the publish orchestration over one workspace. Dry-run is the
// default; Execute performs the release for real.
type Step struct {
	Execute   bool
	NoConfirm bool

	ConfigArgs *config.Args
	Packages   []string
	Exclude    []string

	Shell     *shell.Shell
	Repo      gitutil.Repo
	Index     *registry.Index
	Publisher Publisher
	Confirmer shell.Confirmer
	Meta      *workspace.Metadata

	// Sleep overrides the grace delay for tests; nil uses time.Sleep.
	Sleep func(time.Duration)
}

// Run executes the full publish sequence and returns a sentinel error for
// exit-code selection on failure.
func (s *Step) Run() error {
	out := s.Shell
	if out == nil {
		out = shell.Default()
	}

	if _, err := s.Repo.Version(); err != nil {
		return err
	}

	resolver, err := config.NewResolver(s.ConfigArgs, s.Meta.WorkspaceRoot)
	if err != nil {
		return err
	}
	wsConfig := resolver.Workspace()

	pkgs, err := plan.Load(out, resolver, s.Meta, s.Repo)
	if err != nil {
		return err
	}

	s.disableExcluded(out, pkgs)

	if err := plan.Plan(out, pkgs); err != nil {
		return err
	}

	if err := s.disablePublished(out, pkgs); err != nil {
		return err
	}

	var selected []*plan.Release
	for _, pkg := range pkgs.Releases() {
		if pkg.Config.ReleaseEnabled() {
			selected = append(selected, pkg)
		}
	}
	if len(selected) == 0 {
		out.Error(messages.PublishNoPackages)
		return ErrNoPackages
	}

	dryRun := !s.Execute
	failed := false

	root := s.Meta.WorkspaceRoot
	checks := []func() (bool, error){
		func() (bool, error) { return verifyGitClean(out, s.Repo, root, dryRun) },
		func() (bool, error) { return verifyBranch(out, s.Repo, root, &wsConfig, dryRun) },
		func() (bool, error) { return verifyNotBehind(out, s.Repo, root, dryRun) },
		func() (bool, error) { return verifyMetadata(out, selected, dryRun) },
		func() (bool, error) { return verifyRateLimit(out, selected, s.Index, &wsConfig, dryRun) },
	}
	for _, check := range checks {
		ok, err := check()
		if err != nil {
			return err
		}
		failed = failed || !ok
	}

	if err := s.confirm(out, selected, dryRun); err != nil {
		return err
	}

	if err := s.applyReplacements(out, selected, dryRun); err != nil {
		return err
	}

	if err := s.publishAll(out, selected, dryRun); err != nil {
		return err
	}

	return finish(out, failed, dryRun)
}

// disableExcluded clears the release policy of packages the operator
// deselected, keeping them in the set for dependency ordering.
func (s *Step) disableExcluded(out *shell.Shell, pkgs *plan.Set) {
	excluded := make(map[string]bool, len(s.Exclude))
	for _, name := range s.Exclude {
		excluded[name] = true
	}
	include := make(map[string]bool, len(s.Packages))
	for _, name := range s.Packages {
		include[name] = true
	}

	for _, pkg := range pkgs.Releases() {
		name := pkg.Meta.Name
		deselected := excluded[name] || (len(include) > 0 && !include[name])
		if !deselected || !pkg.Config.ReleaseEnabled() {
			continue
		}
		pkg.DisableRelease()
		out.Debug("disabled by user, skipping %s", name)
	}
}

// disablePublished skips packages whose planned version already exists in
// the registry index.
func (s *Step) disablePublished(out *shell.Shell, pkgs *plan.Set) error {
	for _, pkg := range pkgs.Releases() {
		if !pkg.Config.ReleaseEnabled() {
			continue
		}
		base := pkg.BaseVersion()
		published, err := s.Index.HasVersion(pkg.Config.RegistryName(), pkg.Meta.Name, base.FullText)
		if err != nil {
			return err
		}
		if published != nil && *published {
			out.Warn(fmt.Sprintf(messages.PublishAlreadyPublishedFmt, base.FullText, pkg.Meta.Name))
			pkg.DisableRelease()
		}
	}
	return nil
}

// confirm previews the selected releases and asks the operator to proceed.
func (s *Step) confirm(out *shell.Shell, selected []*plan.Release, dryRun bool) error {
	if s.NoConfirm || dryRun {
		return nil
	}
	for _, pkg := range selected {
		out.Status("Release", fmt.Sprintf("%s %s", pkg.Meta.Name, pkg.BaseVersion().FullText))
	}
	confirmer := s.Confirmer
	if confirmer == nil {
		confirmer = shell.NewHuhConfirmer()
	}
	confirmed, err := confirmer.Confirm("Publish")
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrAborted
	}
	return nil
}

// applyReplacements runs the configured file replacements once per released
// package. Replacements are a release side effect, not gated by the
// package's publish policy.
func (s *Step) applyReplacements(out *shell.Shell, selected []*plan.Release, dryRun bool) error {
	for _, pkg := range selected {
		rules := pkg.Config.Replacements
		if len(rules) == 0 {
			continue
		}
		base := pkg.BaseVersion()
		tmpl := template.Template{
			PrevVersion:  template.StringPtr(pkg.InitialVersion.BareText),
			PrevMetadata: template.StringPtr(pkg.InitialVersion.Metadata()),
			Version:      template.StringPtr(base.BareText),
			Metadata:     template.StringPtr(base.Metadata()),
			CrateName:    template.StringPtr(pkg.Meta.Name),
			Date:         template.StringPtr(template.Today()),
			Warn:         out.Warn,
		}
		if pkg.PlannedTag != nil {
			tmpl.TagName = template.StringPtr(*pkg.PlannedTag)
		}
		noisy := out.Verbosity() >= shell.VerbosityDebug
		if err := replace.Apply(out, rules, &tmpl, pkg.PackageRoot, base.IsPrerelease(), noisy, dryRun); err != nil {
			return err
		}
	}
	return nil
}

// publishAll runs the publish loop in dependency order. The first failure
// aborts the remaining packages.
func (s *Step) publishAll(out *shell.Shell, selected []*plan.Release, dryRun bool) error {
	for _, pkg := range selected {
		if !pkg.Config.PublishEnabled() {
			continue
		}

		name := pkg.Meta.Name
		out.Status("Publishing", name)

		verify := pkg.Config.VerifyEnabled()
		if verify && dryRun && len(selected) != 1 {
			// A dry-run batch cannot verify against not-yet-published
			// sibling dependencies.
			out.Debug("skipping verification to avoid unpublished dependencies from dry-run")
			verify = false
		}

		ok, err := s.Publisher.Publish(
			dryRun,
			verify,
			pkg.ManifestPath,
			name,
			pkg.Features,
			pkg.Config.RegistryName(),
			pkg.Config.TargetPlatform(),
		)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPublishFailed
		}

		if !dryRun {
			s.Index.Invalidate(pkg.Config.RegistryName(), name)
			s.graceSleep(out, pkg)
		}
	}
	return nil
}

// graceSleep pauses after a real publish so the registry index can catch up
// before a dependent package is processed. Not a retry loop: one fixed,
// operator-configured delay.
func (s *Step) graceSleep(out *shell.Shell, pkg *plan.Release) {
	seconds := pkg.Config.GraceSleepSeconds()
	if env := os.Getenv(GraceSleepEnv); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			seconds = parsed
		}
	}
	if seconds <= 0 {
		return
	}
	registryName := pkg.Config.RegistryName()
	if registryName == "" {
		registryName = "the default registry"
	}
	out.Debug("waiting an additional %d seconds for %s to update its indices...", seconds, registryName)
	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(time.Duration(seconds) * time.Second)
}

// finish reports the run outcome: dry runs remind the operator how to
// execute for real, and recorded pre-flight failures surface as an error.
func finish(out *shell.Shell, failed bool, dryRun bool) error {
	if dryRun {
		if failed {
			out.Error(messages.PublishDryRunFailed)
			return ErrVerifyFailed
		}
		out.Note(messages.PublishDryRunHint)
	}
	return nil
}

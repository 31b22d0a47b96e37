// Package plan computes the per-package release plan for a workspace: the
// next version, shared-version convergence across groups, the release tag,
// and the prior release tag discovered from version-control history.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/gitutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/shell"
	"github.com/conn-castle/release-train/internal/template"
	"github.com/conn-castle/release-train/internal/version"
	"github.com/conn-castle/release-train/internal/workspace"
)

// lockFileName is the workspace lock file included in published binaries.
const lockFileName = "Cargo.lock"

// Dependent is an in-workspace package depending on the package under
// consideration, with its declared version requirement.
type Dependent struct {
	Package *workspace.Package
	Req     string
}

// Features is the feature selection passed to verification and publish.
type Features struct {
	All  bool
	List []string
}

// Release is the central per-package planning record. It is constructed once
// from workspace metadata at the start of a run and mutated in place by the
// planning and publish phases.
type Release struct {
	Meta         *workspace.Package
	ManifestPath string
	PackageRoot  string
	IsRoot       bool
	Config       config.Config

	PackageContent []string
	Bin            bool
	Dependents     []Dependent
	Features       Features

	InitialVersion version.Version
	PriorTag       string

	PlannedVersion *version.Version
	PlannedTag     *string

	EnsureOwners bool
}

// BaseVersion returns the planned version when set, else the initial one.
func (r *Release) BaseVersion() version.Version {
	if r.PlannedVersion != nil {
		return *r.PlannedVersion
	}
	return r.InitialVersion
}

// DisableRelease clears the release and publish policy flags, removing the
// package from the remainder of the run while keeping it in the set.
func (r *Release) DisableRelease() {
	off := false
	r.Config.Release = &off
	r.Config.Publish = &off
}

// Set is an ordered collection of releases keyed by package id. Order is the
// dependency order computed at load time.
type Set struct {
	order []string
	byID  map[string]*Release
}

// Get returns the release for the package id, or nil.
func (s *Set) Get(id string) *Release {
	return s.byID[id]
}

// Releases returns all releases in dependency order.
func (s *Set) Releases() []*Release {
	out := make([]*Release, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of releases in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Load builds the release record for every workspace member, in dependency
// order. The resolver supplies effective per-package policy and repo answers
// tag queries for prior-release discovery.
func Load(
	out *shell.Shell,
	resolver *config.Resolver,
	meta *workspace.Metadata,
	repo gitutil.Repo,
) (*Set, error) {
	gitRoot, err := repo.TopLevel(meta.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	set := &Set{byID: make(map[string]*Release)}
	for _, id := range meta.SortedMemberIDs() {
		pkg := meta.PackageByID(id)
		if pkg == nil {
			return nil, fmt.Errorf(messages.PlanUnknownPackageFmt, id)
		}
		release, err := loadPackage(out, resolver, meta, pkg, gitRoot, repo)
		if err != nil {
			return nil, err
		}
		set.order = append(set.order, id)
		set.byID[id] = release
	}
	return set, nil
}

func loadPackage(
	out *shell.Shell,
	resolver *config.Resolver,
	meta *workspace.Metadata,
	pkg *workspace.Package,
	gitRoot string,
	repo gitutil.Repo,
) (*Release, error) {
	manifestPath := pkg.ManifestPath
	packageRoot := filepath.Dir(manifestPath)
	if packageRoot == "" {
		packageRoot = "."
	}

	cfg := resolver.Package(pkg.Name)
	if !pkg.PublishAllowed() {
		off := false
		cfg.Publish = &off
	}
	if !cfg.ReleaseEnabled() {
		out.Trace("disabled in config, skipping %s", manifestPath)
	}

	bin := pkg.HasBinTarget()
	content := append([]string(nil), pkg.ContentFiles...)
	if bin {
		// Published binaries carry the lock file; it is listed relative to
		// the package root, so remap it to the workspace root.
		lockFile := filepath.Join(meta.WorkspaceRoot, lockFileName)
		if !containsPath(content, lockFile) {
			content = append(content, lockFile)
		}
	} else {
		// Lock files are not relevant when publishing libraries.
		content = filterPaths(content, func(p string) bool {
			return filepath.Base(p) != lockFileName
		})
	}
	content = filterPaths(content, func(p string) bool {
		rel, err := filepath.Rel(packageRoot, p)
		if err != nil {
			return true
		}
		return rel != "tests" && !strings.HasPrefix(rel, "tests"+string(filepath.Separator))
	})

	var dependents []Dependent
	for _, ref := range meta.Dependents(pkg) {
		dependents = append(dependents, Dependent{Package: ref.Package, Req: ref.Dependency.Req})
	}

	initialVersion, err := version.Parse(pkg.Version)
	if err != nil {
		return nil, fmt.Errorf(messages.PlanInvalidVersionFmt, pkg.Name, err)
	}

	isRoot := sameDir(gitRoot, packageRoot)
	tagName := cfg.TagNameTemplate()
	tagPrefix := cfg.TagPrefixTemplate(isRoot)

	initialTag := renderTag(out, tagName, tagPrefix, pkg.Name, initialVersion, initialVersion)
	priorTag := ""
	exists, err := repo.TagExists(packageRoot, initialTag)
	if err != nil {
		return nil, err
	}
	if exists {
		priorTag = initialTag
	} else {
		tagGlob := renderTagGlob(out, tagName, tagPrefix, pkg.Name)
		found, err := repo.LatestMatchingTag(packageRoot, tagGlob)
		if err != nil {
			// A malformed glob degrades to "no prior release".
			out.Debug("failed to find tag with glob `%s`: %v", tagGlob, err)
		} else {
			priorTag = found
		}
	}

	return &Release{
		Meta:         pkg,
		ManifestPath: manifestPath,
		PackageRoot:  packageRoot,
		IsRoot:       isRoot,
		Config:       cfg,

		PackageContent: content,
		Bin:            bin,
		Dependents:     dependents,
		Features:       Features{All: cfg.AllFeatures(), List: cfg.EnableFeatures},

		InitialVersion: initialVersion,
		PriorTag:       priorTag,

		EnsureOwners: cfg.PublishEnabled() && len(cfg.Owners) > 0,
	}, nil
}

// Plan performs the workspace-wide planning pass: shared-version group
// convergence first, then each package's own tag computation. Convergence is
// an explicit scan-then-assign two-phase algorithm so the outcome is
// identical regardless of member order.
func Plan(out *shell.Shell, set *Set) error {
	sharedVersions := make(map[string]version.Version)
	for _, pkg := range set.Releases() {
		if !pkg.Config.ReleaseEnabled() {
			continue
		}
		group := pkg.Config.SharedVersionGroup()
		if group == "" {
			continue
		}
		candidate := pkg.BaseVersion()
		if existing, seen := sharedVersions[group]; !seen || existing.Compare(candidate) < 0 {
			sharedVersions[group] = candidate
		}
	}
	if len(sharedVersions) > 0 {
		for _, pkg := range set.Releases() {
			if !pkg.Config.ReleaseEnabled() {
				continue
			}
			group := pkg.Config.SharedVersionGroup()
			if group == "" {
				continue
			}
			sharedMax := sharedVersions[group]
			if pkg.InitialVersion.BareText != sharedMax.BareText {
				planned := sharedMax
				pkg.PlannedVersion = &planned
			} else {
				// Already at the group maximum: keep its natural bump.
				pkg.PlannedVersion = nil
			}
		}
	}

	for _, pkg := range set.Releases() {
		if err := pkg.plan(out); err != nil {
			return err
		}
	}
	return nil
}

// Bump resolves the build-metadata policy and applies the requested bump to
// the package's initial version.
func (r *Release) Bump(out *shell.Shell, target version.Target, metadataOverride string) error {
	policy, err := r.Config.MetadataPolicy()
	if err != nil {
		return err
	}
	if policy == version.MetadataIgnore && metadataOverride != "" {
		out.Debug("ignoring metadata `%s` for `%s`", metadataOverride, r.Meta.Name)
	}
	metadata, err := policy.Resolve(r.Meta.Name, r.InitialVersion, metadataOverride)
	if err != nil {
		return err
	}
	planned, err := target.Bump(r.InitialVersion, metadata)
	if err != nil {
		return err
	}
	r.PlannedVersion = &planned
	return nil
}

// plan computes the package's final tag from its planned-or-initial version.
func (r *Release) plan(out *shell.Shell) error {
	if !r.Config.ReleaseEnabled() {
		return nil
	}
	if r.Config.TagEnabled() {
		base := r.BaseVersion()
		tag := renderTag(
			out,
			r.Config.TagNameTemplate(),
			r.Config.TagPrefixTemplate(r.IsRoot),
			r.Meta.Name,
			r.InitialVersion,
			base,
		)
		r.PlannedTag = &tag
	} else {
		r.PlannedTag = nil
	}
	return nil
}

// renderTag substitutes the version tokens into the prefix template first,
// then binds the rendered prefix as {{prefix}} for the tag name template.
func renderTag(out *shell.Shell, tagName string, tagPrefix string, name string, prev version.Version, base version.Version) string {
	tmpl := template.Template{
		PrevVersion:  template.StringPtr(prev.BareText),
		PrevMetadata: template.StringPtr(prev.Metadata()),
		Version:      template.StringPtr(base.BareText),
		Metadata:     template.StringPtr(base.Metadata()),
		CrateName:    template.StringPtr(name),
		Warn:         out.Warn,
	}
	prefix := tmpl.Render(tagPrefix)
	tmpl.Prefix = template.StringPtr(prefix)
	return tmpl.Render(tagName)
}

// renderTagGlob renders the tag template with every version token wildcarded,
// keeping the crate name and prefix literal, for historical tag search.
func renderTagGlob(out *shell.Shell, tagName string, tagPrefix string, name string) string {
	wildcard := template.StringPtr("*")
	tmpl := template.Template{
		PrevVersion:  wildcard,
		PrevMetadata: wildcard,
		Version:      wildcard,
		Metadata:     wildcard,
		CrateName:    template.StringPtr(name),
		Warn:         out.Warn,
	}
	prefix := tmpl.Render(tagPrefix)
	tmpl.Prefix = template.StringPtr(prefix)
	return tmpl.Render(tagName)
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}
	return false
}

func filterPaths(paths []string, keep func(string) bool) []string {
	out := paths[:0]
	for _, p := range paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func sameDir(a string, b string) bool {
	cleanA, errA := filepath.Abs(a)
	cleanB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return cleanA == cleanB
}

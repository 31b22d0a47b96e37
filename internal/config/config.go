// Package config loads and merges release policy configuration from the
// user-level file, the workspace file, per-package tables, and command-line
// overrides.
package config

import (
	"github.com/conn-castle/release-train/internal/version"
)

// Default templates and limits applied when configuration leaves them unset.
const (
	DefaultTagName       = "{{prefix}}v{{version}}"
	DefaultTagPrefix     = "{{crate_name}}-"
	DefaultNewLimit      = 5
	DefaultExistingLimit = 30
)

// Replace is one templated search/replace rule applied to a tracked file
// before tagging a release.
type Replace struct {
	File    string `toml:"file"`
	Search  string `toml:"search"`
	Replace string `toml:"replace"`
	Min     *int   `toml:"min"`
	Max     *int   `toml:"max"`
	Exactly *int   `toml:"exactly"`
	// Prerelease gates the rule: a false value skips it when the planned
	// version is a pre-release.
	Prerelease *bool `toml:"prerelease"`
}

// MinMatches returns the lower occurrence bound for the rule.
func (r *Replace) MinMatches() int {
	if r.Min != nil {
		return *r.Min
	}
	if r.Exactly != nil {
		return *r.Exactly
	}
	return 1
}

// MaxMatches returns the upper occurrence bound, or a negative value when
// unbounded.
func (r *Replace) MaxMatches() int {
	if r.Max != nil {
		return *r.Max
	}
	if r.Exactly != nil {
		return *r.Exactly
	}
	return -1
}

// AppliesToPrerelease reports whether the rule runs for pre-release plans.
func (r *Replace) AppliesToPrerelease() bool {
	return r.Prerelease == nil || *r.Prerelease
}

// Config is the effective release policy for one package (or the workspace
// defaults). Nil fields fall back to defaults via the accessor methods, so
// layered files can be merged field by field.
type Config struct {
	Release           *bool     `toml:"release"`
	Publish           *bool     `toml:"publish"`
	Verify            *bool     `toml:"verify"`
	Tag               *bool     `toml:"tag"`
	TagName           *string   `toml:"tag-name"`
	TagPrefix         *string   `toml:"tag-prefix"`
	SharedVersion     *string   `toml:"shared-version"`
	Metadata          *string   `toml:"metadata"`
	Registry          *string   `toml:"registry"`
	Target            *string   `toml:"target"`
	EnableFeatures    []string  `toml:"enable-features"`
	EnableAllFeatures *bool     `toml:"enable-all-features"`
	Owners            []string  `toml:"owners"`
	AllowBranch       []string  `toml:"allow-branch"`
	PublishGraceSleep *int      `toml:"publish-grace-sleep"`
	RateLimitNew      *int      `toml:"rate-limit-new"`
	RateLimitExisting *int      `toml:"rate-limit-existing"`
	Replacements      []Replace `toml:"pre-release-replacements"`
}

// Merge overlays non-nil fields of over onto c.
func (c *Config) Merge(over *Config) {
	if over == nil {
		return
	}
	if over.Release != nil {
		c.Release = over.Release
	}
	if over.Publish != nil {
		c.Publish = over.Publish
	}
	if over.Verify != nil {
		c.Verify = over.Verify
	}
	if over.Tag != nil {
		c.Tag = over.Tag
	}
	if over.TagName != nil {
		c.TagName = over.TagName
	}
	if over.TagPrefix != nil {
		c.TagPrefix = over.TagPrefix
	}
	if over.SharedVersion != nil {
		c.SharedVersion = over.SharedVersion
	}
	if over.Metadata != nil {
		c.Metadata = over.Metadata
	}
	if over.Registry != nil {
		c.Registry = over.Registry
	}
	if over.Target != nil {
		c.Target = over.Target
	}
	if over.EnableFeatures != nil {
		c.EnableFeatures = over.EnableFeatures
	}
	if over.EnableAllFeatures != nil {
		c.EnableAllFeatures = over.EnableAllFeatures
	}
	if over.Owners != nil {
		c.Owners = over.Owners
	}
	if over.AllowBranch != nil {
		c.AllowBranch = over.AllowBranch
	}
	if over.PublishGraceSleep != nil {
		c.PublishGraceSleep = over.PublishGraceSleep
	}
	if over.RateLimitNew != nil {
		c.RateLimitNew = over.RateLimitNew
	}
	if over.RateLimitExisting != nil {
		c.RateLimitExisting = over.RateLimitExisting
	}
	if over.Replacements != nil {
		c.Replacements = over.Replacements
	}
}

// ReleaseEnabled reports whether the package participates in the release.
func (c *Config) ReleaseEnabled() bool {
	return c.Release == nil || *c.Release
}

// PublishEnabled reports whether the package is published to the registry.
func (c *Config) PublishEnabled() bool {
	return c.Publish == nil || *c.Publish
}

// VerifyEnabled reports whether the publish step builds the package for
// verification first.
func (c *Config) VerifyEnabled() bool {
	return c.Verify == nil || *c.Verify
}

// TagEnabled reports whether a release tag is created.
func (c *Config) TagEnabled() bool {
	return c.Tag == nil || *c.Tag
}

// TagNameTemplate returns the tag name template.
func (c *Config) TagNameTemplate() string {
	if c.TagName != nil {
		return *c.TagName
	}
	return DefaultTagName
}

// TagPrefixTemplate returns the tag prefix template. The workspace root
// package defaults to no prefix; other packages prefix the crate name.
func (c *Config) TagPrefixTemplate(isRoot bool) string {
	if c.TagPrefix != nil {
		return *c.TagPrefix
	}
	if isRoot {
		return ""
	}
	return DefaultTagPrefix
}

// SharedVersionGroup returns the shared-version group name, empty when the
// package does not converge with a group.
func (c *Config) SharedVersionGroup() string {
	if c.SharedVersion != nil {
		return *c.SharedVersion
	}
	return ""
}

// MetadataPolicy returns the parsed build-metadata policy.
func (c *Config) MetadataPolicy() (version.MetadataPolicy, error) {
	if c.Metadata != nil {
		return version.ParseMetadataPolicy(*c.Metadata)
	}
	return version.MetadataOptional, nil
}

// RegistryName returns the target registry, empty for the default registry.
func (c *Config) RegistryName() string {
	if c.Registry != nil {
		return *c.Registry
	}
	return ""
}

// TargetPlatform returns the build target passed to verification, empty for
// the host platform.
func (c *Config) TargetPlatform() string {
	if c.Target != nil {
		return *c.Target
	}
	return ""
}

// AllFeatures reports whether publishing enables every feature.
func (c *Config) AllFeatures() bool {
	return c.EnableAllFeatures != nil && *c.EnableAllFeatures
}

// GraceSleepSeconds returns the post-publish delay in seconds.
func (c *Config) GraceSleepSeconds() int {
	if c.PublishGraceSleep != nil {
		return *c.PublishGraceSleep
	}
	return 0
}

// NewPackagesLimit returns the rate-limit budget for never-published packages.
func (c *Config) NewPackagesLimit() int {
	if c.RateLimitNew != nil {
		return *c.RateLimitNew
	}
	return DefaultNewLimit
}

// ExistingPackagesLimit returns the rate-limit budget for already-known packages.
func (c *Config) ExistingPackagesLimit() int {
	if c.RateLimitExisting != nil {
		return *c.RateLimitExisting
	}
	return DefaultExistingLimit
}

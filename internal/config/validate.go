package config

import (
	"errors"
	"fmt"

	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/version"
)

// ErrConfigValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax or filesystem errors). Callers can use
// errors.Is(err, ErrConfigValidation) to distinguish them.
var ErrConfigValidation = errors.New("config validation failed")

func validateFile(file *File, path string) error {
	if err := validateConfig(file.Workspace, path, "workspace"); err != nil {
		return err
	}
	for name, pkg := range file.Package {
		if err := validateConfig(pkg, path, "package."+name); err != nil {
			return err
		}
	}
	return nil
}

func validateConfig(cfg *Config, path string, table string) error {
	if cfg == nil {
		return nil
	}
	if cfg.Metadata != nil {
		if _, err := version.ParseMetadataPolicy(*cfg.Metadata); err != nil {
			return validationError(messages.ConfigInvalidMetadataPolicyFmt, path, table, err)
		}
	}
	for i, rule := range cfg.Replacements {
		if rule.File == "" {
			return validationError(messages.ConfigReplaceFileRequiredFmt, path, table, i)
		}
		if rule.Search == "" {
			return validationError(messages.ConfigReplaceSearchRequiredFmt, path, table, i)
		}
		if rule.Exactly != nil && (rule.Min != nil || rule.Max != nil) {
			return validationError(messages.ConfigReplaceExactlyConflictFmt, path, table, i)
		}
		if rule.Min != nil && rule.Max != nil && *rule.Max < *rule.Min {
			return validationError(messages.ConfigReplaceBoundsFmt, path, table, i, *rule.Min, *rule.Max)
		}
	}
	if cfg.PublishGraceSleep != nil && *cfg.PublishGraceSleep < 0 {
		return validationError(messages.ConfigNegativeGraceSleepFmt, path, table)
	}
	return nil
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigValidation, fmt.Sprintf(format, args...))
}

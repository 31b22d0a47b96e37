package messages

// Config messages for configuration loading and validation.
const (
	ConfigHomeDirFmt     = "failed to resolve home directory: %w"
	ConfigMissingFileFmt = "missing config file %s: %w"
	ConfigReadFileFmt    = "failed to read config file %s: %w"
	ConfigInvalidFileFmt = "invalid config %s: %w"
	ConfigUnknownKeysFmt = "%s: unrecognized config keys:\n%s"

	ConfigInvalidMetadataPolicyFmt  = "%s: [%s] metadata: %v"
	ConfigReplaceFileRequiredFmt    = "%s: [%s] pre-release-replacements[%d].file is required"
	ConfigReplaceSearchRequiredFmt  = "%s: [%s] pre-release-replacements[%d].search is required"
	ConfigReplaceExactlyConflictFmt = "%s: [%s] pre-release-replacements[%d]: exactly conflicts with min/max"
	ConfigReplaceBoundsFmt          = "%s: [%s] pre-release-replacements[%d]: min (%d) must not exceed max (%d)"
	ConfigNegativeGraceSleepFmt     = "%s: [%s] publish-grace-sleep must not be negative"
)

package messages

// Replacement engine and template messages.
const (
	ReplaceMissingFileFmt    = "unable to find file %s to perform replace"
	ReplaceReadFileFmt       = "failed to read %s: %w"
	ReplaceWriteFileFmt      = "failed to write %s: %w"
	ReplaceInvalidPatternFmt = "invalid search pattern `%s` for '%s': %w"
	ReplaceTooFewMatchesFmt  = "for `%s` in '%s', at least %d replacements expected, found %d"
	ReplaceTooManyMatchesFmt = "for `%s` in '%s', at most %d replacements expected, found %d"

	TemplateUnrenderedTokenFmt = "unrendered %s present in template %q"
)

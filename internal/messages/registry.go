package messages

// Registry index messages.
const (
	RegistryNameRequired  = "registry package name is required"
	RegistryRequestErrFmt = "failed to build index request for %s: %w"
	RegistryParseErrFmt   = "failed to parse index entry for %s: %w"
)

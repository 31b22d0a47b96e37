package version

import (
	"fmt"

	"github.com/conn-castle/release-train/internal/messages"
)

// MetadataPolicy governs how build metadata overrides are resolved when
// computing a bump.
type MetadataPolicy string

// Metadata policies.
const (
	// MetadataOptional carries an override when given, otherwise none.
	MetadataOptional MetadataPolicy = "optional"
	// MetadataRequired fails the bump unless an override is supplied.
	MetadataRequired MetadataPolicy = "required"
	// MetadataIgnore drops any override.
	MetadataIgnore MetadataPolicy = "ignore"
	// MetadataPersistent reuses the initial version's metadata unless an
	// override already set one.
	MetadataPersistent MetadataPolicy = "persistent"
)

// ParseMetadataPolicy validates a policy name. An empty name selects
// MetadataOptional.
func ParseMetadataPolicy(text string) (MetadataPolicy, error) {
	switch MetadataPolicy(text) {
	case "":
		return MetadataOptional, nil
	case MetadataOptional, MetadataRequired, MetadataIgnore, MetadataPersistent:
		return MetadataPolicy(text), nil
	default:
		return "", fmt.Errorf(messages.VersionUnknownMetadataPolicyFmt, text)
	}
}

// Resolve applies the policy to the initial version and the caller-supplied
// override, returning the metadata to attach to the bumped version. The name
// argument is only used for error context.
func (p MetadataPolicy) Resolve(name string, initial Version, override string) (string, error) {
	switch p {
	case MetadataOptional, "":
		return override, nil
	case MetadataRequired:
		if override == "" {
			return "", fmt.Errorf(messages.VersionMetadataRequiredFmt, name)
		}
		return override, nil
	case MetadataIgnore:
		return "", nil
	case MetadataPersistent:
		if override == "" {
			return initial.Metadata(), nil
		}
		return override, nil
	default:
		return "", fmt.Errorf(messages.VersionUnknownMetadataPolicyFmt, string(p))
	}
}

package workspace

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/conn-castle/release-train/internal/messages"
)

// DefaultMetadataCommand produces the workspace metadata document on stdout.
// Optional dependencies are included so dependency ordering sees every edge.
var DefaultMetadataCommand = []string{
	"cargo", "metadata", "--format-version", "1", "--all-features", "--no-deps",
}

// Load runs the metadata command in dir and parses its JSON output. A nil
// command uses DefaultMetadataCommand.
func Load(dir string, command []string) (*Metadata, error) {
	if command == nil {
		command = DefaultMetadataCommand
	}
	if len(command) == 0 {
		return nil, errors.New(messages.WorkspaceMetadataCmdEmpty)
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf(messages.WorkspaceMetadataCmdFmt,
				strings.Join(command, " "), errors.New(strings.TrimSpace(string(exitErr.Stderr))))
		}
		return nil, fmt.Errorf(messages.WorkspaceMetadataCmdFmt, strings.Join(command, " "), err)
	}
	return Parse(out)
}

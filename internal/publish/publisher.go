package publish

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/conn-castle/release-train/internal/plan"
)

// Publisher invokes the external "publish this manifest" capability.
// A false result without an error means the tool reported failure.
type Publisher interface {
	Publish(
		dryRun bool,
		verify bool,
		manifestPath string,
		pkgHint string,
		features plan.Features,
		registryName string,
		target string,
	) (bool, error)
}

// ExecPublisher implements Publisher by invoking the package build tool.
type ExecPublisher struct {
	// ToolPath overrides the executable name, defaulting to "cargo".
	ToolPath string
}

// Publish runs the publish subcommand with the resolved options, streaming
// tool output to the process streams.
func (p *ExecPublisher) Publish(
	dryRun bool,
	verify bool,
	manifestPath string,
	pkgHint string,
	features plan.Features,
	registryName string,
	target string,
) (bool, error) {
	name := p.ToolPath
	if name == "" {
		name = "cargo"
	}

	args := []string{"publish", "--manifest-path", manifestPath}
	if dryRun {
		args = append(args, "--dry-run", "--allow-dirty")
	}
	if !verify {
		args = append(args, "--no-verify")
	}
	if pkgHint != "" {
		args = append(args, "--package", pkgHint)
	}
	if features.All {
		args = append(args, "--all-features")
	} else if len(features.List) > 0 {
		args = append(args, "--features", strings.Join(features.List, ","))
	}
	if registryName != "" {
		args = append(args, "--registry", registryName)
	}
	if target != "" {
		args = append(args, "--target", target)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

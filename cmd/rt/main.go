package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/conn-castle/release-train/internal/publish"
)

// Version, Commit, and BuildDate are overridden at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// Process exit codes. "No packages selected" and "publish failed" are
// distinct so automation can tell an empty selection from a real failure.
const (
	exitFailure    = 1
	exitNoPackages = 2
	exitPublish    = 101
)

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Version = versionString()
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI and maps sentinel errors to exit codes.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	err := executeFunc(args, stdout, stderr)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, publish.ErrNoPackages):
		exit(exitNoPackages)
	case errors.Is(err, publish.ErrPublishFailed), errors.Is(err, publish.ErrVerifyFailed):
		exit(exitPublish)
	default:
		_, _ = fmt.Fprintln(stderr, err)
		exit(exitFailure)
	}
}

var executeFunc = execute

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate)
}

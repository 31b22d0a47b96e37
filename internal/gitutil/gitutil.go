// Package gitutil exposes the version-control queries the release pipeline
// needs behind a small interface, with an implementation that shells out to
// git. The interface keeps planning and publishing testable without a real
// repository.
package gitutil

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/conn-castle/release-train/internal/messages"
)

// Repo answers version-control queries for a working tree.
type Repo interface {
	// TopLevel returns the repository root containing dir.
	TopLevel(dir string) (string, error)
	// TagExists reports whether the exact tag name exists.
	TagExists(dir string, tag string) (bool, error)
	// LatestMatchingTag returns the most recently created tag matching the
	// glob pattern, or empty when none match.
	LatestMatchingTag(dir string, pattern string) (string, error)
	// IsClean reports whether the working tree has no uncommitted changes.
	IsClean(dir string) (bool, error)
	// CurrentBranch returns the checked-out branch name, empty on detached HEAD.
	CurrentBranch(dir string) (string, error)
	// CommitsBehind returns how many commits the branch is behind upstream.
	CommitsBehind(dir string) (int, error)
	// Version confirms the git binary is usable.
	Version() (string, error)
}

// ExecRepo implements Repo by invoking the git binary.
type ExecRepo struct {
	// GitPath overrides the executable name, defaulting to "git".
	GitPath string
}

func (r *ExecRepo) git(dir string, args ...string) (string, error) {
	name := r.GitPath
	if name == "" {
		name = "git"
	}
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf(messages.GitCommandFailedFmt, strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf(messages.GitCommandErrFmt, strings.Join(args, " "), err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// Version returns the git version string, failing when git is missing.
func (r *ExecRepo) Version() (string, error) {
	return r.git(".", "version")
}

// TopLevel returns the repository root containing dir.
func (r *ExecRepo) TopLevel(dir string) (string, error) {
	return r.git(dir, "rev-parse", "--show-toplevel")
}

// TagExists reports whether the exact tag name exists in the repository.
func (r *ExecRepo) TagExists(dir string, tag string) (bool, error) {
	out, err := r.git(dir, "tag", "--list", tag)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if line == tag {
			return true, nil
		}
	}
	return false, nil
}

// LatestMatchingTag lists tags newest-first by creation date and returns the
// first one matching the glob pattern. Matching happens client-side so the
// pattern semantics are exactly those of the compiled glob.
func (r *ExecRepo) LatestMatchingTag(dir string, pattern string) (string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf(messages.GitInvalidTagGlobFmt, pattern, err)
	}
	out, err := r.git(dir, "tag", "--list", "--sort=-creatordate")
	if err != nil {
		return "", err
	}
	for _, tag := range strings.Split(out, "\n") {
		if tag != "" && matcher.Match(tag) {
			return tag, nil
		}
	}
	return "", nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *ExecRepo) IsClean(dir string) (bool, error) {
	out, err := r.git(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// CurrentBranch returns the checked-out branch name, empty on detached HEAD.
func (r *ExecRepo) CurrentBranch(dir string) (string, error) {
	out, err := r.git(dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return "", nil //nolint:nilerr // Detached HEAD has no branch; callers treat empty as detached.
	}
	return out, nil
}

// CommitsBehind returns how many commits HEAD is behind its upstream.
// A branch without an upstream counts as zero.
func (r *ExecRepo) CommitsBehind(dir string) (int, error) {
	out, err := r.git(dir, "rev-list", "--count", "HEAD..@{upstream}")
	if err != nil {
		return 0, nil //nolint:nilerr // No upstream configured; nothing to be behind.
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf(messages.GitBehindCountFmt, out)
	}
	return count, nil
}

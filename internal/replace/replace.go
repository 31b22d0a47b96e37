// Package replace applies configured search/replace rules to tracked files
// as part of a release: version strings, changelog headers, and the like.
// Rules are validated against occurrence bounds before any file is touched,
// and dry-run mode previews changes without writing.
package replace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/diff"
	"github.com/conn-castle/release-train/internal/fsutil"
	"github.com/conn-castle/release-train/internal/messages"
	"github.com/conn-castle/release-train/internal/shell"
	"github.com/conn-castle/release-train/internal/template"
)

// ErrValidation wraps replacement failures caused by configuration not
// matching reality: a missing target file or an occurrence-count violation.
// Both abort the file's processing; silent partial application is unsafe.
var ErrValidation = errors.New("replacement validation failed")

// Apply runs the replacement rules against files under cwd. Rules are
// grouped by target file and files are processed in sorted path order so
// output is reproducible regardless of declaration order. Dry-run prints a
// status line per changed file (with a unified diff when noisy) and writes
// nothing.
func Apply(
	out *shell.Shell,
	rules []config.Replace,
	tmpl *template.Template,
	cwd string,
	prerelease bool,
	noisy bool,
	dryRun bool,
) error {
	byFile := make(map[string][]config.Replace)
	for _, rule := range rules {
		byFile[rule.File] = append(byFile[rule.File], rule)
	}
	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := applyToFile(out, byFile[path], tmpl, cwd, path, prerelease, noisy, dryRun); err != nil {
			return err
		}
	}
	return nil
}

func applyToFile(
	out *shell.Shell,
	rules []config.Replace,
	tmpl *template.Template,
	cwd string,
	path string,
	prerelease bool,
	noisy bool,
	dryRun bool,
) error {
	file := filepath.Join(cwd, path)
	out.Debug("processing replacements for file %s", file)
	original, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(messages.ReplaceMissingFileFmt, file))
		}
		return fmt.Errorf(messages.ReplaceReadFileFmt, file, err)
	}

	replaced := string(original)
	for _, rule := range rules {
		if prerelease && !rule.AppliesToPrerelease() {
			out.Debug("pre-release, not replacing %s", rule.Search)
			continue
		}

		pattern, err := regexp.Compile("(?m)" + rule.Search)
		if err != nil {
			return fmt.Errorf(messages.ReplaceInvalidPatternFmt, rule.Search, path, err)
		}

		actual := len(pattern.FindAllStringIndex(replaced, -1))
		if min := rule.MinMatches(); actual < min {
			return fmt.Errorf("%w: %s", ErrValidation,
				fmt.Sprintf(messages.ReplaceTooFewMatchesFmt, rule.Search, path, min, actual))
		}
		if max := rule.MaxMatches(); max >= 0 && actual > max {
			return fmt.Errorf("%w: %s", ErrValidation,
				fmt.Sprintf(messages.ReplaceTooManyMatchesFmt, rule.Search, path, max, actual))
		}

		// Render the template first so the replacement text may reference
		// {{version}} and friends; group references ($1) still expand.
		replacement := tmpl.Render(rule.Replace)
		replaced = pattern.ReplaceAllString(replaced, replacement)
	}

	if replaced == string(original) {
		out.Trace("%s is unchanged", file)
		return nil
	}

	if dryRun {
		if noisy {
			out.Status("Replacing", fmt.Sprintf("in %s\n%s", path, diff.Unified(path, "replaced", string(original), replaced)))
		} else {
			out.Status("Replacing", "in "+path)
		}
		return nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf(messages.ReplaceReadFileFmt, file, err)
	}
	if err := fsutil.WriteFileAtomic(file, []byte(replaced), info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.ReplaceWriteFileFmt, file, err)
	}
	return nil
}

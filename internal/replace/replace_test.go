package replace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conn-castle/release-train/internal/config"
	"github.com/conn-castle/release-train/internal/shell"
	"github.com/conn-castle/release-train/internal/template"
	"github.com/conn-castle/release-train/internal/testutil"
)

func testShell(verbosity shell.Verbosity) (*shell.Shell, *bytes.Buffer) {
	err := &bytes.Buffer{}
	return shell.New(&bytes.Buffer{}, err, verbosity), err
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func versionTemplate() *template.Template {
	return &template.Template{
		PrevVersion: template.StringPtr("1.2.3"),
		Version:     template.StringPtr("2.0.0"),
	}
}

func TestApplyRewritesVersionReference(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.md", "depends on foo 1.2.3 today\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{
		File:    "README.md",
		Search:  `foo 1\.2\.3`,
		Replace: "foo {{version}}",
	}}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, false); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := readFile(t, path); got != "depends on foo 2.0.0 today\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestApplyPrevVersionToken(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "CHANGELOG.md", "## Unreleased\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{
		File:    "CHANGELOG.md",
		Search:  "## Unreleased",
		Replace: "## {{version}} (was {{prev_version}})",
	}}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, false); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := readFile(t, path); got != "## 2.0.0 (was 1.2.3)\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestApplyExactlyBoundViolations(t *testing.T) {
	for name, content := range map[string]string{
		"zero matches": "nothing here\n",
		"two matches":  "1.2.3 and 1.2.3\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "Cargo.toml", content)
			out, _ := testShell(shell.VerbosityNormal)

			rules := []config.Replace{{
				File:    "Cargo.toml",
				Search:  `1\.2\.3`,
				Replace: "{{version}}",
				Exactly: testutil.IntPtr(1),
			}}
			err := Apply(out, rules, versionTemplate(), dir, false, false, false)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			if got := readFile(t, path); got != content {
				t.Fatalf("file was modified despite the bound violation: %q", got)
			}
		})
	}
}

func TestApplyMinMaxBounds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "v v v\n")
	out, _ := testShell(shell.VerbosityNormal)

	tooFew := []config.Replace{{File: "doc.md", Search: "v", Replace: "w", Min: testutil.IntPtr(4)}}
	if err := Apply(out, tooFew, versionTemplate(), dir, false, false, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("min violation error = %v, want ErrValidation", err)
	}

	tooMany := []config.Replace{{File: "doc.md", Search: "v", Replace: "w", Max: testutil.IntPtr(2)}}
	if err := Apply(out, tooMany, versionTemplate(), dir, false, false, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("max violation error = %v, want ErrValidation", err)
	}

	inRange := []config.Replace{{File: "doc.md", Search: "v", Replace: "w", Min: testutil.IntPtr(1), Max: testutil.IntPtr(3)}}
	if err := Apply(out, inRange, versionTemplate(), dir, false, false, false); err != nil {
		t.Fatalf("in-range Apply returned error: %v", err)
	}
}

func TestApplyMissingFileIsValidationError(t *testing.T) {
	out, _ := testShell(shell.VerbosityNormal)
	rules := []config.Replace{{File: "missing.md", Search: "x", Replace: "y"}}
	err := Apply(out, rules, versionTemplate(), t.TempDir(), false, false, false)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestApplyUnchangedFileNotRewritten(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "same same\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{File: "doc.md", Search: "same", Replace: "same", Min: testutil.IntPtr(0)}}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, false); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("unchanged file was rewritten")
	}
}

func TestApplyDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "version 1.2.3\n")
	out, stderr := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{File: "doc.md", Search: `1\.2\.3`, Replace: "{{version}}"}}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, true); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := readFile(t, path); got != "version 1.2.3\n" {
		t.Fatalf("dry run modified the file: %q", got)
	}
	if !strings.Contains(stderr.String(), "doc.md") {
		t.Fatalf("dry run output %q does not name the file", stderr.String())
	}
}

func TestApplyDryRunNoisyIncludesDiff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "version 1.2.3\n")
	out, stderr := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{File: "doc.md", Search: `1\.2\.3`, Replace: "{{version}}"}}
	if err := Apply(out, rules, versionTemplate(), dir, false, true, true); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	got := stderr.String()
	if !strings.Contains(got, "-version 1.2.3") || !strings.Contains(got, "+version 2.0.0") {
		t.Fatalf("noisy dry run output missing diff:\n%s", got)
	}
}

func TestApplySkipsPrereleaseGatedRules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "version 1.2.3\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{
		File:       "doc.md",
		Search:     `1\.2\.3`,
		Replace:    "{{version}}",
		Prerelease: testutil.BoolPtr(false),
	}}
	if err := Apply(out, rules, versionTemplate(), dir, true, false, false); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := readFile(t, path); got != "version 1.2.3\n" {
		t.Fatalf("pre-release gated rule still applied: %q", got)
	}
}

func TestApplyInvalidPatternFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "x\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{{File: "doc.md", Search: "(", Replace: "y"}}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, false); err == nil {
		t.Fatal("invalid pattern succeeded, want error")
	}
}

func TestApplyGroupsRulesPerFile(t *testing.T) {
	dir := t.TempDir()
	changelog := writeFile(t, dir, "CHANGELOG.md", "## Unreleased\nold 1.2.3\n")
	readme := writeFile(t, dir, "README.md", "install foo 1.2.3\n")
	out, _ := testShell(shell.VerbosityNormal)

	rules := []config.Replace{
		{File: "README.md", Search: `1\.2\.3`, Replace: "{{version}}"},
		{File: "CHANGELOG.md", Search: "## Unreleased", Replace: "## {{version}}"},
		{File: "CHANGELOG.md", Search: `old 1\.2\.3`, Replace: "old {{prev_version}}"},
	}
	if err := Apply(out, rules, versionTemplate(), dir, false, false, false); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := readFile(t, changelog); got != "## 2.0.0\nold 1.2.3\n" {
		t.Fatalf("CHANGELOG.md = %q", got)
	}
	if got := readFile(t, readme); got != "install foo 2.0.0\n" {
		t.Fatalf("README.md = %q", got)
	}
}

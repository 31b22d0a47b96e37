package config

import (
	"errors"
	"strings"
	"testing"
)

func parseExpectingValidationError(t *testing.T, data string) error {
	t.Helper()
	_, err := ParseFile([]byte(data), "test.toml")
	if err == nil {
		t.Fatal("ParseFile succeeded, want validation error")
	}
	if !errors.Is(err, ErrConfigValidation) {
		t.Fatalf("error %v is not ErrConfigValidation", err)
	}
	return err
}

func TestValidateRejectsUnknownMetadataPolicy(t *testing.T) {
	parseExpectingValidationError(t, "[workspace]\nmetadata = \"sometimes\"\n")
}

func TestValidateRejectsReplacementWithoutFile(t *testing.T) {
	err := parseExpectingValidationError(t, `
[workspace]
[[workspace.pre-release-replacements]]
search = "x"
replace = "y"
`)
	if !strings.Contains(err.Error(), "file") {
		t.Fatalf("error %q does not mention the missing field", err)
	}
}

func TestValidateRejectsReplacementWithoutSearch(t *testing.T) {
	parseExpectingValidationError(t, `
[workspace]
[[workspace.pre-release-replacements]]
file = "CHANGELOG.md"
replace = "y"
`)
}

func TestValidateRejectsExactlyWithMinOrMax(t *testing.T) {
	parseExpectingValidationError(t, `
[package.foo]
[[package.foo.pre-release-replacements]]
file = "CHANGELOG.md"
search = "x"
replace = "y"
exactly = 1
min = 1
`)
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	parseExpectingValidationError(t, `
[workspace]
[[workspace.pre-release-replacements]]
file = "CHANGELOG.md"
search = "x"
replace = "y"
min = 3
max = 1
`)
}

func TestValidateRejectsNegativeGraceSleep(t *testing.T) {
	parseExpectingValidationError(t, "[workspace]\npublish-grace-sleep = -1\n")
}

func TestValidateAcceptsWellFormedFile(t *testing.T) {
	_, err := ParseFile([]byte(`
[workspace]
metadata = "persistent"
publish-grace-sleep = 0

[[workspace.pre-release-replacements]]
file = "CHANGELOG.md"
search = "Unreleased"
replace = "{{version}}"
min = 0
max = 2
`), "test.toml")
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
}

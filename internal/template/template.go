// Package template renders the token placeholders used in tag names and
// file replacement strings. It is a fixed list of literal substitutions,
// not a general template engine: there is no conditional or loop syntax.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/conn-castle/release-train/internal/messages"
)

// DateFormat is the layout used for the {{date}} token.
const DateFormat = "2006-01-02"

// Today returns the current UTC date in the {{date}} token format.
func Today() string {
	return time.Now().UTC().Format(DateFormat)
}

// Template is a bag of optional token values. A nil field leaves its token
// untouched; rendering an input that still contains the token then warns
// through Warn but never fails.
type Template struct {
	PrevVersion  *string
	PrevMetadata *string
	Version      *string
	Metadata     *string
	CrateName    *string
	Date         *string

	Prefix  *string
	TagName *string

	// Warn receives non-fatal render diagnostics. Nil suppresses them.
	Warn func(message string)
}

// Render substitutes all bound tokens in input and returns the result.
func (t *Template) Render(input string) string {
	out := input
	out = t.renderVar(out, "{{prev_version}}", t.PrevVersion)
	out = t.renderVar(out, "{{prev_metadata}}", t.PrevMetadata)
	out = t.renderVar(out, "{{version}}", t.Version)
	out = t.renderVar(out, "{{metadata}}", t.Metadata)
	out = t.renderVar(out, "{{crate_name}}", t.CrateName)
	out = t.renderVar(out, "{{date}}", t.Date)

	out = t.renderVar(out, "{{prefix}}", t.Prefix)
	out = t.renderVar(out, "{{tag_name}}", t.TagName)
	return out
}

func (t *Template) renderVar(input string, token string, value *string) string {
	if value != nil {
		return strings.ReplaceAll(input, token, *value)
	}
	if strings.Contains(input, token) && t.Warn != nil {
		t.Warn(fmt.Sprintf(messages.TemplateUnrenderedTokenFmt, token, input))
	}
	return input
}

// StringPtr returns a pointer to v, for populating optional token slots.
func StringPtr(v string) *string {
	return &v
}

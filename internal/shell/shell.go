// Package shell prints user-facing status, warning, and error lines in the
// style of build-tool output: a colored, right-justified action column
// followed by the message. Verbose diagnostics are gated by a verbosity
// level on the Shell value rather than a global logger.
package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Verbosity selects how much diagnostic output a Shell emits.
type Verbosity int

// Verbosity levels, from least to most output.
const (
	VerbosityQuiet Verbosity = iota
	VerbosityNormal
	VerbosityDebug
	VerbosityTrace
)

var (
	headerColor = color.New(color.FgGreen, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
	noteColor   = color.New(color.FgCyan, color.Bold)
)

// Shell writes formatted output to a pair of streams. Status lines go to
// stderr like cargo's, keeping stdout clean for machine-readable output.
type Shell struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
}

// New builds a Shell over the given streams.
func New(out io.Writer, err io.Writer, verbosity Verbosity) *Shell {
	return &Shell{out: out, err: err, verbosity: verbosity}
}

// Default returns a Shell over the process streams at normal verbosity.
func Default() *Shell {
	return New(os.Stdout, os.Stderr, VerbosityNormal)
}

// Out returns the stdout-equivalent stream.
func (s *Shell) Out() io.Writer {
	return s.out
}

// Err returns the stderr-equivalent stream.
func (s *Shell) Err() io.Writer {
	return s.err
}

// Verbosity returns the configured verbosity level.
func (s *Shell) Verbosity() Verbosity {
	return s.verbosity
}

// Status prints a right-justified colored action followed by the message.
func (s *Shell) Status(action string, message string) {
	if s.verbosity == VerbosityQuiet {
		return
	}
	_, _ = headerColor.Fprintf(s.err, "%12s", action)
	_, _ = fmt.Fprintf(s.err, " %s\n", message)
}

// Warn prints a warning line. Warnings never abort a run.
func (s *Shell) Warn(message string) {
	_, _ = warnColor.Fprint(s.err, "warning")
	_, _ = fmt.Fprintf(s.err, ": %s\n", message)
}

// Error prints an error line.
func (s *Shell) Error(message string) {
	_, _ = errorColor.Fprint(s.err, "error")
	_, _ = fmt.Fprintf(s.err, ": %s\n", message)
}

// Note prints an informational line.
func (s *Shell) Note(message string) {
	_, _ = noteColor.Fprint(s.err, "note")
	_, _ = fmt.Fprintf(s.err, ": %s\n", message)
}

// Debug prints a diagnostic line at debug verbosity or above.
func (s *Shell) Debug(format string, args ...any) {
	if s.verbosity < VerbosityDebug {
		return
	}
	_, _ = fmt.Fprintf(s.err, format+"\n", args...)
}

// Trace prints a diagnostic line at trace verbosity.
func (s *Shell) Trace(format string, args ...any) {
	if s.verbosity < VerbosityTrace {
		return
	}
	_, _ = fmt.Fprintf(s.err, format+"\n", args...)
}
